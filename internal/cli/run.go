package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NousResearch/nousflash-agents/internal/config"
	"github.com/NousResearch/nousflash-agents/internal/embedding"
	"github.com/NousResearch/nousflash-agents/internal/llm"
	"github.com/NousResearch/nousflash-agents/internal/logging"
	"github.com/NousResearch/nousflash-agents/internal/pipeline"
	"github.com/NousResearch/nousflash-agents/internal/twitter"
	"github.com/NousResearch/nousflash-agents/internal/wallet"
)

func init() {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one pipeline pass",
		Run:   runOnce,
	}

	RootCmd.AddCommand(cmd)
}

func runOnce(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()
	log := logging.New()

	p, cleanup, err := buildPipeline(cfg, log)
	if err != nil {
		exitErr("build pipeline", err)
	}
	defer cleanup()

	if err := p.Run(ctx); err != nil {
		exitErr("run", err)
	}
}

// buildPipeline wires the pipeline from configuration. The wallet and
// embedder are optional capabilities; everything else is required.
func buildPipeline(cfg config.Config, log logging.Logger) (*pipeline.Pipeline, func(), error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	deps := pipeline.Deps{
		Store: st,
		LLM: llm.NewClient(llm.Config{
			BaseURL:   cfg.LLMBaseURL,
			APIKey:    cfg.LLMAPIKey,
			BaseModel: cfg.LLMBaseModel,
			ChatModel: cfg.LLMChatModel,
		}),
		Platform: twitter.NewHTTPClient(cfg.PlatformBaseURL, cfg.PlatformFallbackURL, cfg.PlatformBearerToken),
		Logger:   log,
	}

	if cfg.EmbedProvider != "openai" || cfg.OpenAIAPIKey != "" {
		deps.Embedder = embedding.New(embedding.Options{
			Provider: cfg.EmbedProvider,
			Model:    cfg.EmbedModel,
			BaseURL:  cfg.EmbedBaseURL,
			APIKey:   cfg.OpenAIAPIKey,
		})
	}

	if cfg.EthPrivateKeyHex != "" && cfg.EthRPCURL != "" {
		w, err := wallet.New(cfg.EthPrivateKeyHex, cfg.EthRPCURL)
		if err != nil {
			st.Close()
			return nil, nil, err
		}
		deps.Wallet = w
		log.WithField("address", w.Address()).Info("wallet enabled")
	}

	return pipeline.New(cfg, deps), func() { st.Close() }, nil
}
