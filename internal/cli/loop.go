package cli

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/NousResearch/nousflash-agents/internal/logging"
)

var loopInterval time.Duration

func init() {
	cmd := &cobra.Command{
		Use:   "loop",
		Short: "Run the pipeline on an interval until interrupted",
		Run:   runLoop,
	}
	cmd.Flags().DurationVar(&loopInterval, "interval", 0, "Time between passes (default: $LOOP_INTERVAL or 30m)")

	RootCmd.AddCommand(cmd)
}

func runLoop(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()
	if loopInterval > 0 {
		cfg.LoopInterval = loopInterval
	}
	log := logging.New()

	p, cleanup, err := buildPipeline(cfg, log)
	if err != nil {
		exitErr("build pipeline", err)
	}
	defer cleanup()

	ticker := time.NewTicker(cfg.LoopInterval)
	defer ticker.Stop()

	log.WithField("interval", cfg.LoopInterval.String()).Info("loop started")
	for {
		if err := p.Run(ctx); err != nil {
			log.WithField("error", err).Error("pipeline pass failed")
		}

		select {
		case <-ctx.Done():
			log.Info("loop stopped")
			return
		case <-ticker.C:
		}
	}
}
