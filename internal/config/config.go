// Package config loads the process-wide agent configuration.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the immutable configuration bundle for one agent process. It is
// constructed once at startup and passed by value into every component that
// needs it; nothing reads the environment after Load returns.
type Config struct {
	// Identity
	AgentHandle string
	AgentEmail  string

	// Storage
	DBPath string

	// LLM endpoint (OpenAI-compatible)
	LLMAPIKey    string
	LLMBaseURL   string
	LLMBaseModel string // raw completions
	LLMChatModel string // formatting, scoring, decisions

	// Social platform
	PlatformBaseURL     string
	PlatformFallbackURL string
	PlatformBearerToken string

	// Ethereum
	EthRPCURL        string
	EthPrivateKeyHex string

	// Embeddings
	EmbedProvider string // "openai", "ollama", or "" (disabled)
	EmbedModel    string
	EmbedBaseURL  string
	OpenAIAPIKey  string

	// Decision thresholds
	MaxReplyRate           float64
	MinPostingSignificance float64
	MinStoringSignificance float64
	MinReplyWorthiness     float64
	MinFollowScore         float64
	MinEthBalance          float64

	// Pacing
	PhaseDelay   time.Duration
	LoopInterval time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first if present.
func Load() Config {
	godotenv.Load()

	return Config{
		AgentHandle: envStr("AGENT_HANDLE", "tee_hee_he"),
		AgentEmail:  envStr("AGENT_EMAIL", "tee_hee_he@example.com"),

		DBPath: envStr("AGENT_DB", defaultDBPath()),

		LLMAPIKey:    os.Getenv("LLM_API_KEY"),
		LLMBaseURL:   envStr("LLM_BASE_URL", "https://api.hyperbolic.xyz/v1"),
		LLMBaseModel: envStr("LLM_BASE_MODEL", "meta-llama/Meta-Llama-3.1-405B"),
		LLMChatModel: envStr("LLM_CHAT_MODEL", "meta-llama/Meta-Llama-3.1-70B-Instruct"),

		PlatformBaseURL:     envStr("PLATFORM_BASE_URL", "https://api.x.com/2"),
		PlatformFallbackURL: envStr("PLATFORM_FALLBACK_URL", "https://api.x.com/1.1"),
		PlatformBearerToken: os.Getenv("PLATFORM_BEARER_TOKEN"),

		EthRPCURL:        os.Getenv("ETH_MAINNET_RPC_URL"),
		EthPrivateKeyHex: os.Getenv("AGENT_WALLET_PRIVATE_KEY"),

		EmbedProvider: envStr("EMBED_PROVIDER", "openai"),
		EmbedModel:    os.Getenv("EMBED_MODEL"),
		EmbedBaseURL:  os.Getenv("EMBED_BASE_URL"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),

		MaxReplyRate:           envFloat("MAX_REPLY_RATE", 1.0),
		MinPostingSignificance: envFloat("MIN_POSTING_SIGNIFICANCE", 3.0),
		MinStoringSignificance: envFloat("MIN_STORING_SIGNIFICANCE", 6.0),
		MinReplyWorthiness:     envFloat("MIN_REPLY_WORTHINESS", 3.0),
		MinFollowScore:         envFloat("MIN_FOLLOW_SCORE", 0.9),
		MinEthBalance:          envFloat("MIN_ETH_BALANCE", 0.3),

		PhaseDelay:   envDuration("PHASE_DELAY", 5*time.Second),
		LoopInterval: envDuration("LOOP_INTERVAL", 30*time.Minute),
	}
}

func defaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".nousflash", "agent.db")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
