// Package cli implements the nousflash CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NousResearch/nousflash-agents/internal/config"
	"github.com/NousResearch/nousflash-agents/internal/store"
)

var dbPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "nousflash",
	Short: "Autonomous social media agent",
	Long:  "An autonomous social media agent: reads its notifications, replies, follows, moves money, and posts what it finds significant. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $AGENT_DB or ~/.nousflash/agent.db)")
}

func loadConfig() config.Config {
	cfg := config.Load()
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg
}

func openStore(cfg config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
