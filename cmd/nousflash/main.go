package main

import (
	"os"

	"github.com/NousResearch/nousflash-agents/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
