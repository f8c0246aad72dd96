package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NousResearch/nousflash-agents/internal/wallet"
)

func init() {
	walletCmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet utilities",
	}

	walletCmd.AddCommand(&cobra.Command{
		Use:   "balance",
		Short: "Show the agent wallet's ETH balance",
		Run:   runWalletBalance,
	})
	walletCmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Generate a fresh wallet keypair",
		Run:   runWalletNew,
	})

	RootCmd.AddCommand(walletCmd)
}

func runWalletBalance(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()
	if cfg.EthPrivateKeyHex == "" || cfg.EthRPCURL == "" {
		exitErr("wallet", fmt.Errorf("AGENT_WALLET_PRIVATE_KEY and ETH_MAINNET_RPC_URL must be set"))
	}

	w, err := wallet.New(cfg.EthPrivateKeyHex, cfg.EthRPCURL)
	if err != nil {
		exitErr("wallet", err)
	}

	balance, err := w.Balance(ctx)
	if err != nil {
		exitErr("balance", err)
	}
	fmt.Printf("%s: %f ETH\n", w.Address(), balance)
}

func runWalletNew(cmd *cobra.Command, args []string) {
	key, address, err := wallet.NewAccount()
	if err != nil {
		exitErr("generate account", err)
	}
	fmt.Printf("address:     %s\nprivate key: %s\n", address, key)
}
