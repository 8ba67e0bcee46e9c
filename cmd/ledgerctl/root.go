package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operate a ledger store",
	Long:  `Manage the ledger schema, configuration, users and batches of mutations.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		if err := setupLogging(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set up audit: %v\n", err)
			os.Exit(1)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := audit.Shutdown(); err != nil {
			slog.Warn("failed to close audit store", "error", err)
		}
	},
}

// setupLogging installs the process logger at the configured level and
// points audit output where the config says.
func setupLogging(cfg *config.LedgerConfig) error {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	slog.SetDefault(slog.New(handler))
	return audit.Setup(cfg)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
