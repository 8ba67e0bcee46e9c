package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledger-in-go/pkg/config"
)

// configurationShowCmd represents the configuration show command
var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configuration attributes and their sources",
	Long: `Show configuration attributes and their sources.

Each value is reported with where it came from: the built-in default,
the config file or the environment. The database password is redacted.

Config file location: /etc/ledger/ledger.yml (or LEDGER_CONFIG_PATH)

Example:
  ledgerctl configuration show
  ledgerctl configuration show --format json`,
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")

		if err := showConfiguration(format); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("format", "f", "text", "Output format (text or json)")
}

func showConfiguration(format string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	switch format {
	case "json":
		out, err := cfg.FormatJSON()
		if err != nil {
			return err
		}
		fmt.Println(out)
	case "text":
		fmt.Print(cfg.FormatText())
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}
