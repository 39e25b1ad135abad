package cmd

import (
	"fmt"
	"os"

	"inventory-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags shared by every command
	configDir   string
	rootDir     string
	accountList []string
	verbosity   int
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "inventory-sync",
	Short: "Character inventory sync across game accounts",
	Long: `inventory-sync keeps BagSync inventory databases consistent across several game accounts.
Every account sees the bags, bank, mail, and gold of the characters on the other accounts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting
		// We default to console format to match user expectations (CLI tool)
		// We use "debug" level configuration to get ISO8601 timestamps (DevConfig) instead of Epoch (ProdConfig)
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config-dir", ".", "Directory holding .env and config.yaml")
	flags.StringVar(&rootDir, "root", "", "Accounts root directory (overrides sync.root)")
	flags.StringSliceVarP(&accountList, "account", "a", nil, "Account to synchronize, repeatable (overrides sync.accounts)")
	flags.CountVarP(&verbosity, "verbose", "v", "Enable debug logging")
}
