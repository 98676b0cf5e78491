package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"ledgerpass/internal/platform/config"
	"ledgerpass/internal/platform/logger"
)

const programName = "ledgerpass"

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string
	cfg        *config.Config
)

func slogPrintf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), "component", programName)
}

// commonRun builds the process logger and sizes GOMAXPROCS to the container
// quota.
func commonRun() *slog.Logger {
	level := cfg.LogLevel
	if globalFlags.debug {
		level = "debug"
	}
	log := logger.New(os.Stdout, cfg.LogFormat, level)
	slog.SetDefault(log)
	if _, err := maxprocs.Set(maxprocs.Logger(slogPrintf)); err != nil {
		log.Error("failed to set GOMAXPROCS", "error", err)
		os.Exit(1)
	}
	return log
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Passport registry hosted on a block-producing ledger",
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			loaded, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded
			return nil
		},
	}

	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(tokenCommand())
	rootCmd.AddCommand(adminTokenCommand())

	if err := rootCmd.Execute(); err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}
