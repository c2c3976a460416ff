package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/finsight/internal/config"
)

var (
	cfgFile  string
	logLevel string

	// Populated by PersistentPreRunE for every command.
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "finsight",
	Short: "Extract financial insights from annual reports",
	Long: `finsight turns annual report files into structured financial insights.

Each report is read, cleaned of page furniture, split into chunks and sent
to a language model that extracts positive, negative, forward-looking and
risk statements. Statements are then scored with a financial sentiment
classifier and aggregated into unified_financial_insights.csv/.xlsx.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		logger = newLogger(cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./finsight.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn or error",
	)

	rootCmd.AddCommand(runCmd, serveCmd, watchCmd, normalizeCmd, aggregateCmd)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
