package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agave/internal/config"
	"agave/internal/logging"
	"agave/internal/pricing"
	"agave/internal/recorder"
)

var (
	// Global flags
	cfgPath  string
	envFile  string
	currency string
	noRecord bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "agave",
	Short: "AGAVE - pricing and margin engine",
	Long: `AGAVE computes sale prices from costs and target margins, classifies
margins into named bands, and simulates the effect of discounts.

Margins are always on price: margin = (price - cost) / price.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		if cfgPath == "" {
			cfgPath = "configs/config.yaml"
			if v := os.Getenv("CONFIG_PATH"); v != "" {
				cfgPath = v
			}
		}
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if currency != "" {
			cfg.Pricing.Currency = currency
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default $CONFIG_PATH or configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().StringVar(&currency, "currency", "", "ISO currency code for reports (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noRecord, "no-record", false, "do not persist results to SQLite")

	rootCmd.AddCommand(priceCmd, classifyCmd, simulateCmd, discountsCmd, rangesCmd, catalogCmd, botCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openRecorder opens the SQLite recorder, falling back to a no-op recorder
// when persistence is disabled or the database cannot be opened.
func openRecorder() recorder.Recorder {
	if noRecord || cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
	if err != nil {
		logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		return recorder.NewNoopRecorder()
	}
	return sr
}

// newService builds the pricing service from the loaded config.
func newService(rec recorder.Recorder, source string) (*pricing.Service, error) {
	table, err := cfg.RangeTable()
	if err != nil {
		return nil, err
	}
	return pricing.NewService(pricing.Settings{
		Table:        table,
		Refs:         cfg.ReferenceMargins(),
		Target:       cfg.TargetMargin(),
		Currency:     cfg.Pricing.Currency,
		MonthlyUnits: cfg.MonthlyUnits(),
		Discounts:    cfg.Pricing.Discounts,
	}, rec, logger, source), nil
}
