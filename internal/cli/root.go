// Package cli implements the tritime command surface.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lextri/tritime/internal/config"
	"github.com/lextri/tritime/internal/domain/anomaly"
	"github.com/lextri/tritime/pkg/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tritime",
	Short: "Tri-temporal timeline analyzer",
	Long: `tritime inspects event timelines that carry valid, transaction and
decision timestamps, and classifies temporal anomalies: time travel,
premature decisions, ingestion lag and out-of-order processing.

Timelines are exchanged as JSON documents; see the analyze, example,
render, roundtrip, batch and serve subcommands.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Init(); err != nil {
			return fmt.Errorf("initialize logging: %w", err)
		}

		var err error
		cfg, err = config.Load(cmd.Context())
		if err != nil {
			return err
		}
		if err := logger.SetLevelString(cfg.LogLevel); err != nil {
			logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
				logger.String("log_level", cfg.LogLevel))
			_ = logger.SetLevelString("info")
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newClassifier builds a classifier from the loaded configuration.
func newClassifier() *anomaly.Classifier {
	return anomaly.NewClassifier(
		anomaly.WithLagThreshold(secondsToDuration(cfg.LagThresholdSeconds)),
		anomaly.WithOutOfOrderTolerance(secondsToDuration(cfg.OutOfOrderToleranceSeconds)),
		anomaly.WithWorkers(cfg.Workers),
	)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
