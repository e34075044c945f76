package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/maintwise/maintwise/internal/analytics"
	"github.com/maintwise/maintwise/internal/cache"
	"github.com/maintwise/maintwise/internal/config"
	"github.com/maintwise/maintwise/internal/gateway"
	"github.com/maintwise/maintwise/internal/logging"
	"github.com/maintwise/maintwise/internal/monitoring"
)

var (
	configPath  string
	horizonDays int
	months      int
)

func main() {
	root := &cobra.Command{
		Use:           "maintwise",
		Short:         "Predictive maintenance analytics engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("MAINTWISE_CONFIG"), "path to config file")

	predictCmd := &cobra.Command{
		Use:   "predict <asset-id>",
		Short: "Predict failure risk for one asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, engine *analytics.Engine) (any, error) {
				return engine.PredictAssetFailure(ctx, args[0], horizonDays)
			})
		},
	}
	predictCmd.Flags().IntVar(&horizonDays, "horizon", 90, "prediction horizon in days")

	forecastCmd := &cobra.Command{
		Use:   "forecast <company-id>",
		Short: "Forecast maintenance costs for a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, engine *analytics.Engine) (any, error) {
				return engine.ForecastMaintenanceCosts(ctx, args[0], months)
			})
		},
	}
	forecastCmd.Flags().IntVar(&months, "months", 6, "number of months to forecast")

	anomaliesCmd := &cobra.Command{
		Use:   "anomalies <company-id>",
		Short: "Detect anomalous maintenance work orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, engine *analytics.Engine) (any, error) {
				return engine.DetectMaintenanceAnomalies(ctx, args[0])
			})
		},
	}

	scheduleCmd := &cobra.Command{
		Use:   "schedule <company-id>",
		Short: "Build an optimized maintenance schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, engine *analytics.Engine) (any, error) {
				return engine.GenerateOptimalSchedule(ctx, args[0], horizonDays)
			})
		},
	}
	scheduleCmd.Flags().IntVar(&horizonDays, "horizon", 90, "schedule window in days")

	initDBCmd := &cobra.Command{
		Use:   "init-db",
		Short: "Apply the reference gateway schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			gw, err := gateway.Open(cfg.Gateway)
			if err != nil {
				return err
			}
			defer gw.Close()
			return gateway.InitSchema(gw.DB())
		},
	}

	root.AddCommand(predictCmd, forecastCmd, anomaliesCmd, scheduleCmd, initDBCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withEngine wires config, logging, metrics, gateway, cache and engine,
// runs one operation and prints its result as JSON.
func withEngine(run func(context.Context, *analytics.Engine) (any, error)) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	gw, err := gateway.Open(cfg.Gateway)
	if err != nil {
		return err
	}
	defer gw.Close()

	predictionCache, err := cache.New(logger, cfg.Cache)
	if err != nil {
		return err
	}
	defer predictionCache.Close()

	metrics := monitoring.New(logger, cfg.Metrics)
	metrics.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metrics.Stop(ctx)
	}()

	engine := analytics.NewEngine(logger, cfg.Analytics, gw, predictionCache, metrics)

	result, err := run(context.Background(), engine)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
