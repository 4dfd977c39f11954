// Package cmd is the vpp-sim command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jdhoffa/vpp-sim/app"
	"github.com/jdhoffa/vpp-sim/config"
)

var (
	scenarioPath string
	presetName   string
	telemetryOut string
	apiBind      string
	quiet        bool
)

var rootCmd = &cobra.Command{
	Use:   "vpp-sim",
	Short: "Deterministic simulator for a dispatch-controlled electrical site",
	Long: `vpp-sim steps a small commercial site (baseload, solar, EV charging,
battery) through a configured number of days. A dispatch controller tracks the
day-ahead schedule under feeder limits and demand-response calls; telemetry and
KPIs come out as CSV, logs, metrics or the HTTP API.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "scenario file (yaml or json)")
	rootCmd.Flags().StringVarP(&presetName, "preset", "p", "baseline", "built-in scenario preset")
	rootCmd.Flags().StringVarP(&telemetryOut, "telemetry-out", "o", "", "write run telemetry to this CSV file")
	rootCmd.Flags().StringVar(&apiBind, "api-bind", "", "serve the read-only HTTP API on this address (e.g. :8080)")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress per-step progress logs")

	rootCmd.AddCommand(scenariosCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadScenario()
	if err != nil {
		return err
	}

	svc, err := app.New(cfg, app.Options{
		TelemetryOut: telemetryOut,
		APIBind:      apiBind,
		Quiet:        quiet,
	})
	if err != nil {
		return fmt.Errorf("assemble site: %w", err)
	}

	if _, err := svc.Run(ctx); err != nil {
		return fmt.Errorf("run %s: %w", svc.RunID(), err)
	}
	return nil
}

// loadScenario prefers an explicit file over the preset.
func loadScenario() (*config.Config, error) {
	if scenarioPath != "" {
		cfg, err := config.Load(scenarioPath)
		if err != nil {
			return nil, fmt.Errorf("load scenario: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.LoadPreset(presetName)
	if err != nil {
		return nil, fmt.Errorf("load preset: %w", err)
	}
	return cfg, nil
}
