package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nami-dev/nami"
	"github.com/nami-dev/nami/internal/observability"
	"github.com/nami-dev/nami/pkg/config"
	metrics "github.com/nami-dev/nami/pkg/observability"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "nami",
	Short: "Strategy-driven multi-agent research assistant",
	Long: `Nami coordinates teams of model-backed agents to research a topic and
produce a report, under one of ten collaboration strategies: sequential
pipelines, parallel swarms, expert panels, debates, and iterative
critique-refine loops.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default: nami.yaml if present)")

	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(strategiesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(recommendCmd)
}

// loadSystem builds the research system from config file, environment, and
// command-line overrides.
func loadSystem(mutate func(cfg *config.Config)) (*nami.System, error) {
	path := cfgPath
	if path == "" {
		if _, err := os.Stat("nami.yaml"); err == nil {
			path = "nami.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(cfg)
	}

	metrics.InitMetrics()
	if err := observability.InitFromEnv(); err != nil {
		// Tracing is best-effort; a broken exporter must not block research.
		fmt.Fprintf(os.Stderr, "warning: tracing disabled: %v\n", err)
	}

	return nami.New(cfg)
}
