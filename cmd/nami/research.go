package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nami-dev/nami/internal/engine"
	"github.com/nami-dev/nami/internal/observability"
	"github.com/nami-dev/nami/pkg/config"
)

var (
	researchStrategy   int
	researchModel      string
	researchIterations int
	researchThreshold  float64
	researchUnits      int
)

var researchCmd = &cobra.Command{
	Use:   "research <topic>",
	Short: "Research a topic and produce a report",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.Join(args, " ")

		system, err := loadSystem(func(cfg *config.Config) {
			if researchModel != "" {
				cfg.ModelName = researchModel
			}
			if researchIterations > 0 {
				cfg.MaxIterations = researchIterations
			}
			if researchThreshold > 0 {
				cfg.QualityThreshold = researchThreshold
			}
			if researchUnits > 0 {
				cfg.MaxConcurrentUnits = researchUnits
			}
		})
		if err != nil {
			return err
		}
		defer system.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		defer func() { _ = observability.Shutdown(context.Background()) }()

		color.Cyan("Researching: %s", topic)
		res, err := system.Research(ctx, researchStrategy, topic)
		if err != nil {
			var report *engine.FailureReport
			if errors.As(err, &report) {
				color.Red("Research failed at stage %q: %v", report.Stage, report.Cause)
				return err
			}
			return err
		}

		printResult(res)
		return nil
	},
}

func init() {
	researchCmd.Flags().IntVarP(&researchStrategy, "strategy", "s", 0, "strategy id 1-10 (0 = configured default or recommendation)")
	researchCmd.Flags().StringVarP(&researchModel, "model", "m", "", "model to bind agents to")
	researchCmd.Flags().IntVar(&researchIterations, "max-iterations", 0, "refinement iteration ceiling")
	researchCmd.Flags().Float64Var(&researchThreshold, "quality-threshold", 0, "quality gate threshold (0-10)")
	researchCmd.Flags().IntVar(&researchUnits, "max-concurrent", 0, "max concurrent research units")
}

func printResult(res *engine.SessionResult) {
	fmt.Println()
	fmt.Println(res.ReportText)
	fmt.Println()

	color.Green("Strategy %d, %d iteration(s), team: %s",
		res.StrategyID, res.IterationsUsed, strings.Join(res.AgentTeam, ", "))
	if res.Quality != nil {
		color.Green("Quality: %.1f/10 (depth %.1f, accuracy %.1f, coherence %.1f, sources %.1f, completeness %.1f)",
			res.Quality.Aggregate, res.Quality.Depth, res.Quality.Accuracy,
			res.Quality.Coherence, res.Quality.SourceDiversity, res.Quality.Completeness)
	}
	if res.BelowThreshold {
		color.Yellow("Note: quality below threshold after %d iteration(s)", res.IterationsUsed)
	}
	if res.PartialConsensus {
		color.Yellow("Note: some agents failed; consensus built from a partial set")
	}
	color.HiBlack("Run %s took %s", res.RunID, res.FinishedAt.Sub(res.StartedAt).Round(100*time.Millisecond))
}
