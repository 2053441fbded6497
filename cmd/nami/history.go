package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List past research reports, or show one in full",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		system, err := loadSystem(nil)
		if err != nil {
			return err
		}
		defer system.Close()

		ctx := context.Background()

		if len(args) == 1 {
			rec, err := system.Report(ctx, args[0])
			if err != nil {
				return err
			}
			color.Cyan("%s (%s)", rec.Topic, rec.CreatedAt.Local().Format("2006-01-02 15:04"))
			color.HiBlack("Strategy %d (%s), %d iteration(s), quality %.1f, team: %s",
				rec.StrategyID, rec.StrategyName, rec.IterationsUsed,
				rec.QualityAggregate, strings.Join(rec.AgentTeam, ", "))
			fmt.Println()
			fmt.Println(rec.ReportText)
			return nil
		}

		records, err := system.History(ctx, historyLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No reports yet.")
			return nil
		}
		for _, rec := range records {
			color.Cyan("%s  %s", rec.CreatedAt.Local().Format("2006-01-02 15:04"), rec.Topic)
			flags := ""
			if rec.BelowThreshold {
				flags += " below-threshold"
			}
			if rec.PartialConsensus {
				flags += " partial"
			}
			color.HiBlack("    %s  strategy %d (%s)  quality %.1f%s",
				rec.ID, rec.StrategyID, rec.StrategyName, rec.QualityAggregate, flags)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max reports to list")
}
