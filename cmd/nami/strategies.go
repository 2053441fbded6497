package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the available research strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		system, err := loadSystem(nil)
		if err != nil {
			return err
		}
		defer system.Close()

		for _, def := range system.Strategies() {
			color.Cyan("%2d. %s", def.ID, def.Name)
			fmt.Printf("    %s\n", def.Description)
			color.HiBlack("    Best for: %s", def.BestFor)
			color.HiBlack("    Team: %s", strings.Join(def.Team(), ", "))
			fmt.Println()
		}
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <topic>",
	Short: "Recommend a strategy for a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		system, err := loadSystem(nil)
		if err != nil {
			return err
		}
		defer system.Close()

		topic := strings.Join(args, " ")
		id := system.Recommend(topic)
		for _, def := range system.Strategies() {
			if def.ID == id {
				color.Green("Recommended strategy for %q: %d (%s)", topic, def.ID, def.Name)
				fmt.Println(def.Description)
				return nil
			}
		}
		return fmt.Errorf("recommended strategy %d not in catalog", id)
	},
}
