package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprint",
		Short: "Sprint commands",
	}

	cmd.AddCommand(newSprintRecalcCmd())
	return cmd
}

func newSprintRecalcCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "recalc <id>",
		Short: "Recompute a sprint's cached story point total",
		Long:  "Sprint point totals are a snapshot taken when stories are instantiated or imported. Recalc sums the current story points and stores the result.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := connectFromConfig(cmd, configPath)
			if err != nil {
				return err
			}
			defer e.close()

			points, err := e.service().RecalculateSprintPoints(context.Background(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sprint %d: %d points\n", id, points)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}
