package main

import (
	"fmt"
	"strings"

	"github.com/digit2ai/CRM-Co-Pilot/internal/catalog"
	"github.com/digit2ai/CRM-Co-Pilot/internal/classify"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <description>...",
		Short: "Show the project type a description maps to",
		Long:  "Classifies a free-text project description by keyword and reports which catalog plan would be used.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, strings.Join(args, " "))
		},
	}
}

func runClassify(cmd *cobra.Command, description string) error {
	out := cmd.OutOrStdout()
	tag := classify.Classify(description)
	cat := catalog.Default()

	plan := tag
	if !cat.Has(tag) {
		plan = classify.General
	}
	counts := cat.Lookup(tag).Counts()
	fmt.Fprintf(out, "Project type: %s\n", tag)
	fmt.Fprintf(out, "Plan:         %s (%d sprints, %d stories, %d points)\n",
		plan, counts.Sprints, counts.Stories, counts.TotalPoints)
	return nil
}
