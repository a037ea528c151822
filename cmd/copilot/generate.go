package main

import (
	"context"
	"fmt"
	"io"

	"github.com/digit2ai/CRM-Co-Pilot/internal/models"
	"github.com/digit2ai/CRM-Co-Pilot/internal/planner"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var (
		configPath  string
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a project from a description",
		Long: `Classifies the description, picks the matching catalog plan and creates
the project with all of its sprints, epics and stories in one transaction.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, configPath, name, description)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&name, "name", "n", "", "project name (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "project description (required)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("description")
	return cmd
}

func runGenerate(cmd *cobra.Command, configPath, name, description string) error {
	e, err := connectFromConfig(cmd, configPath)
	if err != nil {
		return err
	}
	defer e.close()

	res, err := e.service().GenerateFromPrompt(context.Background(), name, description)
	if err != nil {
		return err
	}
	printCreated(cmd.OutOrStdout(), res)
	return nil
}

// printCreated summarises a newly created project.
func printCreated(out io.Writer, res *planner.Result) {
	successColor.Fprintf(out, "Created project %q (id %d)\n", res.Project.Name, res.Project.ID)
	fmt.Fprintf(out, "Type:    %s\n", res.Project.ProjectType)
	fmt.Fprintf(out, "Sprints: %d\n", res.Summary.SprintCount)
	fmt.Fprintf(out, "Epics:   %d\n", res.Summary.EpicCount)
	fmt.Fprintf(out, "Stories: %d\n", res.Summary.StoryCount)
	fmt.Fprintf(out, "Points:  %d\n", res.Summary.TotalPoints)
}

// printTree writes a project's sprints, epics and stories.
func printTree(out io.Writer, p *models.Project) {
	for _, s := range p.Sprints {
		headerColor.Fprintf(out, "%s", s.Name)
		fmt.Fprintf(out, "  [%s, %d points]\n", s.Duration, s.StoryPoints)
		for _, ep := range s.Epics {
			infoColor.Fprintf(out, "  %s %s\n", ep.Code, ep.Name)
			for _, st := range ep.Stories {
				fmt.Fprintf(out, "    %-8s %-45s %2d pts  %-8s %s\n",
					st.Code, truncate(st.Title, 45), st.StoryPoints, st.Priority, st.Status)
			}
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
