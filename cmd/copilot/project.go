package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/digit2ai/CRM-Co-Pilot/internal/blueprint"
	"github.com/digit2ai/CRM-Co-Pilot/internal/project"
	"github.com/spf13/cobra"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project management commands",
	}

	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectShowCmd())
	cmd.AddCommand(newProjectTreeCmd())
	cmd.AddCommand(newProjectDeleteCmd())
	return cmd
}

func newProjectListCmd() *cobra.Command {
	var (
		configPath  string
		status      string
		projectType string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectList(cmd, configPath, project.ListFilters{Status: status, ProjectType: projectType})
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&status, "status", "", "filter by status (e.g. active, completed)")
	cmd.Flags().StringVar(&projectType, "type", "", "filter by project type")
	return cmd
}

func runProjectList(cmd *cobra.Command, configPath string, filters project.ListFilters) error {
	out := cmd.OutOrStdout()
	e, err := connectFromConfig(cmd, configPath)
	if err != nil {
		return err
	}
	defer e.close()

	projects, err := project.List(e.db, filters)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tSTATUS\tSPRINTS\tCREATED")
	for _, p := range projects {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
			p.ID, truncate(p.Name, 40), p.ProjectType, p.Status, len(p.Sprints), p.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func newProjectShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project with its progress analytics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runProjectShow(cmd, configPath, id)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runProjectShow(cmd *cobra.Command, configPath string, id uint) error {
	out := cmd.OutOrStdout()
	e, err := connectFromConfig(cmd, configPath)
	if err != nil {
		return err
	}
	defer e.close()

	p, err := project.Get(e.db, id)
	if err != nil {
		return err
	}
	a, err := project.GetAnalytics(e.db, id)
	if err != nil {
		return err
	}

	headerColor.Fprintf(out, "%s\n", p.Name)
	fmt.Fprintf(out, "ID:          %d\n", p.ID)
	fmt.Fprintf(out, "Type:        %s\n", p.ProjectType)
	fmt.Fprintf(out, "Status:      %s\n", p.Status)
	if p.CreatedFromTemplate != nil {
		fmt.Fprintf(out, "Template:    %d\n", *p.CreatedFromTemplate)
	}
	fmt.Fprintf(out, "Created:     %s\n", p.CreatedAt.Format("2006-01-02 15:04"))
	if p.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", p.Description)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Sprints:     %d\n", a.TotalSprints)
	fmt.Fprintf(out, "Stories:     %d (%d done)\n", a.TotalStories, a.CompletedStories)
	fmt.Fprintf(out, "Points:      %d (%.2f per sprint)\n", a.TotalStoryPoints, a.AveragePointsPerSprint)
	fmt.Fprintf(out, "Completion:  %.2f%%\n", a.CompletionRate)
	return nil
}

func newProjectTreeCmd() *cobra.Command {
	var (
		configPath string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "tree <id>",
		Short: "Print a project's sprints, epics and stories",
		Long:  "Prints the project tree. With --json, prints it in the template tree format accepted by the instantiate API.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runProjectTree(cmd, configPath, id, asJSON)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as template JSON")
	return cmd
}

func runProjectTree(cmd *cobra.Command, configPath string, id uint, asJSON bool) error {
	out := cmd.OutOrStdout()
	e, err := connectFromConfig(cmd, configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if asJSON {
		tree, err := e.service().SerializeProject(context.Background(), id)
		if err != nil {
			return err
		}
		data, err := blueprint.Encode(tree)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	p, err := project.GetTree(e.db, id)
	if err != nil {
		return err
	}
	printTree(out, p)
	return nil
}

func newProjectDeleteCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project and everything under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runProjectDelete(cmd, configPath, id, yes)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func runProjectDelete(cmd *cobra.Command, configPath string, id uint, skipConfirm bool) error {
	out := cmd.OutOrStdout()
	e, err := connectFromConfig(cmd, configPath)
	if err != nil {
		return err
	}
	defer e.close()

	p, err := project.Get(e.db, id)
	if err != nil {
		return err
	}
	if !skipConfirm && !confirm(cmd, fmt.Sprintf("This will delete project %q with all of its sprints, epics, stories and risks.", p.Name)) {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}
	if err := project.Delete(e.db, id); err != nil {
		return err
	}
	successColor.Fprintf(out, "Deleted project %q\n", p.Name)
	return nil
}
