package main

import (
	"context"
	"fmt"

	"github.com/digit2ai/CRM-Co-Pilot/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stories to external trackers",
	}

	cmd.AddCommand(newExportGitHubCmd())
	return cmd
}

func newExportGitHubCmd() *cobra.Command {
	var (
		configPath string
		projectID  uint
		repo       string
		token      string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "github",
		Short: "Create a GitHub issue for every story in a project",
		Long: `Creates one GitHub issue per story, in backlog order, labelled with the
epic code and priority. Stories already exported are skipped. Repo and token
default to the github section of the config (GITHUB_TOKEN also works).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportGitHub(cmd, configPath, projectID, repo, token, dryRun)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().UintVarP(&projectID, "project", "p", 0, "project id (required)")
	cmd.Flags().StringVar(&repo, "repo", "", "target repository as owner/name")
	cmd.Flags().StringVar(&token, "token", "", "GitHub token")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the issues that would be created")
	cmd.MarkFlagRequired("project")
	return cmd
}

func runExportGitHub(cmd *cobra.Command, configPath string, projectID uint, repo, token string, dryRun bool) error {
	out := cmd.OutOrStdout()
	e, err := connectFromConfig(cmd, configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if repo == "" {
		repo = e.cfg.GitHub.Repo
	}
	if token == "" {
		token = e.cfg.GitHub.Token
	}

	ctx := context.Background()
	gh, err := export.NewGitHub(ctx, export.GitHubOpts{
		Token:  token,
		Repo:   repo,
		DryRun: dryRun,
		Logger: e.log,
	})
	if err != nil {
		return err
	}
	res, err := gh.ExportProject(ctx, e.db, projectID)
	if err != nil {
		return err
	}

	for _, is := range res.Exported {
		if dryRun {
			fmt.Fprintf(out, "would create: %s\n", is.Title)
			continue
		}
		fmt.Fprintf(out, "#%d %s\n", is.Number, is.Title)
	}
	verb := "Exported"
	if dryRun {
		verb = "Planned"
	}
	successColor.Fprintf(out, "%s %d issues to %s (%d already exported)\n", verb, len(res.Exported), repo, res.Skipped)
	return nil
}
