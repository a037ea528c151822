package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/digit2ai/CRM-Co-Pilot/internal/importer"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var (
		configPath string
		projectID  uint
	)

	cmd := &cobra.Command{
		Use:   "import <glob>...",
		Short: "Import stories from issue-tracker CSV exports",
		Long: `Imports CSV files with the columns Issue Type, Summary, Description,
Priority and Labels into an existing project. Patterns support ** globs.
Epics come from a "[Epic]" summary prefix or "EPIC: Name." in the
description, sprints from "sprintN" labels. Stories already present under
the same epic are skipped, so re-running an import is safe. Each file is
imported in its own transaction.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, configPath, projectID, args)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().UintVarP(&projectID, "project", "p", 0, "target project id (required)")
	cmd.MarkFlagRequired("project")
	return cmd
}

// expandGlobs resolves every pattern, keeping order and dropping duplicates.
// A pattern that matches nothing is an error.
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

func runImport(cmd *cobra.Command, configPath string, projectID uint, patterns []string) error {
	out := cmd.OutOrStdout()
	files, err := expandGlobs(patterns)
	if err != nil {
		return err
	}

	e, err := connectFromConfig(cmd, configPath)
	if err != nil {
		return err
	}
	defer e.close()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tROWS\tCREATED\tSKIPPED\tSPRINTS")
	var created int
	for _, f := range files {
		rows, err := importer.ReadFile(f)
		if err != nil {
			w.Flush()
			return err
		}
		res, err := importer.Import(e.db, projectID, rows)
		if err != nil {
			w.Flush()
			return fmt.Errorf("import %s: %w", f, err)
		}
		created += res.Created
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", f, res.Rows, res.Created, res.Skipped, res.Sprints)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	successColor.Fprintf(out, "Imported %d stories from %d files\n", created, len(files))
	return nil
}
