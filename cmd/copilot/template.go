package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/digit2ai/CRM-Co-Pilot/internal/planner"
	"github.com/digit2ai/CRM-Co-Pilot/internal/templates"
	"github.com/spf13/cobra"
)

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Project template commands",
	}

	cmd.AddCommand(newTemplateListCmd())
	cmd.AddCommand(newTemplateShowCmd())
	cmd.AddCommand(newTemplateSaveCmd())
	cmd.AddCommand(newTemplateUseCmd())
	cmd.AddCommand(newTemplateDeleteCmd())
	return cmd
}

func newTemplateListCmd() *cobra.Command {
	var (
		configPath string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates, most used first",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			e, err := connectFromConfig(cmd, configPath)
			if err != nil {
				return err
			}
			defer e.close()

			list, err := templates.List(e.db, templates.ListFilters{PublicOnly: !all})
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "No templates found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tUSED\tPUBLIC\tBY")
			for _, t := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%t\t%s\n",
					t.ID, truncate(t.Name, 40), t.ProjectType, t.UsageCount, t.IsPublic, t.CreatedBy)
			}
			return w.Flush()
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include private templates")
	return cmd
}

func newTemplateShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a template and its sprint plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			e, err := connectFromConfig(cmd, configPath)
			if err != nil {
				return err
			}
			defer e.close()

			tpl, err := templates.Get(e.db, id)
			if err != nil {
				return err
			}
			tree, err := templates.Tree(tpl)
			if err != nil {
				return err
			}
			c := tree.Counts()
			headerColor.Fprintf(out, "%s\n", tpl.Name)
			fmt.Fprintf(out, "Type:   %s\n", tpl.ProjectType)
			fmt.Fprintf(out, "Public: %t\n", tpl.IsPublic)
			fmt.Fprintf(out, "Used:   %d times\n", tpl.UsageCount)
			fmt.Fprintf(out, "Size:   %d sprints, %d epics, %d stories, %d points\n", c.Sprints, c.Epics, c.Stories, c.TotalPoints)
			if tpl.Description != "" {
				fmt.Fprintf(out, "\n%s\n", tpl.Description)
			}
			fmt.Fprintln(out)
			for _, s := range tree.Sprints {
				infoColor.Fprintf(out, "%s", s.Name)
				fmt.Fprintf(out, "  [%s, %d points]\n", s.Duration, s.Points())
				for _, ep := range s.Epics {
					fmt.Fprintf(out, "  %s %s (%d stories)\n", ep.Code, ep.Name, len(ep.Stories))
				}
			}
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newTemplateSaveCmd() *cobra.Command {
	var (
		configPath string
		opts       planner.SaveOpts
	)

	cmd := &cobra.Command{
		Use:   "save <project-id>",
		Short: "Save a project's structure as a template",
		Long: `Serializes the project's sprints, epics and stories into a new template.
Name defaults to "<project> Template".`,
		Args: cobra.ExactArgs(1),
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

			tpl, err := e.service().SaveAsTemplate(context.Background(), id, opts)
			if err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "Saved template %q (id %d)\n", tpl.Name, tpl.ID)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "template name")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "template description")
	cmd.Flags().BoolVar(&opts.Private, "private", false, "hide the template from public listings")
	cmd.Flags().StringVar(&opts.CreatedBy, "by", "", "template author")
	return cmd
}

func newTemplateUseCmd() *cobra.Command {
	var (
		configPath  string
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "use <template-id>",
		Short: "Create a project from a template",
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

			res, err := e.service().InstantiateFromTemplate(context.Background(), id, name, description)
			if err != nil {
				return err
			}
			printCreated(cmd.OutOrStdout(), res)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&name, "name", "n", "", "project name (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "project description (defaults to the template's)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newTemplateDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a template",
		Long:  "Deletes a template. Projects created from it are kept and lose their template reference.",
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

			if err := templates.Delete(e.db, id); err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "Deleted template %d\n", id)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}
