package main

import (
	"context"
	"fmt"

	"github.com/digit2ai/CRM-Co-Pilot/internal/config"
	"github.com/digit2ai/CRM-Co-Pilot/internal/db"
	"github.com/spf13/cobra"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBResetCmd())
	cmd.AddCommand(newDBSeedCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the planner database",
		Long:  "Creates the database when the driver supports it, migrates all tables and seeds the default templates and sample project.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Driver == config.DriverMySQL {
		adminDB, err := db.ConnectAdmin(cfg.Database)
		if err != nil {
			return err
		}
		if err := db.CreateDatabase(adminDB, cfg.Database.Name); err != nil {
			db.Close(adminDB)
			return err
		}
		db.Close(adminDB)
		fmt.Fprintf(out, "Database %s ready\n", cfg.Database.Name)
	}

	e, err := connectFromConfig(cmd, configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if err := db.AutoMigrate(e.db); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if err := runSeed(cmd, e); err != nil {
		return err
	}
	successColor.Fprintln(out, "\nDatabase initialized successfully.")
	return nil
}

func newDBResetCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop all tables and re-initialize the database",
		Long: `Drops every planner table, migrates a fresh schema and seeds the
default templates and sample project. All projects and templates are lost.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd, configPath, yes)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func runDBReset(cmd *cobra.Command, configPath string, skipConfirm bool) error {
	out := cmd.OutOrStdout()

	e, err := connectFromConfig(cmd, configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if !skipConfirm && !confirmReset(cmd, e.cfg.Database) {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	if err := db.Reset(e.db); err != nil {
		return err
	}
	fmt.Fprintf(out, "Dropped and migrated %d tables\n", len(db.AllModels()))

	if err := runSeed(cmd, e); err != nil {
		return err
	}
	successColor.Fprintln(out, "\nDatabase reset successfully.")
	return nil
}

func newDBSeedCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed default templates and the sample project",
		Long:  "Inserts the default public templates that are missing and, when the database holds no projects, generates the sample project.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connectFromConfig(cmd, configPath)
			if err != nil {
				return err
			}
			defer e.close()
			return runSeed(cmd, e)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runSeed(cmd *cobra.Command, e *env) error {
	out := cmd.OutOrStdout()
	res, err := e.service().Seed(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d templates\n", res.Templates)
	if res.SampleProject != nil {
		fmt.Fprintf(out, "Created sample project %q (id %d)\n", res.SampleProject.Name, res.SampleProject.ID)
	}
	return nil
}

func confirmReset(cmd *cobra.Command, cfg config.DatabaseConfig) bool {
	target := cfg.Name
	if cfg.Driver == config.DriverSQLite || cfg.Driver == config.DriverSQLitePureGo {
		target = cfg.Path
	}
	return confirm(cmd, fmt.Sprintf("This will permanently delete all data in %s database %q.", cfg.Driver, target))
}
