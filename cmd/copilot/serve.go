package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/digit2ai/CRM-Co-Pilot/internal/db"
	"github.com/digit2ai/CRM-Co-Pilot/internal/notify"
	"github.com/digit2ai/CRM-Co-Pilot/internal/web"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		noSeed     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI and JSON API",
		Long: `Migrates the schema, seeds default templates, and serves the planner's
HTML pages and JSON API. When notify.digest_schedule is set, the portfolio
digest is posted to the configured chat channels on that schedule.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port, !noSeed)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "skip seeding default templates on startup")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int, seed bool) error {
	e, err := connectFromConfig(cmd, configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if err := db.AutoMigrate(e.db); err != nil {
		return err
	}
	svc := e.service()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if seed {
		if _, err := svc.Seed(ctx); err != nil {
			return err
		}
	}

	if schedule := e.cfg.Notify.DigestSchedule; schedule != "" {
		n := buildNotifier(e.cfg.Notify, e.log)
		done, err := notify.ScheduleDigest(ctx, e.db, n, schedule, e.log)
		if err != nil {
			return err
		}
		defer func() { <-done }()
	}

	if port <= 0 {
		port = e.cfg.Server.Port
	}
	err = web.Start(ctx, web.StartOpts{
		DB:          e.db,
		Service:     svc,
		Port:        port,
		CORSOrigins: e.cfg.Server.CORSOrigins,
		Mode:        e.cfg.Server.Mode,
		Logger:      e.log,
		Out:         cmd.OutOrStdout(),
	})
	cancel()
	return err
}
