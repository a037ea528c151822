package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/digit2ai/CRM-Co-Pilot/internal/notify"
	"github.com/spf13/cobra"
)

func newDigestCmd() *cobra.Command {
	var (
		configPath string
		send       bool
	)

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Print or post the active-project digest",
		Long: `Summarises every active project: sprints, stories, completion and points.
With --send, the digest is posted to the configured Slack and Discord channels
instead of printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd, configPath, send)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&send, "send", false, "post to the configured chat channels")
	return cmd
}

func runDigest(cmd *cobra.Command, configPath string, send bool) error {
	out := cmd.OutOrStdout()
	e, err := connectFromConfig(cmd, configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if send {
		if !e.cfg.Notify.Slack.Enabled() && !e.cfg.Notify.Discord.Enabled() {
			return errors.New("no chat channel configured: set notify.slack or notify.discord")
		}
		sent, err := notify.SendDigest(context.Background(), e.db, buildNotifier(e.cfg.Notify, e.log))
		if err != nil {
			return err
		}
		if !sent {
			fmt.Fprintln(out, "No active projects; nothing sent.")
			return nil
		}
		successColor.Fprintln(out, "Digest sent.")
		return nil
	}

	d, err := notify.BuildDigest(e.db, time.Now())
	if err != nil {
		return err
	}
	if d == nil {
		fmt.Fprintln(out, "No active projects.")
		return nil
	}
	fmt.Fprintln(out, notify.PlainText(notify.FormatDigest(d)))
	return nil
}
