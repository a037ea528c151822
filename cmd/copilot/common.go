package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/digit2ai/CRM-Co-Pilot/internal/config"
	"github.com/digit2ai/CRM-Co-Pilot/internal/db"
	"github.com/digit2ai/CRM-Co-Pilot/internal/notify"
	"github.com/digit2ai/CRM-Co-Pilot/internal/notify/discord"
	"github.com/digit2ai/CRM-Co-Pilot/internal/notify/slack"
	"github.com/digit2ai/CRM-Co-Pilot/internal/planner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gorm.io/gorm"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgMagenta, color.Bold)
)

// addConfigFlag registers the --config/-c flag shared by every command that
// touches the store.
func addConfigFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVarP(path, "config", "c", config.DefaultPath, "path to copilot config file")
}

// env bundles what a command needs after loading config.
type env struct {
	cfg *config.Config
	db  *gorm.DB
	log *slog.Logger
}

// close releases the database connection.
func (e *env) close() {
	db.Close(e.db)
}

// service builds the planner with notifications from config.
func (e *env) service() *planner.Service {
	return planner.New(e.db, nil,
		planner.WithLogger(e.log),
		planner.WithNotifier(buildNotifier(e.cfg.Notify, e.log)),
	)
}

// connectFromConfig loads config (a missing file means defaults), sets the
// default logger and opens the database. Logs go to stderr.
func connectFromConfig(cmd *cobra.Command, configPath string) (*env, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := cfg.Log.NewLogger(cmd.ErrOrStderr())
	slog.SetDefault(log)

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to %s database: %w", cfg.Database.Driver, err)
	}
	setColor(cmd.OutOrStdout())
	return &env{cfg: cfg, db: gormDB, log: log}, nil
}

// buildNotifier combines the configured chat adapters. A misconfigured
// adapter is logged and skipped.
func buildNotifier(cfg config.NotifyConfig, log *slog.Logger) notify.Notifier {
	var ns []notify.Notifier
	if cfg.Slack.Enabled() {
		n, err := slack.New(slack.Opts{BotToken: cfg.Slack.BotToken, ChannelID: cfg.Slack.Channel})
		if err != nil {
			log.Warn("slack notifier disabled", "error", err)
		} else {
			ns = append(ns, n)
		}
	}
	if cfg.Discord.Enabled() {
		n, err := discord.New(discord.Opts{BotToken: cfg.Discord.BotToken, ChannelID: cfg.Discord.Channel})
		if err != nil {
			log.Warn("discord notifier disabled", "error", err)
		} else {
			ns = append(ns, n)
		}
	}
	return notify.Combine(ns...)
}

// setColor disables colour unless out is a terminal.
func setColor(out io.Writer) {
	f, ok := out.(*os.File)
	color.NoColor = !ok || !term.IsTerminal(int(f.Fd()))
}

// parseID parses a positional id argument.
func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return uint(id), nil
}

// confirm prints a warning and asks the user to type "yes".
func confirm(cmd *cobra.Command, warning string) bool {
	out := cmd.OutOrStdout()
	errorColor.Fprintf(out, "WARNING: %s\n", warning)
	fmt.Fprintln(out, "This action cannot be undone.")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Type \"yes\" to confirm: ")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()) == "yes"
	}
	return false
}
