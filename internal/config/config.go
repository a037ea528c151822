// Package config provides YAML-based configuration loading for the
// planner, with .env and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file used when none is given.
const DefaultPath = "copilot.yaml"

// Supported database drivers.
const (
	DriverSQLite       = "sqlite"
	DriverSQLitePureGo = "sqlite-purego"
	DriverMySQL        = "mysql"
	DriverPostgres     = "postgres"
)

// Config is the top-level configuration, loaded from copilot.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Notify   NotifyConfig   `yaml:"notify"`
	GitHub   GitHubConfig   `yaml:"github"`
}

// DatabaseConfig selects and addresses the store. URL, when set, takes
// precedence over the discrete fields for mysql and postgres.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"` // sqlite file
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	URL      string `yaml:"url"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
	Mode        string   `yaml:"mode"` // gin mode: release, debug, test
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// NotifyConfig holds chat notification settings. Empty tokens disable the
// corresponding platform.
type NotifyConfig struct {
	Slack          ChannelConfig `yaml:"slack"`
	Discord        ChannelConfig `yaml:"discord"`
	DigestSchedule string        `yaml:"digest_schedule"` // 5-field cron
}

// ChannelConfig addresses one chat channel.
type ChannelConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// Enabled reports whether the platform is configured.
func (c ChannelConfig) Enabled() bool { return c.BotToken != "" }

// GitHubConfig holds issue export settings.
type GitHubConfig struct {
	Token string `yaml:"token"`
	Repo  string `yaml:"repo"` // owner/name
}

// Load reads a YAML config file from path, applies .env and environment
// overrides, and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	loadDotEnv()
	return parse(data, os.LookupEnv)
}

// LoadOrDefault behaves like Load but falls back to defaults plus
// environment overrides when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		data = nil
	} else if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	loadDotEnv()
	return parse(data, os.LookupEnv)
}

// Parse unmarshals YAML bytes into a validated Config without consulting
// the environment.
func Parse(data []byte) (*Config, error) {
	return parse(data, nil)
}

func loadDotEnv() {
	// A missing .env is normal.
	_ = godotenv.Load()
}

func parse(data []byte, lookup func(string) (string, bool)) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	var errs []string
	if lookup != nil {
		errs = cfg.applyEnv(lookup)
	}
	cfg.applyDefaults()
	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return &cfg, nil
}

// applyEnv overlays environment variables and returns any parse problems.
func (c *Config) applyEnv(lookup func(string) (string, bool)) []string {
	var errs []string
	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		c.Database.URL = v
		if c.Database.Driver == "" {
			c.Database.Driver = driverFromURL(v)
		}
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("PORT %q is not a number", v))
		} else {
			c.Server.Port = port
		}
	}
	if v, ok := lookup("SLACK_BOT_TOKEN"); ok && v != "" {
		c.Notify.Slack.BotToken = v
	}
	if v, ok := lookup("DISCORD_BOT_TOKEN"); ok && v != "" {
		c.Notify.Discord.BotToken = v
	}
	if v, ok := lookup("GITHUB_TOKEN"); ok && v != "" {
		c.GitHub.Token = v
	}
	return errs
}

func driverFromURL(u string) string {
	scheme, _, _ := strings.Cut(u, "://")
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return DriverPostgres
	case "mysql":
		return DriverMySQL
	}
	return ""
}

// applyDefaults fills in default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverSQLitePureGo:
		if c.Database.Path == "" {
			c.Database.Path = "copilot.db"
		}
	case DriverMySQL:
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
	case DriverPostgres:
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// validate checks that all fields are present and consistent.
func (c *Config) validate() []string {
	var errs []string
	switch c.Database.Driver {
	case DriverSQLite, DriverSQLitePureGo:
	case DriverMySQL, DriverPostgres:
		if c.Database.URL == "" && c.Database.Name == "" {
			errs = append(errs, fmt.Sprintf("database.name or database.url is required for %s", c.Database.Driver))
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not one of sqlite, sqlite-purego, mysql, postgres", c.Database.Driver))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	switch c.Server.Mode {
	case "release", "debug", "test":
	default:
		errs = append(errs, fmt.Sprintf("server.mode %q is not one of release, debug, test", c.Server.Mode))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Sprintf("log.format %q is not one of text, json", c.Log.Format))
	}
	if c.Notify.Slack.Enabled() && c.Notify.Slack.Channel == "" {
		errs = append(errs, "notify.slack.channel is required when a bot token is set")
	}
	if c.Notify.Discord.Enabled() && c.Notify.Discord.Channel == "" {
		errs = append(errs, "notify.discord.channel is required when a bot token is set")
	}
	if c.Notify.DigestSchedule != "" {
		if _, err := cron.ParseStandard(c.Notify.DigestSchedule); err != nil {
			errs = append(errs, fmt.Sprintf("notify.digest_schedule: %v", err))
		}
	}
	if c.GitHub.Repo != "" {
		owner, name, ok := strings.Cut(c.GitHub.Repo, "/")
		if !ok || owner == "" || name == "" {
			errs = append(errs, fmt.Sprintf("github.repo %q must be owner/name", c.GitHub.Repo))
		}
	}
	return errs
}

// SlogLevel converts the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level %q is not one of debug, info, warn, error", l.Level)
}

// NewLogger builds a slog.Logger writing to w in the configured format.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
