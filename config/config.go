// Package config defines the service configuration and how it is loaded.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"fight-records/api/shared"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Sentinel errors so callers can errors.Is on them.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

const (
	envPrefix  = "FIGHTREC_"
	envFileVar = "FIGHTREC_CONFIG"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	MongoURI string `koanf:"mongo_uri"`
	MongoDB  string `koanf:"mongo_db"`

	// DefaultBody and DefaultYear are used when a trigger omits them. A zero year means the current year.
	DefaultBody string `koanf:"default_body"`
	DefaultYear int    `koanf:"default_year"`

	// Disciplines maps a sanctioning body to the discipline its bouts count towards when neither the entry nor
	// the event names one.
	Disciplines map[string]string `koanf:"disciplines"`

	// WriteConcurrency bounds the number of fighter records written at once.
	WriteConcurrency int `koanf:"write_concurrency"`

	// WritesPerSecond paces record writes. 0 disables pacing.
	WritesPerSecond float64 `koanf:"writes_per_second"`

	FeedUserAgent         string  `koanf:"feed_user_agent"`
	FeedRequestsPerSecond float64 `koanf:"feed_requests_per_second"`

	BotEnabled      bool   `koanf:"bot_enabled"`
	DiscordToken    string `koanf:"discord_token"`
	DiscordAdminIDs string `koanf:"discord_admin_ids"`

	ResendAPIKey string `koanf:"resend_api_key"`
	NotifyFrom   string `koanf:"notify_from"`
	NotifyTo     string `koanf:"notify_to"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":8080",
		MongoDB:               "fight_records",
		DefaultBody:           "AAU",
		Disciplines:           map[string]string{},
		WriteConcurrency:      8,
		WritesPerSecond:       200,
		FeedUserAgent:         "FightRecordsFetcher/1.0",
		FeedRequestsPerSecond: 2,
	}
}

// Load builds a Config by layering, from lowest to highest precedence:
//  1. defaults (New)
//  2. a .env file in the working directory, if present
//  3. a YAML file if FIGHTREC_CONFIG is set
//  4. env vars with the FIGHTREC_ prefix
func Load(_ context.Context) (*Config, error) {
	base := New()

	// .env is optional; a missing file leaves the environment untouched.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %w", ErrLoadConfig, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// FIGHTREC_MONGO_URI -> mongo_uri. Underscores are kept to match the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields the service cannot start without.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MongoDB == "" {
		return fmt.Errorf("%w: mongo_db must not be empty", ErrInvalidConfig)
	}
	if c.WriteConcurrency < 1 {
		return fmt.Errorf("%w: write_concurrency must be at least 1", ErrInvalidConfig)
	}
	if c.WritesPerSecond < 0 {
		return fmt.Errorf("%w: writes_per_second must not be negative", ErrInvalidConfig)
	}
	for body, d := range c.Disciplines {
		if _, ok := shared.ParseDiscipline(d); !ok {
			return fmt.Errorf("%w: unknown discipline %q for %s", ErrInvalidConfig, d, body)
		}
	}
	if c.BotEnabled && c.DiscordToken == "" {
		return fmt.Errorf("%w: discord_token is required when the bot is enabled", ErrInvalidConfig)
	}
	return nil
}

// DisciplineDefaults returns the per-body discipline map with bodies upper-cased.
func (c *Config) DisciplineDefaults() map[string]shared.Discipline {
	out := make(map[string]shared.Discipline, len(c.Disciplines))
	for body, d := range c.Disciplines {
		if parsed, ok := shared.ParseDiscipline(d); ok {
			out[strings.ToUpper(strings.TrimSpace(body))] = parsed
		}
	}
	return out
}

// AdminIDs splits the comma separated Discord admin user ids.
func (c *Config) AdminIDs() []string {
	var ids []string
	for _, id := range strings.Split(c.DiscordAdminIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// NotifyRecipients splits the comma separated notification addresses.
func (c *Config) NotifyRecipients() []string {
	var to []string
	for _, addr := range strings.Split(c.NotifyTo, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	return to
}

// Year returns DefaultYear, or the current year when it is unset.
func (c *Config) Year() int {
	if c.DefaultYear > 0 {
		return c.DefaultYear
	}
	return time.Now().Year()
}
