// Package config loads application configuration from a TOML file,
// GYAZOBOT_ environment variables and command-line overrides.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ericfisherdev/gyazobot/internal/domain/model"
)

// EnvPrefix is stripped from environment variables during loading
// (e.g. GYAZOBOT_DISCORD__TOKEN -> discord.token).
const EnvPrefix = "GYAZOBOT_"

// LogFormat is the log output encoding.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Default configuration values.
const (
	DefaultDBPath             = "gyazo_tokens.db"
	DefaultGyazoAPIURL        = "https://api.gyazo.com"
	DefaultGyazoUploadURL     = "https://upload.gyazo.com"
	DefaultGyazoPerPage       = 100
	DefaultGyazoListOrder     = model.ListOrderOldestFirst
	DefaultDownloadCacheBytes = 64 << 20
	DefaultListenAddr         = "127.0.0.1:8080"
	DefaultLogFormat          = LogFormatText
)

// DiscordConfig holds the chat gateway settings.
type DiscordConfig struct {
	Token string `json:"token" validate:"required"`
	// GuildID limits command registration to one guild when set.
	GuildID string `json:"guild_id" validate:"omitempty,numeric"`
}

// GyazoConfig holds the image host endpoints and listing behavior.
type GyazoConfig struct {
	APIURL    string          `json:"api_url" validate:"required,url"`
	UploadURL string          `json:"upload_url" validate:"required,url"`
	PerPage   int             `json:"per_page" validate:"min=1,max=100"`
	MaxPages  int             `json:"max_pages" validate:"gte=0"` // 0 means unbounded
	ListOrder model.ListOrder `json:"list_order" validate:"oneof=oldest_first newest_first"`
}

// Config holds the application configuration.
type Config struct {
	Discord DiscordConfig `json:"discord"`
	Gyazo   GyazoConfig   `json:"gyazo"`

	DBPath             string        `json:"db_path" validate:"required"`
	HTTPTimeout        time.Duration `json:"http_timeout" validate:"gte=0"`
	DownloadCacheBytes int64         `json:"download_cache_bytes" validate:"gte=0"`
	// ListenAddr is the ops HTTP address; empty disables the server.
	ListenAddr string `json:"listen_addr" validate:"omitempty,hostname_port"`

	LogLevel  slog.Level `json:"log_level"`
	LogFormat LogFormat  `json:"log_format" validate:"oneof=text json"`
}

// defaults returns the lowest-precedence layer. Loading it first lets any
// later source, including an explicitly empty variable, override a value.
func defaults() map[string]any {
	return map[string]any{
		"db_path":              DefaultDBPath,
		"gyazo.api_url":        DefaultGyazoAPIURL,
		"gyazo.upload_url":     DefaultGyazoUploadURL,
		"gyazo.per_page":       DefaultGyazoPerPage,
		"gyazo.max_pages":      0,
		"gyazo.list_order":     string(DefaultGyazoListOrder),
		"http_timeout":         "0s",
		"download_cache_bytes": DefaultDownloadCacheBytes,
		"listen_addr":          DefaultListenAddr,
		"log_level":            slog.LevelInfo.String(),
		"log_format":           string(DefaultLogFormat),
	}
}

// Load builds a Config with precedence, lowest first:
// defaults -> config file -> environment variables -> overrides.
// path may be empty to skip the file. environ supplies the environment
// (os.Environ in production). overrides uses dotted keys such as
// "listen_addr" and typically carries explicitly set CLI flags.
func Load(path string, environ func() []string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			stripped := strings.TrimPrefix(key, EnvPrefix)
			nested := strings.ToLower(strings.ReplaceAll(stripped, "__", "."))
			return nested, value
		},
		EnvironFunc: environ,
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("loading overrides: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration using struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// OpsServerEnabled reports whether the ops HTTP server should run.
func (c *Config) OpsServerEnabled() bool {
	return c.ListenAddr != ""
}

// LogValue implements slog.LogValuer so the bot token never reaches logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("db_path", c.DBPath),
		slog.String("discord.guild_id", c.Discord.GuildID),
		slog.Bool("discord.token_set", c.Discord.Token != ""),
		slog.String("gyazo.api_url", c.Gyazo.APIURL),
		slog.String("gyazo.upload_url", c.Gyazo.UploadURL),
		slog.Int("gyazo.per_page", c.Gyazo.PerPage),
		slog.Int("gyazo.max_pages", c.Gyazo.MaxPages),
		slog.String("gyazo.list_order", string(c.Gyazo.ListOrder)),
		slog.Duration("http_timeout", c.HTTPTimeout),
		slog.Int64("download_cache_bytes", c.DownloadCacheBytes),
		slog.String("listen_addr", c.ListenAddr),
		slog.String("log_level", c.LogLevel.String()),
		slog.String("log_format", string(c.LogFormat)),
	)
}
