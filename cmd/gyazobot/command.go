package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/ericfisherdev/gyazobot/internal/config"
)

// configFlag names the file flag; it selects a source rather than a key.
const (
	configFlag      = "config"
	configFlagAlias = "c"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "gyazobot",
		Usage: "Discord bot for browsing and uploading Gyazo images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{configFlagAlias},
				Usage:   "path to TOML config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
			},
			&cli.StringFlag{
				Name:  "listen-addr",
				Usage: "ops HTTP address, empty to disable (default " + config.DefaultListenAddr + ")",
			},
			&cli.StringFlag{
				Name:  "db-path",
				Usage: "SQLite database path (default " + config.DefaultDBPath + ")",
			},
		},
		Action: startAction,
	}
}

func startAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String(configFlag), os.Environ, flagOverrides(cmd))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat))
	slog.Info("config loaded", "config", cfg)

	return run(ctx, cfg)
}

// flagOverrides maps explicitly set flags to config keys
// (e.g. --listen-addr -> listen_addr). Unset flags are skipped so they do
// not shadow file or environment values.
func flagOverrides(cmd *cli.Command) map[string]any {
	values := make(map[string]any)

	for _, name := range cmd.FlagNames() {
		// FlagNames lists aliases too.
		if name == configFlag || name == configFlagAlias || !cmd.IsSet(name) {
			continue
		}

		if value := cmd.Value(name); value != nil {
			key := strings.ReplaceAll(name, "--", ".")
			key = strings.ReplaceAll(key, "-", "_")
			values[key] = value
		}
	}

	return values
}

func newLogger(w io.Writer, level slog.Level, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
