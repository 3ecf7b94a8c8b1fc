package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	gyazoadapter "github.com/ericfisherdev/gyazobot/internal/adapter/driven/gyazo"
	sqliteadapter "github.com/ericfisherdev/gyazobot/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/gyazobot/internal/adapter/driving/discord"
	httphandler "github.com/ericfisherdev/gyazobot/internal/adapter/driving/http"
	"github.com/ericfisherdev/gyazobot/internal/application"
	"github.com/ericfisherdev/gyazobot/internal/config"
)

// shutdownTimeout bounds the ops server drain on exit.
const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		stop()
		os.Exit(1)
	}
}

// run wires the adapters and blocks until ctx is cancelled or a component
// fails.
func run(ctx context.Context, cfg *config.Config) error {
	// 1. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 2. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 3. Wire driven adapters.
	credentials := sqliteadapter.NewCredentialRepo(db)

	gyazoClient, err := gyazoadapter.NewClient(cfg.Gyazo.APIURL, cfg.Gyazo.UploadURL, cfg.HTTPTimeout)
	if err != nil {
		return err
	}
	gyazoClient = gyazoClient.WithPaging(cfg.Gyazo.PerPage, cfg.Gyazo.MaxPages)

	downloader := gyazoadapter.NewDownloader(cfg.HTTPTimeout, cfg.DownloadCacheBytes)

	// 4. Application services.
	imageSvc := application.NewImageService(credentials, gyazoClient, downloader, cfg.Gyazo.ListOrder)

	// 5. Discord driving adapter.
	handler := discord.NewHandler(imageSvc, downloader, slog.Default())
	bot, err := discord.NewBot(cfg.Discord.Token, cfg.Discord.GuildID, handler, slog.Default())
	if err != nil {
		return err
	}

	healthSvc := application.NewHealthService(map[string]application.HealthChecker{
		"database": db,
		"discord":  bot,
	})

	// 6. Run components; the first failure cancels the rest.
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bot.Run(gCtx)
	})

	if cfg.OpsServerEnabled() {
		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           httphandler.NewServeMux(httphandler.NewHandler(healthSvc, slog.Default()), slog.Default()),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}

		g.Go(func() error {
			slog.Info("http server starting", "addr", cfg.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-gCtx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	} else {
		slog.Info("ops http server disabled")
	}

	slog.Info("gyazobot started",
		"listen_addr", cfg.ListenAddr,
		"guild_id", cfg.Discord.GuildID,
		"list_order", cfg.Gyazo.ListOrder,
	)

	err = g.Wait()
	slog.Info("shutdown complete")
	return err
}
