package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/omarshaarawi/golfbot/internal/api/gtl"
	"github.com/omarshaarawi/golfbot/internal/bot"
	"github.com/omarshaarawi/golfbot/internal/config"
	"github.com/omarshaarawi/golfbot/internal/repository/jsonfile"
	"github.com/omarshaarawi/golfbot/internal/repository/memory"
	"github.com/omarshaarawi/golfbot/internal/repository/sqlite"
	"github.com/omarshaarawi/golfbot/internal/scheduler"
	"github.com/omarshaarawi/golfbot/internal/service"
	"github.com/omarshaarawi/golfbot/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Error("Error loading .env file", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	repo := memory.NewRepository()
	leagueService := service.NewLeagueService(store, repo, cfg.Handicap.Options(), cfg.Store.CacheTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := leagueService.Refresh(ctx); err != nil {
		return err
	}

	telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot, leagueService)
	if err != nil {
		return err
	}

	sched, err := scheduler.NewScheduler(cfg.Schedule, leagueService, telegramBot.SendMessage)
	if err != nil {
		return err
	}

	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		err := sched.Stop()
		if err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           web.NewServer(leagueService).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Error starting HTTP server", "error", err)
		}
	}()

	go func() {
		if err := telegramBot.Start(ctx); err != nil {
			slog.Error("Error running telegram bot", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error stopping HTTP server", "error", err)
	}

	return nil
}

// openStore picks the league backend. The returned func releases it.
func openStore(cfg config.Store) (service.Store, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.BackendFile:
		slog.Info("Using JSON file store", "dir", cfg.DataDir)
		return jsonfile.NewStore(cfg.DataDir), noop, nil
	case config.BackendSQLite:
		slog.Info("Using SQLite store", "path", cfg.DatabasePath)
		db, err := sqlite.Open(cfg.DatabasePath)
		if err != nil {
			return nil, noop, err
		}
		return db, func() {
			if err := db.Close(); err != nil {
				slog.Error("Error closing database", "error", err)
			}
		}, nil
	case config.BackendRemote:
		slog.Info("Using read-only remote store", "url", cfg.RemoteURL)
		return gtl.NewAPI(gtl.NewClient(cfg.RemoteURL)), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
