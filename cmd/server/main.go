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

	"github.com/Clark-Hu/movieweb/internal/config"
	httpserver "github.com/Clark-Hu/movieweb/internal/http"
	"github.com/Clark-Hu/movieweb/internal/logger"
	"github.com/Clark-Hu/movieweb/internal/metrics"
	"github.com/Clark-Hu/movieweb/internal/omdb"
	"github.com/Clark-Hu/movieweb/internal/repository"
	"github.com/Clark-Hu/movieweb/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("movieweb exited", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 log,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(dbCtx); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	var metadata omdb.Client = omdb.DisabledClient{}
	if cfg.MetadataEnabled() {
		client, err := omdb.NewHTTPClient(cfg.OMDbURL, cfg.OMDbAPIKey, time.Duration(cfg.OMDbTimeoutSecs)*time.Second, log)
		if err != nil {
			return fmt.Errorf("init omdb client: %w", err)
		}
		metadata = client
	} else {
		log.Warn("OMDB_API_KEY not set; movie metadata lookups are disabled")
	}

	repo := repository.New(st, log)
	server, err := httpserver.New(cfg, st, repo, metadata, metrics.New(), log)
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	var serveErr error
	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("graceful shutdown error", "err", err)
	}
	return serveErr
}
