// main.go
//
// Entry point for the spelling quiz web server.
// Responsibilities:
//   - Load configuration (.env + environment) and set up logging.
//   - Build the image catalog (IMAGE_DIR or the embedded demo set).
//   - Pick the session store (memory or SQLite) and wire the quiz service.
//   - Serve HTTP until SIGINT/SIGTERM, pruning idle sessions meanwhile.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/spellquiz/assets"
	"github.com/robalobadob/spellquiz/internal/config"
	"github.com/robalobadob/spellquiz/internal/database"
	"github.com/robalobadob/spellquiz/internal/httpserver"
	"github.com/robalobadob/spellquiz/internal/logging"
	"github.com/robalobadob/spellquiz/internal/quiz"
	"github.com/robalobadob/spellquiz/internal/round"
	"github.com/robalobadob/spellquiz/internal/session"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := logging.Setup(stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	if cfg.DevSecret() {
		logger.Warn().Msg("SESSION_SECRET is the development default; set it in production")
	}

	cat, err := assets.LoadCatalog(cfg.ImageDir)
	if err != nil {
		return fmt.Errorf("loading images from %q: %w", cfg.ImageDir, err)
	}
	logger.Info().Str("dir", cfg.ImageDir).Int("images", cat.Len()).Msg("catalog loaded")

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := quiz.New(cat, round.NewSelector(nil), store)
	if err != nil {
		return err
	}
	srv, err := httpserver.New(svc, httpserver.Options{
		Addr:           cfg.Addr(),
		SessionSecret:  cfg.SessionSecret,
		CookieName:     cfg.CookieName,
		CookieSecure:   cfg.CookieSecure,
		SessionTTL:     cfg.SessionTTL,
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigin:     cfg.CORSOrigin,
		Logger:         &logger,
	})
	if err != nil {
		return fmt.Errorf("building http server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", cfg.Addr()).Msg("starting http server")
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	g.Go(func() error {
		pruneSessions(gctx, store, cfg.SessionTTL, logger)
		return nil
	})

	return g.Wait()
}

// openStore returns the configured session store and a func releasing it.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (session.Store, func(), error) {
	if cfg.SessionStore != "sqlite" {
		return session.NewMemoryStore(), func() {}, nil
	}
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to sqlite: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	logger.Info().Str("path", cfg.DBPath).Msg("connected to sqlite")
	return session.NewSQLStore(db), closer(db, logger), nil
}

func closer(db *sql.DB, logger zerolog.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("closing sqlite")
		}
	}
}

// pruneSessions drops sessions idle longer than ttl, once per ttl/24
// (at least every minute), until ctx is done.
func pruneSessions(ctx context.Context, store session.Store, ttl time.Duration, logger zerolog.Logger) {
	every := ttl / 24
	if every < time.Minute {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := store.Prune(ctx, now.Add(-ttl))
			if err != nil {
				logger.Error().Err(err).Msg("pruning sessions")
				continue
			}
			if n > 0 {
				logger.Info().Int64("sessions", n).Msg("pruned idle sessions")
			}
		}
	}
}
