// Package main implements the entry point for the danki scheduling
// server: it loads configuration, opens the storage backend, runs
// migrations when asked, wires the engine, and serves the HTTP API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pressly/goose/v3"

	"github.com/danki/engine/internal/config"
	"github.com/danki/engine/internal/domain/srs"
	"github.com/danki/engine/internal/engine"
	"github.com/danki/engine/internal/events"
	"github.com/danki/engine/internal/platform/logger"
	"github.com/danki/engine/internal/platform/postgres"
	"github.com/danki/engine/internal/platform/sqlite"
	"github.com/danki/engine/internal/session"
	"github.com/danki/engine/internal/store"
	"github.com/danki/engine/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	migrate := flag.Bool("migrate", false, "run pending migrations before serving")
	flag.Parse()

	if err := run(*configPath, *migrate); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func run(configPath string, migrate bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("set up logger: %w", err)
	}

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if (migrate || cfg.Database.Migrate) && cfg.Database.Driver == "postgres" {
		if err := runMigrations(db, appLogger); err != nil {
			return err
		}
	}

	eng, err := buildEngine(db, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      newRouter(eng, appLogger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("server listening",
			slog.Int("port", cfg.Server.Port),
			slog.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-stop:
		appLogger.Info("shutting down", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := sql.Open("pgx", cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres database: %w", err)
		}
		return db, nil
	case "sqlite":
		return sqlite.Open(ctx, cfg.Database.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func runMigrations(db *sql.DB, appLogger *slog.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(&slogGooseLogger{logger: appLogger})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func buildEngine(db *sql.DB, cfg *config.Config, appLogger *slog.Logger) (*engine.Engine, error) {
	var (
		decks  store.DeckStore
		notes  store.NoteStore
		cards  store.CardStore
		ledger store.ReviewLogStore
	)
	if cfg.Database.Driver == "postgres" {
		decks = postgres.NewDeckStore(db, appLogger)
		notes = postgres.NewNoteStore(db, appLogger)
		cards = postgres.NewCardStore(db, appLogger)
		ledger = postgres.NewReviewLogStore(db, appLogger)
	} else {
		decks = sqlite.NewDeckStore(db, appLogger)
		notes = sqlite.NewNoteStore(db, appLogger)
		cards = sqlite.NewCardStore(db, appLogger)
		ledger = sqlite.NewReviewLogStore(db, appLogger)
	}

	params := srs.DefaultParams()
	if cfg.Scheduler.HardIntervalPolicy == "fixed" {
		params.HardPolicy = srs.HardIntervalFixed
	}
	if cfg.Scheduler.LeechThreshold != 0 {
		params.LeechThreshold = cfg.Scheduler.LeechThreshold
	}

	sessionCfg := session.Config{
		MaxJitter:     time.Duration(cfg.Session.MaxJitterMinutes) * time.Minute,
		DisableJitter: cfg.Session.DisableJitter,
	}

	emitter := events.NewInMemoryEventEmitter(appLogger)
	emitter.RegisterHandler(&leechLogger{logger: appLogger})

	return engine.New(engine.Config{
		DB:        db,
		Decks:     decks,
		Notes:     notes,
		Cards:     cards,
		ReviewLog: ledger,
		Scheduler: srs.NewService(params),
		Emitter:   emitter,
		Session:   sessionCfg,
		Logger:    appLogger,
	})
}

// leechLogger records leech events. Until a dedicated consumer exists,
// surfacing them in the log is the delivery mechanism.
type leechLogger struct {
	logger *slog.Logger
}

func (l *leechLogger) HandleEvent(_ context.Context, event *events.Event) error {
	if event.Type != events.EventTypeCardLeeched {
		return nil
	}
	var payload events.LeechPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return err
	}
	l.logger.Warn("card flagged as leech",
		slog.String("card_id", payload.CardID.String()),
		slog.String("deck_id", payload.DeckID.String()),
		slog.Int("lapses", payload.Lapses))
	return nil
}

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}

func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}
