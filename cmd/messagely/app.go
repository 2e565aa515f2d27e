package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/goliatone/go-messagely"
	"github.com/goliatone/go-messagely/activitymap"
	"github.com/goliatone/go-messagely/config"
	"github.com/goliatone/go-messagely/migrations"
	"github.com/goliatone/go-messagely/repository"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
)

type application struct {
	cfg    *config.Config
	logger *messagely.SlogLogger
	db     *bun.DB
	auther *messagely.Auther
	srv    router.Server[*fiber.App]
}

func newApplication(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*application, error) {
	log := messagely.NewSlogLogger(slogger)

	db, err := repository.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := migrations.Up(ctx, db.DB, cfg.DBDriver, gooseLogger{log.With("component", "migrations")}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	client, err := repository.NewClient(cfg, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	repo := repository.NewRepositoryManager(client.DB(), repository.WithPasswordCost(cfg.BcryptCost))
	repo.MustValidate()

	tokens := messagely.NewTokenServiceFromConfig(cfg, log.With("component", "tokens"))
	activity := activitymap.NewLoggerSink(log.With("component", "activity"))

	opts := []messagely.AutherOption{
		messagely.WithLogger(log.With("component", "auth")),
		messagely.WithActivitySink(activity),
	}
	if cfg.LoginTouch == "async" {
		opts = append(opts, messagely.WithAsyncLoginTracking(0))
	}
	auther := messagely.NewAuthenticator(repo.Directory(), tokens, opts...)

	srv := messagely.NewServer(log.With("component", "http"), logger.New())
	r := srv.Router()
	r.Use(messagely.IdentityMiddleware(cfg, tokens))

	messagely.RegisterRoutes(r,
		messagely.WithControllerLogger(log.With("component", "controller")),
		messagely.WithControllerAuther(auther),
		messagely.WithControllerDirectory(repo.Directory()),
		messagely.WithControllerMessages(repo.MessageStore()),
		messagely.WithControllerActivitySink(activity),
		messagely.WithControllerContextKey(cfg.GetContextKey()),
	)

	return &application{
		cfg:    cfg,
		logger: log,
		db:     db,
		auther: auther,
		srv:    srv,
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", a.cfg.Addr)
		errCh <- a.srv.Serve(a.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	err := a.srv.Shutdown(shutdownCtx)
	a.close()
	return err
}

func (a *application) close() {
	a.auther.Wait()
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", "error", err)
	}
}

func newSlogLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// gooseLogger routes goose output through the service logger
type gooseLogger struct {
	log messagely.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}
