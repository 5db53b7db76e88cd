package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-accounts/activitymap"
	"github.com/goliatone/go-accounts/httpapi"
	"github.com/goliatone/go-accounts/mailer"
	"github.com/goliatone/go-accounts/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config   *accounts.EnvConfig
	logger   *slog.Logger
	db       *bun.DB
	registry *prometheus.Registry
	auther   *accounts.Auther
	server   *fiber.App
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := accounts.LoadConfig(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	app := &App{
		config:   cfg,
		logger:   newLogger(cfg),
		registry: prometheus.NewRegistry(),
	}

	for _, setup := range []func(context.Context, *App) error{
		WithPersistence,
		WithAuthenticator,
		WithHTTPServer,
	} {
		if err := setup(ctx, app); err != nil {
			app.logger.Error("startup failed", "error", err)
			os.Exit(1)
		}
	}

	if err := app.Run(ctx); err != nil {
		app.logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *accounts.EnvConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler).With("service", cfg.ServiceName)
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := openDB(app.config.DatabaseURL)
	if err != nil {
		return err
	}

	if err := accounts.EnsureSchema(ctx, db); err != nil {
		return err
	}

	app.db = db
	return nil
}

func openDB(dsn string) (*bun.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		pgCfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		return bun.NewDB(stdlib.OpenDB(*pgCfg), pgdialect.New()), nil
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqldb.SetMaxOpenConns(1)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func WithAuthenticator(_ context.Context, app *App) error {
	logger := accounts.NewSlogLogger(app.logger)

	sink, err := metrics.NewActivitySink(app.registry)
	if err != nil {
		return err
	}

	mail := app.config.Mail
	sender := mailer.NewSender(mailer.Config{
		ServiceName:      app.config.ServiceName,
		From:             mail.From,
		ActivationURL:    mail.ActivationURL,
		PasswordResetURL: mail.PasswordResetURL,
		SandboxMode:      mail.SandboxMode,
		Host:             mail.SMTPHost,
		Port:             mail.SMTPPort,
		Username:         mail.SMTPUsername,
		Password:         mail.SMTPPassword,
	}).WithLogger(logger)

	auther, err := accounts.NewAuthenticator(accounts.NewAccountsRepository(app.db), app.config)
	if err != nil {
		return err
	}

	app.auther = auther.
		WithLogger(logger).
		WithNotifier(sender).
		WithActivitySink(accounts.MultiActivitySink{
			sink,
			activitymap.NewLogSink(logger, activitymap.WithDefaultChannel(app.config.ServiceName)),
		})

	return nil
}

func WithHTTPServer(_ context.Context, app *App) error {
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	controller := httpapi.NewController(app.auther).
		WithLogger(accounts.NewSlogLogger(app.logger))

	server := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          httpapi.ErrorHandler(accounts.NewSlogLogger(app.logger)),
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})
	server.Use(recover.New())
	server.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{})))
	controller.Register(server)

	app.server = server
	return nil
}

func (a *App) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", a.config.Port)
		a.logger.Info("http server listening", "addr", addr)
		errc <- a.server.Listen(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	if err := a.server.ShutdownWithTimeout(10 * time.Second); err != nil {
		return err
	}
	return a.db.Close()
}
