package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/questlog/questd/internal/config"
	"github.com/questlog/questd/internal/infra/database"
	"github.com/questlog/questd/internal/infra/notifier"
	"github.com/questlog/questd/internal/infra/repository"
	"github.com/questlog/questd/internal/present/rest"
	"github.com/questlog/questd/internal/present/rest/middleware"
	"github.com/questlog/questd/internal/service"
	"github.com/questlog/questd/internal/usecase"
)

func main() {
	configPath := os.Getenv("QUESTD_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	conf, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := database.MigratePostgres(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	accountRepo := repository.NewAccountRepository(db, mc)
	taskRepo := repository.NewTaskRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	passwords := service.NewPasswordService()
	sessions := service.NewSessionService(rdb)
	guard := service.NewDeletionGuardService(rdb)
	mailer := notifier.NewSMTPNotifier(
		conf.SMTP.Host, conf.SMTP.Port, conf.SMTP.Username, conf.SMTP.Password, conf.SMTP.From,
	)

	accountUC := usecase.NewAccountUsecase(accountRepo)
	deletionUC := usecase.NewDeletionUsecase(
		accountRepo, taskRepo, challengeRepo, groupRepo, sessions, guard,
		mailer, usecase.NewCredentialVerifier(passwords), conf.Ops.Mailbox,
	)

	handler := rest.NewHandler(accountUC, deletionUC)
	auth := middleware.NewAuthMiddleware(sessions)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	if conf.Server.EnableTrace {
		shutdown, err := setupTraceProvider(conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdown()
		e.Use(otelecho.Middleware("questd"))
	}

	handler.RegisterRoutes(e, auth.RequireSession)

	e.Logger.Fatal(e.Start(conf.Server.Bind))
}

func setupTraceProvider(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName("questd"),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			slog.Error("failed to shut down trace provider", slog.String("error", err.Error()))
		}
	}, nil
}
