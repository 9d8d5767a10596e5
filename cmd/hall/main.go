package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/aichampion/hall/internal/config"
	"github.com/aichampion/hall/internal/infra/database"
	"github.com/aichampion/hall/internal/infra/gateway"
	"github.com/aichampion/hall/internal/infra/repository"
	"github.com/aichampion/hall/internal/interface/rest"
	"github.com/aichampion/hall/internal/ledger"
	"github.com/aichampion/hall/internal/service"
	"github.com/aichampion/hall/internal/session"
	"github.com/aichampion/hall/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if conf.Server.EnableTrace {
		shutdown, err := setupTraceProvider(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracing", "error", err)
			os.Exit(1)
		}
		defer shutdown(ctx)
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)

	sessionTTL := time.Duration(conf.Hall.SessionTTLMinutes) * time.Minute
	ownershipStore := ledger.NewRedisStore(rdb, sessionTTL)
	sessions := session.NewRegistry(ownershipStore, sessionTTL)

	var championRepo *repository.ChampionRepository
	if conf.Server.MemcachedAddr != "" {
		championRepo = repository.NewChampionRepository(db, database.NewMemcached(conf.Server.MemcachedAddr))
	} else {
		championRepo = repository.NewChampionRepository(db, nil)
	}

	gemini, err := gateway.NewGeminiGateway(ctx, conf.Gemini.APIKey, conf.Gemini.TextModel, conf.Gemini.ImageModel)
	if err != nil {
		slog.Error("failed to create gemini gateway", "error", err)
		os.Exit(1)
	}

	blobs, err := gateway.NewBlobStoreGCS(ctx, conf.Storage.Bucket, conf.Storage.Prefix, conf.Storage.CredentialsFile)
	if err != nil {
		slog.Error("failed to create blob store", "error", err)
		os.Exit(1)
	}
	defer blobs.Close()

	signal := service.NewSignalService(rdb)

	champions := usecase.NewChampionUsecase(championRepo, signal, conf.Hall.MasterSecret)
	refine := usecase.NewRefineUsecase(
		championRepo,
		gemini,
		gemini,
		blobs,
		gateway.NewPortraitFetcher(),
		signal,
		conf.Hall.MinVisionLen,
		conf.Hall.MinAchievementLen,
	)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("hall"))
	}

	handler := rest.NewHandler(champions, refine, blobs, sessions, signal)
	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}

func setupTraceProvider(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("hall"),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
