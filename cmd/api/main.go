package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"signsync/internal/config"
	"signsync/internal/database"
	"signsync/internal/database/migration"
	handlers "signsync/internal/http/handler"
	"signsync/internal/http/middleware"
	otelinit "signsync/internal/otel"
	"signsync/internal/repository/postgres"
	"signsync/internal/service"
	"signsync/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	// Initialize tracing (no-op when OTEL_SDK_DISABLED=true)
	shutdownTracing, err := otelinit.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// The signed-document archive is optional; without it completion events
	// only record the provider's download URL.
	var archiver *service.Archiver
	if cfg.Webhook.ArchiveCompleted {
		objStore, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatalf("failed to initialize object storage: %v", err)
		}
		archiver = service.NewArchiver(objStore)
	}

	// Metrics registry for request counters and reconciliation outcomes
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	webhookMetrics, err := service.NewWebhookMetrics(reg)
	if err != nil {
		log.Fatalf("failed to register webhook metrics: %v", err)
	}
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register http metrics: %v", err)
	}

	// Initialize repositories and services
	userRepo := postgres.NewUserPostgres(db)
	templateRepo := postgres.NewTemplatePostgres(db)
	statusRepo := postgres.NewStatusPostgres(db)
	eventRepo := postgres.NewEventPostgres(db)

	resolver := service.NewSubjectResolver(userRepo, templateRepo)
	webhookSvc := service.NewWebhookService(eventRepo, resolver, statusRepo, archiver, webhookMetrics)
	statusSvc := service.NewStatusService(statusRepo)
	retentionSvc := service.NewRetentionService(eventRepo, cfg.Webhook.RetentionDays, cfg.Webhook.PurgeBatchSize)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(promMW.Handler())

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, webhookSvc, statusSvc, retentionSvc, cfg.Webhook.SigningSecret)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
