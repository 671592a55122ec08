package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"docqa/docs"
	"docqa/internal/auth"
	"docqa/internal/config"
	"docqa/internal/database"
	"docqa/internal/database/migration"
	"docqa/internal/extractor"
	"docqa/internal/gemini"
	handlers "docqa/internal/http/handler"
	"docqa/internal/http/middleware"
	"docqa/internal/logging"
	appotel "docqa/internal/otel"
	"docqa/internal/repository/postgres"
	"docqa/internal/service"
	"docqa/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Document Q&A API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.Location(), cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := appotel.Init(ctx, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.WithError(err).Warn("tracing shutdown")
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize object storage")
	}

	answerer, err := gemini.NewClient(cfg.Gemini, gemini.WithLogger(log))
	if err != nil {
		log.WithError(err).Fatal("failed to initialize answer client")
	}
	issuer := auth.NewIssuer(cfg.Auth)

	// Initialize repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	docSvc := service.NewDocumentService(objStore, docRepo, cfg.MinIO.URLExpiry(), log)
	userSvc := service.NewUserService(userRepo, issuer)
	questionSvc := service.NewQuestionService(docSvc, extractor.PDF{}, answerer, log)

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.WithError(err).Fatal("failed to register metrics")
	}

	app := fiber.New(fiber.Config{
		BodyLimit:             cfg.UploadMaxBytes,
		ErrorHandler:          handlers.ErrorHandler(log),
		DisableStartupMessage: true,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, handlers.Dependencies{
		DB:        db,
		Tokens:    issuer,
		Users:     userSvc,
		Documents: docSvc,
		Questions: questionSvc,
		Gatherer:  prometheus.DefaultGatherer,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.WithError(err).Warn("http shutdown")
		}
	}()

	addr := ":" + cfg.Port
	log.WithField("addr", addr).Info("listening")
	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
