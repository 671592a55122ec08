package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docqa/internal/http/middleware"
	"docqa/internal/service"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	DB        *sql.DB
	Tokens    middleware.AccessTokenParser
	Users     service.UserService
	Documents service.DocumentService
	Questions service.QuestionService
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay free of business logic; errors they return are rendered by ErrorHandler.
func RegisterRoutes(app *fiber.App, d Dependencies) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api")
	api.Post("/register", Register(d.Users))
	api.Post("/token", ObtainToken(d.Users))
	api.Post("/token/refresh", RefreshToken(d.Users))

	// Body validation runs before authorization.
	api.Post("/ask-question", ValidateQuestion(), middleware.RequireAuth(d.Tokens), AskQuestion(d.Questions))

	docs := api.Group("/documents", middleware.RequireAuth(d.Tokens))
	docs.Get("/", ListDocuments(d.Documents))
	docs.Post("/", UploadDocument(d.Documents))
	docs.Get("/:id", GetDocument(d.Documents))
	docs.Put("/:id", ReplaceDocument(d.Documents))
	docs.Delete("/:id", DeleteDocument(d.Documents))
	docs.Get("/:id/download", DownloadDocument(d.Documents))
}
