package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/quotecraft/quoting-system/internal/api/handler"
	"github.com/quotecraft/quoting-system/internal/api/middleware"
	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
	"github.com/quotecraft/quoting-system/internal/infrastructure/config"
)

// Deps carries everything the HTTP layer needs. Redis is optional: a nil
// client disables rate limiting.
type Deps struct {
	Auth       ports.AuthService
	Verifier   ports.TokenVerifier
	Prompts    ports.PromptService
	Composer   ports.PromptComposer
	Generator  ports.GenerationService
	Quotes     ports.QuoteService
	Industries ports.IndustryService

	AuthOptions  handler.AuthOptions
	RateLimit    config.RateLimitConfig
	Redis        *redis.Client
	HealthChecks map[string]handler.HealthCheck
	Log          zerolog.Logger

	// Registerer receives the HTTP request metrics. Defaults to the global
	// Prometheus registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	registerer := d.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "quoting",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.AuthOptions, d.Log)
	promptHandler := handler.NewPromptHandler(d.Prompts)
	industryHandler := handler.NewIndustryHandler(d.Industries)
	quoteHandler := handler.NewQuoteHandler(d.Quotes)
	generateHandler := handler.NewGenerateHandler(d.Composer, d.Generator)
	healthHandler := handler.NewHealthHandler(d.HealthChecks)

	requireAuth := middleware.Auth(d.Verifier)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	tenant := middleware.RequireCompany()
	limiter := middleware.RateLimit(d.RateLimit, d.Redis, d.Log)

	api := e.Group("/api")

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register, limiter)
	auth.POST("/login", authHandler.Login, limiter)
	auth.POST("/refresh", authHandler.Refresh, limiter)
	auth.POST("/logout", authHandler.Logout, middleware.OptionalAuth(d.Verifier))
	auth.GET("/status", authHandler.Status)

	// --- System prompts (reads for any user, writes for admins) ---
	prompts := api.Group("/system-prompts", requireAuth)
	prompts.GET("", promptHandler.List)
	prompts.GET("/active", promptHandler.Active)
	prompts.GET("/:id", promptHandler.Get)
	prompts.POST("", promptHandler.Create, adminOnly)
	prompts.PUT("/:id", promptHandler.Update, adminOnly)
	prompts.DELETE("/:id", promptHandler.Delete, adminOnly)
	prompts.POST("/:id/activate", promptHandler.Activate, adminOnly)

	// --- Admin ---
	admin := api.Group("/admin", requireAuth, adminOnly)
	admin.GET("/industries", industryHandler.List)
	admin.POST("/industries", industryHandler.Create)

	// --- Tenant-scoped routes ---
	scoped := api.Group("", requireAuth, tenant)
	scoped.GET("/clients", quoteHandler.ListClients)
	scoped.POST("/clients", quoteHandler.CreateClient)
	scoped.GET("/quotes", quoteHandler.ListQuotes)
	scoped.POST("/quotes", quoteHandler.CreateQuote)
	scoped.PATCH("/quotes/:id/status", quoteHandler.UpdateQuoteStatus)
	scoped.POST("/ai/generate", generateHandler.Generate)
	scoped.POST("/ai/compose", generateHandler.Compose)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
