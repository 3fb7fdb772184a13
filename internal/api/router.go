package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/storefront/gateway/docs"
	"github.com/storefront/gateway/internal/api/handler"
	"github.com/storefront/gateway/internal/api/middleware"
	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/core/ports"
)

// Metrics selects where HTTP metrics are registered and served from.
// Zero values mean the prometheus default registry.
type Metrics struct {
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Deps is everything the gateway router needs, built once in main.
type Deps struct {
	Log     zerolog.Logger
	Auth    ports.AuthService
	Tokens  ports.TokenVerifier
	Basic   ports.BasicAuthenticator // nil disables basic auth
	Orders  ports.OrderService
	Content []ports.ContentService
	// RequestLog receives one record per request; nil disables it.
	RequestLog ports.RequestLogSink
	Readiness  map[string]handler.Check
	Metrics    Metrics
}

// NewRouter builds the gateway's Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := newEcho(deps.Log, "gateway", deps.Metrics, deps.Readiness)
	if deps.RequestLog != nil {
		e.Use(middleware.RequestLog(deps.RequestLog))
	}

	bearer := middleware.Authenticate(deps.Tokens, nil)
	bearerOrBasic := middleware.Authenticate(deps.Tokens, deps.Basic)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/profile", authHandler.Profile, bearer)
	auth.GET("/admin", authHandler.Admin, bearer, middleware.RequireRole(domain.RoleAdmin))
	auth.POST("/logout", authHandler.Logout, bearer)

	// --- Orders ---
	orderHandler := handler.NewOrderHandler(deps.Orders)
	orders := e.Group("/orders", bearer)
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.PUT("/:id", orderHandler.Update)
	orders.DELETE("/:id", orderHandler.Delete)

	// --- Owned content, one group per kind ---
	for _, svc := range deps.Content {
		h := handler.NewContentHandler(svc)
		g := e.Group("/"+h.Kind().Collection(), bearerOrBasic)
		g.POST("", h.Create)
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.PUT("/:id", h.Update)
		g.DELETE("/:id", h.Delete)
	}

	return e
}

// CatalogDeps is everything the catalog router needs.
type CatalogDeps struct {
	Log       zerolog.Logger
	Products  ports.ProductService
	Tokens    ports.TokenVerifier
	Readiness map[string]handler.Check
	Metrics   Metrics
}

// NewCatalogRouter builds the product service's Echo instance. Reads are
// public; writes need an admin token.
func NewCatalogRouter(deps CatalogDeps) *echo.Echo {
	e := newEcho(deps.Log, "catalog", deps.Metrics, deps.Readiness)

	h := handler.NewProductHandler(deps.Products)
	admin := []echo.MiddlewareFunc{
		middleware.Authenticate(deps.Tokens, nil),
		middleware.RequireRole(domain.RoleAdmin),
	}

	products := e.Group("/products")
	products.GET("", h.List)
	products.GET("/:id", h.Get)
	products.POST("", h.Create, admin...)
	products.PUT("/:id", h.Update, admin...)
	products.DELETE("/:id", h.Delete, admin...)

	return e
}

// newEcho sets up what both services share: error handling, validation,
// request ids, metrics, docs and health probes.
func newEcho(log zerolog.Logger, subsystem string, m Metrics, readiness map[string]handler.Check) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  subsystem,
		Registerer: m.Registerer,
		Skipper:    skipInfraPaths,
	}))

	// --- Infrastructure endpoints (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: m.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(readiness)
	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	return e
}

func skipInfraPaths(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
}
