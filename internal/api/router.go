package api

import (
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/gestion-ventes/ventes-api/docs"
	"github.com/gestion-ventes/ventes-api/internal/api/handler"
	"github.com/gestion-ventes/ventes-api/internal/api/metrics"
	"github.com/gestion-ventes/ventes-api/internal/api/middleware"
	"github.com/gestion-ventes/ventes-api/internal/core/domain"
	"github.com/gestion-ventes/ventes-api/internal/core/ports"
	"github.com/gestion-ventes/ventes-api/internal/infrastructure/http/handlers"
)

// maxBodySize caps request bodies; sale and credential payloads are tiny.
const maxBodySize = "64K"

// Deps carries everything the router needs. Limiters are required; a nil
// Registry creates a private one.
type Deps struct {
	AuthService ports.AuthService
	SaleService ports.SaleService
	Verifier    ports.TokenVerifier

	RegisterLimiter ports.RateLimiter
	LoginLimiter    ports.RateLimiter
	APILimiter      ports.RateLimiter
	RateLimitKey    middleware.KeyFunc

	// TrustedProxies are the only peers whose X-Forwarded-For is honoured.
	TrustedProxies []*net.IPNet
	CORSOrigins    []string
	Checks         []handlers.Check

	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New(d.Registry)
	}
	if d.RateLimitKey == nil {
		d.RateLimitKey = middleware.KeyByIP
	}
	if len(d.CORSOrigins) == 0 {
		d.CORSOrigins = []string{"*"}
	}
	log := d.Logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = NewIPExtractor(d.TrustedProxies)
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomiddleware.BodyLimit(maxBodySize))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		ExposeHeaders: []string{
			middleware.HeaderRateLimitLimit,
			middleware.HeaderRateLimitRemaining,
			middleware.HeaderRetryAfter,
		},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "ventes",
		Registerer: d.Registry,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/swagger")
		},
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.AuthService, d.Metrics, log)
	userHandler := handler.NewUserHandler(d.AuthService)
	saleHandler := handler.NewSaleHandler(d.SaleService, d.Metrics, log)
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(log, d.Checks...)

	authMW := middleware.Auth(d.Verifier, d.Metrics, log)
	rotatedMW := middleware.RequirePasswordRotated()

	// --- Operational routes (no auth required) ---
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Registry}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.GET("/health", healthHandler.Liveness)

	// --- Auth routes ---
	api.POST("/register", authHandler.Register,
		middleware.RateLimit(d.RegisterLimiter, "register", d.RateLimitKey, d.Metrics, log))
	api.POST("/login", authHandler.Login,
		middleware.RateLimit(d.LoginLimiter, "login", d.RateLimitKey, d.Metrics, log))

	// --- Account routes ---
	// Password change stays reachable while a rotation is pending.
	users := api.Group("/users", authMW)
	users.PUT("/me/password", userHandler.ChangePassword)
	users.GET("", userHandler.List, rotatedMW, middleware.RBAC(domain.RoleAdmin))

	// --- Sale routes ---
	// The limiter runs before token verification so unauthenticated floods
	// are counted too. No verified username exists yet, so it keys by IP.
	ventes := api.Group("/ventes",
		middleware.RateLimit(d.APILimiter, "api", middleware.KeyByIP, d.Metrics, log),
		authMW, rotatedMW)
	ventes.GET("", saleHandler.List)
	ventes.POST("", saleHandler.Create)
	ventes.GET("/:id", saleHandler.Get)
	ventes.PUT("/:id", saleHandler.Update)
	ventes.DELETE("/:id", saleHandler.Delete)

	return e
}

// NewIPExtractor returns the client address source for c.RealIP. With no
// trusted proxies the socket peer is the client and forwarding headers are
// ignored.
func NewIPExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, r := range trusted {
		opts = append(opts, echo.TrustIPRange(r))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}
