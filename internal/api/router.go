package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/opportunitycup/marketplace-api/internal/api/handler"
	"github.com/opportunitycup/marketplace-api/internal/api/middleware"
	"github.com/opportunitycup/marketplace-api/internal/core/domain"
	"github.com/opportunitycup/marketplace-api/internal/core/ports"

	_ "github.com/opportunitycup/marketplace-api/docs"
)

// Dependencies is everything the HTTP layer needs.
type Dependencies struct {
	Auth    ports.AuthService
	Users   ports.UserService
	Balance ports.BalanceService
	Gate    ports.Gate
	Cookie  handler.RefreshCookie
	Health  []handler.HealthCheck

	CORSOrigins []string
	Log         zerolog.Logger
	// Registerer receives the HTTP metrics. Nil disables /metrics and the
	// metrics middleware.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.ContextLogger(deps.Log))
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     deps.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if deps.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "marketplace",
			Registerer: deps.Registerer,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
		gatherer := deps.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authenticate := middleware.Authenticate(deps.Gate)

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookie)
	userHandler := handler.NewUserHandler(deps.Users, deps.Balance)
	balanceHandler := handler.NewBalanceHandler(deps.Balance)
	executorHandler := handler.NewExecutorHandler(deps.Users)
	healthHandler := handler.NewHealthHandler(deps.Health...)

	apiGroup := e.Group("/api")

	// --- Auth routes ---
	auth := apiGroup.Group("/auth")
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/signin", authHandler.SignIn)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	// --- User routes ---
	user := apiGroup.Group("/user")
	user.GET("", userHandler.Me, authenticate)
	user.GET("/profile/:userId", userHandler.Profile, middleware.OptionalAuthenticate(deps.Gate))
	user.POST("/change", userHandler.ChangeRole, authenticate)
	user.POST("/logo", userHandler.UpdateLogo, authenticate)
	user.GET("/balance", userHandler.Balance, authenticate)

	// --- Balance routes ---
	balance := apiGroup.Group("/balance", authenticate)
	balance.POST("/topup", balanceHandler.TopUp, middleware.RequireRole(domain.RoleCustomer))
	balance.POST("/decrease", balanceHandler.Decrease, middleware.RequireRole(domain.RoleExecutor))

	// --- Executor routes ---
	executor := apiGroup.Group("/executor", authenticate, middleware.RequireRole(domain.RoleExecutor))
	executor.POST("/update", executorHandler.UpdateProfile)

	// --- Health probes (no auth required) ---
	apiGroup.GET("/check/health", healthHandler.Liveness)
	apiGroup.GET("/check/ready", healthHandler.Readiness)

	return e
}
