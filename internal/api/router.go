package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/defm/console/internal/api/handler"
	"github.com/defm/console/internal/api/middleware"
	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
	"github.com/defm/console/internal/core/service"
)

// Options configures the development backend.
type Options struct {
	Repo      ports.BackendRepository
	JWTSecret string
	TokenTTL  time.Duration
	Version   string
	Logger    zerolog.Logger
	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opt Options) *echo.Echo {
	if opt.TokenTTL <= 0 {
		opt.TokenTTL = 30 * time.Minute
	}
	if opt.Registerer == nil {
		opt.Registerer = prometheus.DefaultRegisterer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opt.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opt.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "defm",
		Subsystem:  "dev_backend",
		Registerer: opt.Registerer,
	}))

	// --- Dependencies ---
	authService := service.NewAuthService(opt.Repo, opt.JWTSecret, opt.TokenTTL)
	backend := service.NewBackendService(opt.Repo, opt.Logger)

	authHandler := handler.NewAuthHandler(authService)
	users := handler.NewUserHandler(backend)
	cases := handler.NewCaseHandler(backend)
	evidence := handler.NewEvidenceHandler(backend)
	custody := handler.NewCustodyHandler(backend)
	reports := handler.NewReportHandler(backend)
	audit := handler.NewAuditHandler(backend)

	authn := middleware.Auth(authService)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	supervisors := middleware.RBAC(domain.RoleAdmin, domain.RoleManager)

	// --- Health probe (no auth required) ---
	e.GET("/health", handler.NewHealthHandler(opt.Version).Health)

	v1 := e.Group("/api/v1")

	// --- Auth routes ---
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/refresh", authHandler.Refresh, authn)

	// --- Protected routes ---
	u := v1.Group("/users", authn)
	u.GET("/me", users.Me)
	u.GET("", users.List, adminOnly)
	u.POST("", users.Create, adminOnly)
	u.GET("/:id", users.Get)
	u.PUT("/:id", users.Update)
	u.DELETE("/:id", users.Delete, adminOnly)

	cs := v1.Group("/cases", authn)
	cs.GET("/dashboard", cases.Dashboard)
	cs.GET("", cases.List)
	cs.POST("", cases.Create)
	cs.GET("/:id", cases.Get)
	cs.PUT("/:id", cases.Update)
	cs.DELETE("/:id", cases.Delete, supervisors)

	ev := v1.Group("/evidence", authn)
	ev.GET("", evidence.List)
	ev.POST("", evidence.Create)
	ev.GET("/:id", evidence.Get)
	ev.PUT("/:id", evidence.Update)
	ev.DELETE("/:id", evidence.Delete, supervisors)
	ev.POST("/:id/upload", evidence.Upload)
	ev.GET("/:id/download", evidence.Download)
	ev.POST("/:id/verify-integrity", evidence.VerifyIntegrity)

	cc := v1.Group("/chain-of-custody", authn)
	cc.GET("", custody.List)
	cc.POST("", custody.Create)
	cc.POST("/transfer", custody.Transfer)
	cc.GET("/evidence/:evidenceId", custody.ForEvidence)
	cc.GET("/:id", custody.Get)
	cc.DELETE("/:id", custody.Delete, supervisors)

	rp := v1.Group("/reports", authn)
	rp.GET("", reports.List)
	rp.POST("", reports.Create)
	rp.POST("/generate/:caseId", reports.Generate)
	rp.GET("/:id", reports.Get)
	rp.GET("/:id/download", reports.Download)
	rp.DELETE("/:id", reports.Delete, supervisors)

	al := v1.Group("/audit-logs", authn)
	al.GET("", audit.List, adminOnly)
	al.GET("/recent", audit.Recent, adminOnly)
	al.GET("/user/:userId", audit.ForUser)
	al.GET("/entity/:entityType/:entityId", audit.ForEntity)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
