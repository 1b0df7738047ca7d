package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/brightshift/clockin-system/docs"
	"github.com/brightshift/clockin-system/internal/api/handler"
	"github.com/brightshift/clockin-system/internal/api/middleware"
	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/ports"
	"github.com/brightshift/clockin-system/internal/infrastructure/http/handlers"
)

// Dependencies are the services and collaborators the router wires into
// handlers.
type Dependencies struct {
	Log        zerolog.Logger
	JWTSecret  string
	Auth       ports.AuthService
	Roster     ports.RosterService
	Clock      ports.ClockService
	Attendance ports.AttendanceService
	Dispatcher handler.ClockDispatcher
	// Location renders spreadsheet exports in local time.
	Location *time.Location
	// Health lists the dependencies checked by /health/ready.
	Health map[string]handlers.Pinger
	// Registry receives HTTP metrics; nil uses the default Prometheus
	// registry.
	Registry *prometheus.Registry
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
	e.Use(requestLogger(deps.Log))
	e.Use(metricsMiddleware(deps.Registry))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	workerHandler := handler.NewWorkerHandler(deps.Roster, deps.Clock)
	clockHandler := handler.NewClockHandler(deps.Clock, deps.Dispatcher)
	logHandler := handler.NewLogHandler(deps.Clock, deps.Location)
	attendanceHandler := handler.NewAttendanceHandler(deps.Attendance)
	manager := []echo.MiddlewareFunc{middleware.Auth(deps.JWTSecret), middleware.RBAC(domain.RoleManager)}

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)

	// --- Kiosk routes (no auth required) ---
	v1 := e.Group("/v1")
	v1.GET("/workers", workerHandler.List)
	v1.GET("/workers/:id/history", workerHandler.History)

	// --- Manager routes ---
	v1.POST("/workers", workerHandler.Create, manager...)
	v1.DELETE("/workers/:id", workerHandler.Delete, manager...)
	v1.POST("/clock", clockHandler.Clock, manager...)
	v1.POST("/clock/batch", clockHandler.Batch, manager...)
	v1.GET("/logs", logHandler.Export, manager...)
	v1.GET("/attendance", attendanceHandler.Today, manager...)

	// --- Health checks, metrics and docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Health)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", metricsHandler(deps.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func metricsMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{
		Namespace: "clockin",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= 500:
				evt = log.Error().Err(v.Error)
			case v.Error != nil:
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
