package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/smartparking/backend/internal/config"
	"github.com/smartparking/backend/internal/hub"
	"github.com/smartparking/backend/internal/services"
)

type Deps struct {
	DB      *gorm.DB
	Auth    *services.AuthService
	Monitor *services.MonitorService
	Hub     *hub.Hub
	Link    services.HardwareLink
}

type Server struct {
	DB      *gorm.DB
	Cfg     config.AppConfig
	Auth    *services.AuthService
	Monitor *services.MonitorService
	Hub     *hub.Hub
	Link    services.HardwareLink

	origins  *OriginPolicy
	upgrader websocket.Upgrader
}

func New(e *echo.Echo, cfg config.AppConfig, deps Deps) (*Server, error) {
	origins, err := NewOriginPolicy(cfg.CORSAllowedOrigins, cfg.CORSOriginPatterns)
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:      deps.DB,
		Cfg:     cfg,
		Auth:    deps.Auth,
		Monitor: deps.Monitor,
		Hub:     deps.Hub,
		Link:    deps.Link,
		origins: origins,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.CheckRequest,
	}

	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = httpErrorHandler

	// Security middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc:  s.origins.Allowed,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.Secure())
	if cfg.RateLimitRPS > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.RateLimitRPS),
			ExpiresIn: 3 * time.Minute,
		})))
	}

	// Infra
	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/ws", s.Realtime)

	api := e.Group("/api")

	// Auth (public routes)
	api.POST("/auth/register", s.Register)
	api.POST("/auth/login", s.Login)

	// Protected routes (require a session)
	protected := api.Group("")
	protected.Use(s.JWTMiddleware())

	protected.PATCH("/auth/change-password", s.ChangePassword)
	protected.GET("/auth/me", s.Me)
	protected.GET("/auth/login-history", s.MyLoginHistory)

	protected.GET("/dashboard/summary", s.DashboardSummary)

	protected.GET("/gate-events", s.ListGateEvents)
	protected.POST("/gate-events", s.CreateGateEvent)
	protected.PUT("/gate-events/:id", s.UpdateGateEvent)
	protected.DELETE("/gate-events/:id", s.DeleteGateEvent)

	protected.GET("/alerts", s.ListAlerts)
	protected.POST("/alerts", s.CreateAlert)
	protected.POST("/alerts/reset-from-ui", s.ResetFromUI)
	protected.PUT("/alerts/:id", s.UpdateAlert)
	protected.DELETE("/alerts/:id", s.DeleteAlert)
	protected.PATCH("/alerts/:id/handle", s.MarkAlertHandled)

	protected.GET("/slot-snapshots", s.ListSnapshots)
	protected.POST("/slot-snapshots", s.CreateSnapshot)
	protected.PUT("/slot-snapshots/:id", s.UpdateSnapshot)
	protected.DELETE("/slot-snapshots/:id", s.DeleteSnapshot)

	// Admin routes
	admin := api.Group("")
	admin.Use(s.JWTMiddleware())
	admin.Use(s.AdminMiddleware())

	admin.GET("/admin/login-history", s.AdminLoginHistory)
	admin.DELETE("/admin/login-history/:id", s.AdminDeleteLoginHistory)
	admin.GET("/admin/accounts", s.AdminAccounts)
	admin.PATCH("/admin/accounts/:id/active", s.AdminSetAccountActive)

	// gmail-logs is the path the dashboard was built against
	for _, prefix := range []string{"/gmail-logs", "/email-logs"} {
		admin.GET(prefix, s.AdminEmailLogs)
		admin.DELETE(prefix+"/:id", s.AdminDeleteEmailLog)
	}

	return s, nil
}
