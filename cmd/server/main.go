// @title Smart Parking API
// @version 1.0
// @description Parking monitoring backend: gate events, alerts, slot snapshots, accounts and a realtime websocket feed.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3000
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/smartparking/backend/docs" // Import generated docs
	"github.com/smartparking/backend/internal/config"
	"github.com/smartparking/backend/internal/db"
	"github.com/smartparking/backend/internal/hub"
	"github.com/smartparking/backend/internal/ingest"
	"github.com/smartparking/backend/internal/logging"
	"github.com/smartparking/backend/internal/notify"
	"github.com/smartparking/backend/internal/repository"
	"github.com/smartparking/backend/internal/serial"
	"github.com/smartparking/backend/internal/server"
	"github.com/smartparking/backend/internal/services"
)

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	gormDB, err := db.Open(db.Config{
		DatabaseURL:     cfg.DatabaseURL,
		PoolSize:        cfg.PoolSize,
		PoolRecycle:     cfg.PoolRecycle,
		PoolPrePing:     cfg.PoolPrePing,
		ConnectTimeout:  cfg.ConnectTimeout,
		ApplicationName: cfg.ApplicationName,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("db open error")
	}
	if err := db.Migrate(gormDB); err != nil {
		logging.Fatal().Err(err).Msg("db migrate error")
	}

	repos := repository.New(gormDB)
	realtime := hub.NewHub()

	// the API keeps running without the controller; reset-from-ui reports it unavailable
	link, err := serial.Open(cfg.SerialPort, cfg.SerialBaudRate)
	if err != nil {
		logging.Error().Err(err).Str("port", cfg.SerialPort).Msg("serial port unavailable, hardware ingest disabled")
	}

	notifier := notify.NewEmailNotifier(notify.EmailConfig{
		SMTPHost: cfg.SMTPHost,
		SMTPPort: cfg.SMTPPort,
		SMTPUser: cfg.SMTPUser,
		SMTPPass: cfg.SMTPPass,
		To:       cfg.AlertReceiverEmail,
	})

	auth := services.NewAuthService(repos.Accounts, repos.LoginAttempts, realtime, services.AuthConfig{
		JWTSecret: cfg.JWTSecret,
		JWTExpiry: cfg.JWTExpiry,
	})
	monitor := services.NewMonitorService(services.MonitorDeps{
		GateEvents: repos.GateEvents,
		Alerts:     repos.Alerts,
		Snapshots:  repos.Snapshots,
		EmailLogs:  repos.EmailLogs,
		Bus:        realtime,
		Notifier:   notifier,
		Link:       link,
		Clients:    realtime,
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if _, err := server.New(e, cfg, server.Deps{
		DB:      gormDB,
		Auth:    auth,
		Monitor: monitor,
		Hub:     realtime,
		Link:    link,
	}); err != nil {
		logging.Fatal().Err(err).Msg("server setup error")
	}

	// Add Swagger documentation endpoint
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ingestDone := make(chan struct{})
	go func() {
		defer close(ingestDone)
		if !link.IsOpen() {
			return
		}
		_ = ingest.NewProcessor(monitor).Run(ctx, link)
	}()

	go func() {
		logging.Info().Str("port", cfg.Port).Msg("smart parking backend listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("http shutdown error")
	}
	realtime.CloseAll()
	_ = link.Close()
	<-ingestDone
	monitor.Wait()

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
