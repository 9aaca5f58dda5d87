package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartparking/backend/internal/logging"
)

// Health godoc
// @Summary Health check
// @Description Check the health status of the API and its dependencies
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Health status"
// @Router /health [get]
func (s *Server) Health(c echo.Context) error {
	status := map[string]any{
		"success": true,
		"status":  "ok",
	}
	checks := map[string]any{}
	status["checks"] = checks

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if sqlDB, err := s.DB.DB(); err == nil {
		if err := sqlDB.PingContext(ctx); err != nil {
			checks["database"] = map[string]any{"ok": false, "error": err.Error()}
			status["status"] = "degraded"
		} else {
			checks["database"] = map[string]any{"ok": true}
		}
	} else {
		checks["database"] = map[string]any{"ok": false, "error": "db handle unavailable"}
		status["status"] = "degraded"
	}

	// a closed link degrades nothing but reset-from-ui
	checks["hardware"] = map[string]any{"ok": s.Link != nil && s.Link.IsOpen()}
	checks["realtime_clients"] = s.Hub.Count()

	return c.JSON(http.StatusOK, status)
}

// Realtime godoc
// @Summary Realtime channel
// @Description Websocket upgrade. Every write is pushed as {"type": TAG, "payload": row-or-id}.
// @Tags System
// @Success 101
// @Router /ws [get]
func (s *Server) Realtime(c echo.Context) error {
	if err := s.Hub.Serve(c.Response(), c.Request(), &s.upgrader); err != nil {
		// the upgrader has already written the HTTP error
		logging.Warn().Err(err).Str("origin", c.Request().Header.Get(echo.HeaderOrigin)).Msg("websocket upgrade failed")
	}
	return nil
}
