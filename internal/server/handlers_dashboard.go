package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// DashboardSummary godoc
// @Summary Parking overview
// @Description Latest snapshot and gate event, free slots, alert counts, hardware link status and connected realtime clients.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DashboardSummary
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 500 {object} errorResponse "Internal server error"
// @Router /api/dashboard/summary [get]
func (s *Server) DashboardSummary(c echo.Context) error {
	summary, err := s.Monitor.Summary(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}
