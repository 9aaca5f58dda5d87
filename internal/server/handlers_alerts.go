package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartparking/backend/internal/services"
	"github.com/smartparking/backend/internal/utils"
)

// ListAlerts godoc
// @Summary List alerts
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} repository.Page[models.Alert]
// @Failure 401 {object} errorResponse
// @Router /api/alerts [get]
func (s *Server) ListAlerts(c echo.Context) error {
	page, limit := utils.ParsePagination(c.QueryParam("page"), c.QueryParam("limit"))
	result, err := s.Monitor.ListAlerts(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateAlert godoc
// @Summary Create an alert manually
// @Description Stored with the given handled flag; no email is sent. STAFF_RESET clears open alerts.
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.AlertInput true "Alert"
// @Success 200 {object} models.Alert
// @Failure 400 {object} errorResponse
// @Router /api/alerts [post]
func (s *Server) CreateAlert(c echo.Context) error {
	var req services.AlertInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	alert, err := s.Monitor.CreateAlert(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, alert)
}

// UpdateAlert godoc
// @Summary Replace an alert
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Alert ID"
// @Param request body services.AlertInput true "Alert"
// @Success 200 {object} models.Alert
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/alerts/{id} [put]
func (s *Server) UpdateAlert(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req services.AlertInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	alert, err := s.Monitor.UpdateAlert(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, alert)
}

// DeleteAlert godoc
// @Summary Delete an alert
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Alert ID"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/alerts/{id} [delete]
func (s *Server) DeleteAlert(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.Monitor.DeleteAlert(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ok)
}

// MarkAlertHandled godoc
// @Summary Mark an alert handled
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Alert ID"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/alerts/{id}/handle [patch]
func (s *Server) MarkAlertHandled(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	if _, err := s.Monitor.MarkHandled(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ok)
}

// ResetFromUI godoc
// @Summary Reset the controller alarm
// @Description Sends CMD_RESET to the controller. The STAFF_RESET alert is recorded when the controller reports back.
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} successResponse
// @Failure 500 {object} errorResponse "Hardware link not connected"
// @Router /api/alerts/reset-from-ui [post]
func (s *Server) ResetFromUI(c echo.Context) error {
	if err := s.Monitor.ResetFromUI(c.Request().Context()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ok)
}
