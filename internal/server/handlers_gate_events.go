package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartparking/backend/internal/services"
	"github.com/smartparking/backend/internal/utils"
)

// ListGateEvents godoc
// @Summary List gate events
// @Tags Gate events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} repository.Page[models.GateEvent]
// @Failure 401 {object} errorResponse
// @Router /api/gate-events [get]
func (s *Server) ListGateEvents(c echo.Context) error {
	page, limit := utils.ParsePagination(c.QueryParam("page"), c.QueryParam("limit"))
	result, err := s.Monitor.ListGateEvents(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateGateEvent godoc
// @Summary Create a gate event
// @Tags Gate events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.GateEventInput true "Gate event"
// @Success 200 {object} models.GateEvent
// @Failure 400 {object} errorResponse
// @Router /api/gate-events [post]
func (s *Server) CreateGateEvent(c echo.Context) error {
	var req services.GateEventInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	event, err := s.Monitor.CreateGateEvent(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

// UpdateGateEvent godoc
// @Summary Replace a gate event
// @Description Overwrites every field; omitted optional fields become null.
// @Tags Gate events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Gate event ID"
// @Param request body services.GateEventInput true "Gate event"
// @Success 200 {object} models.GateEvent
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/gate-events/{id} [put]
func (s *Server) UpdateGateEvent(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req services.GateEventInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	event, err := s.Monitor.UpdateGateEvent(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

// DeleteGateEvent godoc
// @Summary Delete a gate event
// @Tags Gate events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Gate event ID"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/gate-events/{id} [delete]
func (s *Server) DeleteGateEvent(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.Monitor.DeleteGateEvent(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ok)
}
