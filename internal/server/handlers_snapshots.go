package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartparking/backend/internal/services"
	"github.com/smartparking/backend/internal/utils"
)

// ListSnapshots godoc
// @Summary List slot snapshots
// @Tags Slot snapshots
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} repository.Page[models.SlotSnapshot]
// @Failure 401 {object} errorResponse
// @Router /api/slot-snapshots [get]
func (s *Server) ListSnapshots(c echo.Context) error {
	page, limit := utils.ParsePagination(c.QueryParam("page"), c.QueryParam("limit"))
	result, err := s.Monitor.ListSnapshots(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateSnapshot godoc
// @Summary Create a slot snapshot
// @Tags Slot snapshots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.SnapshotInput true "Snapshot"
// @Success 200 {object} models.SlotSnapshot
// @Failure 400 {object} errorResponse
// @Router /api/slot-snapshots [post]
func (s *Server) CreateSnapshot(c echo.Context) error {
	var req services.SnapshotInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	snap, err := s.Monitor.CreateSnapshot(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// UpdateSnapshot godoc
// @Summary Replace a slot snapshot
// @Tags Slot snapshots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Snapshot ID"
// @Param request body services.SnapshotInput true "Snapshot"
// @Success 200 {object} models.SlotSnapshot
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/slot-snapshots/{id} [put]
func (s *Server) UpdateSnapshot(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req services.SnapshotInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	snap, err := s.Monitor.UpdateSnapshot(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// DeleteSnapshot godoc
// @Summary Delete a slot snapshot
// @Tags Slot snapshots
// @Produce json
// @Security BearerAuth
// @Param id path int true "Snapshot ID"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/slot-snapshots/{id} [delete]
func (s *Server) DeleteSnapshot(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.Monitor.DeleteSnapshot(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ok)
}
