package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartparking/backend/internal/utils"
)

type setActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required" example:"false"`
}

// AdminLoginHistory godoc
// @Summary All login attempts
// @Description Login history of every account, joined with username and email.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} repository.Page[models.LoginAttemptWithAccount]
// @Failure 403 {object} errorResponse "Forbidden"
// @Router /api/admin/login-history [get]
func (s *Server) AdminLoginHistory(c echo.Context) error {
	page, limit := utils.ParsePagination(c.QueryParam("page"), c.QueryParam("limit"))
	result, err := s.Auth.AllLoginHistory(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// AdminDeleteLoginHistory godoc
// @Summary Delete a login history entry
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Login attempt ID"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/admin/login-history/{id} [delete]
func (s *Server) AdminDeleteLoginHistory(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.Auth.DeleteLoginAttempt(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ok)
}

// AdminAccounts godoc
// @Summary List accounts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} repository.Page[models.PublicAccount]
// @Failure 403 {object} errorResponse "Forbidden"
// @Router /api/admin/accounts [get]
func (s *Server) AdminAccounts(c echo.Context) error {
	page, limit := utils.ParsePagination(c.QueryParam("page"), c.QueryParam("limit"))
	result, err := s.Auth.ListAccounts(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// AdminSetAccountActive godoc
// @Summary Enable or disable an account
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Param request body setActiveRequest true "New status"
// @Success 200 {object} models.PublicAccount
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/admin/accounts/{id}/active [patch]
func (s *Server) AdminSetAccountActive(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req setActiveRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}
	account, err := s.Auth.SetAccountActive(c.Request().Context(), id, *req.IsActive)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, account)
}

// AdminEmailLogs godoc
// @Summary Alert email history
// @Description Every alert email attempt, newest first. Also served at /api/email-logs.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} repository.Page[models.EmailLogView]
// @Failure 403 {object} errorResponse "Forbidden"
// @Router /api/gmail-logs [get]
func (s *Server) AdminEmailLogs(c echo.Context) error {
	page, limit := utils.ParsePagination(c.QueryParam("page"), c.QueryParam("limit"))
	result, err := s.Monitor.ListEmailLogs(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// AdminDeleteEmailLog godoc
// @Summary Delete an email log entry
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Email log ID"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/gmail-logs/{id} [delete]
func (s *Server) AdminDeleteEmailLog(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.Monitor.DeleteEmailLog(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ok)
}
