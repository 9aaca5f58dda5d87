package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartparking/backend/internal/models"
	"github.com/smartparking/backend/internal/services"
	"github.com/smartparking/backend/internal/utils"
)

type meResponse struct {
	User models.PublicAccount `json:"user"`
}

// Register godoc
// @Summary Register a new user
// @Description Create a USER account and return a session token. Any role in the payload is ignored.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body services.RegisterInput true "Registration data"
// @Success 200 {object} services.Session
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/auth/register [post]
func (s *Server) Register(c echo.Context) error {
	var req services.RegisterInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	session, err := s.Auth.Register(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// Login godoc
// @Summary Log in
// @Description Check credentials and return a session token. Every attempt is recorded in the login history.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body services.LoginInput true "Credentials"
// @Success 200 {object} services.Session
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse "Invalid credentials"
// @Failure 403 {object} errorResponse "Account disabled"
// @Router /api/auth/login [post]
func (s *Server) Login(c echo.Context) error {
	var req services.LoginInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	req.IPAddress = getClientIP(c)
	req.UserAgent = c.Request().UserAgent()

	session, err := s.Auth.Login(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// ChangePassword godoc
// @Summary Change password
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.ChangePasswordInput true "Current and new password"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /api/auth/change-password [patch]
func (s *Server) ChangePassword(c echo.Context) error {
	var req services.ChangePasswordInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := s.Auth.ChangePassword(c.Request().Context(), currentClaims(c).AccountID, req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ok)
}

// Me godoc
// @Summary Current account
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} meResponse
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/auth/me [get]
func (s *Server) Me(c echo.Context) error {
	account, err := s.Auth.Me(c.Request().Context(), currentClaims(c).AccountID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, meResponse{User: *account})
}

// MyLoginHistory godoc
// @Summary Own login history
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} repository.Page[models.LoginAttempt]
// @Failure 401 {object} errorResponse
// @Router /api/auth/login-history [get]
func (s *Server) MyLoginHistory(c echo.Context) error {
	page, limit := utils.ParsePagination(c.QueryParam("page"), c.QueryParam("limit"))
	result, err := s.Auth.LoginHistory(c.Request().Context(), currentClaims(c).AccountID, page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
