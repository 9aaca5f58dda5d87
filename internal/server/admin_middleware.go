package server

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/smartparking/backend/internal/apperr"
	"github.com/smartparking/backend/internal/models"
)

// AdminMiddleware checks if the session has the ADMIN role. It must run after JWTMiddleware.
func (s *Server) AdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := currentClaims(c)
			if claims == nil {
				return respondError(c, apperr.New(apperr.KindUnauthenticated, "authorization header required"))
			}
			if claims.Role != models.RoleAdmin {
				return respondError(c, apperr.New(apperr.KindForbidden, "admin access required"))
			}
			return next(c)
		}
	}
}

// getClientIP extracts the client IP address from the request
func getClientIP(c echo.Context) string {
	ip := c.Request().Header.Get("X-Forwarded-For")
	if ip == "" {
		return c.RealIP()
	}

	// Handle comma-separated IPs (from proxies)
	if first, _, ok := strings.Cut(ip, ","); ok {
		ip = first
	}
	return strings.TrimSpace(ip)
}
