package server

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/smartparking/backend/internal/apperr"
	"github.com/smartparking/backend/internal/logging"
	"github.com/smartparking/backend/internal/utils"
)

const claimsKey = "claims"

// JWTMiddleware validates the bearer token and stores its claims in the context.
// Tokens are self-contained; the account is not re-read per request.
func (s *Server) JWTMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return respondError(c, apperr.New(apperr.KindUnauthenticated, "authorization header required"))
			}

			// Extract token from "Bearer <token>"
			tokenParts := strings.SplitN(authHeader, " ", 2)
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" || tokenParts[1] == "" {
				return respondError(c, apperr.New(apperr.KindUnauthenticated, "invalid authorization header format"))
			}

			claims, err := s.Auth.VerifyToken(tokenParts[1])
			if err != nil {
				return respondError(c, err)
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// currentClaims returns the session set by JWTMiddleware.
func currentClaims(c echo.Context) *utils.Claims {
	claims, _ := c.Get(claimsKey).(*utils.Claims)
	return claims
}

// RequestLogger writes one zerolog line per request.
func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logging.Info()
			switch {
			case v.Status >= 500:
				event = logging.Error().Err(v.Error)
			case v.Status >= 400:
				event = logging.Warn()
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	})
}
