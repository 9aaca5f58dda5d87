package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/smartparking/backend/internal/apperr"
	"github.com/smartparking/backend/internal/logging"
	"github.com/smartparking/backend/internal/services"
)

type errorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"invalid id"`
}

type successResponse struct {
	Success bool `json:"success" example:"true"`
}

var ok = successResponse{Success: true}

// respondError converts err into the JSON error body. Internal detail is logged, never sent.
func respondError(c echo.Context, err error) error {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		logging.Error().Err(err).
			Str("kind", kind.String()).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("request failed")
	}
	return c.JSON(status, errorResponse{Success: false, Error: apperr.Message(err)})
}

// httpErrorHandler renders echo's own errors (unknown route, rate limit, panics) in the
// same shape as handler errors.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if m, isString := he.Message.(string); isString {
			msg = m
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(he.Code)
			return
		}
		_ = c.JSON(he.Code, errorResponse{Success: false, Error: msg})
		return
	}
	_ = respondError(c, err)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid id")
	}
	return uint(id), nil
}

// bind decodes the JSON body. Field rules are checked by the service that owns the input.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid payload", err)
	}
	return nil
}

type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{v: services.NewValidator()}
}

func (rv *requestValidator) Validate(i any) error {
	if err := rv.v.Struct(i); err != nil {
		return services.ValidationError(err)
	}
	return nil
}
