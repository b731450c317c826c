package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
)

// Error codes returned in the "code" field of every error body.
const (
	CodeValidation       = "validation_error"
	CodeDuplicateUser    = "duplicate_username"
	CodeInvalidCreds     = "invalid_credentials"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeRotationRequired = "password_rotation_required"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeRateLimited      = "rate_limited"
	CodeInternal         = "internal_error"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Code    string   `json:"code"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// NewHTTPErrorHandler maps domain errors to status codes, logs anything it
// does not recognise and renders errorResponse without leaking internals.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if status == http.StatusUnauthorized {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="ventes-api"`)
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorResponse{Code: CodeValidation, Error: "validation failed", Details: ve.Fields}
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, errorResponse{Code: CodeValidation, Error: "validation failed"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Code: CodeDuplicateUser, Error: "username already exists"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Code: CodeInvalidCreds, Error: "invalid username or password"}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, errorResponse{Code: CodeUnauthorized, Error: "missing or invalid token"}
	case errors.Is(err, domain.ErrPasswordRotationRequired):
		return http.StatusForbidden, errorResponse{Code: CodeRotationRequired, Error: "password must be changed before continuing"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Code: CodeForbidden, Error: "access forbidden"}
	case errors.Is(err, domain.ErrSaleNotFound):
		return http.StatusNotFound, errorResponse{Code: CodeNotFound, Error: "sale not found"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Code: CodeNotFound, Error: "user not found"}
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, errorResponse{Code: CodeRateLimited, Error: "too many requests"}
	}

	// Echo's own errors: unknown routes, wrong methods, oversized bodies.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Code: codeForStatus(he.Code), Error: fmt.Sprintf("%v", he.Message)}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Code: CodeInternal, Error: "internal server error"}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case http.StatusTooManyRequests:
		return CodeRateLimited
	default:
		return CodeInternal
	}
}
