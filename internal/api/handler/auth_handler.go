package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gestion-ventes/ventes-api/internal/api/metrics"
	"github.com/gestion-ventes/ventes-api/internal/core/domain"
	"github.com/gestion-ventes/ventes-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, m *metrics.Metrics, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, metrics: m, log: log}
}

// Register creates a new user account with the "user" role.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Username and password"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		h.metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			h.metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		case errors.Is(err, domain.ErrValidation):
			h.metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		default:
			h.metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	h.metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login authenticates a user and returns a signed bearer token.
// Credentials are read from HTTP Basic auth when present, otherwise from the
// JSON body.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  false  "Login credentials (or HTTP Basic)"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if username, password, ok := c.Request().BasicAuth(); ok {
		req = credentialsRequest{Username: username, Password: password}
		if err := c.Validate(&req); err != nil {
			return err
		}
	} else if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			h.log.Info().Str("username", req.Username).Str("remote_ip", c.RealIP()).Msg("login rejected")
		} else {
			h.metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	h.metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		TokenType: "Bearer",
		User:      toUserResponse(user),
	})
}
