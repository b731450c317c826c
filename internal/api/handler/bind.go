package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
)

// bindAndValidate decodes the request body into req and runs the struct rules.
// Decoding failures are reported as validation errors so the client gets a
// 400 with the validation_error code.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("request body must be valid JSON with correctly typed fields")
	}
	return c.Validate(req)
}
