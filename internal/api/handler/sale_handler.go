package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gestion-ventes/ventes-api/internal/api/metrics"
	"github.com/gestion-ventes/ventes-api/internal/core/domain"
	"github.com/gestion-ventes/ventes-api/internal/core/ports"
)

// SaleHandler handles HTTP requests for sale operations.
type SaleHandler struct {
	service ports.SaleService
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewSaleHandler(service ports.SaleService, m *metrics.Metrics, log zerolog.Logger) *SaleHandler {
	return &SaleHandler{service: service, metrics: m, log: log}
}

// parseID reads the :id path parameter as a positive sale number.
func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id must be a positive integer")
	}
	return id, nil
}

// List handles GET /api/ventes.
//
// @Summary      List sales
// @Tags         ventes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   saleResponse
// @Failure      401  {object}  errorResponse
// @Failure      429  {object}  errorResponse
// @Router       /api/ventes [get]
func (h *SaleHandler) List(c echo.Context) error {
	sales, err := h.service.ListSales(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSaleResponses(sales))
}

// Get handles GET /api/ventes/:id.
//
// @Summary      Get a sale by number
// @Tags         ventes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Sale number"
// @Success      200  {object}  saleResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/ventes/{id} [get]
func (h *SaleHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sale, err := h.service.GetSale(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSaleResponse(sale))
}

// Create handles POST /api/ventes.
//
// @Summary      Create a sale
// @Tags         ventes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      saleRequest  true  "Sale fields"
// @Success      201   {object}  saleResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/ventes [post]
func (h *SaleHandler) Create(c echo.Context) error {
	var req saleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sale, err := h.service.CreateSale(c.Request().Context(), toSaleInput(req))
	if err != nil {
		return err
	}

	h.metrics.SalesMutationsTotal.WithLabelValues("create").Inc()
	h.log.Info().
		Int64("num_produit", sale.NumProduit).
		Str("username", actor(c)).
		Msg("sale created")

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/ventes/%d", sale.NumProduit))
	return c.JSON(http.StatusCreated, toSaleResponse(sale))
}

// Update handles PUT /api/ventes/:id. Every field is replaced.
//
// @Summary      Replace a sale
// @Tags         ventes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int          true  "Sale number"
// @Param        body  body      saleRequest  true  "Sale fields"
// @Success      200   {object}  saleResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/ventes/{id} [put]
func (h *SaleHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req saleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sale, err := h.service.UpdateSale(c.Request().Context(), id, toSaleInput(req))
	if err != nil {
		return err
	}

	h.metrics.SalesMutationsTotal.WithLabelValues("update").Inc()
	h.log.Info().Int64("num_produit", id).Str("username", actor(c)).Msg("sale updated")
	return c.JSON(http.StatusOK, toSaleResponse(sale))
}

// Delete handles DELETE /api/ventes/:id.
//
// @Summary      Delete a sale
// @Tags         ventes
// @Security     BearerAuth
// @Param        id   path  int  true  "Sale number"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/ventes/{id} [delete]
func (h *SaleHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteSale(c.Request().Context(), id); err != nil {
		return err
	}

	h.metrics.SalesMutationsTotal.WithLabelValues("delete").Inc()
	h.log.Info().Int64("num_produit", id).Str("username", actor(c)).Msg("sale deleted")
	return c.NoContent(http.StatusNoContent)
}

func actor(c echo.Context) string {
	if claims, err := ctxClaims(c); err == nil {
		return claims.Username
	}
	return ""
}
