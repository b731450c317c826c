package ports

import (
	"context"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
)

// SaleService defines use-case operations for sales.
type SaleService interface {
	ListSales(ctx context.Context) ([]*domain.Sale, error)
	GetSale(ctx context.Context, numProduit int64) (*domain.Sale, error)
	CreateSale(ctx context.Context, in domain.SaleInput) (*domain.Sale, error)
	UpdateSale(ctx context.Context, numProduit int64, in domain.SaleInput) (*domain.Sale, error)
	DeleteSale(ctx context.Context, numProduit int64) error
}
