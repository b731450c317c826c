package ports

import (
	"context"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
)

// SaleRepository defines persistence operations for sales.
// Get, Update and Delete return domain.ErrSaleNotFound for unknown ids.
type SaleRepository interface {
	List(ctx context.Context) ([]*domain.Sale, error)
	Get(ctx context.Context, numProduit int64) (*domain.Sale, error)
	Create(ctx context.Context, s *domain.Sale) (*domain.Sale, error)
	Update(ctx context.Context, s *domain.Sale) (*domain.Sale, error)
	Delete(ctx context.Context, numProduit int64) error
}
