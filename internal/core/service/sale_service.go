package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
	"github.com/gestion-ventes/ventes-api/internal/core/ports"
)

type SaleService struct {
	repo   ports.SaleRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewSaleService(repo ports.SaleRepository, logger zerolog.Logger) *SaleService {
	return &SaleService{repo: repo, logger: logger, now: time.Now}
}

func (s *SaleService) ListSales(ctx context.Context) ([]*domain.Sale, error) {
	return s.repo.List(ctx)
}

func (s *SaleService) GetSale(ctx context.Context, numProduit int64) (*domain.Sale, error) {
	return s.repo.Get(ctx, numProduit)
}

// CreateSale validates in and stores a new sale whose created_at and
// updated_at are the same instant.
func (s *SaleService) CreateSale(ctx context.Context, in domain.SaleInput) (*domain.Sale, error) {
	in.Design = strings.TrimSpace(in.Design)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.timestamp()
	created, err := s.repo.Create(ctx, &domain.Sale{
		Design:    in.Design,
		Prix:      in.Prix,
		Quantite:  in.Quantite,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create sale")
		return nil, err
	}

	s.logger.Info().Int64("num_produit", created.NumProduit).Str("design", created.Design).Msg("sale created")
	return created, nil
}

// UpdateSale fully replaces the mutable fields of an existing sale.
// It never creates a missing one.
func (s *SaleService) UpdateSale(ctx context.Context, numProduit int64, in domain.SaleInput) (*domain.Sale, error) {
	in.Design = strings.TrimSpace(in.Design)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, &domain.Sale{
		NumProduit: numProduit,
		Design:     in.Design,
		Prix:       in.Prix,
		Quantite:   in.Quantite,
		UpdatedAt:  s.timestamp(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("num_produit", numProduit).Msg("sale updated")
	return updated, nil
}

func (s *SaleService) DeleteSale(ctx context.Context, numProduit int64) error {
	if err := s.repo.Delete(ctx, numProduit); err != nil {
		return err
	}
	s.logger.Info().Int64("num_produit", numProduit).Msg("sale deleted")
	return nil
}

// timestamp is truncated to the precision Postgres stores.
func (s *SaleService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
