package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubSaleRepo struct {
	rows      map[int64]*domain.Sale
	nextID    int64
	createErr error
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{rows: make(map[int64]*domain.Sale)}
}

func (r *stubSaleRepo) List(context.Context) ([]*domain.Sale, error) {
	out := make([]*domain.Sale, 0, len(r.rows))
	for id := int64(1); id <= r.nextID; id++ {
		if s, ok := r.rows[id]; ok {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) Get(_ context.Context, id int64) (*domain.Sale, error) {
	s, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrSaleNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubSaleRepo) Create(_ context.Context, s *domain.Sale) (*domain.Sale, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	clone := *s
	clone.NumProduit = r.nextID
	r.rows[clone.NumProduit] = &clone
	out := clone
	return &out, nil
}

func (r *stubSaleRepo) Update(_ context.Context, s *domain.Sale) (*domain.Sale, error) {
	existing, ok := r.rows[s.NumProduit]
	if !ok {
		return nil, domain.ErrSaleNotFound
	}
	existing.Design = s.Design
	existing.Prix = s.Prix
	existing.Quantite = s.Quantite
	existing.UpdatedAt = s.UpdatedAt
	out := *existing
	return &out, nil
}

func (r *stubSaleRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.rows[id]; !ok {
		return domain.ErrSaleNotFound
	}
	delete(r.rows, id)
	return nil
}

func newTestSaleService(repo *stubSaleRepo, clock *time.Time) *SaleService {
	svc := NewSaleService(repo, zerolog.Nop())
	svc.now = func() time.Time { return *clock }
	return svc
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestSaleService_CreateThenGet(t *testing.T) {
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := newStubSaleRepo()
	svc := newTestSaleService(repo, &clock)

	created, err := svc.CreateSale(context.Background(), domain.SaleInput{Design: "Widget", Prix: 9.99, Quantite: 5})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("created_at %v != updated_at %v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := svc.GetSale(context.Background(), created.NumProduit)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	if got.Design != "Widget" || got.Prix != 9.99 || got.Quantite != 5 {
		t.Fatalf("unexpected sale: %+v", got)
	}
}

func TestSaleService_CreateTrimsDesign(t *testing.T) {
	clock := time.Now()
	svc := newTestSaleService(newStubSaleRepo(), &clock)

	created, err := svc.CreateSale(context.Background(), domain.SaleInput{Design: "  Widget  ", Prix: 1, Quantite: 1})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if created.Design != "Widget" {
		t.Fatalf("expected trimmed design, got %q", created.Design)
	}
}

func TestSaleService_CreateValidation(t *testing.T) {
	clock := time.Now()
	repo := newStubSaleRepo()
	svc := newTestSaleService(repo, &clock)

	inputs := []domain.SaleInput{
		{Design: "", Prix: 1, Quantite: 1},
		{Design: "Widget", Prix: -1, Quantite: 1},
		{Design: "Widget", Prix: 1, Quantite: -3},
	}
	for _, in := range inputs {
		if _, err := svc.CreateSale(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation for %+v, got %v", in, err)
		}
	}
	if len(repo.rows) != 0 {
		t.Fatalf("invalid input must not reach the repository")
	}
}

func TestSaleService_CreateRepoError(t *testing.T) {
	clock := time.Now()
	repo := newStubSaleRepo()
	repo.createErr = errors.New("db down")
	svc := newTestSaleService(repo, &clock)

	if _, err := svc.CreateSale(context.Background(), domain.SaleInput{Design: "Widget", Prix: 1, Quantite: 1}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSaleService_UpdateAdvancesUpdatedAt(t *testing.T) {
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestSaleService(newStubSaleRepo(), &clock)

	created, _ := svc.CreateSale(context.Background(), domain.SaleInput{Design: "Widget", Prix: 9.99, Quantite: 5})
	clock = clock.Add(time.Minute)

	updated, err := svc.UpdateSale(context.Background(), created.NumProduit, domain.SaleInput{Design: "Widget v2", Prix: 12.5, Quantite: 3})
	if err != nil {
		t.Fatalf("UpdateSale: %v", err)
	}
	if updated.Design != "Widget v2" || updated.Prix != 12.5 || updated.Quantite != 3 {
		t.Fatalf("unexpected sale: %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("updated_at should advance")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at must not change")
	}
}

func TestSaleService_UpdateMissingDoesNotCreate(t *testing.T) {
	clock := time.Now()
	repo := newStubSaleRepo()
	svc := newTestSaleService(repo, &clock)

	_, err := svc.UpdateSale(context.Background(), 42, domain.SaleInput{Design: "Ghost", Prix: 1, Quantite: 1})
	if !errors.Is(err, domain.ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got %v", err)
	}
	if len(repo.rows) != 0 {
		t.Fatalf("update must not create a record")
	}
}

func TestSaleService_DeleteTwice(t *testing.T) {
	clock := time.Now()
	svc := newTestSaleService(newStubSaleRepo(), &clock)

	created, _ := svc.CreateSale(context.Background(), domain.SaleInput{Design: "Widget", Prix: 1, Quantite: 1})

	if err := svc.DeleteSale(context.Background(), created.NumProduit); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.DeleteSale(context.Background(), created.NumProduit); !errors.Is(err, domain.ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound on second delete, got %v", err)
	}
	if _, err := svc.GetSale(context.Background(), created.NumProduit); !errors.Is(err, domain.ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound after delete, got %v", err)
	}
}

func TestSaleService_ListOrdered(t *testing.T) {
	clock := time.Now()
	svc := newTestSaleService(newStubSaleRepo(), &clock)

	for _, d := range []string{"A", "B", "C"} {
		if _, err := svc.CreateSale(context.Background(), domain.SaleInput{Design: d, Prix: 1, Quantite: 1}); err != nil {
			t.Fatalf("create %s: %v", d, err)
		}
	}

	sales, err := svc.ListSales(context.Background())
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	if len(sales) != 3 {
		t.Fatalf("expected 3 sales, got %d", len(sales))
	}
	for i := 1; i < len(sales); i++ {
		if sales[i-1].NumProduit >= sales[i].NumProduit {
			t.Fatalf("sales not ordered by numProduit")
		}
	}
}
