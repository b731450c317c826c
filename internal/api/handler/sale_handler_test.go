package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gestion-ventes/ventes-api/internal/api/metrics"
	"github.com/gestion-ventes/ventes-api/internal/core/domain"
)

type stubSaleService struct {
	listFn   func(ctx context.Context) ([]*domain.Sale, error)
	getFn    func(ctx context.Context, id int64) (*domain.Sale, error)
	createFn func(ctx context.Context, in domain.SaleInput) (*domain.Sale, error)
	updateFn func(ctx context.Context, id int64, in domain.SaleInput) (*domain.Sale, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (s *stubSaleService) ListSales(ctx context.Context) ([]*domain.Sale, error) {
	return s.listFn(ctx)
}

func (s *stubSaleService) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	return s.getFn(ctx, id)
}

func (s *stubSaleService) CreateSale(ctx context.Context, in domain.SaleInput) (*domain.Sale, error) {
	return s.createFn(ctx, in)
}

func (s *stubSaleService) UpdateSale(ctx context.Context, id int64, in domain.SaleInput) (*domain.Sale, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubSaleService) DeleteSale(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

var saleTime = time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)

func newSaleHandler(stub *stubSaleService) *SaleHandler {
	return NewSaleHandler(stub, metrics.NewNop(), zerolog.Nop())
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func TestSaleHandler_List_Empty(t *testing.T) {
	e := newTestEcho()
	handler := newSaleHandler(&stubSaleService{
		listFn: func(ctx context.Context) ([]*domain.Sale, error) { return nil, nil },
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/ventes", nil), rec)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Fatalf("expected empty array, got %q", got)
	}
}

func TestSaleHandler_Get(t *testing.T) {
	e := newTestEcho()
	handler := newSaleHandler(&stubSaleService{
		getFn: func(ctx context.Context, id int64) (*domain.Sale, error) {
			if id != 5 {
				t.Fatalf("unexpected id %d", id)
			}
			return &domain.Sale{NumProduit: 5, Design: "Widget", Prix: 9.99, Quantite: 5, CreatedAt: saleTime, UpdatedAt: saleTime}, nil
		},
	})

	rec := httptest.NewRecorder()
	c := withID(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/ventes/5", nil), rec), "5")

	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["numProduit"] != float64(5) || resp["design"] != "Widget" || resp["prix"] != 9.99 || resp["quantite"] != float64(5) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp["created_at"] != resp["updated_at"] {
		t.Fatalf("timestamps differ: %+v", resp)
	}
}

func TestSaleHandler_Get_BadID(t *testing.T) {
	e := newTestEcho()
	handler := newSaleHandler(&stubSaleService{
		getFn: func(ctx context.Context, id int64) (*domain.Sale, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	})

	for _, id := range []string{"abc", "0", "-3", "1.5"} {
		c := withID(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/ventes/x", nil), httptest.NewRecorder()), id)
		if err := handler.Get(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("id %q: expected ErrValidation, got %v", id, err)
		}
	}
}

func TestSaleHandler_Get_NotFound(t *testing.T) {
	e := newTestEcho()
	handler := newSaleHandler(&stubSaleService{
		getFn: func(ctx context.Context, id int64) (*domain.Sale, error) { return nil, domain.ErrSaleNotFound },
	})

	c := withID(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/ventes/99", nil), httptest.NewRecorder()), "99")
	if err := handler.Get(c); !errors.Is(err, domain.ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got %v", err)
	}
}

func TestSaleHandler_Create(t *testing.T) {
	e := newTestEcho()
	handler := newSaleHandler(&stubSaleService{
		createFn: func(ctx context.Context, in domain.SaleInput) (*domain.Sale, error) {
			if in.Design != "Widget" || in.Prix != 9.99 || in.Quantite != 5 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Sale{NumProduit: 1, Design: in.Design, Prix: in.Prix, Quantite: in.Quantite, CreatedAt: saleTime, UpdatedAt: saleTime}, nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/ventes", `{"design":"Widget","prix":9.99,"quantite":5}`), rec)
	c.Set(ClaimsKey, &domain.Claims{Username: "alice", Role: domain.RoleUser})

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/api/ventes/1" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestSaleHandler_Create_ZeroValuesAccepted(t *testing.T) {
	e := newTestEcho()
	called := false
	handler := newSaleHandler(&stubSaleService{
		createFn: func(ctx context.Context, in domain.SaleInput) (*domain.Sale, error) {
			called = true
			return &domain.Sale{NumProduit: 2, Design: in.Design}, nil
		},
	})

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/ventes", `{"design":"Free sample","prix":0,"quantite":0}`), httptest.NewRecorder())
	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("service not called")
	}
}

func TestSaleHandler_Create_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"missing fields", `{}`, []string{"design is required", "prix is required", "quantite is required"}},
		{"negative values", `{"design":"x","prix":-1,"quantite":-2}`, []string{"prix must be greater than or equal to 0", "quantite must be greater than or equal to 0"}},
		{"wrong type", `{"design":"x","prix":"cheap","quantite":1}`, []string{"request body must be valid JSON with correctly typed fields"}},
		{"fractional quantity", `{"design":"x","prix":1,"quantite":1.5}`, []string{"request body must be valid JSON with correctly typed fields"}},
		{"quantity above int4", `{"design":"x","prix":1,"quantite":3000000000}`, []string{"quantite must be at most 2147483647"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			handler := newSaleHandler(&stubSaleService{
				createFn: func(ctx context.Context, in domain.SaleInput) (*domain.Sale, error) {
					t.Fatalf("should not be called")
					return nil, nil
				},
			})

			c := e.NewContext(jsonRequest(http.MethodPost, "/api/ventes", tt.body), httptest.NewRecorder())
			err := handler.Create(c)

			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(ve.Fields) != len(tt.fields) {
				t.Fatalf("expected %v, got %v", tt.fields, ve.Fields)
			}
			for i := range tt.fields {
				if ve.Fields[i] != tt.fields[i] {
					t.Fatalf("expected %v, got %v", tt.fields, ve.Fields)
				}
			}
		})
	}
}

func TestSaleHandler_Update(t *testing.T) {
	e := newTestEcho()
	later := saleTime.Add(time.Minute)
	handler := newSaleHandler(&stubSaleService{
		updateFn: func(ctx context.Context, id int64, in domain.SaleInput) (*domain.Sale, error) {
			if id != 4 || in.Design != "Widget v2" || in.Prix != 12.5 || in.Quantite != 3 {
				t.Fatalf("unexpected args: %d %+v", id, in)
			}
			return &domain.Sale{NumProduit: id, Design: in.Design, Prix: in.Prix, Quantite: in.Quantite, CreatedAt: saleTime, UpdatedAt: later}, nil
		},
	})

	rec := httptest.NewRecorder()
	c := withID(e.NewContext(jsonRequest(http.MethodPut, "/api/ventes/4", `{"design":"Widget v2","prix":12.5,"quantite":3}`), rec), "4")

	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSaleHandler_Update_NotFound(t *testing.T) {
	e := newTestEcho()
	handler := newSaleHandler(&stubSaleService{
		updateFn: func(ctx context.Context, id int64, in domain.SaleInput) (*domain.Sale, error) {
			return nil, domain.ErrSaleNotFound
		},
	})

	c := withID(e.NewContext(jsonRequest(http.MethodPut, "/api/ventes/9", `{"design":"a","prix":1,"quantite":1}`), httptest.NewRecorder()), "9")
	if err := handler.Update(c); !errors.Is(err, domain.ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got %v", err)
	}
}

func TestSaleHandler_Delete(t *testing.T) {
	e := newTestEcho()
	deleted := map[int64]bool{}
	handler := newSaleHandler(&stubSaleService{
		deleteFn: func(ctx context.Context, id int64) error {
			if deleted[id] {
				return domain.ErrSaleNotFound
			}
			deleted[id] = true
			return nil
		},
	})

	rec := httptest.NewRecorder()
	c := withID(e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/ventes/3", nil), rec), "3")
	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	c = withID(e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/ventes/3", nil), httptest.NewRecorder()), "3")
	if err := handler.Delete(c); !errors.Is(err, domain.ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound on second delete, got %v", err)
	}
}
