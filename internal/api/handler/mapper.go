package handler

import (
	"time"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Username:           u.Username,
		Role:               u.Role,
		MustRotatePassword: u.MustRotate,
		CreatedAt:          formatTime(u.CreatedAt),
	}
}

func toSaleResponse(s *domain.Sale) saleResponse {
	return saleResponse{
		NumProduit: s.NumProduit,
		Design:     s.Design,
		Prix:       s.Prix,
		Quantite:   s.Quantite,
		CreatedAt:  formatTime(s.CreatedAt),
		UpdatedAt:  formatTime(s.UpdatedAt),
	}
}

func toSaleResponses(sales []*domain.Sale) []saleResponse {
	out := make([]saleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, toSaleResponse(s))
	}
	return out
}

// toSaleInput assumes req already passed validation, so every pointer is set.
func toSaleInput(req saleRequest) domain.SaleInput {
	return domain.SaleInput{
		Design:   *req.Design,
		Prix:     *req.Prix,
		Quantite: *req.Quantite,
	}
}
