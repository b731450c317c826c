package ports

import (
	"context"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
}
