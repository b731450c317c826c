package ports

import (
	"context"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
)

// UserRepository defines the persistence operations of the credential store.
type UserRepository interface {
	// Create inserts user and returns it with its assigned ID.
	// Returns domain.ErrUserExists when the username is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// UpdatePassword replaces the stored hash and the rotation flag.
	UpdatePassword(ctx context.Context, id int64, passwordHash string, mustRotate bool) error
	HasAdmin(ctx context.Context) (bool, error)
	List(ctx context.Context) ([]*domain.User, error)
}
