package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
	"github.com/gestion-ventes/ventes-api/internal/core/ports"
)

const dummyPassword = "dummy-password-for-timing"

// AuthService implements registration, login and credential maintenance.
type AuthService struct {
	repo      ports.UserRepository
	hasher    ports.PasswordHasher
	tokens    ports.TokenIssuer
	tokenTTL  time.Duration
	dummyHash string
	log       zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	s := &AuthService{repo: repo, hasher: hasher, tokens: tokens, tokenTTL: tokenTTL, log: log}

	// Unknown usernames are checked against this hash so that a miss costs
	// the same as a wrong password.
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		log.Warn().Err(err).Msg("could not precompute dummy password hash")
	}
	s.dummyHash = dummy
	return s
}

// CreateUser validates and stores a new account with the given role.
func (s *AuthService) CreateUser(ctx context.Context, username, password, role string, mustRotate bool) (*domain.User, error) {
	if err := domain.ValidateCredentials(username, password); err != nil {
		return nil, err
	}
	if !domain.IsValidRole(role) {
		return nil, domain.NewValidationError("role must be one of: admin user")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		MustRotate:   mustRotate,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Register creates a regular user account.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.CreateUser(ctx, username, password, domain.RoleUser, false)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

func (s *AuthService) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

// VerifyLogin returns the user owning username when password matches.
// Unknown users and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) VerifyLogin(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		s.hasher.Verify(password, s.dummyHash)
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Login checks the credentials and returns a signed session token.
// Hashes produced with weaker parameters are upgraded in place.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.VerifyLogin(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, password)
	}

	token, err := s.tokens.Issue(user, s.tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

func (s *AuthService) rehash(ctx context.Context, user *domain.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Warn().Err(err).Str("username", user.Username).Msg("rehash failed")
		return
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash, user.MustRotate); err != nil {
		s.log.Warn().Err(err).Str("username", user.Username).Msg("failed to store upgraded hash")
		return
	}
	user.PasswordHash = hash
	s.log.Info().Str("username", user.Username).Msg("password hash upgraded")
}

// ChangePassword replaces the password of username and clears any pending
// rotation requirement.
func (s *AuthService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	user, err := s.VerifyLogin(ctx, username, currentPassword)
	if err != nil {
		return err
	}
	if verr := domain.ValidatePassword(newPassword); verr != nil {
		return verr
	}
	if newPassword == currentPassword {
		return domain.NewValidationError("new_password must differ from current_password")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash, false); err != nil {
		return err
	}

	s.log.Info().Str("username", username).Bool("was_rotation", user.MustRotate).Msg("password changed")
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}
