package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
)

// BootstrapConfig controls the creation of the initial administrator.
type BootstrapConfig struct {
	Username string
	// Password is used as-is when set; otherwise a random one is generated.
	Password string
	// PasswordFile receives a generated password (mode 0600). When empty the
	// generated password is logged once.
	PasswordFile string
}

// BootstrapAdmin creates the first admin account when none exists. The account
// is flagged so that its password must be changed before any other use.
// It reports whether an account was created.
func (s *AuthService) BootstrapAdmin(ctx context.Context, cfg BootstrapConfig) (bool, error) {
	exists, err := s.repo.HasAdmin(ctx)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return false, nil
	}

	username := cfg.Username
	if username == "" {
		username = "admin"
	}

	password := cfg.Password
	generated := password == ""
	if generated {
		password, err = randomPassword()
		if err != nil {
			return false, err
		}
	}

	user, err := s.CreateUser(ctx, username, password, domain.RoleAdmin, true)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			s.log.Warn().Str("username", username).Msg("bootstrap admin username already taken, skipping")
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}

	event := s.log.Warn().Int64("user_id", user.ID).Str("username", username)
	switch {
	case !generated:
		event.Msg("bootstrap admin created from configured password; rotation required")
	case cfg.PasswordFile != "":
		if err := os.WriteFile(cfg.PasswordFile, []byte(password+"\n"), 0o600); err != nil {
			return true, fmt.Errorf("write admin password file: %w", err)
		}
		event.Str("password_file", cfg.PasswordFile).Msg("bootstrap admin created; rotation required")
	default:
		event.Str("password", password).Msg("bootstrap admin created with generated password; rotation required")
	}
	return true, nil
}

func randomPassword() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
