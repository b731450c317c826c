package domain

import (
	"regexp"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	UsernameMinLen    = 3
	UsernameMaxLen    = 20
	PasswordMinLength = 8
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// User models an authenticated actor in the system.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	MustRotate   bool      `json:"must_rotate_password"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// ValidateCredentials checks the registration rules for a username/password pair.
func ValidateCredentials(username, password string) error {
	var fields []string
	if username == "" {
		fields = append(fields, "username is required")
	} else if !usernamePattern.MatchString(username) {
		fields = append(fields, "username must be 3-20 characters of letters, digits or underscore")
	}
	if verr := ValidatePassword(password); verr != nil {
		fields = append(fields, verr.Fields...)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidatePassword checks the password strength rule. It returns nil when the
// password is acceptable.
func ValidatePassword(password string) *ValidationError {
	switch {
	case password == "":
		return &ValidationError{Fields: []string{"password is required"}}
	case len([]rune(password)) < PasswordMinLength:
		return &ValidationError{Fields: []string{"password must be at least 8 characters"}}
	}
	return nil
}
