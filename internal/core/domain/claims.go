package domain

import "time"

// Claims is the identity carried by a verified session token.
type Claims struct {
	ID         string
	Username   string
	Role       string
	MustRotate bool
	IssuedAt   time.Time
	ExpiresAt  time.Time
}
