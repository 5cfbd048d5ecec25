package model

import (
	"time"
)

// Session is an opaque token issued to the browser extension.
// Only the SHA-256 of the token is stored.
type Session struct {
	ID         string     `db:"id" json:"id"`
	UserID     string     `db:"user_id" json:"userId"`
	TokenHash  string     `db:"token_hash" json:"-"`
	Name       string     `db:"name" json:"name"`
	ExpiresAt  time.Time  `db:"expires_at" json:"expiresAt"`
	LastUsedAt *time.Time `db:"last_used_at" json:"lastUsedAt,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
