package repository

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mindtab/mindtab/internal/model"
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExpired  = errors.New("token has expired")
	ErrTokenUsed     = errors.New("token has already been used")
)

type TokenRepository interface {
	Create(token *model.Token) error
	ConsumeToken(token string) (*model.Token, error)
	DeleteByUserAndType(userID, tokenType string) error
	CleanupExpired(olderThan time.Duration) (int64, error)
}

type tokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) TokenRepository {
	return &tokenRepository{db: db}
}

// HashToken returns the hex SHA-256 of a raw token. Magic link and session
// tokens are stored hashed.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Create stores the token hashed. token.Token keeps the raw value for the caller.
func (r *tokenRepository) Create(token *model.Token) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO tokens (id, user_id, type, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(query,
		token.ID,
		token.UserID,
		token.Type,
		HashToken(token.Token),
		token.ExpiresAt,
		token.CreatedAt,
	)
	return err
}

// ConsumeToken atomically marks the token as used and returns it.
// Of two concurrent requests only the first succeeds, the second gets ErrTokenNotFound.
func (r *tokenRepository) ConsumeToken(token string) (*model.Token, error) {
	var t model.Token
	now := time.Now()

	query := `
		UPDATE tokens
		SET used_at = $1
		WHERE token = $2
		AND used_at IS NULL
		AND expires_at > $3
		RETURNING *
	`

	err := r.db.Get(&t, query, now, HashToken(token), now)
	if err == sql.ErrNoRows {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *tokenRepository) DeleteByUserAndType(userID, tokenType string) error {
	query := `DELETE FROM tokens WHERE user_id = $1 AND type = $2 AND used_at IS NULL`
	_, err := r.db.Exec(query, userID, tokenType)
	return err
}

// CleanupExpired removes used and expired tokens older than the given duration.
// The server runs it at startup and hourly.
func (r *tokenRepository) CleanupExpired(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	query := `
		DELETE FROM tokens
		WHERE (used_at IS NOT NULL AND used_at < $1)
		   OR (expires_at < $2)
	`
	result, err := r.db.Exec(query, cutoff, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
