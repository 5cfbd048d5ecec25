package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mindtab/mindtab/internal/model"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

type SessionRepository interface {
	Create(session *model.Session) error
	ByTokenHash(tokenHash string) (*model.Session, error)
	Sessions(userID string) ([]*model.Session, error)
	Touch(sessionID string, at time.Time) error
	Delete(userID, sessionID string) error
	DeleteExpired(now time.Time) (int64, error)
}

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *model.Session) error {
	query := `INSERT INTO sessions (id, user_id, token_hash, name, expires_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.Name,
		session.ExpiresAt,
		session.CreatedAt,
	)

	return err
}

func (r *sessionRepository) ByTokenHash(tokenHash string) (*model.Session, error) {
	session := &model.Session{}
	query := `SELECT * FROM sessions WHERE token_hash = $1`

	err := r.db.Get(session, query, tokenHash)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}

	return session, err
}

func (r *sessionRepository) Sessions(userID string) ([]*model.Session, error) {
	var sessions []*model.Session
	query := `SELECT * FROM sessions WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&sessions, query, userID)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *sessionRepository) Touch(sessionID string, at time.Time) error {
	_, err := r.db.Exec(`UPDATE sessions SET last_used_at = $1 WHERE id = $2`, at, sessionID)
	return err
}

func (r *sessionRepository) Delete(userID, sessionID string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = $1 AND user_id = $2`, sessionID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (r *sessionRepository) DeleteExpired(now time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
