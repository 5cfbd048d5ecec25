package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mindtab/mindtab/internal/model"
)

type ProfileRepository interface {
	ByUserID(userID string) (*model.Profile, error)
	Create(profile *model.Profile) error
	Update(userID, name, timezone string) error
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) ByUserID(userID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Get(&profile, `SELECT * FROM profiles WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Create(profile *model.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.Timezone == "" {
		profile.Timezone = "UTC"
	}
	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = now
	}

	_, err := r.db.Exec(`
		INSERT INTO profiles (id, user_id, name, timezone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, profile.ID, profile.UserID, profile.Name, profile.Timezone, profile.CreatedAt, profile.UpdatedAt)
	return err
}

func (r *profileRepository) Update(userID, name, timezone string) error {
	result, err := r.db.Exec(`
		UPDATE profiles
		SET name = $1, timezone = $2, updated_at = $3
		WHERE user_id = $4
	`, name, timezone, time.Now(), userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}
