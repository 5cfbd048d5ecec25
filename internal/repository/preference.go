package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/mindtab/mindtab/internal/model"
)

type PreferenceRepository interface {
	All(ctx context.Context, userID string) ([]model.Preference, error)
	SetAll(ctx context.Context, userID string, values map[string]string) error
}

type preferenceRepository struct {
	db *sqlx.DB
}

func NewPreferenceRepository(db *sqlx.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) All(ctx context.Context, userID string) ([]model.Preference, error) {
	var prefs []model.Preference
	query := `SELECT * FROM preferences WHERE user_id = $1 ORDER BY key ASC`

	err := r.db.SelectContext(ctx, &prefs, query, userID)
	if err != nil {
		return nil, err
	}

	return prefs, nil
}

// SetAll upserts every key in one transaction. Keys not in values are left alone.
func (r *preferenceRepository) SetAll(ctx context.Context, userID string, values map[string]string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit

	query := `INSERT INTO preferences (user_id, key, value) VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, key) DO UPDATE SET value = excluded.value`

	for key, value := range values {
		_, err := tx.ExecContext(ctx, query, userID, key, value)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
