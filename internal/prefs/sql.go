package prefs

import (
	"context"

	"github.com/mindtab/mindtab/internal/repository"
)

// SQLKV stores one user's preferences in the preferences table.
type SQLKV struct {
	repo   repository.PreferenceRepository
	userID string
}

func NewSQLKV(repo repository.PreferenceRepository, userID string) *SQLKV {
	return &SQLKV{repo: repo, userID: userID}
}

func (kv *SQLKV) Load(ctx context.Context) (map[string]string, error) {
	rows, err := kv.repo.All(ctx, kv.userID)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Key] = r.Value
	}
	return values, nil
}

func (kv *SQLKV) Save(ctx context.Context, values map[string]string) error {
	return kv.repo.SetAll(ctx, kv.userID, values)
}
