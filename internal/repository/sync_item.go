package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/mindtab/mindtab/internal/model"
)

type SyncItemRepository interface {
	Upsert(ctx context.Context, items []*model.SyncItem) error
	Items(userID, kind string) ([]*model.SyncItem, error)
	Count(userID, kind string) (int, error)
}

type syncItemRepository struct {
	db *sqlx.DB
}

func NewSyncItemRepository(db *sqlx.DB) SyncItemRepository {
	return &syncItemRepository{db: db}
}

// Upsert writes all items in one transaction. An item whose (user, kind, url)
// already exists replaces the stored title, favicon, folder and timestamps.
func (r *syncItemRepository) Upsert(ctx context.Context, items []*model.SyncItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit

	query := `INSERT INTO sync_items (id, user_id, kind, title, url, favicon_url, parent_folder, added_at, synced_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          ON CONFLICT (user_id, kind, url) DO UPDATE SET
	              title = excluded.title,
	              favicon_url = excluded.favicon_url,
	              parent_folder = excluded.parent_folder,
	              added_at = excluded.added_at,
	              synced_at = excluded.synced_at`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		_, err := stmt.ExecContext(ctx,
			item.ID,
			item.UserID,
			item.Kind,
			item.Title,
			item.URL,
			item.FaviconURL,
			item.ParentFolder,
			item.AddedAt,
			item.SyncedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *syncItemRepository) Items(userID, kind string) ([]*model.SyncItem, error) {
	var items []*model.SyncItem
	query := `SELECT * FROM sync_items WHERE user_id = $1 AND kind = $2 ORDER BY synced_at DESC, title ASC`

	err := r.db.Select(&items, query, userID, kind)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *syncItemRepository) Count(userID, kind string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM sync_items WHERE user_id = $1 AND kind = $2`
	err := r.db.QueryRow(query, userID, kind).Scan(&count)
	return count, err
}
