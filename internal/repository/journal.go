package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mindtab/mindtab/internal/model"
)

var (
	ErrJournalNotFound = errors.New("journal not found")
)

type JournalRepository interface {
	Create(journal *model.Journal) error
	ByID(userID, journalID string) (*model.Journal, error)
	Journals(userID, projectID string, limit int) ([]*model.Journal, error)
	Update(journal *model.Journal) error
	Delete(userID, journalID string) error
}

type journalRepository struct {
	db *sqlx.DB
}

func NewJournalRepository(db *sqlx.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) Create(journal *model.Journal) error {
	query := `INSERT INTO journals (id, user_id, project_id, title, content, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		journal.ID,
		journal.UserID,
		journal.ProjectID,
		journal.Title,
		journal.Content,
		journal.CreatedAt,
		journal.UpdatedAt,
	)

	return err
}

func (r *journalRepository) ByID(userID, journalID string) (*model.Journal, error) {
	journal := &model.Journal{}
	query := `SELECT * FROM journals WHERE id = $1 AND user_id = $2`

	err := r.db.Get(journal, query, journalID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrJournalNotFound
	}

	return journal, err
}

// Journals lists the user's journals, most recently edited first.
// An empty projectID matches all projects, limit <= 0 means no limit.
func (r *journalRepository) Journals(userID, projectID string, limit int) ([]*model.Journal, error) {
	var journals []*model.Journal

	query := `SELECT * FROM journals WHERE user_id = $1 AND ($2 = '' OR project_id = $3) ORDER BY updated_at DESC`
	args := []any{userID, projectID, projectID}
	if limit > 0 {
		query += ` LIMIT $4`
		args = append(args, limit)
	}

	err := r.db.Select(&journals, query, args...)
	if err != nil {
		return nil, err
	}

	return journals, nil
}

func (r *journalRepository) Update(journal *model.Journal) error {
	query := `UPDATE journals SET project_id = $1, title = $2, content = $3, updated_at = $4
	          WHERE id = $5 AND user_id = $6`

	result, err := r.db.Exec(query, journal.ProjectID, journal.Title, journal.Content, time.Now(), journal.ID, journal.UserID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrJournalNotFound
	}

	return nil
}

func (r *journalRepository) Delete(userID, journalID string) error {
	query := `DELETE FROM journals WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(query, journalID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrJournalNotFound
	}

	return nil
}
