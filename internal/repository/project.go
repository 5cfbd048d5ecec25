package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mindtab/mindtab/internal/model"
)

var (
	ErrProjectNotFound = errors.New("project not found")
)

type ProjectRepository interface {
	Create(project *model.Project) error
	ByID(userID, projectID string) (*model.Project, error)
	Projects(userID string, includeArchived bool) ([]*model.Project, error)
	CountActive(userID string) (int, error)
	Update(project *model.Project) error
	SetStatus(userID, projectID, status string) error
}

type projectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *model.Project) error {
	query := `INSERT INTO projects (id, user_id, name, description, status, position, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		project.ID,
		project.UserID,
		project.Name,
		project.Description,
		project.Status,
		project.Position,
		project.CreatedAt,
		project.UpdatedAt,
	)

	return err
}

func (r *projectRepository) ByID(userID, projectID string) (*model.Project, error) {
	project := &model.Project{}
	query := `SELECT * FROM projects WHERE id = $1 AND user_id = $2`

	err := r.db.Get(project, query, projectID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProjectNotFound
	}

	return project, err
}

func (r *projectRepository) Projects(userID string, includeArchived bool) ([]*model.Project, error) {
	var projects []*model.Project

	query := `SELECT * FROM projects WHERE user_id = $1 AND status = $2 ORDER BY position ASC, created_at ASC`
	args := []any{userID, model.ProjectStatusActive}
	if includeArchived {
		query = `SELECT * FROM projects WHERE user_id = $1 ORDER BY status ASC, position ASC, created_at ASC`
		args = args[:1]
	}

	err := r.db.Select(&projects, query, args...)
	if err != nil {
		return nil, err
	}

	return projects, nil
}

func (r *projectRepository) CountActive(userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM projects WHERE user_id = $1 AND status = $2`
	err := r.db.QueryRow(query, userID, model.ProjectStatusActive).Scan(&count)
	return count, err
}

func (r *projectRepository) Update(project *model.Project) error {
	query := `UPDATE projects SET name = $1, description = $2, position = $3, updated_at = $4
	          WHERE id = $5 AND user_id = $6`

	result, err := r.db.Exec(query, project.Name, project.Description, project.Position, time.Now(), project.ID, project.UserID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProjectNotFound
	}

	return nil
}

func (r *projectRepository) SetStatus(userID, projectID, status string) error {
	query := `UPDATE projects SET status = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`

	result, err := r.db.Exec(query, status, time.Now(), projectID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProjectNotFound
	}

	return nil
}
