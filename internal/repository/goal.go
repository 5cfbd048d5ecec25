package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mindtab/mindtab/internal/model"
)

const (
	GoalSortPosition = "position"
	GoalSortPriority = "priority"
	GoalSortRecent   = "recent"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
)

// GoalFilter narrows a goal listing. Empty fields match everything,
// except that archived goals are only returned when asked for by status.
type GoalFilter struct {
	Status    string
	ProjectID string
	Sort      string
}

type GoalRepository interface {
	Create(goal *model.Goal) error
	ByID(userID, goalID string) (*model.Goal, error)
	Goals(userID string, filter GoalFilter) ([]*model.Goal, error)
	BoardGoals(userID string) ([]model.Goal, error)
	CountByStatus(userID, status string) (int, error)
	Update(goal *model.Goal) error
	Delete(userID, goalID string) error
	UpdatePositions(ctx context.Context, userID string, updates []model.PositionUpdate) error
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(goal *model.Goal) error {
	query := `INSERT INTO goals (id, user_id, project_id, title, description, status, priority, impact, category, type, position, completed_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(query,
		goal.ID,
		goal.UserID,
		goal.ProjectID,
		goal.Title,
		goal.Description,
		goal.Status,
		goal.Priority,
		goal.Impact,
		goal.Category,
		goal.Type,
		goal.Position,
		goal.CompletedAt,
		goal.CreatedAt,
		goal.UpdatedAt,
	)

	return err
}

func (r *goalRepository) ByID(userID, goalID string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM goals WHERE id = $1 AND user_id = $2`

	err := r.db.Get(goal, query, goalID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}

	return goal, err
}

func (r *goalRepository) Goals(userID string, filter GoalFilter) ([]*model.Goal, error) {
	var goals []*model.Goal

	query := `SELECT * FROM goals WHERE user_id = $1`
	args := []any{userID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	} else {
		args = append(args, model.GoalStatusArchived)
		query += fmt.Sprintf(" AND status <> $%d", len(args))
	}

	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		query += fmt.Sprintf(" AND project_id = $%d", len(args))
	}

	// Validate and build ORDER BY clause
	switch filter.Sort {
	case GoalSortPriority:
		query += " ORDER BY priority ASC, position ASC"
	case GoalSortRecent:
		query += " ORDER BY updated_at DESC"
	default: // GoalSortPosition or empty
		query += " ORDER BY status ASC, position ASC, created_at ASC"
	}

	err := r.db.Select(&goals, query, args...)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

// BoardGoals returns every non-archived goal of the user, ready to be
// partitioned into a reorder board.
func (r *goalRepository) BoardGoals(userID string) ([]model.Goal, error) {
	var goals []model.Goal
	query := `SELECT * FROM goals WHERE user_id = $1 AND status <> $2 ORDER BY position ASC, created_at ASC`

	err := r.db.Select(&goals, query, userID, model.GoalStatusArchived)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) CountByStatus(userID, status string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM goals WHERE user_id = $1 AND status = $2`
	err := r.db.QueryRow(query, userID, status).Scan(&count)
	return count, err
}

func (r *goalRepository) Update(goal *model.Goal) error {
	query := `UPDATE goals
	          SET project_id = $1, title = $2, description = $3, status = $4, priority = $5, impact = $6,
	              category = $7, type = $8, position = $9, completed_at = $10, updated_at = $11
	          WHERE id = $12 AND user_id = $13`

	result, err := r.db.Exec(query,
		goal.ProjectID,
		goal.Title,
		goal.Description,
		goal.Status,
		goal.Priority,
		goal.Impact,
		goal.Category,
		goal.Type,
		goal.Position,
		goal.CompletedAt,
		time.Now(),
		goal.ID,
		goal.UserID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}

func (r *goalRepository) Delete(userID, goalID string) error {
	query := `DELETE FROM goals WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(query, goalID, userID)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}

// UpdatePositions writes a reorder batch in one transaction. An update with an
// empty status keeps the stored status. Moving into completed stamps
// completed_at, moving out of it clears the stamp. If any id does not belong
// to the user or is archived, nothing is written and ErrGoalNotFound is returned.
func (r *goalRepository) UpdatePositions(ctx context.Context, userID string, updates []model.PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit

	query := `UPDATE goals
	          SET position = $1,
	              status = COALESCE(NULLIF($2, ''), status),
	              completed_at = CASE WHEN COALESCE(NULLIF($3, ''), status) = $4 THEN COALESCE(completed_at, $5) ELSE NULL END,
	              updated_at = $6
	          WHERE id = $7 AND user_id = $8 AND status <> $9`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, u := range updates {
		result, err := stmt.ExecContext(ctx,
			u.Position,
			u.Status,
			u.Status,
			model.GoalStatusCompleted,
			now,
			now,
			u.ID,
			userID,
			model.GoalStatusArchived,
		)
		if err != nil {
			return fmt.Errorf("update goal %s: %w", u.ID, err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: %s", ErrGoalNotFound, u.ID)
		}
	}

	return tx.Commit()
}
