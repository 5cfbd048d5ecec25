package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mindtab/mindtab/internal/model"
)

var (
	ErrHabitNotFound   = errors.New("habit not found")
	ErrTrackerNotFound = errors.New("habit tracker entry not found")
)

type HabitRepository interface {
	Create(habit *model.Habit) error
	ByID(userID, habitID string) (*model.Habit, error)
	Habits(userID string) ([]*model.Habit, error)
	Update(habit *model.Habit) error
	Delete(userID, habitID string) error

	Track(entry *model.HabitTracker) error
	Untrack(habitID, date string) error
	Entry(habitID, date string) (*model.HabitTracker, error)
	Entries(userID, from, to string) ([]*model.HabitTracker, error)
	CompletedDates(habitID string, onOrBefore string) ([]string, error)
}

type habitRepository struct {
	db *sqlx.DB
}

func NewHabitRepository(db *sqlx.DB) HabitRepository {
	return &habitRepository{db: db}
}

func (r *habitRepository) Create(habit *model.Habit) error {
	query := `INSERT INTO habits (id, user_id, title, description, frequency, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		habit.ID,
		habit.UserID,
		habit.Title,
		habit.Description,
		habit.Frequency,
		habit.CreatedAt,
		habit.UpdatedAt,
	)

	return err
}

func (r *habitRepository) ByID(userID, habitID string) (*model.Habit, error) {
	habit := &model.Habit{}
	query := `SELECT * FROM habits WHERE id = $1 AND user_id = $2`

	err := r.db.Get(habit, query, habitID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrHabitNotFound
	}

	return habit, err
}

func (r *habitRepository) Habits(userID string) ([]*model.Habit, error) {
	var habits []*model.Habit
	query := `SELECT * FROM habits WHERE user_id = $1 ORDER BY created_at ASC`

	err := r.db.Select(&habits, query, userID)
	if err != nil {
		return nil, err
	}

	return habits, nil
}

func (r *habitRepository) Update(habit *model.Habit) error {
	query := `UPDATE habits SET title = $1, description = $2, frequency = $3, updated_at = $4
	          WHERE id = $5 AND user_id = $6`

	result, err := r.db.Exec(query, habit.Title, habit.Description, habit.Frequency, time.Now(), habit.ID, habit.UserID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrHabitNotFound
	}

	return nil
}

func (r *habitRepository) Delete(userID, habitID string) error {
	query := `DELETE FROM habits WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(query, habitID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrHabitNotFound
	}

	return nil
}

func (r *habitRepository) Track(entry *model.HabitTracker) error {
	query := `INSERT INTO habit_tracker (id, habit_id, user_id, date, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query, entry.ID, entry.HabitID, entry.UserID, entry.Date, entry.Status, entry.CreatedAt)
	return err
}

func (r *habitRepository) Untrack(habitID, date string) error {
	query := `DELETE FROM habit_tracker WHERE habit_id = $1 AND date = $2`

	result, err := r.db.Exec(query, habitID, date)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTrackerNotFound
	}

	return nil
}

func (r *habitRepository) Entry(habitID, date string) (*model.HabitTracker, error) {
	entry := &model.HabitTracker{}
	query := `SELECT * FROM habit_tracker WHERE habit_id = $1 AND date = $2`

	err := r.db.Get(entry, query, habitID, date)
	if err == sql.ErrNoRows {
		return nil, ErrTrackerNotFound
	}

	return entry, err
}

// Entries returns the user's tracker rows with from <= date <= to.
// Dates are YYYY-MM-DD so string comparison orders them.
func (r *habitRepository) Entries(userID, from, to string) ([]*model.HabitTracker, error) {
	var entries []*model.HabitTracker
	query := `SELECT * FROM habit_tracker WHERE user_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC`

	err := r.db.Select(&entries, query, userID, from, to)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// CompletedDates returns completed dates for a habit, newest first.
func (r *habitRepository) CompletedDates(habitID string, onOrBefore string) ([]string, error) {
	var dates []string
	query := `SELECT date FROM habit_tracker WHERE habit_id = $1 AND status = $2 AND date <= $3 ORDER BY date DESC`

	err := r.db.Select(&dates, query, habitID, model.TrackerStatusCompleted, onOrBefore)
	if err != nil {
		return nil, err
	}

	return dates, nil
}
