package model

import (
	"time"
)

const (
	HabitFrequencyDaily  = "daily"
	HabitFrequencyWeekly = "weekly"
)

const (
	TrackerStatusCompleted = "completed"
	TrackerStatusSkipped   = "skipped"
)

// DateLayout is the format of tracker dates (calendar day, no zone).
const DateLayout = "2006-01-02"

type Habit struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Frequency   string    `db:"frequency" json:"frequency"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`

	// Computed fields (not in database)
	Streak    int  `db:"-" json:"streak"`
	DoneToday bool `db:"-" json:"doneToday"`
}

type HabitTracker struct {
	ID        string    `db:"id" json:"id"`
	HabitID   string    `db:"habit_id" json:"habitId"`
	UserID    string    `db:"user_id" json:"userId"`
	Date      string    `db:"date" json:"date"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
