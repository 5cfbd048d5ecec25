package model

import (
	"time"
)

const (
	GoalStatusPending    = "pending"
	GoalStatusInProgress = "in_progress"
	GoalStatusCompleted  = "completed"
	GoalStatusArchived   = "archived"
)

const (
	GoalPriority1 = "priority_1"
	GoalPriority2 = "priority_2"
	GoalPriority3 = "priority_3"
	GoalPriority4 = "priority_4"
)

const (
	GoalImpactLow    = "low"
	GoalImpactMedium = "medium"
	GoalImpactHigh   = "high"
)

const (
	GoalCategoryPersonal      = "personal"
	GoalCategoryWork          = "work"
	GoalCategoryHealth        = "health"
	GoalCategoryFinance       = "finance"
	GoalCategoryLearning      = "learning"
	GoalCategoryRelationships = "relationships"
	GoalCategoryOther         = "other"
)

const (
	GoalTypeOneTime = "one_time"
	GoalTypeDaily   = "daily"
	GoalTypeWeekly  = "weekly"
	GoalTypeMonthly = "monthly"
	GoalTypeYearly  = "yearly"
)

// BoardStatuses are the status partitions shown as board columns, in display order.
// Archived goals are kept out of the board.
var BoardStatuses = []string{GoalStatusPending, GoalStatusInProgress, GoalStatusCompleted}

type Goal struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"userId"`
	ProjectID   *string    `db:"project_id" json:"projectId,omitempty"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	Status      string     `db:"status" json:"status"`
	Priority    string     `db:"priority" json:"priority"`
	Impact      string     `db:"impact" json:"impact"`
	Category    string     `db:"category" json:"category"`
	Type        string     `db:"type" json:"type"`
	Position    int        `db:"position" json:"position"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// PositionUpdate is one row of a batched reorder. Status may be empty,
// in which case the stored status is kept.
type PositionUpdate struct {
	ID       string `json:"id" validate:"required"`
	Position int    `json:"position" validate:"gte=0"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed"`
}

func IsBoardStatus(status string) bool {
	for _, s := range BoardStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsGoalStatus(status string) bool {
	return IsBoardStatus(status) || status == GoalStatusArchived
}

// NextGoalStatus returns the status a toggle moves to:
// pending -> in_progress -> completed -> pending.
func NextGoalStatus(status string) string {
	switch status {
	case GoalStatusPending:
		return GoalStatusInProgress
	case GoalStatusInProgress:
		return GoalStatusCompleted
	default:
		return GoalStatusPending
	}
}

// NextListStatus is the two-state toggle of the list view:
// completed -> pending, anything else -> completed.
func NextListStatus(status string) string {
	if status == GoalStatusCompleted {
		return GoalStatusPending
	}
	return GoalStatusCompleted
}

func (g *Goal) IsCompleted() bool {
	return g.Status == GoalStatusCompleted
}
