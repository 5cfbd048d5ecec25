package model

const (
	ViewModeKanban = "kanban"
	ViewModeList   = "list"
)

const (
	PreferenceViewMode      = "view_mode"
	PreferenceActiveProject = "active_project"
)

type Preference struct {
	UserID string `db:"user_id"`
	Key    string `db:"key"`
	Value  string `db:"value"`
}
