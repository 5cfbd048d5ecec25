package model

import (
	"time"
)

type Journal struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	ProjectID *string   `db:"project_id" json:"projectId,omitempty"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Computed fields (not in database)
	Attachments []*File `db:"-" json:"attachments,omitempty"`
}

// RenderedJournal is a journal converted to HTML, with front matter split out.
type RenderedJournal struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	HTML     string         `json:"html"`
	Metadata map[string]any `json:"metadata"`
	Tags     []string       `json:"tags"`
}
