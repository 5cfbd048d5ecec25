package model

import (
	"time"
)

const (
	ProjectStatusActive   = "active"
	ProjectStatusArchived = "archived"
)

type Project struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Status      string    `db:"status" json:"status"`
	Position    int       `db:"position" json:"position"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

func (p *Project) IsArchived() bool {
	return p.Status == ProjectStatusArchived
}
