package model

import (
	"time"
)

const (
	SyncKindReadingList = "reading_list"
	SyncKindBookmark    = "bookmark"
)

// SyncItem is a reading-list entry or bookmark pushed by the browser extension.
type SyncItem struct {
	ID           string     `db:"id" json:"id"`
	UserID       string     `db:"user_id" json:"userId"`
	Kind         string     `db:"kind" json:"kind"`
	Title        string     `db:"title" json:"title"`
	URL          string     `db:"url" json:"url"`
	FaviconURL   *string    `db:"favicon_url" json:"faviconUrl,omitempty"`
	ParentFolder *string    `db:"parent_folder" json:"parentFolder,omitempty"`
	AddedAt      *time.Time `db:"added_at" json:"addedAt,omitempty"`
	SyncedAt     time.Time  `db:"synced_at" json:"syncedAt"`
}
