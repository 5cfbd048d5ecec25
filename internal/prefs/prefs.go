// Package prefs holds client preferences (view mode, active project) behind
// an explicit Load/Save store. Callers inject the persistence: a per-user
// SQL table on the server, a YAML file for the CLI.
package prefs

import (
	"context"
	"fmt"

	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/validation"
)

type Preferences struct {
	ViewMode      string `json:"viewMode" yaml:"view_mode" validate:"oneof=kanban list"`
	ActiveProject string `json:"activeProject" yaml:"active_project" validate:"max=64"`
}

func Default() Preferences {
	return Preferences{ViewMode: model.ViewModeKanban}
}

// KV persists preferences as flat string pairs.
type KV interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, values map[string]string) error
}

type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Load returns stored preferences over defaults. Unknown keys are ignored and
// an unknown view mode falls back to the default.
func (s *Store) Load(ctx context.Context) (Preferences, error) {
	values, err := s.kv.Load(ctx)
	if err != nil {
		return Preferences{}, fmt.Errorf("load preferences: %w", err)
	}

	p := Default()
	if v, ok := values[model.PreferenceViewMode]; ok && (v == model.ViewModeKanban || v == model.ViewModeList) {
		p.ViewMode = v
	}
	if v, ok := values[model.PreferenceActiveProject]; ok {
		p.ActiveProject = v
	}
	return p, nil
}

func (s *Store) Save(ctx context.Context, p Preferences) error {
	err := validation.Struct(p)
	if err != nil {
		return err
	}

	err = s.kv.Save(ctx, map[string]string{
		model.PreferenceViewMode:      p.ViewMode,
		model.PreferenceActiveProject: p.ActiveProject,
	})
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Update loads, applies fn and saves.
func (s *Store) Update(ctx context.Context, fn func(*Preferences)) (Preferences, error) {
	p, err := s.Load(ctx)
	if err != nil {
		return Preferences{}, err
	}
	fn(&p)
	return p, s.Save(ctx, p)
}
