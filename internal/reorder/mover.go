package reorder

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mindtab/mindtab/internal/cache"
	"github.com/mindtab/mindtab/internal/model"
)

// BatchUpdater persists a batch of position/status changes in one request.
type BatchUpdater interface {
	UpdatePositions(ctx context.Context, updates []model.PositionUpdate) error
}

// Mover applies moves optimistically to a GoalCache and reconciles them with
// the backing store. On failure the cache is rolled back; on settle it is
// refreshed. Both only happen while the move is still the latest one.
type Mover struct {
	cache   *cache.GoalCache
	updater BatchUpdater
}

func NewMover(c *cache.GoalCache, updater BatchUpdater) *Mover {
	return &Mover{
		cache:   c,
		updater: updater,
	}
}

// Move drags activeID onto overID. ErrNoop, ErrNoTarget, ErrStaleTarget and
// ErrUnknownItem abort before anything is written or sent.
func (m *Mover) Move(ctx context.Context, activeID, overID string) (*Plan, error) {
	return m.run(ctx, func(b Board) (*Plan, error) {
		return Move(b, activeID, overID)
	})
}

// Toggle advances a goal to its next status.
func (m *Mover) Toggle(ctx context.Context, id string) (*Plan, error) {
	return m.run(ctx, func(b Board) (*Plan, error) {
		return Toggle(b, id)
	})
}

// ToggleList flips a goal between pending and completed.
func (m *Mover) ToggleList(ctx context.Context, id string) (*Plan, error) {
	return m.run(ctx, func(b Board) (*Plan, error) {
		return ToggleList(b, id)
	})
}

func (m *Mover) run(ctx context.Context, compute func(Board) (*Plan, error)) (*Plan, error) {
	var plan *Plan
	tx, err := m.cache.Mutate(func(goals []model.Goal) (cache.Patch, error) {
		p, err := compute(NewBoard(goals))
		if err != nil {
			return nil, err
		}
		if len(p.Updates) == 0 {
			return nil, ErrNoop
		}
		plan = p
		return cache.Patch(p.Updates), nil
	})
	if err != nil {
		return nil, err
	}

	err = m.updater.UpdatePositions(ctx, plan.Updates)
	if err != nil {
		if tx.Rollback() {
			slog.Warn("reorder failed, rolled back", "error", err, "goal_id", plan.GoalID, "token", tx.Token())
		} else {
			slog.Debug("stale reorder failure ignored", "error", err, "goal_id", plan.GoalID, "token", tx.Token())
		}
	}

	if tx.Commit() {
		refreshErr := m.cache.Refresh(ctx)
		if refreshErr != nil && !errors.Is(refreshErr, cache.ErrFetchSuperseded) {
			slog.Warn("refetch after reorder failed", "error", refreshErr)
		}
	}

	return plan, err
}
