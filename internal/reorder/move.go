// Package reorder translates a drag-and-drop gesture over status-partitioned
// goal lists into new (position, status) tuples.
package reorder

import (
	"errors"
	"slices"

	"github.com/mindtab/mindtab/internal/model"
)

var (
	ErrNoTarget    = errors.New("no drop target")
	ErrStaleTarget = errors.New("drop target not found")
	ErrUnknownItem = errors.New("dragged goal not found")
	ErrNoop        = errors.New("goal dropped onto its own position")
)

// Plan is the outcome of a move: the resulting board and the rows that changed.
type Plan struct {
	GoalID    string
	From      string
	To        string
	FromIndex int
	ToIndex   int
	Board     Board
	Updates   []model.PositionUpdate
}

func (p *Plan) CrossPartition() bool {
	return p.From != p.To
}

// Move drops goal activeID onto overID, which is either another goal or a
// partition name (a drop on a column's empty space).
//
// Within a partition the goal is moved to the target's index. Across
// partitions it takes the destination status and is inserted at the target's
// index, or appended for a column drop. Positions of every touched partition
// are renumbered 0..n-1; only rows whose position or status changed are
// returned in Updates.
func Move(b Board, activeID, overID string) (*Plan, error) {
	if overID == "" {
		return nil, ErrNoTarget
	}

	from, fromIdx, ok := b.Locate(activeID)
	if !ok {
		return nil, ErrUnknownItem
	}

	to, toIdx, err := b.resolveTarget(overID)
	if err != nil {
		return nil, err
	}

	next := b.Clone()
	if from == to {
		list := next[from]
		if toIdx > len(list)-1 {
			toIdx = len(list) - 1
		}
		if toIdx == fromIdx {
			return nil, ErrNoop
		}
		next[from] = arrayMove(list, fromIdx, toIdx)
	} else {
		item := next[from][fromIdx]
		next[from] = slices.Delete(next[from], fromIdx, fromIdx+1)
		item.Status = to
		if toIdx > len(next[to]) {
			toIdx = len(next[to])
		}
		next[to] = slices.Insert(next[to], toIdx, item)
	}

	touched := []string{from}
	if to != from {
		touched = append(touched, to)
	}

	return &Plan{
		GoalID:    activeID,
		From:      from,
		To:        to,
		FromIndex: fromIdx,
		ToIndex:   toIdx,
		Board:     next,
		Updates:   renumber(b, next, touched),
	}, nil
}

// Toggle advances a goal through pending -> in_progress -> completed -> pending,
// appending it to the end of its new partition.
func Toggle(b Board, id string) (*Plan, error) {
	status, _, ok := b.Locate(id)
	if !ok {
		return nil, ErrUnknownItem
	}
	return Move(b, id, model.NextGoalStatus(status))
}

// ToggleList is the list view toggle, pending <-> completed. An in-progress
// goal counts as not done and goes to completed.
func ToggleList(b Board, id string) (*Plan, error) {
	status, _, ok := b.Locate(id)
	if !ok {
		return nil, ErrUnknownItem
	}
	return Move(b, id, model.NextListStatus(status))
}

// Compact renumbers partitions that drifted from 0..n-1, e.g. after a delete.
func Compact(b Board, statuses ...string) []model.PositionUpdate {
	if len(statuses) == 0 {
		statuses = model.BoardStatuses
	}
	next := b.Clone()
	return renumber(b, next, statuses)
}

func (b Board) resolveTarget(overID string) (string, int, error) {
	if model.IsBoardStatus(overID) {
		return overID, len(b[overID]), nil
	}

	status, idx, ok := b.Locate(overID)
	if !ok {
		return "", 0, ErrStaleTarget
	}
	return status, idx, nil
}

func arrayMove(list []model.Goal, from, to int) []model.Goal {
	item := list[from]
	list = slices.Delete(list, from, from+1)
	return slices.Insert(list, to, item)
}

// renumber assigns index positions in next for the given partitions and
// reports every row that differs from prev.
func renumber(prev, next Board, statuses []string) []model.PositionUpdate {
	before := make(map[string]model.Goal)
	for _, s := range statuses {
		for _, g := range prev[s] {
			before[g.ID] = g
		}
	}

	var updates []model.PositionUpdate
	for _, s := range statuses {
		for i := range next[s] {
			g := &next[s][i]
			g.Position = i
			old := before[g.ID]
			if old.Position == i && old.Status == g.Status {
				continue
			}
			updates = append(updates, model.PositionUpdate{
				ID:       g.ID,
				Position: i,
				Status:   g.Status,
			})
		}
	}
	return updates
}
