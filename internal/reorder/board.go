package reorder

import (
	"cmp"
	"slices"

	"github.com/mindtab/mindtab/internal/model"
)

// Board holds goals partitioned by status. Each partition is in display order.
// Goals outside the board statuses (archived) are left out.
type Board map[string][]model.Goal

func NewBoard(goals []model.Goal) Board {
	b := make(Board, len(model.BoardStatuses))
	for _, status := range model.BoardStatuses {
		b[status] = []model.Goal{}
	}

	for _, g := range goals {
		if !model.IsBoardStatus(g.Status) {
			continue
		}
		b[g.Status] = append(b[g.Status], g)
	}

	for _, status := range model.BoardStatuses {
		slices.SortStableFunc(b[status], func(x, y model.Goal) int {
			if c := cmp.Compare(x.Position, y.Position); c != 0 {
				return c
			}
			return x.CreatedAt.Compare(y.CreatedAt)
		})
	}

	return b
}

// Column returns the goals of one partition.
func (b Board) Column(status string) []model.Goal {
	return b[status]
}

// Goals flattens the board in column order.
func (b Board) Goals() []model.Goal {
	var out []model.Goal
	for _, status := range model.BoardStatuses {
		out = append(out, b[status]...)
	}
	return out
}

// Locate finds the partition and index of a goal.
func (b Board) Locate(id string) (status string, index int, ok bool) {
	for _, s := range model.BoardStatuses {
		for i, g := range b[s] {
			if g.ID == id {
				return s, i, true
			}
		}
	}
	return "", 0, false
}

// Dense reports whether every partition's positions are exactly 0..n-1 in order.
func (b Board) Dense() bool {
	for _, s := range model.BoardStatuses {
		for i, g := range b[s] {
			if g.Position != i || g.Status != s {
				return false
			}
		}
	}
	return true
}

func (b Board) Clone() Board {
	out := make(Board, len(b))
	for status, goals := range b {
		out[status] = slices.Clone(goals)
	}
	return out
}
