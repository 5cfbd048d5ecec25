// Package cache keeps a client-side copy of a user's goals and supports
// optimistic mutation through explicit transactions.
//
// A mutation runs as:
//
//	tx := c.Begin()        // cancel in-flight fetches, take a fencing token, snapshot
//	tx.Apply(patch)        // optimistic write
//	... network call ...
//	tx.Rollback()          // on failure, restore the snapshot
//	tx.Commit()            // on settle, invalidate so the caller refetches
//
// Rollback and Commit only take effect while the transaction holds the latest
// fencing token, so a slow response for an older mutation never clobbers the
// state produced by a newer one.
package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/mindtab/mindtab/internal/model"
)

var (
	ErrFetchSuperseded = errors.New("fetch superseded by a newer fetch or mutation")
	ErrNoFetcher       = errors.New("cache has no fetcher")
)

// Fetcher loads the authoritative goal collection from the backing store.
type Fetcher func(ctx context.Context) ([]model.Goal, error)

// Patch is a set of position/status changes keyed by goal ID.
type Patch []model.PositionUpdate

// Snapshot is an immutable copy of the cache contents.
type Snapshot struct {
	goals []model.Goal
	stale bool
}

func (s Snapshot) Goals() []model.Goal {
	return cloneGoals(s.goals)
}

func (s Snapshot) Stale() bool {
	return s.stale
}

type GoalCache struct {
	mu    sync.Mutex
	goals []model.Goal
	stale bool
	fence Fence
	fetch Fetcher

	fetchGen    uint64
	cancelFetch context.CancelFunc
}

func New(fetch Fetcher) *GoalCache {
	return &GoalCache{
		fetch: fetch,
		stale: true,
	}
}

// Goals returns a copy of the cached goals.
func (c *GoalCache) Goals() []model.Goal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneGoals(c.goals)
}

// Stale reports whether the cache was invalidated since the last fetch.
func (c *GoalCache) Stale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale
}

// Set replaces the cache contents, e.g. with data loaded out of band.
func (c *GoalCache) Set(goals []model.Goal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goals = cloneGoals(goals)
	c.stale = false
}

// Invalidate marks the cache stale without touching its contents.
func (c *GoalCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stale = true
}

// Refresh fetches the goal collection and replaces the cache contents.
// A fetch started earlier is cancelled; a fetch overtaken by a newer fetch or
// by Begin returns ErrFetchSuperseded and leaves the cache untouched.
func (c *GoalCache) Refresh(ctx context.Context) error {
	if c.fetch == nil {
		return ErrNoFetcher
	}

	c.mu.Lock()
	c.cancelInFlightLocked()
	fetchCtx, cancel := context.WithCancel(ctx)
	c.fetchGen++
	gen := c.fetchGen
	c.cancelFetch = cancel
	c.mu.Unlock()

	goals, err := c.fetch(fetchCtx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.fetchGen {
		return ErrFetchSuperseded
	}
	cancel()
	c.cancelFetch = nil
	if err != nil {
		return err
	}

	c.goals = cloneGoals(goals)
	c.stale = false
	return nil
}

// Begin starts an optimistic transaction: any in-flight fetch is cancelled so
// it cannot overwrite the optimistic write, a new fencing token is issued and
// the current contents are captured for rollback.
func (c *GoalCache) Begin() *Tx {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beginLocked()
}

// Mutate computes a patch from the current contents and applies it in one
// step. When prepare fails nothing is changed and no token is issued.
func (c *GoalCache) Mutate(prepare func(goals []model.Goal) (Patch, error)) (*Tx, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	patch, err := prepare(cloneGoals(c.goals))
	if err != nil {
		return nil, err
	}

	tx := c.beginLocked()
	c.goals = patch.applyTo(c.goals)
	return tx, nil
}

func (c *GoalCache) beginLocked() *Tx {
	c.cancelInFlightLocked()
	c.fetchGen++

	return &Tx{
		cache: c,
		token: c.fence.Issue(),
		snapshot: Snapshot{
			goals: cloneGoals(c.goals),
			stale: c.stale,
		},
	}
}

func (c *GoalCache) cancelInFlightLocked() {
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
}

// Tx is one optimistic mutation.
type Tx struct {
	cache    *GoalCache
	token    uint64
	snapshot Snapshot
}

func (tx *Tx) Token() uint64 {
	return tx.token
}

// Snapshot returns the contents captured when the transaction began.
func (tx *Tx) Snapshot() Snapshot {
	return tx.snapshot
}

// Latest reports whether no newer transaction has begun since this one.
func (tx *Tx) Latest() bool {
	tx.cache.mu.Lock()
	defer tx.cache.mu.Unlock()
	return tx.cache.fence.Current(tx.token)
}

// Apply writes patch into the cache. It is a no-op once superseded.
func (tx *Tx) Apply(patch Patch) bool {
	c := tx.cache
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fence.Current(tx.token) {
		return false
	}
	c.goals = patch.applyTo(c.goals)
	return true
}

// Rollback restores the snapshot taken by Begin, unless a newer transaction
// has begun in the meantime.
func (tx *Tx) Rollback() bool {
	c := tx.cache
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fence.Current(tx.token) {
		return false
	}
	c.goals = cloneGoals(tx.snapshot.goals)
	c.stale = tx.snapshot.stale
	return true
}

// Commit settles the transaction. If it is still the latest, the cache is
// marked stale and true is returned: the caller should Refresh.
func (tx *Tx) Commit() bool {
	c := tx.cache
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fence.Current(tx.token) {
		return false
	}
	c.stale = true
	return true
}

func (p Patch) applyTo(goals []model.Goal) []model.Goal {
	if len(p) == 0 {
		return cloneGoals(goals)
	}

	byID := make(map[string]model.PositionUpdate, len(p))
	for _, u := range p {
		byID[u.ID] = u
	}

	out := cloneGoals(goals)
	for i := range out {
		u, ok := byID[out[i].ID]
		if !ok {
			continue
		}
		out[i].Position = u.Position
		if u.Status != "" {
			out[i].Status = u.Status
		}
	}
	return out
}

func cloneGoals(goals []model.Goal) []model.Goal {
	if goals == nil {
		return nil
	}
	out := make([]model.Goal, len(goals))
	copy(out, goals)
	return out
}
