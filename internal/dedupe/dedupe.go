// Package dedupe rejects a publication that repeats the previous one from the
// same user within a short window, typically a double-clicked submit.
package dedupe

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

var ErrDuplicate = errors.New("duplicate submission")

// Guard records the last submission per user. Check returns ErrDuplicate
// when payload equals the previous payload of userID and that one is younger
// than the window. Any other call records payload as the new last
// submission; a rejected call leaves the record untouched.
//
// Release forgets the record of userID when it still holds payload, so a
// submission that was accepted but never stored can be retried at once.
type Guard interface {
	Check(ctx context.Context, userID string, payload []byte) error
	Release(ctx context.Context, userID string, payload []byte) error
}

type entry struct {
	at     time.Time
	digest uint64
}

// MemoryGuard is a single-process Guard.
type MemoryGuard struct {
	mu         sync.Mutex
	window     time.Duration
	maxEntries int
	last       map[string]entry
	now        func() time.Time
}

func NewMemoryGuard(window time.Duration, maxEntries int) *MemoryGuard {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &MemoryGuard{
		window:     window,
		maxEntries: maxEntries,
		last:       make(map[string]entry),
		now:        time.Now,
	}
}

// SetClock replaces the time source; used by tests.
func (g *MemoryGuard) SetClock(now func() time.Time) {
	g.mu.Lock()
	g.now = now
	g.mu.Unlock()
}

func (g *MemoryGuard) Check(_ context.Context, userID string, payload []byte) error {
	digest := xxhash.Sum64(payload)

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	prev, seen := g.last[userID]
	if seen && now.Sub(prev.at) < g.window && prev.digest == digest {
		return ErrDuplicate
	}
	if !seen && len(g.last) >= g.maxEntries {
		g.evict(now)
	}
	g.last[userID] = entry{at: now, digest: digest}
	return nil
}

func (g *MemoryGuard) Release(_ context.Context, userID string, payload []byte) error {
	digest := xxhash.Sum64(payload)

	g.mu.Lock()
	defer g.mu.Unlock()
	if prev, ok := g.last[userID]; ok && prev.digest == digest {
		delete(g.last, userID)
	}
	return nil
}

// Len reports how many users are currently tracked.
func (g *MemoryGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.last)
}

// evict drops expired entries, then the oldest one if the map is still full.
// Caller holds mu.
func (g *MemoryGuard) evict(now time.Time) {
	var (
		oldestKey string
		oldestAt  time.Time
	)
	for k, e := range g.last {
		if now.Sub(e.at) >= g.window {
			delete(g.last, k)
			continue
		}
		if oldestKey == "" || e.at.Before(oldestAt) {
			oldestKey, oldestAt = k, e.at
		}
	}
	if len(g.last) >= g.maxEntries && oldestKey != "" {
		delete(g.last, oldestKey)
	}
}
