// Package session keeps one view controller per browser viewer.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/kindness-map/internal/metrics"
	"github.com/sells-group/kindness-map/internal/view"
)

// Factory builds the controller for a new session.
type Factory func() *view.Controller

// Registry is a concurrent-safe LRU of view controllers with idle expiry.
type Registry struct {
	mu         sync.Mutex
	entries    map[string]*entry
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
	factory    Factory
	created    atomic.Int64
	evicted    atomic.Int64
	now        func() time.Time
}

type entry struct {
	ctrl     *view.Controller
	lastUsed time.Time
}

// Stats describes registry occupancy.
type Stats struct {
	Sessions    int   `json:"sessions"`
	MaxSessions int   `json:"max_sessions"`
	Created     int64 `json:"created"`
	Evicted     int64 `json:"evicted"`
}

// NewRegistry creates a Registry holding at most maxEntries sessions, each
// expiring after ttl without use.
func NewRegistry(maxEntries int, ttl time.Duration, factory Factory) *Registry {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Registry{
		entries:    make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		factory:    factory,
		now:        time.Now,
	}
}

// Create starts a session, evicting the least recently used one if full.
func (r *Registry) Create() (string, *view.Controller) {
	id := uuid.NewString()
	ctrl := r.factory()

	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.entries) >= r.maxEntries && len(r.order) > 0 {
		r.evictLocked(r.order[0])
	}

	r.entries[id] = &entry{ctrl: ctrl, lastUsed: r.now()}
	r.order = append(r.order, id)
	r.created.Add(1)
	metrics.Sessions.Set(float64(len(r.entries)))
	return id, ctrl
}

// Get returns the session's controller and marks it used. Expired sessions
// are removed and reported as missing.
func (r *Registry) Get(id string) (*view.Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	if r.expired(e) {
		r.evictLocked(id)
		return nil, false
	}

	e.lastUsed = r.now()
	r.removeFromOrder(id)
	r.order = append(r.order, id)
	return e.ctrl, true
}

// Delete ends a session. It reports whether the session existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return false
	}
	delete(r.entries, id)
	r.removeFromOrder(id)
	e.ctrl.Close()
	metrics.Sessions.Set(float64(len(r.entries)))
	return true
}

// Sweep removes every expired session and returns how many it removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stale []string
	for _, id := range r.order {
		if r.expired(r.entries[id]) {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		r.evictLocked(id)
	}
	if len(stale) > 0 {
		zap.L().Debug("session: swept idle sessions", zap.Int("removed", len(stale)))
	}
	return len(stale)
}

// Run sweeps expired sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Stats returns registry statistics.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	n := len(r.entries)
	r.mu.Unlock()
	return Stats{
		Sessions:    n,
		MaxSessions: r.maxEntries,
		Created:     r.created.Load(),
		Evicted:     r.evicted.Load(),
	}
}

func (r *Registry) expired(e *entry) bool {
	return r.ttl > 0 && r.now().Sub(e.lastUsed) > r.ttl
}

func (r *Registry) evictLocked(id string) {
	if e, ok := r.entries[id]; ok {
		e.ctrl.Close()
		delete(r.entries, id)
		r.evicted.Add(1)
		metrics.Sessions.Set(float64(len(r.entries)))
	}
	r.removeFromOrder(id)
}

// removeFromOrder removes an id from the LRU order slice.
func (r *Registry) removeFromOrder(id string) {
	for i, k := range r.order {
		if k == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
