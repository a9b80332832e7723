package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Registry hands out one Controller per storefront session and evicts
// controllers whose sessions have gone quiet.
type Registry struct {
	source   ProductSource
	logger   *slog.Logger
	pageSize int
	ttl      time.Duration

	mu      sync.Mutex
	entries map[string]*registryEntry
	nowFunc func() time.Time // injectable clock for testing
}

type registryEntry struct {
	controller *Controller
	lastSeen   time.Time
}

// NewRegistry creates a registry. Controllers idle longer than ttl are
// evicted by Run.
func NewRegistry(source ProductSource, pageSize int, ttl time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		source:   source,
		logger:   logger,
		pageSize: pageSize,
		ttl:      ttl,
		entries:  make(map[string]*registryEntry),
		nowFunc:  time.Now,
	}
}

// Get returns the controller for the session, creating one on first use.
func (r *Registry) Get(sessionID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[sessionID]
	if !ok {
		e = &registryEntry{controller: NewController(r.source, r.pageSize, r.logger)}
		r.entries[sessionID] = e
	}
	e.lastSeen = r.nowFunc()
	return e.controller
}

// Len returns the number of live session controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Run sweeps idle sessions until the context is canceled.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Registry) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	evicted := 0
	for id, e := range r.entries {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.entries, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.logger.Debug("catalog sessions evicted", slog.Int("count", evicted))
	}
}
