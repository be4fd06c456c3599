package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"idcard/internal/metrics"
	"idcard/internal/session"
	"idcard/internal/storage"
)

// Options tunes a Registry.
type Options struct {
	// IdleTTL evicts workspaces untouched for this long; zero keeps them.
	IdleTTL time.Duration
	// SettingsCloseDelay keeps the settings editor open after a save.
	SettingsCloseDelay time.Duration
}

// Registry maps visitor ids to their workspaces.
type Registry struct {
	api     API
	backend storage.Backend
	logger  *slog.Logger
	opts    Options
	now     func() time.Time

	mu    sync.Mutex
	items map[string]*Workspace
}

// NewRegistry returns an empty registry.
func NewRegistry(api API, backend storage.Backend, logger *slog.Logger, opts Options) *Registry {
	return &Registry{
		api:     api,
		backend: backend,
		logger:  logger,
		opts:    opts,
		now:     time.Now,
		items:   make(map[string]*Workspace),
	}
}

// Get returns the visitor's workspace, creating it on first use. A new
// workspace reads the persisted token once; a storage failure starts it
// logged out.
func (r *Registry) Get(ctx context.Context, visitorID string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if w, ok := r.items[visitorID]; ok {
		w.touch(now)
		return w
	}

	sess, err := session.New(ctx, r.backend.Scope(visitorID))
	if err != nil {
		r.logger.WarnContext(ctx, "session restore failed", "visitor", visitorID, "error", err)
	}
	w := newWorkspace(visitorID, r.api, sess, r.logger, r.opts.SettingsCloseDelay, now)
	r.items[visitorID] = w
	metrics.SetWorkspaces(len(r.items))
	return w
}

// Len reports how many workspaces are held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Sweep evicts idle workspaces and returns how many went.
func (r *Registry) Sweep() int {
	if r.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.opts.IdleTTL)

	r.mu.Lock()
	var idle []*Workspace
	for id, w := range r.items {
		if w.idleSince(cutoff) {
			delete(r.items, id)
			idle = append(idle, w)
		}
	}
	metrics.SetWorkspaces(len(r.items))
	r.mu.Unlock()

	for _, w := range idle {
		w.release()
	}
	return len(idle)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("evicted idle workspaces", "count", n)
			}
		}
	}
}
