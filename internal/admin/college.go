package admin

import (
	"context"
	"log/slog"
	"sync"

	"idcard/internal/apiclient"
)

// CollegeReader fetches the branding singleton.
type CollegeReader interface {
	CollegeInfo(ctx context.Context) (*apiclient.CollegeInfo, error)
}

// College caches the branding singleton shared by every view of a workspace.
type College struct {
	mu     sync.RWMutex
	info   *apiclient.CollegeInfo
	loaded bool
}

// Info returns the cached branding, or nil before the first successful fetch.
func (c *College) Info() *apiclient.CollegeInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.info == nil {
		return nil
	}
	info := *c.info
	return &info
}

// Loaded reports whether a fetch has succeeded.
func (c *College) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Fetch refreshes the cache. Failures are logged and leave it unchanged.
func (c *College) Fetch(ctx context.Context, api CollegeReader, logger *slog.Logger) {
	info, err := api.CollegeInfo(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Error fetching college info", "error", err)
		return
	}
	c.mu.Lock()
	c.info = info
	c.loaded = true
	c.mu.Unlock()
}
