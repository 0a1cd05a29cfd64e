// Package admission implements per-requester sliding-window rate limiting.
package admission

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Default policy: 5 requests per 15 minutes, flat for every requester.
const (
	DefaultMaxRequests = 5
	DefaultWindow      = 15 * time.Minute
)

// Controller tracks request-creation timestamps per requester and reports
// whether a new request may be created. Pruning happens lazily on IsLimited,
// so an inactive requester's stale entries persist until their next check.
type Controller struct {
	mu          sync.Mutex
	clock       clockwork.Clock
	maxRequests int
	window      time.Duration
	timestamps  map[string][]time.Time
}

// New creates a controller. maxRequests and window fall back to the defaults
// when zero.
func New(clock clockwork.Clock, maxRequests int, window time.Duration) *Controller {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Controller{
		clock:       clock,
		maxRequests: maxRequests,
		window:      window,
		timestamps:  make(map[string][]time.Time),
	}
}

// IsLimited prunes timestamps older than the window for the requester, then
// reports whether the remaining count is at or above the threshold.
func (c *Controller) IsLimited(requesterID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.clock.Now().Add(-c.window)
	kept := c.timestamps[requesterID][:0]
	for _, ts := range c.timestamps[requesterID] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) == 0 {
		delete(c.timestamps, requesterID)
		return false
	}
	c.timestamps[requesterID] = kept

	return len(kept) >= c.maxRequests
}

// Record appends the current instant unconditionally. Policy lives in the
// caller: check IsLimited first and only record admitted requests.
func (c *Controller) Record(requesterID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timestamps[requesterID] = append(c.timestamps[requesterID], c.clock.Now())
}
