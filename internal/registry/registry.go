// Package registry holds the in-memory rating request store.
package registry

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/Ted0011/slack-app-rating/internal/domain"
)

// Registry is the single source of truth for rating requests. All state lives
// in one map guarded by one mutex; Complete's read-check-write runs under the
// lock so two concurrent submissions for the same id cannot both win.
// Requests are never deleted; retention is a caller concern.
type Registry struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	requests map[uuid.UUID]*domain.RatingRequest
}

// New creates an empty registry.
func New(clock clockwork.Clock) *Registry {
	return &Registry{
		clock:    clock,
		requests: make(map[uuid.UUID]*domain.RatingRequest),
	}
}

// Create stores a new Pending request and returns a copy of it.
// It never fails; admission is enforced by the caller.
func (r *Registry) Create(requesterID, destination string) *domain.RatingRequest {
	r.mu.Lock()
	defer r.mu.Unlock()

	req := &domain.RatingRequest{
		ID:          uuid.New(),
		RequesterID: requesterID,
		Destination: destination,
		Status:      domain.StatusPending,
		CreatedAt:   r.clock.Now(),
	}
	r.requests[req.ID] = req

	return copyRequest(req)
}

// Get returns the request with the given id, or ErrRequestNotFound.
func (r *Registry) Get(id uuid.UUID) (*domain.RatingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return copyRequest(req), nil
}

// Complete transitions a Pending request to Completed exactly once.
// Reviewer and score are write-once: a second submission is rejected with
// ErrAlreadyCompleted and leaves the first result untouched.
func (r *Registry) Complete(id uuid.UUID, reviewerID string, score int) (*domain.RatingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	if req.Status == domain.StatusCompleted {
		return nil, domain.ErrAlreadyCompleted
	}
	if reviewerID == req.RequesterID {
		return nil, domain.ErrSelfRating
	}
	if score < domain.MinScore || score > domain.MaxScore {
		return nil, domain.ErrInvalidScore
	}

	req.ReviewerID = reviewerID
	req.Score = score
	req.Status = domain.StatusCompleted

	return copyRequest(req), nil
}

// Len reports the number of stored requests, completed ones included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

// copyRequest returns a snapshot so callers never hold a pointer into the map.
func copyRequest(req *domain.RatingRequest) *domain.RatingRequest {
	c := *req
	return &c
}
