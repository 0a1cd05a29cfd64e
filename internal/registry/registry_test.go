package registry

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ted0011/slack-app-rating/internal/domain"
)

func newTestRegistry() *Registry {
	return New(clockwork.NewFakeClock())
}

func TestCreate_AssignsDistinctIDs(t *testing.T) {
	r := newTestRegistry()

	seen := make(map[uuid.UUID]struct{})
	for i := 0; i < 100; i++ {
		req := r.Create("U1", "C1")
		_, dup := seen[req.ID]
		require.False(t, dup, "id %s assigned twice", req.ID)
		seen[req.ID] = struct{}{}
	}
	assert.Equal(t, 100, r.Len())
}

func TestCreate_StartsPending(t *testing.T) {
	r := newTestRegistry()

	req := r.Create("U1", "C1")

	assert.Equal(t, "U1", req.RequesterID)
	assert.Equal(t, "C1", req.Destination)
	assert.Equal(t, domain.StatusPending, req.Status)
	assert.Empty(t, req.ReviewerID)
	assert.Zero(t, req.Score)
	assert.False(t, req.CreatedAt.IsZero())
}

func TestGet_UnknownID(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Get(uuid.New())
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}

func TestGet_ReturnsSnapshot(t *testing.T) {
	r := newTestRegistry()
	req := r.Create("U1", "C1")

	got, err := r.Get(req.ID)
	require.NoError(t, err)

	// Mutating the returned copy must not touch the stored request.
	got.Status = domain.StatusCompleted
	stored, err := r.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestComplete_Success(t *testing.T) {
	r := newTestRegistry()
	req := r.Create("U1", "C1")

	completed, err := r.Complete(req.ID, "U2", 4)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, completed.Status)
	assert.Equal(t, "U2", completed.ReviewerID)
	assert.Equal(t, 4, completed.Score)
}

func TestComplete_UnknownID(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Complete(uuid.New(), "U2", 3)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}

func TestComplete_SecondSubmissionRejected(t *testing.T) {
	r := newTestRegistry()
	req := r.Create("U1", "C1")

	_, err := r.Complete(req.ID, "U2", 4)
	require.NoError(t, err)

	_, err = r.Complete(req.ID, "U3", 1)
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	// First reviewer and score stay untouched.
	stored, err := r.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, "U2", stored.ReviewerID)
	assert.Equal(t, 4, stored.Score)
}

func TestComplete_SelfRating(t *testing.T) {
	r := newTestRegistry()
	req := r.Create("U1", "C1")

	_, err := r.Complete(req.ID, "U1", 5)
	assert.ErrorIs(t, err, domain.ErrSelfRating)

	stored, err := r.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestComplete_InvalidScore(t *testing.T) {
	r := newTestRegistry()

	for _, score := range []int{-1, 0, 6, 100} {
		req := r.Create("U1", "C1")

		_, err := r.Complete(req.ID, "U2", score)
		assert.ErrorIs(t, err, domain.ErrInvalidScore, "score %d", score)

		stored, err := r.Get(req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, stored.Status, "score %d", score)
	}
}

// TestComplete_ConcurrentSubmissions verifies that two simultaneous
// submissions for the same pending request cannot both win.
func TestComplete_ConcurrentSubmissions(t *testing.T) {
	r := newTestRegistry()
	req := r.Create("U1", "C1")

	reviewers := []struct {
		id    string
		score int
	}{
		{"U2", 5},
		{"U3", 1},
	}

	var wg sync.WaitGroup
	results := make([]error, len(reviewers))
	for i, reviewer := range reviewers {
		i, reviewer := i, reviewer
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = r.Complete(req.ID, reviewer.id, reviewer.score)
		}()
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, domain.ErrAlreadyCompleted):
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	// The stored result matches whichever submission won.
	stored, err := r.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	winner := reviewers[0]
	if results[0] != nil {
		winner = reviewers[1]
	}
	assert.Equal(t, winner.id, stored.ReviewerID)
	assert.Equal(t, winner.score, stored.Score)
}
