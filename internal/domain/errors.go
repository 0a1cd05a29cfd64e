package domain

import "errors"

// Closed error set for the rating lifecycle. The coordinator and handlers
// match these with errors.Is; there is no catch-all string passthrough.
var (
	ErrRequestNotFound  = errors.New("rating request not found")
	ErrAlreadyCompleted = errors.New("rating request already completed")
	ErrSelfRating       = errors.New("requester cannot rate their own request")
	ErrInvalidScore     = errors.New("score must be between 1 and 5")
	ErrRateLimited      = errors.New("too many rating requests")
	ErrMissingTarget    = errors.New("direct-message command requires a target user")
	ErrUserNotFound     = errors.New("user not found")
)
