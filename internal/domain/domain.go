package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// --- Model types ---

// Status is the lifecycle state of a rating request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Score bounds for a star rating.
const (
	MinScore = 1
	MaxScore = 5
)

// RatingRequest is a single "rate me" request. ReviewerID and Score stay at
// their zero values until the request is completed; once set they never change.
type RatingRequest struct {
	ID          uuid.UUID
	RequesterID string
	Destination string
	ReviewerID  string
	Score       int
	Status      Status
	CreatedAt   time.Time
}

// TargetKind says how a rating target was spelled in the command text.
type TargetKind string

const (
	TargetUserID   TargetKind = "user_id"  // <@U123> mention escape
	TargetUsername TargetKind = "username" // bare @name
	TargetEmail    TargetKind = "email"    // someone@example.com
)

// Target is a parsed reference to a Slack user.
type Target struct {
	Kind  TargetKind
	Value string
}

// RequestTrigger is a validated "request rating" command. The server layer
// parses the raw slash command into this shape before the coordinator sees it.
type RequestTrigger struct {
	RequesterID     string
	ChannelID       string
	IsDirectMessage bool
	Target          *Target // required for the DM flow, ignored otherwise
}

// SubmitTrigger is a validated "submit rating" interaction.
type SubmitTrigger struct {
	RequestID  uuid.UUID
	ReviewerID string
	Score      int
	Picker     MessageRef // the star-picker message, for retraction
}

// MessageRef identifies a posted message so it can be retracted later.
type MessageRef struct {
	Channel   string
	Timestamp string
}

// --- Interfaces ---

// RatingRegistry is the single source of truth for rating requests.
// Implementations are in-memory and must be safe for concurrent use.
type RatingRegistry interface {
	// Create always succeeds; admission is the caller's job.
	Create(requesterID, destination string) *RatingRequest
	// Get returns ErrRequestNotFound for unknown ids.
	Get(id uuid.UUID) (*RatingRequest, error)
	// Complete transitions Pending -> Completed exactly once. It returns
	// ErrRequestNotFound, ErrAlreadyCompleted, ErrSelfRating or
	// ErrInvalidScore without mutating the request.
	Complete(id uuid.UUID, reviewerID string, score int) (*RatingRequest, error)
}

// AdmissionController decides whether a requester may create a new request.
// Record is unconditional: callers check IsLimited first and only record
// admitted requests.
type AdmissionController interface {
	IsLimited(requesterID string) bool
	Record(requesterID string)
}

// MessagingGateway is the outbound chat-platform surface. Every method can
// fail with a gateway error; the coordinator translates those for users.
type MessagingGateway interface {
	// LookupUser resolves a parsed target to a Slack user id.
	LookupUser(ctx context.Context, target Target) (string, error)
	// OpenDirectMessage opens (or finds) a DM conversation with the user
	// and returns its channel id.
	OpenDirectMessage(ctx context.Context, userID string) (string, error)
	// PostStarPicker posts the interactive star-selection message for the
	// given request to its destination.
	PostStarPicker(ctx context.Context, req *RatingRequest) (MessageRef, error)
	// AnnounceCompletion posts the plain follow-up message for a completed
	// request to its destination.
	AnnounceCompletion(ctx context.Context, req *RatingRequest) error
	// RetractMessage deletes a previously posted message.
	RetractMessage(ctx context.Context, ref MessageRef) error
}

// RatingService is the coordinator contract the transport layer drives.
type RatingService interface {
	RequestRating(ctx context.Context, trigger RequestTrigger) (*RatingRequest, error)
	SubmitRating(ctx context.Context, trigger SubmitTrigger) (*RatingRequest, error)
}
