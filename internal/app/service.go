package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Ted0011/slack-app-rating/internal/domain"
	"github.com/Ted0011/slack-app-rating/internal/metrics"
)

// Service is the request coordinator. It is the only component that
// references both in-memory stores and the messaging gateway.
type Service struct {
	registry  domain.RatingRegistry
	admission domain.AdmissionController
	gateway   domain.MessagingGateway
}

// NewService creates the coordinator.
func NewService(registry domain.RatingRegistry, admission domain.AdmissionController, gateway domain.MessagingGateway) *Service {
	return &Service{
		registry:  registry,
		admission: admission,
		gateway:   gateway,
	}
}

// RequestRating handles a validated "request rating" trigger: resolve the
// destination, check admission, create the request and deliver the star
// picker. A delivery failure leaves the created request pending; there is no
// rollback.
func (s *Service) RequestRating(ctx context.Context, trigger domain.RequestTrigger) (*domain.RatingRequest, error) {
	destination, err := s.resolveDestination(ctx, trigger)
	if err != nil {
		if errors.Is(err, domain.ErrMissingTarget) || errors.Is(err, domain.ErrUserNotFound) {
			metrics.RatingRequestsTotal.WithLabelValues("validation_failed").Inc()
		} else {
			metrics.RatingRequestsTotal.WithLabelValues("gateway_error").Inc()
		}
		return nil, err
	}

	if s.admission.IsLimited(trigger.RequesterID) {
		metrics.RatingRequestsTotal.WithLabelValues("rate_limited").Inc()
		return nil, domain.ErrRateLimited
	}
	s.admission.Record(trigger.RequesterID)

	req := s.registry.Create(trigger.RequesterID, destination)
	metrics.PendingRequests.Inc()

	if _, err := s.gateway.PostStarPicker(ctx, req); err != nil {
		// The request stays pending; there is no rollback on failed delivery.
		metrics.RatingRequestsTotal.WithLabelValues("gateway_error").Inc()
		slog.ErrorContext(ctx, "Star picker delivery failed",
			"request_id", req.ID.String(), "destination", destination, "error", err)
		return nil, fmt.Errorf("deliver star picker: %w", err)
	}

	metrics.RatingRequestsTotal.WithLabelValues("created").Inc()
	slog.InfoContext(ctx, "Rating request created",
		"request_id", req.ID.String(), "requester", trigger.RequesterID, "destination", destination)
	return req, nil
}

// SubmitRating handles a validated "submit rating" trigger: complete the
// request, announce the result, retract the picker. Retraction is best
// effort; its failure is logged, never surfaced.
func (s *Service) SubmitRating(ctx context.Context, trigger domain.SubmitTrigger) (*domain.RatingRequest, error) {
	req, err := s.registry.Complete(trigger.RequestID, trigger.ReviewerID, trigger.Score)
	if err != nil {
		metrics.RatingSubmissionsTotal.WithLabelValues(submissionOutcome(err)).Inc()
		return nil, err
	}

	metrics.RatingSubmissionsTotal.WithLabelValues("completed").Inc()
	metrics.PendingRequests.Dec()
	slog.InfoContext(ctx, "Rating completed",
		"request_id", req.ID.String(), "reviewer", trigger.ReviewerID, "score", trigger.Score)

	if err := s.gateway.AnnounceCompletion(ctx, req); err != nil {
		slog.ErrorContext(ctx, "Failed to announce completed rating",
			"request_id", req.ID.String(), "error", err)
	}

	if trigger.Picker.Channel != "" && trigger.Picker.Timestamp != "" {
		if err := s.gateway.RetractMessage(ctx, trigger.Picker); err != nil {
			metrics.PickerRetractionFailures.Inc()
			slog.WarnContext(ctx, "Failed to retract star picker",
				"request_id", req.ID.String(), "channel", trigger.Picker.Channel, "error", err)
		}
	}

	return req, nil
}

// resolveDestination turns a destination hint into a concrete channel id.
// Channel commands deliver to the channel itself; DM commands require a
// mentioned target and deliver to a DM opened with that target.
func (s *Service) resolveDestination(ctx context.Context, trigger domain.RequestTrigger) (string, error) {
	if !trigger.IsDirectMessage {
		if trigger.ChannelID == "" {
			return "", domain.ErrMissingTarget
		}
		return trigger.ChannelID, nil
	}

	if trigger.Target == nil {
		return "", domain.ErrMissingTarget
	}

	userID, err := s.gateway.LookupUser(ctx, *trigger.Target)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("resolve target: %w", err)
	}

	channelID, err := s.gateway.OpenDirectMessage(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("open direct message: %w", err)
	}
	return channelID, nil
}

func submissionOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrRequestNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadyCompleted):
		return "already_completed"
	case errors.Is(err, domain.ErrSelfRating):
		return "self_rating"
	case errors.Is(err, domain.ErrInvalidScore):
		return "invalid_score"
	default:
		return "error"
	}
}
