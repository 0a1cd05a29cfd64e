// Package slack implements the messaging gateway over the Slack Web API,
// plus the thin parsing helpers for commands and interaction payloads.
package slack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/slack-go/slack"

	"github.com/Ted0011/slack-app-rating/internal/domain"
	"github.com/Ted0011/slack-app-rating/internal/metrics"
	"github.com/Ted0011/slack-app-rating/internal/retry"
)

// Slack reports missing users as plain error strings, and the two lookup
// methods use different ones.
const (
	userNotFoundErr  = "user_not_found"
	usersNotFoundErr = "users_not_found"
)

func isUserNotFound(err error) bool {
	msg := err.Error()
	return msg == userNotFoundErr || msg == usersNotFoundErr
}

// slackAPI is the subset of *slack.Client the gateway uses.
type slackAPI interface {
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
	GetUsersContext(ctx context.Context, options ...slack.GetUsersOption) ([]slack.User, error)
	GetUserByEmailContext(ctx context.Context, email string) (*slack.User, error)
	OpenConversationContext(ctx context.Context, params *slack.OpenConversationParameters) (*slack.Channel, bool, bool, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	DeleteMessageContext(ctx context.Context, channel, messageTimestamp string) (string, string, error)
}

// Gateway implements domain.MessagingGateway over the Slack Web API.
// Transient failures and platform rate limits are retried with backoff;
// everything else surfaces immediately.
type Gateway struct {
	api    slackAPI
	clock  clockwork.Clock
	policy retry.Policy
}

// NewGateway wraps a Slack client.
func NewGateway(api *slack.Client, clock clockwork.Clock) *Gateway {
	return newGateway(api, clock)
}

func newGateway(api slackAPI, clock clockwork.Clock) *Gateway {
	return &Gateway{
		api:   api,
		clock: clock,
		policy: retry.Policy{
			MaxAttempts:      3,
			InitialBackoff:   200 * time.Millisecond,
			RateLimitBackoff: 2 * time.Second,
			Clock:            clock,
			OnRetry: func(attempt int, err error, backoff time.Duration) {
				slog.Warn("Retrying Slack API call", "attempt", attempt, "backoff", backoff, "error", err)
			},
		},
	}
}

// classifySlackError picks the retry action for a failed API call.
// Slack rate limits wait out the Retry-After duration the platform sent,
// 5xx responses use the normal backoff, and business errors (unknown
// channel, missing user) stop immediately.
func classifySlackError(err error) (retry.Action, time.Duration) {
	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		return retry.After, rateLimited.RetryAfter
	}
	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) && statusErr.Code >= 500 {
		return retry.Retry, 0
	}
	return retry.Stop, 0
}

// call instruments and retries a single Slack Web API method.
func (g *Gateway) call(ctx context.Context, method string, op func() error) error {
	err := retry.DoVoid(ctx, g.policy, classifySlackError, func() error {
		start := g.clock.Now()
		err := op()
		metrics.SlackAPIRequestDuration.WithLabelValues(method).Observe(g.clock.Since(start).Seconds())

		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.SlackAPIRequestsTotal.WithLabelValues(method, status).Inc()
		return err
	})

	var permanent *retry.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	return err
}

// LookupUser resolves a parsed target to a Slack user id.
func (g *Gateway) LookupUser(ctx context.Context, target domain.Target) (string, error) {
	switch target.Kind {
	case domain.TargetUserID:
		var user *slack.User
		err := g.call(ctx, "users.info", func() error {
			var apiErr error
			user, apiErr = g.api.GetUserInfoContext(ctx, target.Value)
			return apiErr
		})
		if err != nil {
			if isUserNotFound(err) {
				return "", domain.ErrUserNotFound
			}
			return "", fmt.Errorf("users.info: %w", err)
		}
		return user.ID, nil

	case domain.TargetEmail:
		var user *slack.User
		err := g.call(ctx, "users.lookupByEmail", func() error {
			var apiErr error
			user, apiErr = g.api.GetUserByEmailContext(ctx, target.Value)
			return apiErr
		})
		if err != nil {
			if isUserNotFound(err) {
				return "", domain.ErrUserNotFound
			}
			return "", fmt.Errorf("users.lookupByEmail: %w", err)
		}
		return user.ID, nil

	case domain.TargetUsername:
		var users []slack.User
		err := g.call(ctx, "users.list", func() error {
			var apiErr error
			users, apiErr = g.api.GetUsersContext(ctx)
			return apiErr
		})
		if err != nil {
			return "", fmt.Errorf("users.list: %w", err)
		}
		for _, user := range users {
			if user.Name == target.Value || user.Profile.DisplayName == target.Value {
				return user.ID, nil
			}
		}
		return "", domain.ErrUserNotFound

	default:
		return "", fmt.Errorf("unknown target kind %q", target.Kind)
	}
}

// OpenDirectMessage opens (or finds) a DM conversation with the user.
func (g *Gateway) OpenDirectMessage(ctx context.Context, userID string) (string, error) {
	var channel *slack.Channel
	err := g.call(ctx, "conversations.open", func() error {
		var apiErr error
		channel, _, _, apiErr = g.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
			Users: []string{userID},
		})
		return apiErr
	})
	if err != nil {
		return "", fmt.Errorf("conversations.open: %w", err)
	}
	return channel.ID, nil
}

// PostStarPicker posts the interactive star-selection message for a request.
func (g *Gateway) PostStarPicker(ctx context.Context, req *domain.RatingRequest) (domain.MessageRef, error) {
	blocks := starPickerBlocks(req)

	var channel, timestamp string
	err := g.call(ctx, "chat.postMessage", func() error {
		var apiErr error
		channel, timestamp, apiErr = g.api.PostMessageContext(ctx, req.Destination,
			slack.MsgOptionBlocks(blocks...),
			slack.MsgOptionText(fmt.Sprintf("<@%s> would like a rating", req.RequesterID), false),
		)
		return apiErr
	})
	if err != nil {
		return domain.MessageRef{}, fmt.Errorf("chat.postMessage: %w", err)
	}
	return domain.MessageRef{Channel: channel, Timestamp: timestamp}, nil
}

// AnnounceCompletion posts the completed-rating follow-up message to the
// request's destination.
func (g *Gateway) AnnounceCompletion(ctx context.Context, req *domain.RatingRequest) error {
	err := g.call(ctx, "chat.postMessage", func() error {
		_, _, apiErr := g.api.PostMessageContext(ctx, req.Destination,
			slack.MsgOptionText(announcementText(req), false))
		return apiErr
	})
	if err != nil {
		return fmt.Errorf("chat.postMessage: %w", err)
	}
	return nil
}

// RetractMessage deletes a previously posted message.
func (g *Gateway) RetractMessage(ctx context.Context, ref domain.MessageRef) error {
	err := g.call(ctx, "chat.delete", func() error {
		_, _, apiErr := g.api.DeleteMessageContext(ctx, ref.Channel, ref.Timestamp)
		return apiErr
	})
	if err != nil {
		return fmt.Errorf("chat.delete: %w", err)
	}
	return nil
}
