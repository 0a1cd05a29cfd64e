package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/slack-go/slack"

	"github.com/Ted0011/slack-app-rating/internal/correlation"
	"github.com/Ted0011/slack-app-rating/internal/domain"
	apperrors "github.com/Ted0011/slack-app-rating/internal/errors"
	"github.com/Ted0011/slack-app-rating/internal/logging"
	slackgw "github.com/Ted0011/slack-app-rating/internal/slack"
)

// slashResponse is the synchronous JSON reply to a slash command.
// response_type "ephemeral" keeps it visible to the invoking user only.
type slashResponse struct {
	ResponseType string `json:"response_type"`
	Text         string `json:"text"`
}

func ephemeral(text string) slashResponse {
	return slashResponse{ResponseType: "ephemeral", Text: text}
}

// handleSlashCommand is the "/rate" entry point. Business failures are
// reported as 200 + ephemeral text: Slack shows non-200 responses as a raw
// error to the user, so HTTP errors are reserved for malformed requests.
func (s *Server) handleSlashCommand(c echo.Context) error {
	cmd, err := slack.SlashCommandParse(c.Request())
	if err != nil {
		return apperrors.ValidationError("malformed slash command payload")
	}

	trigger := domain.RequestTrigger{
		RequesterID:     cmd.UserID,
		ChannelID:       cmd.ChannelID,
		IsDirectMessage: slackgw.IsDirectMessageChannel(cmd.ChannelName),
	}
	if trigger.IsDirectMessage {
		if target, ok := slackgw.ParseTarget(cmd.Text); ok {
			trigger.Target = &target
		}
	}

	ctx := c.Request().Context()
	if _, err := s.app.RequestRating(ctx, trigger); err != nil {
		return c.JSON(http.StatusOK, ephemeral(requestUserMessage(err)))
	}

	return c.JSON(http.StatusOK, ephemeral("Your rating request is out. Sit tight!"))
}

// handleInteraction is the star-button entry point. Slack requires an
// acknowledgment within 3 seconds, so the response is sent immediately and
// the submission is processed in the background; the outcome reaches the
// reviewer through the response_url.
func (s *Server) handleInteraction(c echo.Context) error {
	payload := c.FormValue("payload")
	if payload == "" {
		return apperrors.ValidationError("missing interaction payload")
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &callback); err != nil {
		return apperrors.ValidationError("malformed interaction payload")
	}

	if callback.Type != slack.InteractionTypeBlockActions || len(callback.ActionCallback.BlockActions) == 0 {
		return c.NoContent(http.StatusOK)
	}

	action := callback.ActionCallback.BlockActions[0]
	score, ok := slackgw.ScoreForActionID(action.ActionID)
	if !ok {
		// Not one of ours
		return c.NoContent(http.StatusOK)
	}

	// The button value is the request id verbatim.
	requestID, err := uuid.Parse(action.Value)
	if err != nil {
		logging.WithUser(callback.User.ID).WarnContext(c.Request().Context(),
			"Interaction carried an unparsable request id", "value", action.Value)
		s.respondAsync(c.Request().Context(), callback.ResponseURL,
			"That rating button looks stale. Ask for a fresh rating request.")
		return c.NoContent(http.StatusOK)
	}

	trigger := domain.SubmitTrigger{
		RequestID:  requestID,
		ReviewerID: callback.User.ID,
		Score:      score,
		Picker: domain.MessageRef{
			Channel:   callback.Channel.ID,
			Timestamp: callback.Message.Timestamp,
		},
	}

	// Detach from the request context: the HTTP response returns now, the
	// submission continues in the background.
	bgCtx := context.Background()
	if id, ok := correlation.ID(c.Request().Context()); ok {
		bgCtx = correlation.WithID(bgCtx, id)
	}
	go s.processSubmission(bgCtx, trigger, callback.ResponseURL)

	return c.NoContent(http.StatusOK)
}

func (s *Server) processSubmission(ctx context.Context, trigger domain.SubmitTrigger, responseURL string) {
	if _, err := s.app.SubmitRating(ctx, trigger); err != nil {
		logging.WithRequest(trigger.RequestID.String()).WarnContext(ctx,
			"Rating submission rejected", "reviewer", trigger.ReviewerID, "error", err)
		s.respondAsync(ctx, responseURL, submitUserMessage(err))
	}
}

// respondAsync posts an ephemeral message to a response_url, best effort.
func (s *Server) respondAsync(ctx context.Context, responseURL, text string) {
	if responseURL == "" {
		return
	}
	msg := &slack.WebhookMessage{
		ResponseType: "ephemeral",
		Text:         text,
	}
	if err := s.respond(ctx, responseURL, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to post response_url message", "error", err)
	}
}

// requestUserMessage translates a "request rating" failure for the requester.
func requestUserMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingTarget):
		return "Tell me who should rate you, e.g. `/rate @teammate`."
	case errors.Is(err, domain.ErrUserNotFound):
		return "I couldn't find that user. Try a mention, @username or email."
	case errors.Is(err, domain.ErrRateLimited):
		return "You've requested too many ratings recently. Give it a few minutes."
	default:
		return "Something went wrong talking to Slack. Try again, or ping an admin if it keeps happening."
	}
}

// submitUserMessage translates a "submit rating" failure for the reviewer.
func submitUserMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrRequestNotFound):
		return "That rating request doesn't exist anymore."
	case errors.Is(err, domain.ErrAlreadyCompleted):
		return "Someone already rated this request."
	case errors.Is(err, domain.ErrSelfRating):
		return "Nice try - you can't rate your own request."
	case errors.Is(err, domain.ErrInvalidScore):
		return fmt.Sprintf("Scores go from %d to %d stars.", domain.MinScore, domain.MaxScore)
	default:
		return "Something went wrong recording your rating. Try again, or ping an admin if it keeps happening."
	}
}
