package slack

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ted0011/slack-app-rating/internal/domain"
	"github.com/Ted0011/slack-app-rating/internal/retry"
)

// --- Mock Slack API ---

type mockSlackAPI struct {
	getUserInfoFn      func(ctx context.Context, user string) (*slack.User, error)
	getUsersFn         func(ctx context.Context, options ...slack.GetUsersOption) ([]slack.User, error)
	getUserByEmailFn   func(ctx context.Context, email string) (*slack.User, error)
	openConversationFn func(ctx context.Context, params *slack.OpenConversationParameters) (*slack.Channel, bool, bool, error)
	postMessageFn      func(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	deleteMessageFn    func(ctx context.Context, channel, messageTimestamp string) (string, string, error)
}

func (m *mockSlackAPI) GetUserInfoContext(ctx context.Context, user string) (*slack.User, error) {
	if m.getUserInfoFn != nil {
		return m.getUserInfoFn(ctx, user)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockSlackAPI) GetUsersContext(ctx context.Context, options ...slack.GetUsersOption) ([]slack.User, error) {
	if m.getUsersFn != nil {
		return m.getUsersFn(ctx, options...)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockSlackAPI) GetUserByEmailContext(ctx context.Context, email string) (*slack.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(ctx, email)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockSlackAPI) OpenConversationContext(ctx context.Context, params *slack.OpenConversationParameters) (*slack.Channel, bool, bool, error) {
	if m.openConversationFn != nil {
		return m.openConversationFn(ctx, params)
	}
	return nil, false, false, fmt.Errorf("not implemented")
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	if m.postMessageFn != nil {
		return m.postMessageFn(ctx, channelID, options...)
	}
	return "", "", fmt.Errorf("not implemented")
}

func (m *mockSlackAPI) DeleteMessageContext(ctx context.Context, channel, messageTimestamp string) (string, string, error) {
	if m.deleteMessageFn != nil {
		return m.deleteMessageFn(ctx, channel, messageTimestamp)
	}
	return "", "", fmt.Errorf("not implemented")
}

func newTestGateway(api slackAPI) *Gateway {
	clock := clockwork.NewRealClock()
	return &Gateway{
		api:   api,
		clock: clock,
		policy: retry.Policy{
			MaxAttempts:      3,
			InitialBackoff:   time.Millisecond,
			RateLimitBackoff: time.Millisecond,
			Clock:            clock,
		},
	}
}

// --- Lookups ---

func TestLookupUser_ByID(t *testing.T) {
	api := &mockSlackAPI{
		getUserInfoFn: func(ctx context.Context, user string) (*slack.User, error) {
			assert.Equal(t, "U123", user)
			return &slack.User{ID: "U123", Name: "alice"}, nil
		},
	}
	g := newTestGateway(api)

	id, err := g.LookupUser(context.Background(), domain.Target{Kind: domain.TargetUserID, Value: "U123"})
	require.NoError(t, err)
	assert.Equal(t, "U123", id)
}

func TestLookupUser_ByEmail_NotFound(t *testing.T) {
	api := &mockSlackAPI{
		getUserByEmailFn: func(ctx context.Context, email string) (*slack.User, error) {
			return nil, errors.New("users_not_found")
		},
	}
	g := newTestGateway(api)

	_, err := g.LookupUser(context.Background(), domain.Target{Kind: domain.TargetEmail, Value: "nobody@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLookupUser_ByUsername(t *testing.T) {
	api := &mockSlackAPI{
		getUsersFn: func(ctx context.Context, options ...slack.GetUsersOption) ([]slack.User, error) {
			return []slack.User{
				{ID: "U1", Name: "bob"},
				{ID: "U2", Name: "alice.w", Profile: slack.UserProfile{DisplayName: "alice"}},
			}, nil
		},
	}
	g := newTestGateway(api)

	id, err := g.LookupUser(context.Background(), domain.Target{Kind: domain.TargetUsername, Value: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "U2", id)

	_, err = g.LookupUser(context.Background(), domain.Target{Kind: domain.TargetUsername, Value: "carol"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

// --- Conversations and messages ---

func TestOpenDirectMessage(t *testing.T) {
	api := &mockSlackAPI{
		openConversationFn: func(ctx context.Context, params *slack.OpenConversationParameters) (*slack.Channel, bool, bool, error) {
			assert.Equal(t, []string{"U42"}, params.Users)
			channel := &slack.Channel{}
			channel.ID = "D99"
			return channel, false, false, nil
		},
	}
	g := newTestGateway(api)

	id, err := g.OpenDirectMessage(context.Background(), "U42")
	require.NoError(t, err)
	assert.Equal(t, "D99", id)
}

func TestPostStarPicker(t *testing.T) {
	api := &mockSlackAPI{
		postMessageFn: func(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
			assert.Equal(t, "C1", channelID)
			return "C1", "1700000000.000100", nil
		},
	}
	g := newTestGateway(api)

	ref, err := g.PostStarPicker(context.Background(), pendingRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.MessageRef{Channel: "C1", Timestamp: "1700000000.000100"}, ref)
}

func TestRetractMessage_Error(t *testing.T) {
	api := &mockSlackAPI{
		deleteMessageFn: func(ctx context.Context, channel, messageTimestamp string) (string, string, error) {
			return "", "", errors.New("message_not_found")
		},
	}
	g := newTestGateway(api)

	err := g.RetractMessage(context.Background(), domain.MessageRef{Channel: "C1", Timestamp: "1.2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat.delete")
}

// --- Retry behavior ---

func TestAnnounceCompletion_RetriesServerErrors(t *testing.T) {
	calls := 0
	api := &mockSlackAPI{
		postMessageFn: func(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
			calls++
			if calls < 3 {
				return "", "", slack.StatusCodeError{Code: 503, Status: "503 Service Unavailable"}
			}
			return "C1", "1.2", nil
		},
	}
	g := newTestGateway(api)

	req := pendingRequest()
	req.ReviewerID = "U2"
	req.Score = 3

	err := g.AnnounceCompletion(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestAnnounceCompletion_BusinessErrorNotRetried(t *testing.T) {
	calls := 0
	api := &mockSlackAPI{
		postMessageFn: func(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
			calls++
			return "", "", errors.New("channel_not_found")
		},
	}
	g := newTestGateway(api)

	err := g.AnnounceCompletion(context.Background(), pendingRequest())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestClassifySlackError(t *testing.T) {
	action, delay := classifySlackError(&slack.RateLimitedError{RetryAfter: 7 * time.Second})
	assert.Equal(t, retry.After, action)
	assert.Equal(t, 7*time.Second, delay)

	action, _ = classifySlackError(slack.StatusCodeError{Code: 502})
	assert.Equal(t, retry.Retry, action)

	action, _ = classifySlackError(slack.StatusCodeError{Code: 404})
	assert.Equal(t, retry.Stop, action)

	action, _ = classifySlackError(errors.New("channel_not_found"))
	assert.Equal(t, retry.Stop, action)
}
