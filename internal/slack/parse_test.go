package slack

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ted0011/slack-app-rating/internal/domain"
)

func TestParseTarget_MentionEscape(t *testing.T) {
	target, ok := ParseTarget("<@U123ABC> please")
	assert.True(t, ok)
	assert.Equal(t, domain.Target{Kind: domain.TargetUserID, Value: "U123ABC"}, target)
}

func TestParseTarget_MentionEscapeWithUsername(t *testing.T) {
	target, ok := ParseTarget("<@U123ABC|alice>")
	assert.True(t, ok)
	assert.Equal(t, domain.Target{Kind: domain.TargetUserID, Value: "U123ABC"}, target)
}

func TestParseTarget_AtUsername(t *testing.T) {
	target, ok := ParseTarget("@alice")
	assert.True(t, ok)
	assert.Equal(t, domain.Target{Kind: domain.TargetUsername, Value: "alice"}, target)
}

func TestParseTarget_Email(t *testing.T) {
	target, ok := ParseTarget("alice@example.com")
	assert.True(t, ok)
	assert.Equal(t, domain.Target{Kind: domain.TargetEmail, Value: "alice@example.com"}, target)
}

func TestParseTarget_BareUsername(t *testing.T) {
	target, ok := ParseTarget("alice")
	assert.True(t, ok)
	assert.Equal(t, domain.Target{Kind: domain.TargetUsername, Value: "alice"}, target)
}

func TestParseTarget_FirstWordOnly(t *testing.T) {
	target, ok := ParseTarget("  @alice some trailing words  ")
	assert.True(t, ok)
	assert.Equal(t, "alice", target.Value)
}

func TestParseTarget_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "@"} {
		_, ok := ParseTarget(text)
		assert.False(t, ok, "text %q", text)
	}
}

func TestIsDirectMessageChannel(t *testing.T) {
	assert.True(t, IsDirectMessageChannel("directmessage"))
	assert.False(t, IsDirectMessageChannel("general"))
	assert.False(t, IsDirectMessageChannel(""))
}
