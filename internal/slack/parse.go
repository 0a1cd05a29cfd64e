package slack

import (
	"regexp"
	"strings"

	"github.com/Ted0011/slack-app-rating/internal/domain"
)

// mentionPattern matches Slack's mention escape, with or without the legacy
// username suffix: <@U123ABC> or <@U123ABC|alice>.
var mentionPattern = regexp.MustCompile(`<@([A-Z0-9]+)(?:\|[^>]*)?>`)

// ParseTarget extracts a rating target from free-form command text.
// Recognized spellings, in order: a mention escape, @username, an email
// address, a bare username. Returns false when the text names no target.
func ParseTarget(text string) (domain.Target, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Target{}, false
	}

	if m := mentionPattern.FindStringSubmatch(text); m != nil {
		return domain.Target{Kind: domain.TargetUserID, Value: m[1]}, true
	}

	word := strings.Fields(text)[0]
	if name, ok := strings.CutPrefix(word, "@"); ok {
		if name == "" {
			return domain.Target{}, false
		}
		return domain.Target{Kind: domain.TargetUsername, Value: name}, true
	}
	if strings.Contains(word, "@") {
		return domain.Target{Kind: domain.TargetEmail, Value: word}, true
	}
	return domain.Target{Kind: domain.TargetUsername, Value: word}, true
}

// IsDirectMessageChannel reports whether a slash command was issued from a DM
// with the bot rather than a regular channel.
func IsDirectMessageChannel(channelName string) bool {
	return channelName == "directmessage"
}
