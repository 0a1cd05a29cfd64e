package slack

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/Ted0011/slack-app-rating/internal/domain"
)

// Star button action ids. The button VALUE carries the request id verbatim
// (an opaque token, no composite encoding); the score is carried by which of
// the five action ids fired.
var scoreByActionID = map[string]int{
	"star-1": 1,
	"star-2": 2,
	"star-3": 3,
	"star-4": 4,
	"star-5": 5,
}

// ScoreForActionID maps a fired star button to its score.
func ScoreForActionID(actionID string) (int, bool) {
	score, ok := scoreByActionID[actionID]
	return score, ok
}

// starPickerBlocks builds the interactive "choose a star rating" message for
// a request.
func starPickerBlocks(req *domain.RatingRequest) []slack.Block {
	prompt := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("<@%s> would like a rating. How did they do?", req.RequesterID),
			false, false),
		nil, nil,
	)

	buttons := make([]slack.BlockElement, 0, domain.MaxScore)
	for score := domain.MinScore; score <= domain.MaxScore; score++ {
		label := slack.NewTextBlockObject(slack.PlainTextType, strings.Repeat("★", score), true, false)
		buttons = append(buttons, slack.NewButtonBlockElement(
			fmt.Sprintf("star-%d", score),
			req.ID.String(),
			label,
		))
	}
	picker := slack.NewActionBlock("rating-"+req.ID.String(), buttons...)

	hint := slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("Anyone except <@%s> can submit a rating.", req.RequesterID),
			false, false),
	)

	return []slack.Block{prompt, picker, hint}
}

// announcementText renders the completed-rating follow-up message.
func announcementText(req *domain.RatingRequest) string {
	return fmt.Sprintf("<@%s> rated <@%s> %s (%d/5)",
		req.ReviewerID, req.RequesterID, strings.Repeat("★", req.Score), req.Score)
}
