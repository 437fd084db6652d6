package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"pilemap/internal/summary"
)

type Notifier interface {
	Notify(ctx context.Context, title string, s summary.Summary) error
}

// SlackNotifier posts refresh summaries to one channel.
type SlackNotifier struct {
	api       *slack.Client
	channelID string
}

func NewSlackNotifier(token, channelID string, options ...slack.Option) *SlackNotifier {
	return &SlackNotifier{
		api:       slack.New(token, options...),
		channelID: channelID,
	}
}

func (n *SlackNotifier) Notify(ctx context.Context, title string, s summary.Summary) error {
	_, _, err := n.api.PostMessageContext(ctx, n.channelID, slack.MsgOptionText(FormatMessage(title, s), false))
	if err != nil {
		return fmt.Errorf("posting summary to %s: %w", n.channelID, err)
	}
	return nil
}

func FormatMessage(title string, s summary.Summary) string {
	if s.Total == 0 {
		return fmt.Sprintf("*%s*: no pile records loaded (sheet empty or unreachable).", title)
	}
	return fmt.Sprintf("*%s*\n:white_check_mark: Completed: %d (%d%%)\n:construction: Ongoing: %d (%d%%)\n:hourglass: Pending: %d (%d%%)\nTotal: %d",
		title, s.Completed, s.CompletedPct, s.Ongoing, s.OngoingPct, s.Pending, s.PendingPct, s.Total)
}
