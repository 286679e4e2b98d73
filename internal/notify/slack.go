package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// SlackPoster is the subset of *slack.Client used by SlackNotifier.
type SlackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier posts events to a Slack channel.
type SlackNotifier struct {
	client    SlackPoster
	channelID string
	baseURL   string
}

// NewSlackNotifier creates a notifier backed by a bot token.
// baseURL, when set, is used to build links to sheets and checklists.
func NewSlackNotifier(botToken, channelID, baseURL string) *SlackNotifier {
	return NewSlackNotifierWithClient(slack.New(botToken), channelID, baseURL)
}

// NewSlackNotifierWithClient creates a notifier around an existing poster.
func NewSlackNotifierWithClient(client SlackPoster, channelID, baseURL string) *SlackNotifier {
	return &SlackNotifier{client: client, channelID: channelID, baseURL: baseURL}
}

// Notify implements Notifier.
func (s *SlackNotifier) Notify(ctx context.Context, event Event) error {
	text := s.format(event)
	_, _, err := s.client.PostMessageContext(ctx, s.channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		return fmt.Errorf("failed to post slack message: %w", err)
	}
	return nil
}

func (s *SlackNotifier) format(event Event) string {
	prefix := map[EventKind]string{
		EventSubmittedForApproval: ":hourglass_flowing_sand: Waiting for QA Lead approval",
		EventReviewed:             ":white_check_mark: Test case reviewed",
		EventAccessRequested:      ":raising_hand: Access requested",
		EventAccessApproved:       ":unlock: Access approved",
		EventAccessDeclined:       ":no_entry: Access declined",
		EventChecklistAssigned:    ":clipboard: Checklist assigned",
	}[event.Kind]
	if prefix == "" {
		prefix = string(event.Kind)
	}

	text := prefix + ": " + event.Text
	if s.baseURL != "" && event.Resource.ID != "" {
		text += fmt.Sprintf(" <%s/%ss/%s|open>", s.baseURL, event.Resource.Type, event.Resource.ID)
	}
	return text
}
