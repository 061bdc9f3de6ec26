package krishimitra

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// NewSlackPostHook returns a PostHook announcing new posts on a Slack
// incoming webhook, so the community channel sees fresh questions. Delivery
// failures are logged and swallowed: a broken webhook must not block
// submissions.
func NewSlackPostHook(webhookURL string, logger zerolog.Logger) PostHook {
	return func(post *Post) error {
		msg := slack.WebhookMessage{
			Text: fmt.Sprintf("New discussion by %v: %v", post.Author, post.Title),
		}

		if err := slack.PostWebhook(webhookURL, &msg); err != nil {
			logger.Warn().Err(err).Int64("post_id", post.ID).Msg("Failed to notify Slack")
		}

		return nil
	}
}
