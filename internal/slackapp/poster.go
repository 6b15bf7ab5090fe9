package slackapp

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// Poster sends replies through the Web API chat.postMessage method.
type Poster struct {
	api *slack.Client
}

// NewPoster creates a Poster authenticated with a bot token. Options are
// passed through to the underlying client (e.g. slack.OptionAPIURL in tests).
func NewPoster(botToken string, opts ...slack.Option) *Poster {
	return &Poster{api: slack.New(botToken, opts...)}
}

// PostReply posts text to channel as a threaded reply under threadTS.
func (p *Poster) PostReply(ctx context.Context, channel, threadTS, text string) error {
	msgOpts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if threadTS != "" {
		msgOpts = append(msgOpts, slack.MsgOptionTS(threadTS))
	}
	if _, _, err := p.api.PostMessageContext(ctx, channel, msgOpts...); err != nil {
		return fmt.Errorf("posting to %s: %w", channel, err)
	}
	return nil
}
