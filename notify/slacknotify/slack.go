// Package slacknotify implements the notify.Sink using the Slack Web API.
package slacknotify

import (
	"context"

	"github.com/slack-go/slack"
)

// Client is the subset of the Slack API the sink needs.
// This allows mocking in tests while keeping the real implementation simple.
type Client interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Sink delivers messages as Slack DMs/channel posts. The staff chat handle
// is a Slack channel or user ID.
type Sink struct {
	client Client
}

func New(botToken string) *Sink {
	return &Sink{client: slack.New(botToken)}
}

// NewWithClient wires a custom client (tests).
func NewWithClient(c Client) *Sink {
	return &Sink{client: c}
}

func (s *Sink) Send(ctx context.Context, handle, text string) error {
	_, _, err := s.client.PostMessageContext(ctx, handle,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	return err
}
