// Package messaging adapts the LINE Messaging API: webhook verification,
// message content download and replies.
package messaging

import (
	"context"
	"fmt"
)

// ImageEvent is an inbound image message that must be answered exactly once.
type ImageEvent struct {
	MessageID      string
	ReplyToken     string
	WebhookEventID string
}

// Messenger defines the messaging platform operations the bot needs
type Messenger interface {
	// GetContent downloads the binary content of a message
	GetContent(ctx context.Context, messageID string) ([]byte, string, error)
	// Reply answers an event using its single-use reply token
	Reply(ctx context.Context, replyToken, text string) error
}

// StatusError captures a non-2xx response from the platform
type StatusError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %v", e.Op, e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}
