package messaging

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// SignatureHeader carries the base64 HMAC-SHA256 of the request body
const SignatureHeader = "X-Line-Signature"

// ErrInvalidSignature is returned when the signature header is missing or does not match
var ErrInvalidSignature = errors.New("invalid signature")

// ParseImageEvents verifies the request signature and returns the image
// message events it contains, in delivery order. Other event types are skipped.
func ParseImageEvents(channelSecret string, r *http.Request) ([]ImageEvent, error) {
	cb, err := webhook.ParseRequest(channelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("parsing webhook payload: %w", err)
	}

	events := make([]ImageEvent, 0, len(cb.Events))
	for _, event := range cb.Events {
		e, ok := event.(webhook.MessageEvent)
		if !ok {
			continue
		}
		message, ok := e.Message.(webhook.ImageMessageContent)
		if !ok {
			continue
		}

		events = append(events, ImageEvent{
			MessageID:      message.Id,
			ReplyToken:     e.ReplyToken,
			WebhookEventID: e.WebhookEventId,
		})
	}

	return events, nil
}
