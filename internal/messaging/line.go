package messaging

import (
	"context"
	"fmt"
	"io"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// maxTextLength is the LINE limit for a single text message, in characters
const maxTextLength = 5000

// Line implements the Messenger interface using the LINE Messaging API
type Line struct {
	api  *messaging_api.MessagingApiAPI
	blob *messaging_api.MessagingApiBlobAPI
}

// NewLine creates a new Line Messenger. Empty endpoints use the public LINE hosts.
func NewLine(channelToken, apiEndpoint, dataEndpoint string) (*Line, error) {
	if channelToken == "" {
		return nil, fmt.Errorf("line channel access token is required")
	}

	var apiOpts []messaging_api.MessagingApiAPIOption
	if apiEndpoint != "" {
		apiOpts = append(apiOpts, messaging_api.WithEndpoint(apiEndpoint))
	}
	api, err := messaging_api.NewMessagingApiAPI(channelToken, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating messaging api client: %w", err)
	}

	var blobOpts []messaging_api.MessagingApiBlobAPIOption
	if dataEndpoint != "" {
		blobOpts = append(blobOpts, messaging_api.WithBlobEndpoint(dataEndpoint))
	}
	blob, err := messaging_api.NewMessagingApiBlobAPI(channelToken, blobOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating messaging blob client: %w", err)
	}

	return &Line{
		api:  api,
		blob: blob,
	}, nil
}

// GetContent downloads the content of a message and returns it with its content type.
// The SDK clients carry their own context, so ctx is not propagated.
func (l *Line) GetContent(_ context.Context, messageID string) ([]byte, string, error) {
	if messageID == "" {
		return nil, "", fmt.Errorf("message id is required")
	}

	resp, _, err := l.blob.GetMessageContentWithHttpInfo(messageID)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
			return nil, "", &StatusError{Op: "getting message content", StatusCode: resp.StatusCode, Err: err}
		}
		return nil, "", fmt.Errorf("getting message content: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading message content: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// Reply sends a single text message using the reply token
func (l *Line) Reply(_ context.Context, replyToken, text string) error {
	if replyToken == "" {
		return fmt.Errorf("reply token is required")
	}

	_, err := l.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{
				Text: truncate(text, maxTextLength),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("replying to message: %w", err)
	}
	return nil
}

// truncate limits s to n characters
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
