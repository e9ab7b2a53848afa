package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zombor/receipt-bot/internal/messaging"
	"github.com/zombor/receipt-bot/internal/metrics"
	"github.com/zombor/receipt-bot/internal/scanning"
)

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service turns image events into receipt replies
type Service struct {
	messenger  messaging.Messenger
	scanner    scanning.Scanner
	timeSource TimeSource
}

// NewService creates a new Service with the default time source
func NewService(messenger messaging.Messenger, scanner scanning.Scanner) *Service {
	return NewServiceWithDeps(messenger, scanner, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(messenger messaging.Messenger, scanner scanning.Scanner, timeSrc TimeSource) *Service {
	return &Service{
		messenger:  messenger,
		scanner:    scanner,
		timeSource: timeSrc,
	}
}

// Extract downloads the image for a message and scans it.
// Failures are returned inside the Result, tagged with their stage.
func (s *Service) Extract(ctx context.Context, messageID string) Result {
	data, contentType, err := s.messenger.GetContent(ctx, messageID)
	if err != nil {
		return Result{Err: &ExtractionError{Stage: StageFetch, Err: err}}
	}

	receiptData, err := s.scanner.ScanReceipt(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"message_id", messageID,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		var parseErr *scanning.ParseError
		if errors.As(err, &parseErr) {
			return Result{Err: &ExtractionError{Stage: StageParse, Err: err}}
		}
		// The download succeeded but did not yield an image the model accepts
		var imageErr *scanning.ImageError
		if errors.As(err, &imageErr) {
			return Result{Err: &ExtractionError{Stage: StageFetch, Err: err}}
		}
		return Result{Err: &ExtractionError{Stage: StageGenerate, Err: err}}
	}

	return Result{Receipt: receiptData}
}

// HandleImage extracts the receipt in an image event and replies exactly once,
// with either the summary or the error description. A failed reply is returned
// and never retried: the reply token is single-use.
func (s *Service) HandleImage(ctx context.Context, event messaging.ImageEvent) error {
	start := s.timeSource.Now()
	result := s.Extract(ctx, event.MessageID)
	metrics.RecordImageEvent(result.Outcome(), s.timeSource.Now().Sub(start))

	if result.Err != nil {
		slog.Warn("Replying with extraction error",
			"message_id", event.MessageID,
			"outcome", result.Outcome(),
			"error", result.Err,
		)
	}

	if err := s.messenger.Reply(ctx, event.ReplyToken, FormatReply(result)); err != nil {
		metrics.IncrementReplyFailure()
		return fmt.Errorf("sending reply for message %s: %w", event.MessageID, err)
	}

	return nil
}
