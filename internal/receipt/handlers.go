package receipt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zombor/receipt-bot/internal/messaging"
	"github.com/zombor/receipt-bot/internal/metrics"
)

// maxBodySize bounds webhook payloads; LINE events carry no inline media
const maxBodySize = int64(1 << 20)

// writeStatus writes a status code with an optional plain text body
func writeStatus(w http.ResponseWriter, code int, body string) {
	metrics.RecordWebhookRequest(strconv.Itoa(code))
	if body == "" {
		w.WriteHeader(code)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	io.WriteString(w, body)
}

// handleCallback verifies the webhook signature and answers every image event
// before acknowledging the request
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("request_id", s.idGenerator.Generate())
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	events, err := messaging.ParseImageEvents(s.channelSecret, r)
	if err != nil {
		if errors.Is(err, messaging.ErrInvalidSignature) {
			logger.Warn("Rejected webhook with invalid signature", "remote_addr", r.RemoteAddr)
			writeStatus(w, http.StatusBadRequest, "")
			return
		}
		logger.Error("Error parsing webhook", "error", err)
		writeStatus(w, http.StatusInternalServerError, "")
		return
	}

	// Replies must go out even if the platform drops the connection
	ctx := context.WithoutCancel(r.Context())
	for _, event := range events {
		eventLogger := logger.With("message_id", event.MessageID, "webhook_event_id", event.WebhookEventID)
		eventLogger.Info("Handling image event")
		if err := s.service.HandleImage(ctx, event); err != nil {
			eventLogger.Error("Error replying to image event", "error", err)
		}
	}

	writeStatus(w, http.StatusOK, "OK")
}
