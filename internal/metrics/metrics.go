// Package metrics holds the Prometheus collectors for the webhook pipeline.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// WebhookRequests counts callback requests by response status
	WebhookRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receipt_bot_webhook_requests_total",
			Help: "Total number of webhook callback requests",
		},
		[]string{"status"},
	)

	// ImageEvents counts image events by pipeline outcome
	ImageEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receipt_bot_image_events_total",
			Help: "Total number of image events processed",
		},
		[]string{"outcome"}, // success, fetch_error, generate_error, parse_error
	)

	// ReplyFailures counts replies the platform rejected
	ReplyFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "receipt_bot_reply_failures_total",
			Help: "Total number of replies that could not be sent",
		},
	)

	// ExtractionDuration tracks fetch plus scan time per image event
	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "receipt_bot_extraction_duration_seconds",
			Help:    "Image download and model extraction duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to ~32s
		},
		[]string{"outcome"},
	)
)

// RecordWebhookRequest records a webhook response status
func RecordWebhookRequest(status string) {
	WebhookRequests.WithLabelValues(status).Inc()
}

// RecordImageEvent records the outcome and duration of one image event
func RecordImageEvent(outcome string, duration time.Duration) {
	ImageEvents.WithLabelValues(outcome).Inc()
	ExtractionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncrementReplyFailure records a failed reply
func IncrementReplyFailure() {
	ReplyFailures.Inc()
}

// Serve exposes /metrics on addr until ctx is done
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Metrics server shutdown", "error", err)
		}
	}()

	slog.Info("Starting metrics server", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
