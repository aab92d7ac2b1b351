// Package metrics provides Prometheus metrics for the summarization pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter holds the pipeline's Prometheus collectors behind a private registry.
type Exporter struct {
	registry *prometheus.Registry

	completionAttempts *prometheus.CounterVec
	completionRetries  prometheus.Counter
	summaries          *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	chatMessages       *prometheus.CounterVec
}

// NewExporter creates an exporter with its own registry.
func NewExporter() *Exporter {
	registry := prometheus.NewRegistry()

	e := &Exporter{
		registry: registry,
		completionAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartnote_ai_completion_attempts_total",
			Help: "AI completion attempts by outcome (ok, error).",
		}, []string{"outcome"}),
		completionRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smartnote_ai_completion_retries_total",
			Help: "Backoff retries performed by the AI completion client.",
		}),
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartnote_summaries_total",
			Help: "Generated summaries by kind (note, chat, context) and source (ai, fallback).",
		}, []string{"kind", "source"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartnote_http_requests_total",
			Help: "HTTP requests by method and status class.",
		}, []string{"method", "status"}),
		chatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartnote_chat_messages_total",
			Help: "Persisted chat messages by role.",
		}, []string{"role"}),
	}

	registry.MustRegister(
		e.completionAttempts,
		e.completionRetries,
		e.summaries,
		e.httpRequests,
		e.chatMessages,
	)
	return e
}

func (e *Exporter) RecordCompletionAttempt(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	e.completionAttempts.WithLabelValues(outcome).Inc()
}

func (e *Exporter) RecordCompletionRetry() {
	e.completionRetries.Inc()
}

func (e *Exporter) RecordSummary(kind, source string) {
	e.summaries.WithLabelValues(kind, source).Inc()
}

func (e *Exporter) RecordHTTPRequest(method, statusClass string) {
	e.httpRequests.WithLabelValues(method, statusClass).Inc()
}

func (e *Exporter) RecordChatMessage(role string) {
	e.chatMessages.WithLabelValues(role).Inc()
}

// Handler returns the /metrics HTTP handler for this exporter's registry.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
