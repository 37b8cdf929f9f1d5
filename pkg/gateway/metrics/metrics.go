// Package metrics holds the Prometheus instrumentation for the gateway.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	SessionsProvisioned *prometheus.CounterVec
	PromptEnhancements  *prometheus.CounterVec
	TranscriptsSaved    prometheus.Counter
	TranscriptEntries   prometheus.Histogram
	InterviewDuration   prometheus.Histogram

	ErrorsTotal *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "insightlab"
	}

	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	sessionsProvisioned := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_provisioned_total",
			Help:      "Total interview sessions provisioned",
		},
		[]string{"mode"}, // vendor | placeholder
	)

	promptEnhancements := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompt_enhancements_total",
			Help:      "Total prompt enhancement calls",
		},
		[]string{"status"}, // ok | error
	)

	transcriptsSaved := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_saved_total",
			Help:      "Total transcripts persisted",
		},
	)

	transcriptEntries := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcript_entries",
			Help:      "Entries per saved transcript",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)

	interviewDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "interview_duration_seconds",
			Help:      "Duration of saved interviews in seconds",
			Buckets:   []float64{30, 60, 120, 300, 600, 1200, 1800, 3600},
		},
	)

	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	registry.MustRegister(
		requestsTotal,
		requestDuration,
		sessionsProvisioned,
		promptEnhancements,
		transcriptsSaved,
		transcriptEntries,
		interviewDuration,
		errorsTotal,
	)

	return &Metrics{
		registry:            registry,
		RequestsTotal:       requestsTotal,
		RequestDuration:     requestDuration,
		SessionsProvisioned: sessionsProvisioned,
		PromptEnhancements:  promptEnhancements,
		TranscriptsSaved:    transcriptsSaved,
		TranscriptEntries:   transcriptEntries,
		InterviewDuration:   interviewDuration,
		ErrorsTotal:         errorsTotal,
	}
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records a completed request.
func (m *Metrics) RecordRequest(method, route, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordSessionProvisioned records a session create, by mode.
func (m *Metrics) RecordSessionProvisioned(mode string) {
	m.SessionsProvisioned.WithLabelValues(mode).Inc()
}

// RecordPromptEnhancement records one enhancement attempt.
func (m *Metrics) RecordPromptEnhancement(status string) {
	m.PromptEnhancements.WithLabelValues(status).Inc()
}

// RecordTranscriptSaved records a persisted transcript.
func (m *Metrics) RecordTranscriptSaved(entries, durationSeconds int) {
	m.TranscriptsSaved.Inc()
	m.TranscriptEntries.Observe(float64(entries))
	m.InterviewDuration.Observe(float64(durationSeconds))
}

// RecordError records an error by component.
func (m *Metrics) RecordError(component, errorType string) {
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
