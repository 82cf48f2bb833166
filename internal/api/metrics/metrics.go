// Package metrics defines and registers all custom Prometheus metrics for the
// quoting API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quoting"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts credential and refresh operations.
// Labels:
//   - operation: "login", "register", "refresh", "logout"
//   - result: "success" or a short failure reason (e.g. "invalid_credentials")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// RefreshReuseTotal counts revoked refresh tokens presented again.
var RefreshReuseTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_token_reuse_total",
		Help:      "Total number of refresh attempts with an already revoked token.",
	},
)

// ── Audit event metrics ───────────────────────────────────────────────────────

// AuthEventsPublishedTotal counts audit events handed to the publisher.
// Labels:
//   - type: auth event type (e.g. "login")
//   - result: "ok", "error" or "dropped"
var AuthEventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_published_total",
		Help:      "Total number of auth audit events, by type and publish result.",
	},
	[]string{"type", "result"},
)

// AuthEventsQueueDepth tracks pending events in each dispatcher worker channel.
var AuthEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "auth_events_queue_depth",
		Help:      "Current number of auth events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Prompt and generation metrics ─────────────────────────────────────────────

// PromptLayersComposedTotal counts composed layers.
// Label:
//   - layer: "core", "industry", "client" or "user"
var PromptLayersComposedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prompt_layers_composed_total",
		Help:      "Total number of prompt layers included in compositions, by layer.",
	},
	[]string{"layer"},
)

// GenerationDuration measures completion calls end-to-end.
// Label:
//   - result: "ok" or "error"
var GenerationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "Duration of AI generation requests including prompt composition.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	},
	[]string{"result"},
)

// ── Quote metrics ─────────────────────────────────────────────────────────────

// QuotesCreatedTotal counts newly created quotes.
// Label:
//   - status: initial quote status
var QuotesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_created_total",
		Help:      "Total number of quotes created, by initial status.",
	},
	[]string{"status"},
)
