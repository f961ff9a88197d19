package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foldspace_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foldspace_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 10},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	EnvelopeSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foldspace_envelope_submissions_total",
			Help: "Total mailbox envelope submission attempts",
		},
		[]string{"type", "outcome"}, // type: chat_message/chat_acknowledgement; outcome: submitted/failed
	)

	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foldspace_chat_requests_total",
			Help: "Total inbound chat envelopes",
		},
		[]string{"send_status"},
	)

	FAQLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foldspace_faq_lookups_total",
			Help: "Total FAQ text handler invocations",
		},
		[]string{"matched"}, // "instruction", "chunk", "echo"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foldspace_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	BlockedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foldspace_blocked_requests_total",
			Help: "Total blocked requests",
		},
		[]string{"reason"},
	)
)
