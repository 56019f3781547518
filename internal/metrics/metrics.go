package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts completed scans by source (fresh vs cache hit).
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llmcheck_scans_total",
		Help: "Completed visibility scans by source",
	}, []string{"source"})

	// ProviderRequests counts per-cell provider calls by model and outcome.
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llmcheck_provider_requests_total",
		Help: "Chat-completion provider calls by model and outcome",
	}, []string{"model", "outcome"})

	// ProviderLatency observes per-cell provider call latency by model.
	ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llmcheck_provider_latency_seconds",
		Help:    "Chat-completion provider call latency by model",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	// MentionsFound counts cells where the target was mentioned, by model.
	MentionsFound = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llmcheck_mentions_found_total",
		Help: "Result cells where the target domain or brand was mentioned",
	}, []string{"model"})
)
