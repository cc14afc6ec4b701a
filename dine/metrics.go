package dine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tabletalk",
			Subsystem: "resolve",
			Name:      "cache_hits_total",
			Help:      "Feature resolutions served from the response cache.",
		},
		[]string{"kind"},
	)

	cacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tabletalk",
			Subsystem: "resolve",
			Name:      "cache_misses_total",
			Help:      "Feature resolutions that had to consult a provider.",
		},
		[]string{"kind"},
	)

	providerCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tabletalk",
			Subsystem: "resolve",
			Name:      "provider_calls_total",
			Help:      "Upstream provider calls by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	fallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tabletalk",
			Subsystem: "resolve",
			Name:      "template_fallbacks_total",
			Help:      "Resolutions that degraded to a deterministic template.",
		},
		[]string{"kind"},
	)
)

func observeProviderCall(provider string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	providerCallsTotal.WithLabelValues(provider, outcome).Inc()
}
