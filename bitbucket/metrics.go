package bitbucket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bitbucket_client",
			Name:      "requests_total",
			Help:      "HTTP attempts by method and status class.",
		},
		[]string{"method", "status"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bitbucket_client",
			Name:      "retries_total",
			Help:      "Retried attempts by trigger (rate_limit, server_error, transport).",
		},
		[]string{"reason"},
	)

	rateLimitWaitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bitbucket_client",
			Name:      "rate_limit_waits_total",
			Help:      "Times the client honored a 429 before retrying.",
		},
	)
)
