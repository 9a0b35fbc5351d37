// Package metrics exposes the client's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RPCCallsTotal counts calls issued through the client facade.
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcpmon_rpc_calls_total",
			Help: "Total number of MCP calls issued",
		},
		[]string{"method"},
	)

	// RPCErrorsTotal counts terminally failed calls by failure kind.
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcpmon_rpc_errors_total",
			Help: "Total number of MCP calls that failed after retries",
		},
		[]string{"method", "kind"},
	)

	// RetriesTotal counts retry attempts across all calls. Unlike the
	// client's own counter this one is never reset; it exists for scraping.
	RetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mcpmon_retries_total",
			Help: "Total number of retried MCP call attempts",
		},
	)

	// RPCLatency tracks end-to-end call latency, retries included.
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mcpmon_rpc_latency_seconds",
			Help:    "MCP call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)
