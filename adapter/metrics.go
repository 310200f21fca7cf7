package adapter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics, registered on the default registerer.
var (
	executionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conceptlib",
		Subsystem: "adapter",
		Name:      "executions_total",
		Help:      "Tool executions by tool and outcome.",
	}, []string{"tool", "status"})

	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conceptlib",
		Subsystem: "adapter",
		Name:      "failures_total",
		Help:      "Tool execution failures by tool and pipeline stage.",
	}, []string{"tool", "stage"})

	executionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "conceptlib",
		Subsystem: "adapter",
		Name:      "execution_duration_seconds",
		Help:      "Wall-clock tool execution time including validation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool"})
)
