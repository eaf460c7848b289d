package runner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics are package-level by convention
var (
	workersGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "runner_workers",
		Help: "Size of the runner worker pool.",
	}, []string{"runner"})

	queuedJobs = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "runner_jobs_queued",
		Help: "Number of jobs waiting for a worker.",
	}, []string{"runner"})

	inflightJobs = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "runner_jobs_inflight",
		Help: "Number of jobs currently executing.",
	}, []string{"runner"})

	completedJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "runner_jobs_completed_total",
		Help: "Total jobs finished, by outcome.",
	}, []string{"runner", "outcome"})
)

const (
	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"
	outcomeAborted   = "aborted"
)

// initMetrics pre-registers every label combination for a runner so
// scrapes see zeroes instead of absent series.
func initMetrics(name string, workers int) {
	workersGauge.WithLabelValues(name).Set(float64(workers))
	queuedJobs.WithLabelValues(name).Set(0)
	inflightJobs.WithLabelValues(name).Set(0)
	completedJobs.WithLabelValues(name, outcomeSucceeded).Add(0)
	completedJobs.WithLabelValues(name, outcomeFailed).Add(0)
	completedJobs.WithLabelValues(name, outcomeAborted).Add(0)
}
