package lifecycle

import (
	"crypto/sha1" //nolint:gosec // SHA1 used for non-cryptographic metric label hashing, not security
	"encoding/hex"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch outcome labels.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
	outcomeHalted  = "halted"
)

// Metric definitions with appropriate labels.
var (
	// dispatchesTotal tracks transition dispatches by family, transition, and outcome.
	dispatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_dispatches_total",
		Help: "Total number of transition dispatches by family, transition, and outcome (success, error, or halted)",
	}, []string{"family", "transition", "outcome"})

	// dispatchDuration tracks end-to-end dispatch time including all hook chains.
	dispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lifecycle_dispatch_duration_seconds",
		Help:    "Duration of transition dispatch by family and transition",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"family", "transition"})

	// callbacksTotal tracks callback invocations by family, kind, and outcome.
	callbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_callbacks_total",
		Help: "Total number of callback invocations by family, kind, and outcome (success or error)",
	}, []string{"family", "kind", "outcome"})

	// callbackDuration tracks individual callback execution time.
	callbackDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lifecycle_callback_duration_seconds",
		Help:    "Duration of callback invocations by family and kind",
		Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"family", "kind"})

	// shortCircuitsTotal tracks dispatches halted by a before-callback failure.
	shortCircuitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_short_circuits_total",
		Help: "Total number of dispatches halted by a before-callback failure, by family and transition",
	}, []string{"family", "transition"})
)

// maxLabelLength caps family and transition label values; anything longer is
// replaced by a short hash to keep label cardinality bounded.
const maxLabelLength = 64

func sanitizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}

	if len(value) <= maxLabelLength {
		return value
	}

	hash := sha1.Sum([]byte(value)) //nolint:gosec // SHA1 used for non-cryptographic metric label hashing

	return hex.EncodeToString(hash[:])[:8]
}

// observeCallback records the counter and duration for one callback run.
func observeCallback(family string, kind Kind, duration time.Duration, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}

	label := sanitizeLabel(family)

	callbacksTotal.WithLabelValues(label, string(kind), outcome).Inc()
	callbackDuration.WithLabelValues(label, string(kind)).Observe(duration.Seconds())
}

// observeDispatch records the counter and duration for one dispatch.
func observeDispatch(family, transition, outcome string, duration time.Duration) {
	familyLabel := sanitizeLabel(family)
	transitionLabel := sanitizeLabel(transition)

	dispatchesTotal.WithLabelValues(familyLabel, transitionLabel, outcome).Inc()
	dispatchDuration.WithLabelValues(familyLabel, transitionLabel).Observe(duration.Seconds())
}
