package transformer

import (
	"github.com/prometheus/client_golang/prometheus"
)

var recoverableErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "mirror",
	Subsystem: "transformer",
	Name:      "recoverable_errors_total",
	Help:      "Inconsistencies between a transaction and its state changes that were logged and skipped.",
}, []string{"type"})

// Collectors returns the metrics of this package for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{recoverableErrors}
}
