package importer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rony4d/go-ledger-mirror/blockstream/transformer"
)

var (
	filesProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mirror",
		Subsystem: "importer",
		Name:      "files_total",
		Help:      "Block files processed, by outcome.",
	}, []string{"outcome"})

	recordsEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mirror",
		Subsystem: "importer",
		Name:      "records_total",
		Help:      "Transaction records handed to listeners.",
	})

	hashMismatches = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mirror",
		Subsystem: "importer",
		Name:      "hash_mismatches_total",
		Help:      "Blocks whose hash chain did not verify.",
	})

	latestBlock = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mirror",
		Subsystem: "importer",
		Name:      "latest_block",
		Help:      "Number of the last imported block.",
	})
)

// RegisterMetrics registers the importer and transformer metrics.
func RegisterMetrics(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{filesProcessed, recordsEmitted, hashMismatches, latestBlock}
	collectors = append(collectors, transformer.Collectors()...)
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
