package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_scans_total",
			Help: "Scan verifications by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	reEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gate_re_entries_total",
			Help: "Accepted VIP re-entry scans",
		},
	)

	emailAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_delivery_attempts_total",
			Help: "Email provider send attempts by result",
		},
		[]string{"result"},
	)

	emailQueueClaimed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "email_queue_claimed_batch_size",
			Help:    "Entries claimed per processor invocation",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		},
	)

	auditDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scan_audit_dropped_total",
			Help: "Audit events dropped because the buffer was full",
		},
	)
)

func RecordScan(method, outcome string, reEntry bool) {
	scansTotal.WithLabelValues(method, outcome).Inc()
	if reEntry {
		reEntriesTotal.Inc()
	}
}

func RecordEmailAttempt(result string) {
	emailAttemptsTotal.WithLabelValues(result).Inc()
}

func RecordEmailBatch(claimed int) {
	emailQueueClaimed.Observe(float64(claimed))
}

func RecordAuditDropped() {
	auditDropped.Inc()
}
