package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrscand_scans_total",
		Help: "Completed URL scans by verdict.",
	}, []string{"status"})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "qrscand_scan_duration_seconds",
		Help:    "End-to-end scan latency.",
		Buckets: prometheus.DefBuckets,
	})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qrscand_rate_limited_total",
		Help: "Requests rejected by the per-IP rate limit.",
	})
)
