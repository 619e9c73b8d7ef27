package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sample dispositions reported on procsight_ingest_samples_total.
const (
	dispositionAttribute = "attribute"
	dispositionSeries    = "series"
	dispositionGPU       = "gpu_series"
	dispositionSkipped   = "skipped"
)

var (
	ingestBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "procsight_ingest_batches_total",
			Help: "Total number of ingestion batches routed by the aggregator.",
		},
	)
	samplesRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procsight_ingest_samples_total",
			Help: "Total number of ingested samples by routing disposition.",
		},
		[]string{"disposition"},
	)
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procsight_queries_total",
			Help: "Total number of aggregation queries served, by query kind.",
		},
		[]string{"query"},
	)
	liveTableSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "procsight_live_table_processes",
			Help: "Number of processes in the last computed live table.",
		},
	)
	zeroCPUCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "procsight_zero_cpu_processes",
			Help: "Number of processes in the last rebuilt zero-cpu cache.",
		},
	)
	sessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "procsight_sessions_created_total",
			Help: "Total number of session aggregation states created.",
		},
	)
	sessionsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "procsight_sessions_deleted_total",
			Help: "Total number of session aggregation states deleted.",
		},
	)
)
