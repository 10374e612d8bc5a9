package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// DatasetRows tracks the number of rows in the loaded dataset
	DatasetRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "salesdash_dataset_rows",
			Help: "Number of rows in the loaded dataset",
		},
	)

	// DatasetLoadDuration measures dataset load and enrichment time in seconds
	DatasetLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salesdash_dataset_load_duration_seconds",
			Help:    "Dataset load and enrichment duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"status"}, // status: success, failed
	)

	// DatasetEnrichments counts how many times the enrichment pipeline ran
	DatasetEnrichments = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "salesdash_dataset_enrichments_total",
			Help: "Total number of enrichment runs",
		},
	)

	// DatasetWarnings counts non-fatal derivation warnings
	DatasetWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdash_dataset_warnings_total",
			Help: "Total number of derivation warnings",
		},
		[]string{"kind"}, // kind: unmapped_state, zero_sales, null_metric
	)

	// UnmappedStates tracks the number of distinct states without a postal code
	UnmappedStates = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "salesdash_dataset_unmapped_states",
			Help: "Number of distinct state names without a postal code",
		},
	)

	// SectionsTotal counts computed report sections
	SectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdash_sections_total",
			Help: "Total number of report sections computed",
		},
		[]string{"section", "status"}, // status: success, failed
	)

	// SectionDuration measures report section computation time
	SectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salesdash_section_duration_seconds",
			Help:    "Report section computation time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"section"},
	)

	// CacheHits counts section cache hits
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdash_cache_hits_total",
			Help: "Total number of section cache hits",
		},
		[]string{"section"},
	)

	// CacheMisses counts section cache misses
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdash_cache_misses_total",
			Help: "Total number of section cache misses",
		},
		[]string{"section"},
	)

	// ChartsRendered counts PNG chart renders
	ChartsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdash_charts_rendered_total",
			Help: "Total number of charts rendered",
		},
		[]string{"kind", "status"}, // status: success, unsupported, failed
	)

	// ExportsTotal counts workbook exports
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdash_exports_total",
			Help: "Total number of workbook exports",
		},
		[]string{"status"},
	)

	// TasksTotal tracks the total number of warm-up tasks processed
	TasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdash_tasks_total",
			Help: "Total number of warm-up tasks processed",
		},
		[]string{"section", "status"}, // status: success, failed
	)

	// TaskDuration measures warm-up task execution duration in seconds
	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salesdash_task_duration_seconds",
			Help:    "Warm-up task execution duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"section", "status"},
	)

	// TasksEnqueued counts tasks enqueued
	TasksEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdash_tasks_enqueued_total",
			Help: "Total number of warm-up tasks enqueued",
		},
		[]string{"section", "trigger"}, // trigger: schedule, manual
	)

	// SchedulerActive indicates whether this instance schedules warm-ups
	SchedulerActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "salesdash_scheduler_active",
			Help: "Whether this instance holds the scheduler lease (1) or not (0)",
		},
	)

	// ErrorsTotal counts errors by component and type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdash_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordDatasetLoad records the outcome of a dataset load
func RecordDatasetLoad(status string, rows int, duration float64) {
	DatasetLoadDuration.WithLabelValues(status).Observe(duration)
	if status == "success" {
		DatasetRows.Set(float64(rows))
	}
}

// RecordEnrichment records one run of the enrichment pipeline
func RecordEnrichment() {
	DatasetEnrichments.Inc()
}

// RecordDatasetWarning records a derivation warning
func RecordDatasetWarning(kind string) {
	DatasetWarnings.WithLabelValues(kind).Inc()
}

// RecordUnmappedStates records the number of distinct unmapped states
func RecordUnmappedStates(count int) {
	UnmappedStates.Set(float64(count))
}

// RecordSection records a report section computation
func RecordSection(section, status string, duration float64) {
	SectionsTotal.WithLabelValues(section, status).Inc()
	SectionDuration.WithLabelValues(section).Observe(duration)
}

// RecordCacheHit records a section cache hit
func RecordCacheHit(section string) {
	CacheHits.WithLabelValues(section).Inc()
}

// RecordCacheMiss records a section cache miss
func RecordCacheMiss(section string) {
	CacheMisses.WithLabelValues(section).Inc()
}

// RecordChart records a chart render
func RecordChart(kind, status string) {
	ChartsRendered.WithLabelValues(kind, status).Inc()
}

// RecordExport records a workbook export
func RecordExport(status string) {
	ExportsTotal.WithLabelValues(status).Inc()
}

// RecordTaskComplete records a finished warm-up task
func RecordTaskComplete(section, status string, duration float64) {
	TasksTotal.WithLabelValues(section, status).Inc()
	TaskDuration.WithLabelValues(section, status).Observe(duration)
}

// RecordTaskEnqueued records when a task is enqueued
func RecordTaskEnqueued(section, trigger string) {
	TasksEnqueued.WithLabelValues(section, trigger).Inc()
}

// RecordError records an error occurrence
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
