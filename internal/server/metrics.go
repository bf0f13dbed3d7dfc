package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics for Prometheus
var (
	moviesTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "filmshelf_movies_total",
		Help: "Total number of movies in the collection",
	})

	importsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "filmshelf_imports_total",
		Help: "Total number of import operations",
	}, []string{"status"})

	metadataRequestSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "filmshelf_metadata_request_duration_seconds",
		Help:    "Duration of metadata service calls in seconds",
		Buckets: prometheus.DefBuckets,
	})

	errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "filmshelf_errors_total",
		Help: "Total number of errors",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(moviesTotal)
	prometheus.MustRegister(importsTotal)
	prometheus.MustRegister(metadataRequestSeconds)
	prometheus.MustRegister(errorsTotal)
}

// UpdateMovieCount updates the movies_total metric
func UpdateMovieCount(count int64) {
	moviesTotal.Set(float64(count))
}

// RecordImport records an import operation metric
func RecordImport(status string) {
	importsTotal.WithLabelValues(status).Inc()
}

// RecordMetadataDuration records the duration of a metadata service call
func RecordMetadataDuration(duration time.Duration) {
	metadataRequestSeconds.Observe(duration.Seconds())
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
