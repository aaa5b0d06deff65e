// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GradesRegisteredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grades_registered_total",
			Help: "Total number of evaluation grades registered",
		},
		[]string{"process"},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_exports_total",
			Help: "Total number of spreadsheet reports generated",
		},
		[]string{"kind"},
	)

	GradeAverageHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grade_average",
			Help:    "Distribution of registered grade averages",
			Buckets: prometheus.LinearBuckets(0, 2, 11),
		},
		[]string{"process"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
