// Package metrics exposes the Prometheus collectors of the tour service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vtour_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vtour_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vtour_http_active_requests",
			Help: "Number of requests currently being served",
		},
	)

	// Tours
	ToursCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vtour_tours_created_total",
			Help: "Total number of tours created",
		},
	)

	ToursPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vtour_tours_published_total",
			Help: "Total number of transitions into the published status",
		},
	)

	ToursDuplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vtour_tours_duplicated_total",
			Help: "Total number of tour duplications",
		},
	)

	ToursDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vtour_tours_deleted_total",
			Help: "Total number of tours deleted, including cascades from user deletion",
		},
	)

	TourViews = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vtour_tour_views_total",
			Help: "Total number of recorded public tour views",
		},
	)

	// Panoramas
	PanoramasUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vtour_panoramas_uploaded_total",
			Help: "Total number of panorama images accepted",
		},
	)

	UploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vtour_upload_bytes",
			Help:    "Size of accepted panorama uploads in bytes",
			Buckets: prometheus.ExponentialBuckets(64<<10, 2, 10), // 64KiB .. 32MiB
		},
	)

	UploadsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vtour_uploads_rejected_total",
			Help: "Total number of rejected uploads by reason code",
		},
		[]string{"code"},
	)

	FileCleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vtour_file_cleanup_failures_total",
			Help: "Total number of stored files that could not be removed",
		},
	)

	// Auth
	AuthEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vtour_auth_events_total",
			Help: "Authentication events by kind and outcome",
		},
		[]string{"event", "outcome"},
	)
)

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func TrackActiveRequest(inc bool) {
	if inc {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

func RecordUpload(size int64) {
	PanoramasUploaded.Inc()
	UploadBytes.Observe(float64(size))
}

func RecordUploadRejected(code string) {
	UploadsRejected.WithLabelValues(code).Inc()
}

// RecordAuth counts an auth event; outcome is "success" or "failure".
func RecordAuth(event string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	AuthEvents.WithLabelValues(event, outcome).Inc()
}
