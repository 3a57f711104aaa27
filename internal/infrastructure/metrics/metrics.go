package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareboard",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shareboard",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Upload counters
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareboard",
			Name:      "uploads_total",
			Help:      "Total file uploads",
		},
		[]string{"content_type"},
	)

	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareboard",
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded",
		},
		[]string{"content_type"},
	)

	// Transcode operations
	TranscodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareboard",
			Name:      "transcodes_total",
			Help:      "Total ffmpeg transcode operations",
		},
		[]string{"operation", "status"},
	)

	// Speech vendor calls
	VendorCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareboard",
			Name:      "vendor_calls_total",
			Help:      "Total speech vendor API calls",
		},
		[]string{"operation", "status"},
	)

	// Recycle bin sweep
	SweepPurgedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shareboard",
			Name:      "sweep_purged_total",
			Help:      "Total records permanently deleted by the cleanup sweep",
		},
	)
)

// RecordRequest records an HTTP request.
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records a stored upload.
func RecordUpload(contentType string, bytes int64) {
	UploadsTotal.WithLabelValues(contentType).Inc()
	UploadBytesTotal.WithLabelValues(contentType).Add(float64(bytes))
}

// RecordTranscode records an ffmpeg operation outcome.
func RecordTranscode(operation, status string) {
	TranscodesTotal.WithLabelValues(operation, status).Inc()
}

// RecordVendorCall records a speech vendor call outcome.
func RecordVendorCall(operation, status string) {
	VendorCallsTotal.WithLabelValues(operation, status).Inc()
}

// RecordSweep records purged record count for one sweep pass.
func RecordSweep(purged int) {
	SweepPurgedTotal.Add(float64(purged))
}
