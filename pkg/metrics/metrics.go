package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatepass_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gatepass_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	passesRequested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatepass_passes_requested_total",
		Help: "Pass requests by pass type and result",
	}, []string{"type", "result"})

	statusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatepass_status_changes_total",
		Help: "Pass status transitions by target status",
	}, []string{"status"})

	verifierDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gatepass_verifier_duration_seconds",
		Help:    "Duration of purpose plausibility checks",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"result"})

	passesOnSite = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gatepass_passes_on_site",
		Help: "Number of passes currently checked in",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObservePassRequested counts a pass request with result "created" or "failed".
func ObservePassRequested(passType, result string) {
	passesRequested.WithLabelValues(passType, result).Inc()
}

func ObserveStatusChange(status string) {
	statusChanges.WithLabelValues(status).Inc()
}

// ObserveVerifier records one plausibility check.
func ObserveVerifier(result string, duration time.Duration) {
	verifierDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// SetOnSite sets the checked-in gauge to a specific count.
func SetOnSite(count int) {
	if count < 0 {
		count = 0
	}
	passesOnSite.Set(float64(count))
}
