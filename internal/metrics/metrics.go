package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherpaper_http_attempts_total",
			Help: "Outbound HTTP requests by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherpaper_http_duration_seconds",
			Help:    "Outbound HTTP request latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	GeocodeCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherpaper_geocode_cache_total",
			Help: "Location resolutions served from stored coordinates (hit) or geocoding (miss)",
		},
		[]string{"result"},
	)

	Boots = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherpaper_boots_total",
			Help: "Boot cycles by wake cause",
		},
		[]string{"cause"},
	)

	FetchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherpaper_fetch_failures_total",
			Help: "Forecast acquisitions that failed after all retries",
		},
	)

	NextWake = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "weatherpaper_next_wake_seconds",
			Help: "Sleep duration chosen by the last scheduling decision",
		},
		[]string{"mode"},
	)
)

// HTTPObserver returns a callback suitable for client.ClientConfig.Observe.
func HTTPObserver(operation string) func(status string, elapsed time.Duration) {
	return func(status string, elapsed time.Duration) {
		HTTPAttempts.WithLabelValues(operation, status).Inc()
		HTTPDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	}
}

func RecordGeocodeCache(hit bool) {
	if hit {
		GeocodeCache.WithLabelValues("hit").Inc()
		return
	}
	GeocodeCache.WithLabelValues("miss").Inc()
}

func RecordBoot(cause string) {
	Boots.WithLabelValues(cause).Inc()
}

func RecordFetchFailure() {
	FetchFailures.Inc()
}

// RecordNextWake sets the gauge for mode and zeroes the others so only the
// latest decision is visible.
func RecordNextWake(mode string, d time.Duration) {
	for _, m := range []string{"day", "night", "retry"} {
		if m == mode {
			NextWake.WithLabelValues(m).Set(d.Seconds())
		} else {
			NextWake.WithLabelValues(m).Set(0)
		}
	}
}
