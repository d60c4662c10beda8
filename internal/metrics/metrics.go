package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitalpath_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vitalpath_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AssistanceCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitalpath_assistance_cache_lookups_total",
			Help: "Task assistance cache lookups by outcome.",
		},
		[]string{"outcome"}, // hit, miss, bypass
	)

	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitalpath_generations_total",
			Help: "Briefing generation attempts by outcome.",
		},
		[]string{"outcome"}, // success, timeout, malformed, error
	)

	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vitalpath_generation_duration_seconds",
			Help:    "Briefing generation round-trip duration in seconds.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 90},
		},
	)

	ProtocolResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitalpath_protocol_resolutions_total",
			Help: "Protocol resolutions by tier (exact, fallback, placeholder).",
		},
		[]string{"tier"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		AssistanceCacheLookups,
		GenerationsTotal,
		GenerationDuration,
		ProtocolResolutions,
	)
}
