package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// platform API requests per endpoint and outcome
	APIRequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsnap_api_requests_total",
			Help: "Total ad platform API requests issued",
		},
		[]string{"endpoint", "outcome"},
	)

	// platform API request latency per endpoint
	APIRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adsnap_api_request_duration_seconds",
			Help:    "Histogram of ad platform API request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// number of ads fetched from the listing endpoint
	AdsFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adsnap_ads_fetched_total",
			Help: "Total ads fetched from the platform",
		},
	)

	// number of listing pages fetched
	PagesFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adsnap_pages_fetched_total",
			Help: "Total listing pages fetched",
		},
	)

	// waits imposed by the platform rate limiter
	RateLimitWaits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adsnap_ratelimit_waits_total",
			Help: "Total waits honoring platform Retry-After responses",
		},
	)

	// image hash batch lookups labelled by outcome
	ImageBatchCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsnap_image_batches_total",
			Help: "Total image hash batch lookups",
		},
		[]string{"outcome"},
	)

	// per-id video lookups labelled by outcome
	VideoLookupCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsnap_video_lookups_total",
			Help: "Total video source lookups",
		},
		[]string{"outcome"},
	)

	// media mirror downloads labelled by outcome
	MediaDownloadCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsnap_media_downloads_total",
			Help: "Total media mirror downloads",
		},
		[]string{"outcome"},
	)

	// references left unresolved at the end of a run, per kind
	UnresolvedRefs = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "adsnap_unresolved_refs",
			Help: "References left unresolved at the end of a run",
		},
		[]string{"kind"},
	)
)

func init() {
	// register all metrics
	prometheus.MustRegister(
		APIRequestCount,
		APIRequestLatency,
		AdsFetched,
		PagesFetched,
		RateLimitWaits,
		ImageBatchCount,
		VideoLookupCount,
		MediaDownloadCount,
		UnresolvedRefs,
	)
}
