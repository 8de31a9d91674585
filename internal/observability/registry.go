package observability

import "time"

// MetricsRegistry provides an interface for recording pipeline metrics
// This replaces direct access to global Prometheus metrics with dependency injection
type MetricsRegistry interface {
	// Platform API metrics
	IncrementAPIRequests(endpoint, outcome string)
	RecordAPILatency(endpoint string, duration time.Duration)
	IncrementRateLimitWaits()

	// Fetch metrics
	AddAdsFetched(n int)
	IncrementPagesFetched()

	// Resolution metrics
	IncrementImageBatches(outcome string)
	IncrementVideoLookups(outcome string)
	SetUnresolvedRefs(kind string, n int)

	// Media mirror metrics
	IncrementMediaDownloads(outcome string)
}

// PrometheusRegistry implements MetricsRegistry using the global Prometheus metrics
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

// Platform API metrics
func (r *PrometheusRegistry) IncrementAPIRequests(endpoint, outcome string) {
	APIRequestCount.WithLabelValues(endpoint, outcome).Inc()
}

func (r *PrometheusRegistry) RecordAPILatency(endpoint string, duration time.Duration) {
	APIRequestLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementRateLimitWaits() {
	RateLimitWaits.Inc()
}

// Fetch metrics
func (r *PrometheusRegistry) AddAdsFetched(n int) {
	AdsFetched.Add(float64(n))
}

func (r *PrometheusRegistry) IncrementPagesFetched() {
	PagesFetched.Inc()
}

// Resolution metrics
func (r *PrometheusRegistry) IncrementImageBatches(outcome string) {
	ImageBatchCount.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) IncrementVideoLookups(outcome string) {
	VideoLookupCount.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) SetUnresolvedRefs(kind string, n int) {
	UnresolvedRefs.WithLabelValues(kind).Set(float64(n))
}

// Media mirror metrics
func (r *PrometheusRegistry) IncrementMediaDownloads(outcome string) {
	MediaDownloadCount.WithLabelValues(outcome).Inc()
}
