package observability

import "time"

// MockMetricsRegistry is a mock implementation of MetricsRegistry for testing
type MockMetricsRegistry struct{}

// Platform API metrics
func (m *MockMetricsRegistry) IncrementAPIRequests(endpoint, outcome string)            {}
func (m *MockMetricsRegistry) RecordAPILatency(endpoint string, duration time.Duration) {}
func (m *MockMetricsRegistry) IncrementRateLimitWaits()                                 {}

// Fetch metrics
func (m *MockMetricsRegistry) AddAdsFetched(n int)    {}
func (m *MockMetricsRegistry) IncrementPagesFetched() {}

// Resolution metrics
func (m *MockMetricsRegistry) IncrementImageBatches(outcome string) {}
func (m *MockMetricsRegistry) IncrementVideoLookups(outcome string) {}
func (m *MockMetricsRegistry) SetUnresolvedRefs(kind string, n int) {}

// Media mirror metrics
func (m *MockMetricsRegistry) IncrementMediaDownloads(outcome string) {}
