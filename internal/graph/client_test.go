package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/AstroImad/adsnap/internal/config"
	"github.com/AstroImad/adsnap/internal/observability"
)

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	cfg := config.Config{
		AccessToken:       "test-token",
		AdAccountID:       "act_123",
		APIVersion:        "v19.0",
		GraphURL:          serverURL,
		HTTPTimeout:       5 * time.Second,
		RetryAfterDefault: 60 * time.Second,
	}
	c := NewClient(cfg, zaptest.NewLogger(t), &observability.MockMetricsRegistry{})
	c.sleep = func(time.Duration) {}
	return c
}

func TestListAdsPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-token", r.URL.Query().Get("access_token"))

		switch {
		case r.URL.Query().Get("after") == "cursor":
			fmt.Fprint(w, `{"data": [{"id": "ad3"}], "paging": {}}`)
		case r.URL.Path == "/v19.0/act_123/ads":
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			assert.NotEmpty(t, r.URL.Query().Get("filtering"))
			fmt.Fprintf(w, `{
				"data": [{"id": "ad1", "name": "First"}, {"id": "ad2"}],
				"paging": {"next": %q}
			}`, server.URL+"/v19.0/act_123/ads?after=cursor&access_token=test-token")
		default:
			t.Errorf("unexpected request: %s", r.URL)
		}
	}))
	defer server.Close()

	ads, err := testClient(t, server.URL).ListAds(context.Background())
	require.NoError(t, err)
	require.Len(t, ads, 3)
	assert.Equal(t, "ad1", ads[0].ID)
	assert.Equal(t, "First", ads[0].Name)
	assert.Equal(t, "ad3", ads[2].ID)
}

func TestListAdsPartialOnPageFailure(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("after") == "cursor" {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error": {"message": "transient", "code": 1}}`)
			return
		}
		fmt.Fprintf(w, `{"data": [{"id": "ad1"}], "paging": {"next": %q}}`,
			server.URL+"/v19.0/act_123/ads?after=cursor")
	}))
	defer server.Close()

	ads, err := testClient(t, server.URL).ListAds(context.Background())
	require.Error(t, err)
	// The first page survives a second-page failure.
	require.Len(t, ads, 1)
	assert.Equal(t, "ad1", ads[0].ID)
}

func TestRateLimitWaitThenRetry(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"id": "obj1", "title": "hello"}`)
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	var waits []time.Duration
	c.sleep = func(d time.Duration) { waits = append(waits, d) }

	obj, err := c.GetObject(context.Background(), "obj1", "title")
	require.NoError(t, err)
	assert.Equal(t, "hello", obj["title"])
	assert.Equal(t, 2, requests, "the same attempt resumes after the wait")
	require.Len(t, waits, 1)
	assert.Equal(t, 7*time.Second, waits[0])
}

func TestPermissionDeniedClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "no permission", "type": "OAuthException", "code": 10}}`)
	}))
	defer server.Close()

	_, err := testClient(t, server.URL).GetVideoSource(context.Background(), "v1")
	require.Error(t, err)
	assert.True(t, IsPermissionDenied(err))
	assert.False(t, IsRetryable(err))
}

func TestServerErrorClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(t, server.URL).GetVideoSource(context.Background(), "v1")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.False(t, IsPermissionDenied(err))
}

func TestLookupImageHashes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v19.0/act_123/adimages", r.URL.Path)

		var hashes []string
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("hashes")), &hashes))
		assert.Equal(t, []string{"h1", "h2", "h3"}, hashes)

		// h3 is unknown to the platform and simply absent.
		fmt.Fprint(w, `{"data": [
			{"hash": "h1", "url": "https://cdn/img1.jpg"},
			{"hash": "h2", "url": "https://cdn/img2.jpg"},
			{"hash": "", "url": "https://cdn/anon.jpg"}
		]}`)
	}))
	defer server.Close()

	resolved, err := testClient(t, server.URL).LookupImageHashes(context.Background(), []string{"h1", "h2", "h3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"h1": "https://cdn/img1.jpg",
		"h2": "https://cdn/img2.jpg",
	}, resolved)
}

func TestGetVideoSourceMissingSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": "v1"}`)
	}))
	defer server.Close()

	source, err := testClient(t, server.URL).GetVideoSource(context.Background(), "v1")
	require.NoError(t, err)
	assert.Empty(t, source, "a clean response without source is a miss, not an error")
}

func TestGetInsights(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v19.0/ad1/insights", r.URL.Path)
		assert.Equal(t, "last_7d", r.URL.Query().Get("date_preset"))
		fmt.Fprint(w, `{"data": [{"spend": "12.50", "clicks": "10"}]}`)
	}))
	defer server.Close()

	insights, err := testClient(t, server.URL).GetInsights(context.Background(), "ad1", "last_7d")
	require.NoError(t, err)
	assert.Equal(t, "12.50", insights["spend"])
}

func TestGetInsightsEmptyWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer server.Close()

	insights, err := testClient(t, server.URL).GetInsights(context.Background(), "ad1", "today")
	require.NoError(t, err)
	assert.Nil(t, insights)
}

func TestRetryAfter(t *testing.T) {
	def := 60 * time.Second
	assert.Equal(t, def, retryAfter("", def))
	assert.Equal(t, 15*time.Second, retryAfter("15", def))
	assert.Equal(t, def, retryAfter("soon", def))
	assert.Equal(t, def, retryAfter("-3", def))
}
