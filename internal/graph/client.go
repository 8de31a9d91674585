// Package graph implements the ad platform REST client used by the export
// pipeline: paginated ad listing, per-object detail fetches, per-ad insights,
// the batch image-hash lookup and the per-id video lookup. All operations
// honor the platform rate limiter by waiting out Retry-After responses.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/AstroImad/adsnap/internal/config"
	"github.com/AstroImad/adsnap/internal/models"
	"github.com/AstroImad/adsnap/internal/observability"
)

// Field selectors sent to the platform. The listing keeps the envelope small;
// the creative is fetched in full per ad during enrichment.
const (
	AdListFields   = "id,name,status,effective_status,campaign{id,name,objective},adset{id,name,status,daily_budget},creative{id}"
	CreativeFields = "title,body,image_url,image_hash,thumbnail_url,object_story_spec,asset_feed_spec"
	InsightsFields = "spend,impressions,clicks,ctr,cpc,cpm,actions,purchase_roas,cost_per_action_type"

	activeFilter = `[{"field":"effective_status","operator":"IN","value":["ACTIVE"]}]`
	pageLimit    = 100
)

// Client provides access to the ad platform API.
type Client struct {
	baseURL           string
	version           string
	token             string
	accountID         string
	httpClient        *http.Client
	logger            *zap.Logger
	metrics           observability.MetricsRegistry
	retryAfterDefault time.Duration

	// sleep is swapped out in tests so rate-limit waits don't block.
	sleep func(time.Duration)
}

// NewClient creates a platform API client from the run configuration.
func NewClient(cfg config.Config, logger *zap.Logger, metrics observability.MetricsRegistry) *Client {
	return &Client{
		baseURL:   cfg.GraphURL,
		version:   cfg.APIVersion,
		token:     cfg.AccessToken,
		accountID: cfg.AdAccountID,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger:            logger,
		metrics:           metrics,
		retryAfterDefault: cfg.RetryAfterDefault,
		sleep:             time.Sleep,
	}
}

// adsPage is one page of the listing endpoint.
type adsPage struct {
	Data   []*models.Ad `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// ListAds fetches every active ad in the account, following the paging.next
// cursor until exhausted. On a mid-pagination failure the pages fetched so
// far are returned along with the error so the caller can proceed with a
// partial set.
func (c *Client) ListAds(ctx context.Context) ([]*models.Ad, error) {
	params := url.Values{}
	params.Set("fields", AdListFields)
	params.Set("filtering", activeFilter)
	params.Set("limit", strconv.Itoa(pageLimit))

	next := c.objectURL(c.accountID+"/ads", params)

	var all []*models.Ad
	page := 1
	for next != "" {
		var p adsPage
		if err := c.getJSON(ctx, "ads", next, &p); err != nil {
			return all, fmt.Errorf("list ads page %d: %w", page, err)
		}
		if len(p.Data) == 0 {
			break
		}
		all = append(all, p.Data...)
		c.metrics.IncrementPagesFetched()
		c.metrics.AddAdsFetched(len(p.Data))
		c.logger.Info("fetched ads page",
			zap.Int("page", page),
			zap.Int("ads", len(p.Data)))

		// The next URL carries all parameters, token included.
		next = p.Paging.Next
		page++
	}
	return all, nil
}

// GetObject fetches a single platform object by id with a fields selector
// and returns its loosely-structured body.
func (c *Client) GetObject(ctx context.Context, id, fields string) (map[string]any, error) {
	params := url.Values{}
	params.Set("fields", fields)

	var out map[string]any
	if err := c.getJSON(ctx, "object", c.objectURL(id, params), &out); err != nil {
		return nil, fmt.Errorf("get object %s: %w", id, err)
	}
	return out, nil
}

// GetInsights fetches the insights snapshot for one ad over a date preset.
// An empty data list means the platform has no metrics for the window; that
// is reported as (nil, nil), not an error.
func (c *Client) GetInsights(ctx context.Context, adID, datePreset string) (map[string]any, error) {
	params := url.Values{}
	params.Set("fields", InsightsFields)
	params.Set("date_preset", datePreset)

	var out struct {
		Data []map[string]any `json:"data"`
	}
	if err := c.getJSON(ctx, "insights", c.objectURL(adID+"/insights", params), &out); err != nil {
		return nil, fmt.Errorf("get insights for ad %s: %w", adID, err)
	}
	if len(out.Data) == 0 {
		return nil, nil
	}
	return out.Data[0], nil
}

// LookupImageHashes resolves one batch of image content hashes to URLs via
// the account adimages endpoint. Hashes the platform does not know are
// simply absent from the result.
func (c *Client) LookupImageHashes(ctx context.Context, hashes []string) (map[string]string, error) {
	encoded, err := json.Marshal(hashes)
	if err != nil {
		return nil, fmt.Errorf("encode hashes: %w", err)
	}
	params := url.Values{}
	params.Set("hashes", string(encoded))
	params.Set("fields", "hash,url")

	var out struct {
		Data []struct {
			Hash string `json:"hash"`
			URL  string `json:"url"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, "adimages", c.objectURL(c.accountID+"/adimages", params), &out); err != nil {
		return nil, fmt.Errorf("lookup image hashes: %w", err)
	}

	resolved := make(map[string]string, len(out.Data))
	for _, entry := range out.Data {
		if entry.Hash != "" && entry.URL != "" {
			resolved[entry.Hash] = entry.URL
		}
	}
	return resolved, nil
}

// GetVideoSource fetches the playable source URL for one video id. A
// successful response without a source field returns ("", nil); the caller
// treats that as a resolution miss.
func (c *Client) GetVideoSource(ctx context.Context, videoID string) (string, error) {
	params := url.Values{}
	params.Set("fields", "source")

	var out struct {
		Source string `json:"source"`
	}
	if err := c.getJSON(ctx, "video", c.objectURL(videoID, params), &out); err != nil {
		return "", fmt.Errorf("get video %s: %w", videoID, err)
	}
	return out.Source, nil
}

// objectURL builds a versioned API URL with the access token attached.
func (c *Client) objectURL(path string, params url.Values) string {
	params.Set("access_token", c.token)
	return fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.version, path, params.Encode())
}

// getJSON issues one GET and decodes the JSON response into out. A 429
// response waits for the server-named Retry-After duration (falling back to
// the configured default) and then resumes the same attempt; rate-limit
// waits never consume a caller's retry budget.
func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, out any) error {
	for {
		start := time.Now()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.metrics.IncrementAPIRequests(endpoint, "failure")
			return fmt.Errorf("http request: %w", err)
		}

		body, readErr := io.ReadAll(resp.Body)
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("failed to close response body", zap.Error(err))
		}
		c.metrics.RecordAPILatency(endpoint, time.Since(start))

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryAfter(resp.Header.Get("Retry-After"), c.retryAfterDefault)
			c.metrics.IncrementRateLimitWaits()
			c.logger.Warn("rate limited by platform",
				zap.String("endpoint", endpoint),
				zap.Duration("wait", wait))
			c.sleep(wait)
			continue
		}

		if readErr != nil {
			c.metrics.IncrementAPIRequests(endpoint, "failure")
			return fmt.Errorf("read response: %w", readErr)
		}

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			c.metrics.IncrementAPIRequests(endpoint, "failure")
			return parseAPIError(resp.StatusCode, body)
		}

		if err := json.Unmarshal(body, out); err != nil {
			c.metrics.IncrementAPIRequests(endpoint, "failure")
			return fmt.Errorf("decode response: %w", err)
		}

		c.metrics.IncrementAPIRequests(endpoint, "success")
		return nil
	}
}

// retryAfter parses a Retry-After header value in seconds, defaulting when
// absent or malformed.
func retryAfter(header string, def time.Duration) time.Duration {
	if header == "" {
		return def
	}
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}
