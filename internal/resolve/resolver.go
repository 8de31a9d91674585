package resolve

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/AstroImad/adsnap/internal/config"
	"github.com/AstroImad/adsnap/internal/graph"
	"github.com/AstroImad/adsnap/internal/observability"
)

// LookupClient is the slice of the platform client the resolver needs.
type LookupClient interface {
	LookupImageHashes(ctx context.Context, hashes []string) (map[string]string, error)
	GetVideoSource(ctx context.Context, videoID string) (string, error)
}

// Resolver turns collected reference sets into resolution maps. Image hashes
// go through the batch lookup endpoint with a pacing delay between batches
// and no retries; video ids are looked up one at a time with a retry budget
// and exponential backoff on server errors.
type Resolver struct {
	client      LookupClient
	logger      *zap.Logger
	metrics     observability.MetricsRegistry
	batchSize   int
	limiter     *rate.Limiter
	maxRetries  int
	backoffBase time.Duration

	// sleep is swapped out in tests so backoff doesn't block.
	sleep func(time.Duration)
}

// NewResolver builds a resolver with policy taken from the run configuration.
func NewResolver(client LookupClient, cfg config.Config, logger *zap.Logger, metrics observability.MetricsRegistry) *Resolver {
	return &Resolver{
		client:      client,
		logger:      logger,
		metrics:     metrics,
		batchSize:   cfg.ImageBatchSize,
		limiter:     rate.NewLimiter(rate.Every(cfg.ImageBatchDelay), 1),
		maxRetries:  cfg.VideoMaxRetries,
		backoffBase: cfg.VideoBackoffBase,
		sleep:       time.Sleep,
	}
}

// ResolveImages partitions hashes into batches and issues one lookup per
// batch, merging successful results into res. A request-level failure skips
// that batch; batches already merged are unaffected and later batches still
// run. Returns the number of hashes resolved.
func (r *Resolver) ResolveImages(ctx context.Context, hashes []string, res Resolution) int {
	if len(hashes) == 0 {
		return 0
	}

	resolved := 0
	batches := 0
	for start := 0; start < len(hashes); start += r.batchSize {
		end := min(start+r.batchSize, len(hashes))
		batch := hashes[start:end]
		batches++

		// Pace batches to stay under the platform rate limit.
		if err := r.limiter.Wait(ctx); err != nil {
			r.logger.Warn("image batch pacing interrupted", zap.Error(err))
			return resolved
		}

		urls, err := r.client.LookupImageHashes(ctx, batch)
		if err != nil {
			r.metrics.IncrementImageBatches("failure")
			r.logger.Warn("image batch lookup failed, skipping batch",
				zap.Int("batch", batches),
				zap.Int("size", len(batch)),
				zap.Error(err))
			continue
		}

		for hash, url := range urls {
			res.Put(hash, url, r.logger)
		}
		resolved += len(urls)
		r.metrics.IncrementImageBatches("success")
		r.logger.Info("image batch resolved",
			zap.Int("batch", batches),
			zap.Int("requested", len(batch)),
			zap.Int("resolved", len(urls)))
	}

	r.logger.Info("image resolution finished",
		zap.Int("requested", len(hashes)),
		zap.Int("resolved", resolved))
	return resolved
}

// ResolveVideos looks up each video id in turn, spending up to the retry
// budget per id. A permission-denied error abandons the id immediately, a
// server error backs off exponentially and retries, and any other error is
// terminal for that id after logging. Failure on one id never affects the
// others. Returns the number of ids resolved.
func (r *Resolver) ResolveVideos(ctx context.Context, ids []string, res Resolution) int {
	resolved := 0
	for _, id := range ids {
		if r.resolveVideo(ctx, id, res) {
			resolved++
			r.metrics.IncrementVideoLookups("success")
		} else {
			r.metrics.IncrementVideoLookups("failure")
		}
	}

	r.logger.Info("video resolution finished",
		zap.Int("requested", len(ids)),
		zap.Int("resolved", resolved))
	return resolved
}

func (r *Resolver) resolveVideo(ctx context.Context, id string, res Resolution) bool {
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		source, err := r.client.GetVideoSource(ctx, id)
		if err == nil {
			if source != "" {
				res.Put(id, source, r.logger)
				return true
			}
			// A clean response without a source field is a miss. A retry is
			// unlikely to change the server's answer, but the attempt loop
			// runs out anyway so every id spends the same budget.
			r.logger.Debug("video response carried no source",
				zap.String("video_id", id),
				zap.Int("attempt", attempt+1))
			continue
		}

		switch {
		case graph.IsPermissionDenied(err):
			r.logger.Info("video not accessible, skipping",
				zap.String("video_id", id),
				zap.Error(err))
			return false
		case graph.IsRetryable(err):
			backoff := r.backoffBase << attempt
			r.logger.Warn("video lookup failed, backing off",
				zap.String("video_id", id),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(err))
			r.sleep(backoff)
		default:
			r.logger.Warn("video lookup failed, not retrying",
				zap.String("video_id", id),
				zap.Error(err))
			return false
		}
	}

	r.logger.Warn("video unresolved after retry budget", zap.String("video_id", id))
	return false
}
