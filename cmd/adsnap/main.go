// adsnap fetches the active ads of one ad account, resolves their media
// references, and writes a JSON snapshot plus a flat CSV export.
//
// Usage:
//
//	go run ./cmd/adsnap -hierarchy -download -date-preset=last_30d
//
// Configuration:
//
//	-out: Optional. Output directory for snapshot and CSV (default: OUTPUT_DIR or "data")
//	-media: Optional. Directory for mirrored media (default: MEDIA_DIR or "data/media")
//	-hierarchy: Optional. Nest the snapshot by campaign and ad set (default: true)
//	-download: Optional. Mirror resolved media files locally (default: false)
//	-date-preset: Optional. Insights date window preset (default: last_30d)
//	-archive: Optional. Upload the snapshot to the object store (default: false)
//
// Environment Variables:
//
//	META_ACCESS_TOKEN, META_AD_ACCOUNT_ID: Required platform credentials
//	S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET: Required for -archive
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/AstroImad/adsnap/internal/archive"
	"github.com/AstroImad/adsnap/internal/config"
	"github.com/AstroImad/adsnap/internal/export"
	"github.com/AstroImad/adsnap/internal/graph"
	"github.com/AstroImad/adsnap/internal/models"
	"github.com/AstroImad/adsnap/internal/objectstore"
	"github.com/AstroImad/adsnap/internal/observability"
	"github.com/AstroImad/adsnap/internal/reconcile"
	"github.com/AstroImad/adsnap/internal/resolve"
)

func main() {
	cfg := config.Load()

	var (
		outDir     = flag.String("out", cfg.OutputDir, "output directory for snapshot and CSV")
		mediaDir   = flag.String("media", cfg.MediaDir, "directory for mirrored media files")
		hierarchy  = flag.Bool("hierarchy", true, "nest the snapshot by campaign and ad set")
		download   = flag.Bool("download", false, "mirror resolved media files locally")
		datePreset = flag.String("date-preset", "last_30d", "insights date window preset")
		doArchive  = flag.Bool("archive", false, "upload the snapshot to the object store")
	)
	flag.Parse()

	logger, err := observability.InitLogger()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	metrics := observability.NewPrometheusRegistry()
	ctx := context.Background()

	client := graph.NewClient(cfg, logger, metrics)

	ads, err := client.ListAds(ctx)
	if err != nil {
		// A mid-run page failure still leaves usable pages behind.
		if len(ads) == 0 {
			logger.Fatal("Failed to fetch ads", zap.Error(err))
		}
		logger.Warn("Ad listing incomplete, continuing with fetched pages",
			zap.Int("ads", len(ads)), zap.Error(err))
	}
	logger.Info("Fetched ads", zap.Int("count", len(ads)))

	enrichAds(ctx, client, ads, *datePreset, logger)

	refs := resolve.Collect(ads, logger)
	images := resolve.Resolution{}
	videos := resolve.Resolution{}

	resolver := resolve.NewResolver(client, cfg, logger, metrics)
	hashes := refs.Values(resolve.RefImageHash)
	videoIDs := refs.Values(resolve.RefVideoID)
	resolvedImages := resolver.ResolveImages(ctx, hashes, images)
	resolvedVideos := resolver.ResolveVideos(ctx, videoIDs, videos)
	metrics.SetUnresolvedRefs(string(resolve.RefImageHash), len(hashes)-resolvedImages)
	metrics.SetUnresolvedRefs(string(resolve.RefVideoID), len(videoIDs)-resolvedVideos)

	applied := 0
	for _, ad := range ads {
		applied += reconcile.Apply(ad, images, videos, logger)
	}

	mirrored := 0
	if *download {
		mirror, err := reconcile.NewMirror(*mediaDir, &http.Client{Timeout: cfg.HTTPTimeout}, logger, metrics)
		if err != nil {
			logger.Fatal("Failed to prepare media directory", zap.Error(err))
		}
		for _, ad := range ads {
			mirrored += mirror.MirrorAd(ctx, ad)
		}
	}

	snapshotPath := filepath.Join(*outDir, "ads_data.json")
	csvPath := filepath.Join(*outDir, "ads_data.csv")

	var records []export.FlatRecord
	var snapshot any
	if *hierarchy {
		h := reconcile.BuildHierarchy(ads, logger)
		snapshot = h
		records = export.FlattenHierarchy(h)
	} else {
		snapshot = ads
		records = export.FlattenAll(ads)
	}

	if err := export.WriteSnapshot(snapshotPath, snapshot); err != nil {
		logger.Fatal("Failed to write snapshot", zap.Error(err))
	}
	if err := export.WriteCSV(csvPath, records); err != nil {
		logger.Fatal("Failed to write CSV", zap.Error(err))
	}

	if *doArchive {
		archiveSnapshot(ctx, cfg, snapshotPath, logger)
	}

	logger.Info("Run complete",
		zap.Int("ads", len(ads)),
		zap.Int("image_hashes", len(hashes)),
		zap.Int("images_resolved", resolvedImages),
		zap.Int("video_ids", len(videoIDs)),
		zap.Int("videos_resolved", resolvedVideos),
		zap.Int("urls_applied", applied),
		zap.Int("media_mirrored", mirrored),
		zap.Int("records", len(records)),
		zap.String("snapshot", snapshotPath),
		zap.String("csv", csvPath))
}

// enrichAds replaces each ad's creative stub with the full creative object
// and attaches its insights snapshot. Failures degrade the single ad and the
// run continues.
func enrichAds(ctx context.Context, client *graph.Client, ads []*models.Ad, datePreset string, logger *zap.Logger) {
	for _, ad := range ads {
		if id, ok := ad.Creative["id"].(string); ok && id != "" {
			creative, err := client.GetObject(ctx, id, graph.CreativeFields)
			if err != nil {
				logger.Warn("Creative fetch failed",
					zap.String("ad_id", ad.ID),
					zap.String("creative_id", id),
					zap.Error(err))
			} else {
				ad.Creative = creative
			}
		}

		insights, err := client.GetInsights(ctx, ad.ID, datePreset)
		if err != nil {
			logger.Warn("Insights fetch failed",
				zap.String("ad_id", ad.ID),
				zap.Error(err))
		} else if insights != nil {
			ad.Insights = insights
		}

		ad.Reclassify()
	}
}

// archiveSnapshot uploads the written snapshot to the object store. Archive
// problems are warnings; the local outputs already exist.
func archiveSnapshot(ctx context.Context, cfg config.Config, snapshotPath string, logger *zap.Logger) {
	store, err := objectstore.New(cfg)
	if err != nil {
		logger.Warn("Object store unavailable, skipping archive", zap.Error(err))
		return
	}
	data, err := os.ReadFile(snapshotPath)
	if err != nil {
		logger.Warn("Failed to read snapshot for archive", zap.Error(err))
		return
	}
	uploader := archive.NewUploader(store, logger)
	uploadCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if _, err := uploader.UploadSnapshot(uploadCtx, data); err != nil {
		logger.Warn("Snapshot archive failed", zap.Error(err))
	}
}
