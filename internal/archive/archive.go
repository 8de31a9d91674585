// Package archive uploads run snapshots to the object store for retention.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/AstroImad/adsnap/internal/objectstore"
)

// Uploader pushes completed snapshots into the shared bucket.
type Uploader struct {
	store  *objectstore.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewUploader(store *objectstore.Store, logger *zap.Logger) *Uploader {
	return &Uploader{store: store, logger: logger, now: time.Now}
}

func snapshotKey(ts time.Time) string {
	return fmt.Sprintf("ads-data-snapshot-%s.json", ts.UTC().Format("2006-01-02-150405"))
}

// UploadSnapshot stores the snapshot bytes under a timestamped key and
// returns the key.
func (u *Uploader) UploadSnapshot(ctx context.Context, data []byte) (string, error) {
	if err := u.store.EnsureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	key := snapshotKey(u.now())
	_, err := u.store.Client.PutObject(ctx, u.store.Bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	u.logger.Info("Archived snapshot",
		zap.String("key", key),
		zap.Int("bytes", len(data)))
	return key, nil
}
