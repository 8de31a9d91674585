package reconcile

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/AstroImad/adsnap/internal/dig"
	"github.com/AstroImad/adsnap/internal/models"
	"github.com/AstroImad/adsnap/internal/observability"
)

// Mirror downloads resolved media to a local directory under deterministic
// names so re-runs skip files already on disk. A failed download is logged
// and leaves the local-path sibling unset; it never aborts the run.
type Mirror struct {
	dir        string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    observability.MetricsRegistry
}

// NewMirror creates a mirror writing into dir, creating it when absent.
func NewMirror(dir string, httpClient *http.Client, logger *zap.Logger, metrics observability.MetricsRegistry) (*Mirror, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Mirror{dir: dir, httpClient: httpClient, logger: logger, metrics: metrics}, nil
}

// MirrorAd downloads every resolved media URL in the ad's creative and
// records the local path in the sibling field next to the URL. Returns the
// number of files now present locally (downloaded or already on disk).
func (m *Mirror) MirrorAd(ctx context.Context, ad *models.Ad) int {
	if len(ad.Creative) == 0 {
		return 0
	}

	mirrored := 0
	for _, rule := range siblingRules {
		for _, target := range rule.targets(ad.Creative) {
			ref := dig.GetString(target, rule.refField, "")
			mediaURL := dig.GetString(target, rule.urlField, "")
			if ref == "" || mediaURL == "" {
				continue
			}

			local, err := m.fetch(ctx, rule.role, ad.ID, ref, mediaURL)
			if err != nil {
				m.metrics.IncrementMediaDownloads("failure")
				m.logger.Warn("media download failed",
					zap.String("ad_id", ad.ID),
					zap.String("ref", ref),
					zap.String("url", mediaURL),
					zap.Error(err))
				continue
			}
			target[rule.localField] = local
			mirrored++
		}
	}
	return mirrored
}

// fetch downloads one URL to its deterministic path, skipping the download
// when the file already exists.
func (m *Mirror) fetch(ctx context.Context, role, adID, ref, mediaURL string) (string, error) {
	ext := extFromURL(mediaURL)
	if ext != "" {
		dest := m.destPath(role, adID, ref, ext)
		if _, err := os.Stat(dest); err == nil {
			m.logger.Debug("media already mirrored", zap.String("path", dest))
			m.metrics.IncrementMediaDownloads("cached")
			return dest, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			m.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d fetching media", resp.StatusCode)
	}

	if ext == "" {
		ext = extFromContentType(resp.Header.Get("Content-Type"))
	}
	dest := m.destPath(role, adID, ref, ext)
	if _, err := os.Stat(dest); err == nil {
		m.metrics.IncrementMediaDownloads("cached")
		return dest, nil
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(dest)
		return "", fmt.Errorf("write media: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}

	m.metrics.IncrementMediaDownloads("success")
	m.logger.Debug("mirrored media", zap.String("path", dest))
	return dest, nil
}

// destPath builds the deterministic local name for one piece of media.
func (m *Mirror) destPath(role, adID, ref, ext string) string {
	return filepath.Join(m.dir, fmt.Sprintf("%s_%s_%s%s", role, sanitize(adID), sanitize(ref), ext))
}

// mediaExts are the extensions trusted when found on the URL path.
var mediaExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".mp4": true, ".mov": true, ".webm": true,
}

// extFromURL returns a recognized extension from the URL's path, or "".
func extFromURL(mediaURL string) string {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if mediaExts[ext] {
		return ext
	}
	return ""
}

// extFromContentType maps a Content-Type header to an extension, defaulting
// to a generic image extension.
func extFromContentType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".jpg"
	}
	switch mt {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	default:
		return ".jpg"
	}
}

// sanitize keeps file-name components to a safe character set.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, s)
}
