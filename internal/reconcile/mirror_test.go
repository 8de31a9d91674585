package reconcile

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/AstroImad/adsnap/internal/models"
	"github.com/AstroImad/adsnap/internal/observability"
)

func newTestMirror(t *testing.T) (*Mirror, string) {
	t.Helper()
	dir := t.TempDir()
	m, err := NewMirror(dir, &http.Client{}, zaptest.NewLogger(t), &observability.MockMetricsRegistry{})
	require.NoError(t, err)
	return m, dir
}

func TestMirrorAdDownloads(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, "fake image bytes")
	}))
	defer server.Close()

	m, dir := newTestMirror(t)
	ad := &models.Ad{
		ID: "ad1",
		Creative: map[string]any{
			"image_hash": "h1",
			"image_url":  server.URL + "/media/h1.png",
		},
	}

	mirrored := m.MirrorAd(context.Background(), ad)
	require.Equal(t, 1, mirrored)
	assert.Equal(t, 1, hits)

	want := filepath.Join(dir, "img_ad1_h1.png")
	assert.Equal(t, want, ad.Creative["image_local_path"])
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))
}

func TestMirrorAdSkipsExistingFile(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, "new bytes")
	}))
	defer server.Close()

	m, dir := newTestMirror(t)
	existing := filepath.Join(dir, "img_ad1_h1.jpg")
	require.NoError(t, os.WriteFile(existing, []byte("old bytes"), 0o644))

	ad := &models.Ad{
		ID: "ad1",
		Creative: map[string]any{
			"image_hash": "h1",
			"image_url":  server.URL + "/media/h1.jpg",
		},
	}

	mirrored := m.MirrorAd(context.Background(), ad)
	require.Equal(t, 1, mirrored)
	assert.Equal(t, 0, hits, "existing file skips the fetch entirely")
	assert.Equal(t, existing, ad.Creative["image_local_path"])

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "old bytes", string(data), "re-runs never clobber mirrored files")
}

func TestMirrorAdContentTypeExtension(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		fmt.Fprint(w, "png bytes")
	}))
	defer server.Close()

	m, dir := newTestMirror(t)
	ad := &models.Ad{
		ID: "ad1",
		// URL path carries no usable extension.
		Creative: map[string]any{
			"image_hash": "h1",
			"image_url":  server.URL + "/media/h1",
		},
	}

	require.Equal(t, 1, m.MirrorAd(context.Background(), ad))
	assert.Equal(t, filepath.Join(dir, "img_ad1_h1.png"), ad.Creative["image_local_path"])
}

func TestMirrorAdFailureLeavesPathUnset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	m, _ := newTestMirror(t)
	ad := &models.Ad{
		ID: "ad1",
		Creative: map[string]any{
			"image_hash": "h1",
			"image_url":  server.URL + "/gone.jpg",
		},
	}

	assert.Equal(t, 0, m.MirrorAd(context.Background(), ad))
	_, present := ad.Creative["image_local_path"]
	assert.False(t, present)
}

func TestMirrorAdCarouselRolePrefix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "bytes")
	}))
	defer server.Close()

	m, dir := newTestMirror(t)
	ad := &models.Ad{
		ID: "ad9",
		Creative: map[string]any{
			"object_story_spec": map[string]any{
				"link_data": map[string]any{
					"child_attachments": []any{
						map[string]any{
							"image_hash": "c1",
							"image_url":  server.URL + "/c1.jpg",
						},
					},
				},
			},
		},
	}

	require.Equal(t, 1, m.MirrorAd(context.Background(), ad))
	child := ad.Creative["object_story_spec"].(map[string]any)["link_data"].(map[string]any)["child_attachments"].([]any)[0].(map[string]any)
	assert.Equal(t, filepath.Join(dir, "carousel_ad9_c1.jpg"), child["image_local_path"])
}

func TestExtFromURL(t *testing.T) {
	assert.Equal(t, ".jpg", extFromURL("https://cdn/x/y.jpg?sig=abc"))
	assert.Equal(t, ".mp4", extFromURL("https://cdn/v.MP4"))
	assert.Equal(t, "", extFromURL("https://cdn/no-extension"))
	assert.Equal(t, "", extFromURL("https://cdn/file.exe"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "abc_123-XYZ", sanitize("abc_123-XYZ"))
	assert.Equal(t, "a-b-c", sanitize("a/b:c"))
}
