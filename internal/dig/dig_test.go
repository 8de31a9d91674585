package dig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleCreative() map[string]any {
	return map[string]any{
		"title":      "Summer Sale",
		"image_hash": "abc123",
		"object_story_spec": map[string]any{
			"link_data": map[string]any{
				"link": "https://example.com/shop",
				"child_attachments": []any{
					map[string]any{"image_hash": "child0"},
					map[string]any{"image_hash": "child1"},
				},
			},
			"video_data": map[string]any{
				"video_id": "998877",
			},
		},
		"asset_feed_spec": map[string]any{
			"videos": []any{
				map[string]any{"video_id": "v1"},
			},
		},
	}
}

func TestGet(t *testing.T) {
	creative := sampleCreative()

	tests := []struct {
		name string
		root any
		path string
		def  any
		want any
	}{
		{"top level key", creative, "title", "N/A", "Summer Sale"},
		{"nested map", creative, "object_story_spec.link_data.link", nil, "https://example.com/shop"},
		{"slice index", creative, "object_story_spec.link_data.child_attachments.1.image_hash", nil, "child1"},
		{"missing key", creative, "body", "N/A", "N/A"},
		{"missing nested key", creative, "object_story_spec.photo_data.image_hash", nil, nil},
		{"index out of range", creative, "object_story_spec.link_data.child_attachments.5.image_hash", "x", "x"},
		{"negative index", creative, "object_story_spec.link_data.child_attachments.-1", "x", "x"},
		{"non-numeric index into slice", creative, "asset_feed_spec.videos.first", "x", "x"},
		{"traverse through scalar", creative, "title.deeper", "x", "x"},
		{"nil root", nil, "anything.at.all", "fallback", "fallback"},
		{"empty path returns root", "scalar", "", nil, "scalar"},
		{"nil value yields default", map[string]any{"k": nil}, "k", "d", "d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Get(tt.root, tt.path, tt.def))
		})
	}
}

func TestGetNeverMutates(t *testing.T) {
	creative := sampleCreative()
	Get(creative, "object_story_spec.link_data.child_attachments.0.image_hash", nil)
	Get(creative, "missing.path.entirely", "default")
	assert.Equal(t, sampleCreative(), creative)
}

func TestTypedAccessors(t *testing.T) {
	creative := sampleCreative()

	assert.Equal(t, "Summer Sale", GetString(creative, "title", "N/A"))
	assert.Equal(t, "N/A", GetString(creative, "body", "N/A"))
	// Wrong type falls back to the default.
	assert.Equal(t, "N/A", GetString(creative, "object_story_spec", "N/A"))

	assert.Len(t, GetSlice(creative, "object_story_spec.link_data.child_attachments"), 2)
	assert.Nil(t, GetSlice(creative, "title"))
	assert.Nil(t, GetSlice(creative, "no.such.path"))

	assert.NotNil(t, GetMap(creative, "object_story_spec.video_data"))
	assert.Nil(t, GetMap(creative, "asset_feed_spec.videos"))
}
