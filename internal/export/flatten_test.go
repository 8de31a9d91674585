package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/AstroImad/adsnap/internal/models"
	"github.com/AstroImad/adsnap/internal/reconcile"
)

func flattenFixture() *models.Ad {
	return &models.Ad{
		ID:              "ad1",
		Name:            "Summer Launch",
		Status:          "ACTIVE",
		EffectiveStatus: "ACTIVE",
		Format:          models.FormatCarousel,
		Campaign:        map[string]any{"id": "c1", "name": "Q3", "objective": "OUTCOME_SALES"},
		AdSet:           map[string]any{"id": "s1", "name": "Broad", "daily_budget": "2500"},
		Creative: map[string]any{
			"title":            "Big Sale",
			"body":             "Everything must go",
			"image_hash":       "h1",
			"image_url":        "https://cdn/h1.jpg",
			"image_local_path": "media/img_ad1_h1.jpg",
			"thumbnail_url":    "https://cdn/thumb.jpg",
			"object_story_spec": map[string]any{
				"link_data": map[string]any{
					"link": "https://shop.example/sale",
					"child_attachments": []any{
						map[string]any{"image_hash": "h2", "image_url": "https://cdn/h2.jpg"},
						map[string]any{"image_hash": "h3"}, // unresolved, contributes nothing
					},
				},
			},
		},
		Insights: map[string]any{
			"spend":       "125.40",
			"impressions": "10000",
			"clicks":      "250",
			"ctr":         "2.5",
			"cpc":         "0.50",
			"cpm":         "12.54",
			"purchase_roas": []any{
				map[string]any{"action_type": "omni_purchase", "value": "4.2"},
			},
			"actions": []any{
				map[string]any{"action_type": "purchase", "value": "25"},
				map[string]any{"action_type": "link_click", "value": "250"},
			},
		},
	}
}

func TestFlatten(t *testing.T) {
	r := Flatten(flattenFixture())

	assert.Equal(t, "ad1", r.AdID)
	assert.Equal(t, "Summer Launch", r.AdName)
	assert.Equal(t, models.FormatCarousel, r.Format)
	assert.Equal(t, "c1", r.CampaignID)
	assert.Equal(t, "OUTCOME_SALES", r.CampaignObjective)
	assert.Equal(t, "2500", r.AdSetDailyBudget)
	assert.Equal(t, "Big Sale", r.Title)
	assert.Equal(t, "https://shop.example/sale", r.LinkURL)

	// Local path preferred for the primary image; resolved carousel child
	// appended; unresolved child absent.
	assert.Equal(t, "media/img_ad1_h1.jpg;https://cdn/h2.jpg", r.ImagePaths)

	assert.Equal(t, 125.40, r.Spend)
	assert.Equal(t, 10000.0, r.Impressions)
	assert.Equal(t, 250.0, r.Clicks)
	assert.Equal(t, 4.2, r.ROAS)
	assert.Equal(t, 25.0, r.Conversions)
	assert.Equal(t, 10.0, r.ConversionRate)
}

func TestFlattenTextFallbacks(t *testing.T) {
	ad := &models.Ad{
		ID: "ad2",
		Creative: map[string]any{
			"object_story_spec": map[string]any{
				"link_data":  map[string]any{"name": "Fallback Title", "message": "Fallback body"},
				"video_data": map[string]any{"video_id": "v1", "video_url": "https://v/1.mp4"},
			},
		},
	}

	r := Flatten(ad)
	assert.Equal(t, "Fallback Title", r.Title)
	assert.Equal(t, "Fallback body", r.Body)
	assert.Equal(t, "https://v/1.mp4", r.VideoURL)
}

func TestFlattenEmptyAd(t *testing.T) {
	r := Flatten(&models.Ad{ID: "bare"})

	assert.Equal(t, "bare", r.AdID)
	assert.Empty(t, r.ImagePaths)
	assert.Zero(t, r.Spend)
	assert.Zero(t, r.Clicks)
	assert.Zero(t, r.ConversionRate, "no clicks means zero rate, not a division")
}

func TestFlattenAllIsTotal(t *testing.T) {
	ads := []*models.Ad{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	records := FlattenAll(ads)
	require.Len(t, records, len(ads), "every ad produces exactly one record")
	assert.Equal(t, "a", records[0].AdID)
	assert.Equal(t, "c", records[2].AdID)
}

func TestFlattenHierarchyExcludesOrphans(t *testing.T) {
	ads := []*models.Ad{
		{
			ID:       "kept",
			Campaign: map[string]any{"id": "c1"},
			AdSet:    map[string]any{"id": "s1"},
		},
		{ID: "orphan"},
	}
	h := reconcile.BuildHierarchy(ads, zaptest.NewLogger(t))
	records := FlattenHierarchy(h)

	require.Len(t, records, 1)
	assert.Equal(t, "kept", records[0].AdID)
	assert.Equal(t, 1, h.Excluded)
}
