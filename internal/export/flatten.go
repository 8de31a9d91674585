// Package export projects reconciled ads into the run outputs: a flat
// relational record set with derived metrics, a nested JSON snapshot and a
// delimited-text export.
package export

import (
	"strconv"
	"strings"

	"github.com/AstroImad/adsnap/internal/dig"
	"github.com/AstroImad/adsnap/internal/models"
	"github.com/AstroImad/adsnap/internal/reconcile"
)

// imagePathDelimiter joins the primary and carousel image paths into the
// single delimited field of a FlatRecord.
const imagePathDelimiter = ";"

// FlatRecord is one row of the tabular export: ad identity, hierarchy
// context, creative text/media fields and derived performance metrics.
// Records are derived, created once per ad during the flattening pass, and
// never mutated afterward.
type FlatRecord struct {
	AdID            string
	AdName          string
	Status          string
	EffectiveStatus string
	Format          models.Format

	CampaignID        string
	CampaignName      string
	CampaignObjective string
	AdSetID           string
	AdSetName         string
	AdSetDailyBudget  string

	Title        string
	Body         string
	LinkURL      string
	ImagePaths   string
	VideoURL     string
	ThumbnailURL string

	Spend          float64
	Impressions    float64
	Clicks         float64
	CTR            float64
	CPC            float64
	CPM            float64
	ROAS           float64
	Conversions    float64
	ConversionRate float64
}

// Flatten projects one reconciled ad into a FlatRecord. Creative text fields
// fall back through the object-story locations the platform scatters them
// across; media fields prefer locally-mirrored paths over remote URLs when
// both are present.
func Flatten(ad *models.Ad) FlatRecord {
	creative := ad.Creative
	insights := ad.Insights

	clicks := models.MetricFloat(insights, "clicks")
	conversions := models.Conversions(insights)

	return FlatRecord{
		AdID:            ad.ID,
		AdName:          ad.Name,
		Status:          ad.Status,
		EffectiveStatus: ad.EffectiveStatus,
		Format:          ad.Format,

		CampaignID:        ad.CampaignID(),
		CampaignName:      dig.GetString(ad.Campaign, "name", ""),
		CampaignObjective: dig.GetString(ad.Campaign, "objective", ""),
		AdSetID:           ad.AdSetID(),
		AdSetName:         dig.GetString(ad.AdSet, "name", ""),
		AdSetDailyBudget:  stringish(dig.Get(ad.AdSet, "daily_budget", nil)),

		Title: firstNonEmpty(
			dig.GetString(creative, "title", ""),
			dig.GetString(creative, "object_story_spec.link_data.name", ""),
			dig.GetString(creative, "object_story_spec.video_data.title", "")),
		Body: firstNonEmpty(
			dig.GetString(creative, "body", ""),
			dig.GetString(creative, "object_story_spec.link_data.message", ""),
			dig.GetString(creative, "object_story_spec.text_data.message", "")),
		LinkURL:      dig.GetString(creative, "object_story_spec.link_data.link", ""),
		ImagePaths:   strings.Join(imagePaths(creative), imagePathDelimiter),
		VideoURL:     videoPath(creative),
		ThumbnailURL: dig.GetString(creative, "thumbnail_url", ""),

		Spend:          models.MetricFloat(insights, "spend"),
		Impressions:    models.MetricFloat(insights, "impressions"),
		Clicks:         clicks,
		CTR:            models.MetricFloat(insights, "ctr"),
		CPC:            models.MetricFloat(insights, "cpc"),
		CPM:            models.MetricFloat(insights, "cpm"),
		ROAS:           models.ROAS(insights),
		Conversions:    conversions,
		ConversionRate: models.ConversionRate(conversions, clicks),
	}
}

// FlattenAll produces one record per ad in encounter order.
func FlattenAll(ads []*models.Ad) []FlatRecord {
	records := make([]FlatRecord, 0, len(ads))
	for _, ad := range ads {
		records = append(records, Flatten(ad))
	}
	return records
}

// FlattenHierarchy produces records grouped by campaign then adset, in
// map-iteration order within each level.
func FlattenHierarchy(h *reconcile.Hierarchy) []FlatRecord {
	var records []FlatRecord
	for _, campaign := range h.Campaigns {
		for _, adset := range campaign.AdSets {
			for _, ad := range adset.Ads {
				records = append(records, Flatten(ad))
			}
		}
	}
	return records
}

// imagePaths collects every resolved image for the record's delimited image
// field: the primary image, each carousel child and the photo-data image,
// locally-mirrored path first when one exists.
func imagePaths(creative map[string]any) []string {
	var paths []string
	add := func(local, remote string) {
		if p := firstNonEmpty(local, remote); p != "" {
			paths = append(paths, p)
		}
	}

	add(dig.GetString(creative, "image_local_path", ""),
		dig.GetString(creative, "image_url", ""))
	for _, child := range dig.GetSlice(creative, "object_story_spec.link_data.child_attachments") {
		add(dig.GetString(child, "image_local_path", ""),
			dig.GetString(child, "image_url", ""))
	}
	add(dig.GetString(creative, "object_story_spec.photo_data.local_path", ""),
		dig.GetString(creative, "object_story_spec.photo_data.url", ""))
	return paths
}

// videoPath returns the best available video location: the object-story
// video first, then the first asset-feed video, mirrored path preferred.
func videoPath(creative map[string]any) string {
	if p := firstNonEmpty(
		dig.GetString(creative, "object_story_spec.video_data.video_local_path", ""),
		dig.GetString(creative, "object_story_spec.video_data.video_url", "")); p != "" {
		return p
	}
	return firstNonEmpty(
		dig.GetString(creative, "asset_feed_spec.videos.0.source_local_path", ""),
		dig.GetString(creative, "asset_feed_spec.videos.0.source_url", ""))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// stringish renders the loosely-typed scalar shapes budget fields arrive in.
func stringish(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}
