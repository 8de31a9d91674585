// Package reconcile writes resolved media URLs back into the creative
// locations their references came from, optionally mirrors the media to
// local storage, and groups ads into the campaign/adset hierarchy.
package reconcile

import (
	"go.uber.org/zap"

	"github.com/AstroImad/adsnap/internal/dig"
	"github.com/AstroImad/adsnap/internal/models"
	"github.com/AstroImad/adsnap/internal/resolve"
)

// siblingRule maps one reference location inside a creative to the fixed
// sibling field the resolved URL must be written to. The mapping is a
// platform convention per creative variant and is not discoverable
// generically, so it is enumerated exhaustively here; the reconciler and the
// mirror both consume this table.
type siblingRule struct {
	kind       resolve.RefKind
	container  string // dotted path to the holding object; "" means the creative root
	each       bool   // container is a list, apply to every element
	refField   string // field holding the raw reference
	urlField   string // sibling field receiving the resolved URL
	localField string // sibling field receiving the mirrored local path
	role       string // file-name prefix used when mirroring
}

var siblingRules = []siblingRule{
	{
		kind:       resolve.RefImageHash,
		refField:   "image_hash",
		urlField:   "image_url",
		localField: "image_local_path",
		role:       "img",
	},
	{
		kind:       resolve.RefImageHash,
		container:  "object_story_spec.link_data.child_attachments",
		each:       true,
		refField:   "image_hash",
		urlField:   "image_url",
		localField: "image_local_path",
		role:       "carousel",
	},
	{
		kind:       resolve.RefImageHash,
		container:  "object_story_spec.photo_data",
		refField:   "image_hash",
		urlField:   "url",
		localField: "local_path",
		role:       "photo",
	},
	{
		kind:       resolve.RefVideoID,
		container:  "object_story_spec.video_data",
		refField:   "video_id",
		urlField:   "video_url",
		localField: "video_local_path",
		role:       "video",
	},
	{
		kind:       resolve.RefVideoID,
		container:  "asset_feed_spec.videos",
		each:       true,
		refField:   "video_id",
		urlField:   "source_url",
		localField: "source_local_path",
		role:       "feedvideo",
	},
}

// targets returns the maps a rule applies to within one creative.
func (r siblingRule) targets(creative map[string]any) []map[string]any {
	if r.container == "" {
		return []map[string]any{creative}
	}
	if r.each {
		var out []map[string]any
		for _, elem := range dig.GetSlice(creative, r.container) {
			if m, ok := elem.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	if m := dig.GetMap(creative, r.container); m != nil {
		return []map[string]any{m}
	}
	return nil
}

// Apply re-walks an ad's creative and injects resolved URLs into the sibling
// fields designated by the rule table. References absent from the resolution
// maps leave their sibling unset; downstream consumers treat absence as
// unresolved, not as an error. Returns the number of URLs written.
func Apply(ad *models.Ad, images, videos resolve.Resolution, logger *zap.Logger) int {
	if len(ad.Creative) == 0 {
		return 0
	}

	applied := 0
	for _, rule := range siblingRules {
		res := images
		if rule.kind == resolve.RefVideoID {
			res = videos
		}
		for _, target := range rule.targets(ad.Creative) {
			ref := dig.GetString(target, rule.refField, "")
			if ref == "" {
				continue
			}
			url, ok := res[ref]
			if !ok {
				logger.Debug("reference unresolved, leaving sibling unset",
					zap.String("ad_id", ad.ID),
					zap.String("kind", string(rule.kind)),
					zap.String("ref", ref))
				continue
			}
			target[rule.urlField] = url
			applied++
		}
	}
	return applied
}
