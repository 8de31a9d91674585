package models

import "github.com/AstroImad/adsnap/internal/dig"

// Format classifies a creative into one of a fixed set of presentation
// formats based on which fields are populated.
type Format string

const (
	FormatUnknown     Format = "unknown"
	FormatVideoOrReel Format = "video_or_reel"
	FormatCarousel    Format = "carousel"
	FormatStaticImage Format = "static_image"
)

// ClassifyCreative determines the presentation format of a creative. The
// checks are ordered and the first match wins: a creative can nominally
// satisfy several categories at once (a video creative usually also carries
// a thumbnail), so video signals take precedence over carousel, and carousel
// over static image. Pure function, no I/O.
func ClassifyCreative(creative map[string]any) Format {
	if len(creative) == 0 {
		return FormatUnknown
	}

	if len(dig.GetSlice(creative, "asset_feed_spec.videos")) > 0 {
		return FormatVideoOrReel
	}
	if dig.GetString(creative, "object_story_spec.video_data.video_id", "") != "" {
		return FormatVideoOrReel
	}

	if len(dig.GetSlice(creative, "object_story_spec.link_data.child_attachments")) > 0 {
		return FormatCarousel
	}

	if dig.GetString(creative, "image_url", "") != "" ||
		len(dig.GetSlice(creative, "asset_feed_spec.images")) > 0 ||
		dig.GetString(creative, "image_hash", "") != "" ||
		dig.GetString(creative, "thumbnail_url", "") != "" ||
		dig.GetMap(creative, "object_story_spec.photo_data") != nil {
		return FormatStaticImage
	}

	return FormatUnknown
}
