// Package resolve implements the media-reference pipeline: collecting the
// distinct image-hash and video-id references out of every fetched creative,
// then resolving each set against the platform with kind-appropriate
// batching, retry and backoff policies.
package resolve

import (
	"go.uber.org/zap"

	"github.com/AstroImad/adsnap/internal/dig"
	"github.com/AstroImad/adsnap/internal/models"
)

// RefKind names the two kinds of indirect media reference a creative can
// carry.
type RefKind string

const (
	RefImageHash RefKind = "image_hash"
	RefVideoID   RefKind = "video_id"
)

// Ref identifies one piece of remote media to resolve. Identity is value
// equality on (kind, value); the same hash or id appearing in many creatives
// is resolved exactly once.
type Ref struct {
	Kind  RefKind
	Value string
}

// RefSet is a deduplicated set of references that preserves first-seen order
// so batching and lookups run in a deterministic sequence.
type RefSet struct {
	order []Ref
	seen  map[Ref]struct{}
}

// NewRefSet returns an empty reference set.
func NewRefSet() *RefSet {
	return &RefSet{seen: make(map[Ref]struct{})}
}

// Add inserts a reference unless it is empty or already present.
func (s *RefSet) Add(kind RefKind, value string) {
	if value == "" {
		return
	}
	ref := Ref{Kind: kind, Value: value}
	if _, ok := s.seen[ref]; ok {
		return
	}
	s.seen[ref] = struct{}{}
	s.order = append(s.order, ref)
}

// Values returns the reference strings of one kind in first-seen order.
func (s *RefSet) Values(kind RefKind) []string {
	var out []string
	for _, ref := range s.order {
		if ref.Kind == kind {
			out = append(out, ref.Value)
		}
	}
	return out
}

// Len returns the total number of distinct references.
func (s *RefSet) Len() int {
	return len(s.order)
}

// Collect walks every ad's creative and accumulates the distinct media
// references it contains: the primary image hash, every carousel child's
// hash, the photo-data hash, every asset-feed video id and the object-story
// video id. An absent field is a data-quality signal, logged at debug, and
// never aborts collection.
func Collect(ads []*models.Ad, logger *zap.Logger) *RefSet {
	refs := NewRefSet()
	for _, ad := range ads {
		creative := ad.Creative
		if len(creative) == 0 {
			logger.Debug("ad has no creative to collect from", zap.String("ad_id", ad.ID))
			continue
		}

		refs.Add(RefImageHash, dig.GetString(creative, "image_hash", ""))
		refs.Add(RefImageHash, dig.GetString(creative, "object_story_spec.photo_data.image_hash", ""))
		for _, child := range dig.GetSlice(creative, "object_story_spec.link_data.child_attachments") {
			refs.Add(RefImageHash, dig.GetString(child, "image_hash", ""))
		}

		refs.Add(RefVideoID, dig.GetString(creative, "object_story_spec.video_data.video_id", ""))
		for _, video := range dig.GetSlice(creative, "asset_feed_spec.videos") {
			refs.Add(RefVideoID, dig.GetString(video, "video_id", ""))
		}
	}

	logger.Info("collected media references",
		zap.Int("image_hashes", len(refs.Values(RefImageHash))),
		zap.Int("video_ids", len(refs.Values(RefVideoID))))
	return refs
}
