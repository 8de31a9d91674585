// Package models defines the ad-platform data model used throughout the
// export pipeline. Ads arrive from the platform API with a small stable
// envelope (id, name, status) around loosely-structured sub-objects whose
// shape differs between creative variants, so the sub-objects are kept as
// raw maps and read through the dig accessor.
package models

import (
	"encoding/json"

	"github.com/AstroImad/adsnap/internal/dig"
)

// Ad is a single advertisement unit together with the campaign and ad set
// context it was fetched with. The Creative and Insights maps are owned
// exclusively by the Ad for the duration of a run; the reconciler mutates
// Creative in place when it injects resolved media URLs.
type Ad struct {
	ID              string         `json:"id"`
	Name            string         `json:"name,omitempty"`
	Status          string         `json:"status,omitempty"`
	EffectiveStatus string         `json:"effective_status,omitempty"`
	Campaign        map[string]any `json:"campaign,omitempty"`
	AdSet           map[string]any `json:"adset,omitempty"`
	Creative        map[string]any `json:"creative,omitempty"`
	Insights        map[string]any `json:"insights,omitempty"`

	// Format is derived from the creative contents and recomputed whenever
	// the creative changes; it is carried on the ad so the JSON snapshot
	// includes the classification.
	Format Format `json:"format,omitempty"`
}

// CampaignID returns the owning campaign's id, or "" when absent.
func (a *Ad) CampaignID() string {
	return dig.GetString(a.Campaign, "id", "")
}

// AdSetID returns the owning ad set's id, or "" when absent.
func (a *Ad) AdSetID() string {
	return dig.GetString(a.AdSet, "id", "")
}

// Reclassify recomputes the derived format from the current creative
// contents. Call after attaching or enriching the creative, since an initial
// classification against a partial creative may be stale.
func (a *Ad) Reclassify() {
	a.Format = ClassifyCreative(a.Creative)
}

// DecodeAds parses a JSON array of ad objects.
func DecodeAds(data []byte) ([]*Ad, error) {
	var ads []*Ad
	if err := json.Unmarshal(data, &ads); err != nil {
		return nil, err
	}
	return ads, nil
}
