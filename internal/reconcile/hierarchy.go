package reconcile

import (
	"go.uber.org/zap"

	"github.com/AstroImad/adsnap/internal/dig"
	"github.com/AstroImad/adsnap/internal/models"
)

// AdSetNode is one ad set within the hierarchy, carrying the metadata
// captured from the first ad seen for it and every ad that belongs to it.
type AdSetNode struct {
	ID          string       `json:"id"`
	Name        string       `json:"name,omitempty"`
	Status      string       `json:"status,omitempty"`
	DailyBudget any          `json:"daily_budget,omitempty"`
	Ads         []*models.Ad `json:"ads"`
}

// CampaignNode is one campaign within the hierarchy.
type CampaignNode struct {
	ID        string                `json:"id"`
	Name      string                `json:"name,omitempty"`
	Objective string                `json:"objective,omitempty"`
	AdSets    map[string]*AdSetNode `json:"adsets"`
}

// Hierarchy is the three-level Campaign -> AdSet -> Ads tree.
type Hierarchy struct {
	Campaigns map[string]*CampaignNode `json:"campaigns"`

	// Excluded counts ads left out because they were missing a campaign or
	// adset id.
	Excluded int `json:"-"`
}

// BuildHierarchy groups ads by (campaign id, adset id). An ad missing either
// id is excluded and counted. Campaign and ad set metadata comes from the
// first ad encountered for that id; later ads never overwrite it.
func BuildHierarchy(ads []*models.Ad, logger *zap.Logger) *Hierarchy {
	h := &Hierarchy{Campaigns: make(map[string]*CampaignNode)}

	for _, ad := range ads {
		campaignID := ad.CampaignID()
		adsetID := ad.AdSetID()
		if campaignID == "" || adsetID == "" {
			h.Excluded++
			logger.Warn("ad missing hierarchy ids, excluding from tree",
				zap.String("ad_id", ad.ID),
				zap.String("campaign_id", campaignID),
				zap.String("adset_id", adsetID))
			continue
		}

		campaign, ok := h.Campaigns[campaignID]
		if !ok {
			campaign = &CampaignNode{
				ID:        campaignID,
				Name:      dig.GetString(ad.Campaign, "name", ""),
				Objective: dig.GetString(ad.Campaign, "objective", ""),
				AdSets:    make(map[string]*AdSetNode),
			}
			h.Campaigns[campaignID] = campaign
		}

		adset, ok := campaign.AdSets[adsetID]
		if !ok {
			adset = &AdSetNode{
				ID:          adsetID,
				Name:        dig.GetString(ad.AdSet, "name", ""),
				Status:      dig.GetString(ad.AdSet, "status", ""),
				DailyBudget: dig.Get(ad.AdSet, "daily_budget", nil),
			}
			campaign.AdSets[adsetID] = adset
		}

		adset.Ads = append(adset.Ads, ad)
	}

	return h
}
