package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// utf8BOM is prepended to the CSV so spreadsheet tools detect UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvHeader is the fixed column order of the tabular export.
var csvHeader = []string{
	"ad_id", "ad_name", "status", "effective_status", "format",
	"campaign_id", "campaign_name", "campaign_objective",
	"adset_id", "adset_name", "adset_daily_budget",
	"title", "body", "link_url", "image_paths", "video_url", "thumbnail_url",
	"spend", "impressions", "clicks", "ctr", "cpc", "cpm",
	"roas", "conversions", "conversion_rate",
}

// row renders one record in csvHeader order.
func (r FlatRecord) row() []string {
	return []string{
		r.AdID, r.AdName, r.Status, r.EffectiveStatus, string(r.Format),
		r.CampaignID, r.CampaignName, r.CampaignObjective,
		r.AdSetID, r.AdSetName, r.AdSetDailyBudget,
		r.Title, r.Body, r.LinkURL, r.ImagePaths, r.VideoURL, r.ThumbnailURL,
		formatMetric(r.Spend), formatMetric(r.Impressions), formatMetric(r.Clicks),
		formatMetric(r.CTR), formatMetric(r.CPC), formatMetric(r.CPM),
		formatMetric(r.ROAS), formatMetric(r.Conversions), formatMetric(r.ConversionRate),
	}
}

func formatMetric(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// WriteCSV writes the records as a UTF-8 CSV with a byte-order mark, one
// header row and one row per record in the given order.
func WriteCSV(path string, records []FlatRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, record := range records {
		if err := w.Write(record.row()); err != nil {
			return fmt.Errorf("write record %s: %w", record.AdID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}
