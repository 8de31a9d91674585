package models

import (
	"strconv"

	"github.com/AstroImad/adsnap/internal/dig"
)

// conversionActionTypes is the set of action types counted as a purchase or
// offsite conversion when deriving the conversions metric.
var conversionActionTypes = map[string]struct{}{
	"purchase":                             {},
	"omni_purchase":                        {},
	"offsite_conversion.fb_pixel_purchase": {},
	"onsite_conversion.purchase":           {},
}

// MetricFloat reads a numeric insights field. The platform frequently
// returns numbers as strings ("12.34"), so both forms are accepted; absence
// or a parse failure yields 0 rather than an error.
func MetricFloat(insights map[string]any, key string) float64 {
	f, _ := toFloat(dig.Get(insights, key, nil))
	return f
}

// ROAS extracts return-on-ad-spend from the purchase_roas field, which
// normally arrives as a single-element list of {action_type, value} objects
// but is also accepted as a bare number. Absence or parse failure yields 0.
func ROAS(insights map[string]any) float64 {
	v := dig.Get(insights, "purchase_roas", nil)
	switch roas := v.(type) {
	case []any:
		if len(roas) == 0 {
			return 0
		}
		f, _ := toFloat(dig.Get(roas[0], "value", nil))
		return f
	default:
		f, _ := toFloat(v)
		return f
	}
}

// Conversions sums the value of every action entry whose action_type denotes
// a purchase or offsite-conversion event.
func Conversions(insights map[string]any) float64 {
	var total float64
	for _, entry := range dig.GetSlice(insights, "actions") {
		actionType := dig.GetString(entry, "action_type", "")
		if _, ok := conversionActionTypes[actionType]; !ok {
			continue
		}
		if f, ok := toFloat(dig.Get(entry, "value", nil)); ok {
			total += f
		}
	}
	return total
}

// ConversionRate derives conversions / clicks as a percentage. Zero clicks
// yields exactly 0 regardless of conversions.
func ConversionRate(conversions, clicks float64) float64 {
	if clicks <= 0 {
		return 0
	}
	return conversions / clicks * 100
}

// toFloat converts the numeric shapes the platform is known to emit: JSON
// numbers decode as float64, but most metric fields arrive as strings.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
