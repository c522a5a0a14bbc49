package redisx

import "time"

const (
	// Cached analytics responses: analytics:{endpoint} -> JSON body.
	KeyAnalytics = "analytics:%s"

	// Dedup event processing: dedup:{service}:{event_id}.
	KeyDedup = "dedup:%s:%s"
)

// Names used in KeyAnalytics, one per derived view.
const (
	AnalyticsSalesTrends     = "sales-trends"
	AnalyticsInventoryAlerts = "inventory-alerts"
	AnalyticsDemandForecasts = "demand-forecasts"
	AnalyticsWasteAnalysis   = "waste-analysis"
)

var (
	TTLAnalytics = 60 * time.Second
	TTLDedup     = 48 * time.Hour
)

// AnalyticsKeys lists every cache key invalidated when products or orders
// change.
func AnalyticsKeys() []string {
	return []string{
		"analytics:" + AnalyticsSalesTrends,
		"analytics:" + AnalyticsInventoryAlerts,
		"analytics:" + AnalyticsDemandForecasts,
		"analytics:" + AnalyticsWasteAnalysis,
	}
}
