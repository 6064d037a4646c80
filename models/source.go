package models

import "time"

// SourceStatus tracks the lifecycle of a discovered scraping source.
type SourceStatus string

const (
	SourceStatusDiscovered       SourceStatus = "discovered"
	SourceStatusActive           SourceStatus = "active"
	SourceStatusLowActivity      SourceStatus = "low_activity"
	SourceStatusValidationFailed SourceStatus = "validation_failed"
)

// PageType classifies what kind of scholarship page the crawler found.
type PageType string

const (
	PageTypeList     PageType = "list"
	PageTypeDetail   PageType = "detail"
	PageTypeCategory PageType = "category"
	PageTypeUnknown  PageType = "unknown"
)

// DiscoveredSource is a page found by the discovery crawler that looks like a
// scholarship source worth orchestrating later.
type DiscoveredSource struct {
	URL                string            `json:"url"`
	Title              string            `json:"title"`
	ContentPreview     string            `json:"content_preview"`
	RelevanceScore     float64           `json:"relevance_score"`
	PageType           PageType          `json:"page_type"`
	EstimatedItemCount int               `json:"estimated_item_count"`
	Domain             string            `json:"domain"`
	Metadata           map[string]string `json:"metadata"`
	Status             SourceStatus      `json:"status"`
	DiscoveredAt       time.Time         `json:"discovered_at"`
}

// HighPriority reports whether the source scored above the immediate
// orchestration threshold.
func (s *DiscoveredSource) HighPriority(minScore float64) bool {
	return s.RelevanceScore >= minScore
}
