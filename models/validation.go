package models

import "time"

// LinkStatus classifies the outcome of validating an outbound URL.
type LinkStatus string

const (
	LinkStatusValid      LinkStatus = "valid"
	LinkStatusInvalid    LinkStatus = "invalid"
	LinkStatusBroken     LinkStatus = "broken"
	LinkStatusSuspicious LinkStatus = "suspicious"
	LinkStatusRedirect   LinkStatus = "redirect"
	LinkStatusSlow       LinkStatus = "slow"
	LinkStatusBlocked    LinkStatus = "blocked"
)

// ValidationResult is produced per validation call. Network-level failures
// are folded into the status; validation never raises them to the caller.
type ValidationResult struct {
	URL          string            `json:"url"`
	Status       LinkStatus        `json:"status"`
	ResponseCode int               `json:"response_code"`
	ResponseTime time.Duration     `json:"response_time"`
	FinalURL     string            `json:"final_url"`
	ContentType  string            `json:"content_type"`
	PageTitle    string            `json:"page_title"`
	QualityScore float64           `json:"quality_score"`
	Issues       []string          `json:"issues"`
	Metadata     map[string]string `json:"metadata"`
	ValidatedAt  time.Time         `json:"validated_at"`
}

// Usable reports whether a link outcome can back a persisted scholarship.
// Redirects are informational, not fatal.
func (status LinkStatus) Usable() bool {
	switch status {
	case LinkStatusValid, LinkStatusRedirect, LinkStatusSlow:
		return true
	}
	return false
}

// Usable reports whether the link can back a persisted scholarship.
func (r *ValidationResult) Usable() bool {
	return r.Status.Usable()
}
