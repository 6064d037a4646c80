package models

import (
	"time"

	"github.com/google/uuid"
)

// CandidateRecord holds a scholarship entry as extracted from a source page,
// before it has passed deduplication and quality gates. Ephemeral.
type CandidateRecord struct {
	Title              string                 `json:"title"`
	Description        string                 `json:"description"`
	Amount             *float64               `json:"amount"`
	Deadline           *time.Time             `json:"deadline"`
	Eligibility        []string               `json:"eligibility"`
	ApplicationURL     string                 `json:"application_url"`
	Source             string                 `json:"source"`
	Category           string                 `json:"category"`
	Level              string                 `json:"level"`
	State              string                 `json:"state"`
	Provider           string                 `json:"provider"`
	ContactEmail       *string                `json:"contact_email"`
	ContactPhone       *string                `json:"contact_phone"`
	ApplicationProcess string                 `json:"application_process"`
	Benefits           []string               `json:"benefits"`
	SelectionCriteria  []string               `json:"selection_criteria"`
	RequiredDocuments  []string               `json:"required_documents"`
	Tags               []string               `json:"tags"`
	RawData            map[string]interface{} `json:"raw_data"`
	ScrapedAt          time.Time              `json:"scraped_at"`
	QualityScore       int                    `json:"quality_score"`
}

// Scholarship is the durable record persisted after a candidate passes the
// full pipeline. A record pointing at DuplicateOf is a confirmed duplicate of
// that canonical record; it keeps a weak reference by id, not ownership.
type Scholarship struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Amount             *float64   `json:"amount"`
	Deadline           *time.Time `json:"deadline"`
	Eligibility        []string   `json:"eligibility"`
	ApplicationURL     string     `json:"application_url"`
	Source             string     `json:"source"`
	Category           string     `json:"category"`
	Level              string     `json:"level"`
	State              string     `json:"state"`
	Provider           string     `json:"provider"`
	ContactEmail       *string    `json:"contact_email"`
	ContactPhone       *string    `json:"contact_phone"`
	ApplicationProcess string     `json:"application_process"`
	Benefits           []string   `json:"benefits"`
	SelectionCriteria  []string   `json:"selection_criteria"`
	RequiredDocuments  []string   `json:"required_documents"`
	Tags               []string   `json:"tags"`
	QualityScore       int        `json:"quality_score"`

	IsActive         bool       `json:"is_active"`
	IsVerified       bool       `json:"is_verified"`
	ViewCount        int64      `json:"view_count"`
	ApplicationCount int64      `json:"application_count"`
	ValidationStatus string     `json:"validation_status"`
	InvalidSince     *time.Time `json:"invalid_since"`
	DuplicateOf      *uuid.UUID `json:"duplicate_of"`

	ScrapedAt time.Time `json:"scraped_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCandidate converts a persisted scholarship back into candidate shape so
// it can be compared against freshly scraped records.
func (s *Scholarship) ToCandidate() *CandidateRecord {
	return &CandidateRecord{
		Title:          s.Title,
		Description:    s.Description,
		Amount:         s.Amount,
		Deadline:       s.Deadline,
		Eligibility:    s.Eligibility,
		ApplicationURL: s.ApplicationURL,
		Source:         s.Source,
		Category:       s.Category,
		Level:          s.Level,
		State:          s.State,
		Provider:       s.Provider,
		Tags:           s.Tags,
		ScrapedAt:      s.ScrapedAt,
		QualityScore:   s.QualityScore,
	}
}
