package services

import (
	"net/url"
	"time"

	"github.com/alwinjaison18/scholarship/models"
)

// QualityScorer assigns a completeness score in [0, 100] to a candidate
// record. Every field bucket contributes a floor value even when empty, so
// scores express completeness tiers rather than pass/fail.
type QualityScorer struct {
	now func() time.Time
}

// NewQualityScorer creates a scorer using the wall clock.
func NewQualityScorer() *QualityScorer {
	return &QualityScorer{now: time.Now}
}

// NewQualityScorerAt creates a scorer with a fixed reference clock.
func NewQualityScorerAt(clock func() time.Time) *QualityScorer {
	return &QualityScorer{now: clock}
}

// Score computes the quality score for a record.
func (scorer *QualityScorer) Score(record *models.CandidateRecord) int {
	if record == nil {
		return 0
	}

	score := 0
	score += titleScore(record.Title)
	score += descriptionScore(record.Description)
	score += applicationURLScore(record.ApplicationURL)
	score += scorer.deadlineScore(record.Deadline)
	score += amountScore(record.Amount)
	score += eligibilityScore(record.Eligibility)

	if score > 100 {
		score = 100
	}
	return score
}

func titleScore(title string) int {
	switch {
	case len(title) > 10:
		return 20
	case len(title) > 5:
		return 15
	default:
		return 10
	}
}

func descriptionScore(description string) int {
	switch {
	case len(description) > 200:
		return 20
	case len(description) > 100:
		return 15
	case len(description) > 50:
		return 10
	default:
		return 5
	}
}

func applicationURLScore(applicationURL string) int {
	if applicationURL == "" {
		return 5
	}
	parsed, err := url.Parse(applicationURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return 5
	}
	return 20
}

func (scorer *QualityScorer) deadlineScore(deadline *time.Time) int {
	if deadline != nil && deadline.After(scorer.now()) {
		return 15
	}
	return 5
}

func amountScore(amount *float64) int {
	if amount != nil && *amount > 0 {
		return 15
	}
	return 5
}

func eligibilityScore(eligibility []string) int {
	if len(eligibility) > 0 {
		return 10
	}
	return 3
}
