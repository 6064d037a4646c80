package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alwinjaison18/scholarship/models"
)

var qualityFixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClockScorer() *QualityScorer {
	return NewQualityScorerAt(func() time.Time { return qualityFixedNow })
}

func TestScoreCompleteRecordReachesCeiling(t *testing.T) {
	amount := 120000.0
	deadline := qualityFixedNow.AddDate(0, 2, 0)
	record := &models.CandidateRecord{
		Title:          "National Means cum Merit Scholarship Scheme",
		Description:    "The National Means cum Merit Scholarship Scheme awards scholarships to meritorious students of economically weaker sections to arrest their drop out at class VIII and encourage them to continue their education at the secondary stage.",
		Amount:         &amount,
		Deadline:       &deadline,
		Eligibility:    []string{"Class VIII pass", "Parental income below 3.5 lakh"},
		ApplicationURL: "https://scholarships.gov.in/nmms",
	}

	assert.Equal(t, 100, fixedClockScorer().Score(record))
}

func TestScoreEmptyRecordGetsFloorValues(t *testing.T) {
	// 10 title + 5 description + 5 url + 5 deadline + 5 amount + 3 eligibility
	assert.Equal(t, 33, fixedClockScorer().Score(&models.CandidateRecord{}))
}

func TestScoreNilRecord(t *testing.T) {
	assert.Equal(t, 0, fixedClockScorer().Score(nil))
}

func TestScorePastDeadlineCountsAsMissing(t *testing.T) {
	past := qualityFixedNow.AddDate(0, -1, 0)
	future := qualityFixedNow.AddDate(0, 1, 0)

	stale := &models.CandidateRecord{Deadline: &past}
	fresh := &models.CandidateRecord{Deadline: &future}

	scorer := fixedClockScorer()
	assert.Equal(t, scorer.Score(fresh)-10, scorer.Score(stale))
}

func TestScoreRejectsMalformedApplicationURL(t *testing.T) {
	cases := []struct {
		name           string
		applicationURL string
		expected       int
	}{
		{"https url", "https://scholarships.gov.in/apply", 20},
		{"http url", "http://ugc.ac.in/apply", 20},
		{"relative path", "/apply/now", 5},
		{"javascript scheme", "javascript:void(0)", 5},
		{"empty", "", 5},
	}
	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, applicationURLScore(testCase.applicationURL))
		})
	}
}

func TestDescriptionScoreBuckets(t *testing.T) {
	long := make([]byte, 250)
	for index := range long {
		long[index] = 'a'
	}

	assert.Equal(t, 20, descriptionScore(string(long)))
	assert.Equal(t, 15, descriptionScore(string(long[:150])))
	assert.Equal(t, 10, descriptionScore(string(long[:60])))
	assert.Equal(t, 5, descriptionScore(string(long[:20])))
}
