package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alwinjaison18/scholarship/models"
)

func candidateFixture(title, applicationURL string) *models.CandidateRecord {
	amount := 50000.0
	deadline := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	return &models.CandidateRecord{
		Title:          title,
		Description:    "Financial assistance for undergraduate students pursuing engineering degrees at recognised institutions across India.",
		Amount:         &amount,
		Deadline:       &deadline,
		Eligibility:    []string{"Indian citizen", "Family income below 8 lakh"},
		ApplicationURL: applicationURL,
		Source:         "National Scholarship Portal",
		Category:       "merit",
	}
}

func TestDetectDuplicationIdenticalRecords(t *testing.T) {
	detector := NewDuplicationDetector()
	record := candidateFixture("Post Matric Scholarship for SC Students", "https://scholarships.gov.in/post-matric-sc")

	result := detector.DetectDuplication(record, record)

	assert.True(t, result.IsDuplicate)
	assert.InDelta(t, 1.0, result.SimilarityScore, 0.0001)
	assert.Contains(t, result.MatchingFields, "title")
	assert.Contains(t, result.MatchingFields, "url")
}

func TestDetectDuplicationTrackingParameters(t *testing.T) {
	detector := NewDuplicationDetector()
	first := candidateFixture("Post Matric Scholarship for SC Students", "https://scholarships.gov.in/post-matric-sc")
	second := candidateFixture("Post Matric Scholarship for SC Students", "https://www.scholarships.gov.in/post-matric-sc/?utm_source=newsletter&utm_campaign=aug")

	result := detector.DetectDuplication(first, second)

	assert.True(t, result.IsDuplicate, "tracking parameters should not defeat URL matching")
	assert.Contains(t, result.MatchingFields, "url")
}

func TestDetectDuplicationUnrelatedRecords(t *testing.T) {
	detector := NewDuplicationDetector()
	first := candidateFixture("Post Matric Scholarship for SC Students", "https://scholarships.gov.in/post-matric-sc")
	second := candidateFixture("INSPIRE Fellowship for Doctoral Research", "https://online-inspire.gov.in/fellowship")
	second.Description = "Doctoral research fellowship in basic and applied sciences with monthly stipend and annual contingency."
	otherAmount := 420000.0
	second.Amount = &otherAmount

	result := detector.DetectDuplication(first, second)

	assert.False(t, result.IsDuplicate)
	assert.Less(t, result.SimilarityScore, DefaultSimilarityThreshold)
}

func TestDetectDuplicationNilRecord(t *testing.T) {
	detector := NewDuplicationDetector()
	result := detector.DetectDuplication(nil, candidateFixture("Any", "https://example.org"))

	assert.False(t, result.IsDuplicate)
	assert.Zero(t, result.SimilarityScore)
}

func TestDeduplicateKeepsBatchOrder(t *testing.T) {
	detector := NewDuplicationDetector()
	records := []*models.CandidateRecord{
		candidateFixture("Post Matric Scholarship for SC Students", "https://scholarships.gov.in/post-matric-sc"),
		candidateFixture("Pragati Scholarship for Girl Students", "https://aicte-india.org/pragati"),
		candidateFixture("Post Matric Scholarship for SC Students", "https://scholarships.gov.in/post-matric-sc?ref=home"),
	}

	survivors := detector.Deduplicate(records, KeepFirst)

	require.Len(t, survivors, 2)
	assert.Equal(t, records[0], survivors[0])
	assert.Equal(t, records[1], survivors[1])
}

func TestDeduplicateKeepBestPrefersHigherQuality(t *testing.T) {
	detector := NewDuplicationDetector()
	low := candidateFixture("Post Matric Scholarship for SC Students", "https://scholarships.gov.in/post-matric-sc")
	low.QualityScore = 40
	high := candidateFixture("Post Matric Scholarship for SC Students", "https://scholarships.gov.in/post-matric-sc")
	high.QualityScore = 85

	survivors := detector.Deduplicate([]*models.CandidateRecord{low, high}, KeepBest)

	require.Len(t, survivors, 1)
	assert.Equal(t, 85, survivors[0].QualityScore)
}

func TestGroupDuplicatesTransitiveClosure(t *testing.T) {
	detector := NewDuplicationDetector()
	a := candidateFixture("Post Matric Scholarship for SC Students", "https://scholarships.gov.in/post-matric-sc")
	b := candidateFixture("Post Matric Scholarship for SC Students", "https://scholarships.gov.in/post-matric-sc/")
	c := candidateFixture("Pragati Scholarship for Girl Students", "https://aicte-india.org/pragati")

	groups := detector.GroupDuplicates([]*models.CandidateRecord{a, b, c})

	require.Len(t, groups, 2)
	assert.ElementsMatch(t, []int{0, 1}, groups[0])
	assert.ElementsMatch(t, []int{2}, groups[1])
}

func TestStatsCountsGroupsAndDuplicates(t *testing.T) {
	detector := NewDuplicationDetector()
	records := []*models.CandidateRecord{
		candidateFixture("Post Matric Scholarship for SC Students", "https://scholarships.gov.in/post-matric-sc"),
		candidateFixture("Post Matric Scholarship for SC Students", "https://scholarships.gov.in/post-matric-sc/"),
		candidateFixture("Pragati Scholarship for Girl Students", "https://aicte-india.org/pragati"),
	}

	stats := detector.Stats(records)

	assert.Equal(t, 3, stats.Input)
	assert.Equal(t, 2, stats.Groups)
	assert.Equal(t, 2, stats.Survivors)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		raw      string
		expected string
	}{
		{"https://www.scholarships.gov.in/page/?utm_source=x", "https://scholarships.gov.in/page"},
		{"HTTPS://Scholarships.GOV.IN/Page#section", "https://scholarships.gov.in/page"},
		{"https://scholarships.gov.in", "https://scholarships.gov.in"},
	}
	for _, testCase := range cases {
		t.Run(testCase.raw, func(t *testing.T) {
			assert.Equal(t, testCase.expected, NormalizeURL(testCase.raw))
		})
	}
}

func TestTextSimilarityProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("similarity stays in unit interval", prop.ForAll(
		func(first, second string) bool {
			score := textSimilarity(first, second)
			return score >= 0.0 && score <= 1.0
		},
		gen.AlphaString(), gen.AlphaString(),
	))

	properties.Property("a string fully matches itself", prop.ForAll(
		func(text string) bool {
			if normalizeComparisonText(text) == "" {
				return true
			}
			return textSimilarity(text, text) == 1.0
		},
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

func TestDisjointSetProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("union makes roots agree", prop.ForAll(
		func(pairs []int) bool {
			set := newDisjointSet(16)
			for index := 0; index+1 < len(pairs); index += 2 {
				first := ((pairs[index] % 16) + 16) % 16
				second := ((pairs[index+1] % 16) + 16) % 16
				set.union(first, second)
				if set.find(first) != set.find(second) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int()),
	))

	properties.TestingRun(t)
}

func TestCompareDeadlinesBuckets(t *testing.T) {
	base := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		daysApart int
		expected  float64
	}{
		{0, 1.0},
		{3, 1.0},
		{5, 0.8},
		{10, 0.6},
		{20, 0.4},
		{40, 0.0},
	}
	for _, testCase := range cases {
		t.Run(fmt.Sprintf("%d_days", testCase.daysApart), func(t *testing.T) {
			first := candidateFixture("A", "https://example.org/a")
			second := candidateFixture("B", "https://example.org/b")
			first.Deadline = &base
			shifted := base.AddDate(0, 0, testCase.daysApart)
			second.Deadline = &shifted

			assert.InDelta(t, testCase.expected, compareDeadlines(first, second), 0.0001)
		})
	}
}
