package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alwinjaison18/scholarship/config"
)

var extractorFixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type stubAIExtractor struct {
	extractions []AIExtraction
	err         error
	calls       int
}

func (stub *stubAIExtractor) ExtractScholarships(ctx context.Context, pageText string) ([]AIExtraction, error) {
	stub.calls++
	return stub.extractions, stub.err
}

func (stub *stubAIExtractor) Close() error { return nil }

const listingPageHTML = `<html><body>
<div class="scholarship-item">
  <h2>Post Matric Scholarship for SC Students</h2>
  <p class="description">Financial assistance for students belonging to scheduled castes
  pursuing post matriculation courses at recognised institutions across India.</p>
  <span class="amount">₹12,000 per year</span>
  <span class="deadline">31 October 2026</span>
  <div class="eligibility">Family income below 2.5 lakh per annum</div>
  <a href="/apply/post-matric-sc">Apply</a>
</div>
<div class="scholarship-item">
  <h2>Short</h2>
  <p class="description">Too thin.</p>
</div>
<div class="scholarship-item">
  <h2>Expired Merit Award for Graduates</h2>
  <p class="description">This scholarship closed earlier in the year and should not be
  offered to students anymore because its window has passed.</p>
  <span class="deadline">10 January 2026</span>
</div>
</body></html>`

func newExtractorDocument(t *testing.T, html string) *goquery.Document {
	t.Helper()
	document, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return document
}

func fixedClockExtractor(ai AIExtractor) *ElementExtractor {
	return NewElementExtractorAt(ai, func() time.Time { return extractorFixedNow })
}

func TestExtractFromDocumentGatesThinAndExpiredRecords(t *testing.T) {
	extractor := fixedClockExtractor(nil)
	document := newExtractorDocument(t, listingPageHTML)

	records := extractor.ExtractFromDocument(context.Background(), document, "nsp", "https://scholarships.gov.in/listing", nil)

	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, "Post Matric Scholarship for SC Students", record.Title)
	assert.Equal(t, "https://scholarships.gov.in/apply/post-matric-sc", record.ApplicationURL)
	require.NotNil(t, record.Amount)
	assert.InDelta(t, 12000.0, *record.Amount, 0.001)
	require.NotNil(t, record.Deadline)
	assert.Equal(t, time.October, record.Deadline.Month())
	assert.Equal(t, "sc", record.Category)
	assert.NotEmpty(t, record.Eligibility)
	assert.Greater(t, record.QualityScore, 0)
}

func TestExtractFromDocumentDropsImplausiblyDistantDeadline(t *testing.T) {
	extractor := fixedClockExtractor(nil)
	document := newExtractorDocument(t, `<html><body>
<div class="scholarship-item">
  <h2>Central Sector Scholarship Scheme</h2>
  <p class="description">Tuition support for undergraduate students from low income
  families enrolled at recognised universities across the country.</p>
  <span class="deadline">15 August 2045</span>
</div>
</body></html>`)

	records := extractor.ExtractFromDocument(context.Background(), document, "nsp", "https://scholarships.gov.in/listing", nil)

	require.Len(t, records, 1)
	assert.Nil(t, records[0].Deadline)
}

func TestExtractFromDocumentClearsPseudoApplicationLink(t *testing.T) {
	extractor := fixedClockExtractor(nil)
	document := newExtractorDocument(t, `<html><body>
<div class="scholarship-item">
  <h2>State Talent Search Scholarship</h2>
  <p class="description">Annual award for school toppers in the state board examinations,
  covering books and tuition for the following academic session.</p>
  <a href="javascript:void(0)" class="apply-link">Apply</a>
</div>
</body></html>`)

	records := extractor.ExtractFromDocument(context.Background(), document, "state-board", "https://example.gov.in/listing", nil)

	require.Len(t, records, 1)
	assert.Empty(t, records[0].ApplicationURL)
}

func TestExtractFromDocumentAIMergeLongerWins(t *testing.T) {
	ai := &stubAIExtractor{
		extractions: []AIExtraction{{
			Title: "Post Matric Scholarship for SC Students in India",
			Description: "Financial assistance for students belonging to scheduled castes pursuing " +
				"post matriculation courses, covering tuition fees, maintenance allowance and " +
				"other compulsory charges at recognised institutions across India.",
			Eligibility: []string{"SC category", "Income below 2.5 lakh", "Post matric enrolment"},
		}},
	}
	extractor := fixedClockExtractor(ai)
	document := newExtractorDocument(t, listingPageHTML)

	records := extractor.ExtractFromDocument(context.Background(), document, "nsp", "https://scholarships.gov.in/listing", nil)

	require.Len(t, records, 1)
	assert.Equal(t, 1, ai.calls)
	record := records[0]
	assert.Equal(t, "Post Matric Scholarship for SC Students in India", record.Title)
	assert.Contains(t, record.Description, "maintenance allowance")
	assert.Len(t, record.Eligibility, 3)
}

func TestExtractFromDocumentAIFailureIsSoft(t *testing.T) {
	ai := &stubAIExtractor{err: errors.New("quota exhausted")}
	extractor := fixedClockExtractor(ai)
	document := newExtractorDocument(t, listingPageHTML)

	records := extractor.ExtractFromDocument(context.Background(), document, "nsp", "https://scholarships.gov.in/listing", nil)

	require.Len(t, records, 1)
	assert.Equal(t, "Post Matric Scholarship for SC Students", records[0].Title)
}

func TestExtractFromDocumentAIOnlyFallback(t *testing.T) {
	ai := &stubAIExtractor{
		extractions: []AIExtraction{{
			Title: "Prime Minister Research Fellowship",
			Description: "Doctoral fellowship for research scholars in science and technology " +
				"with an enhanced monthly stipend and research grant support.",
			ApplicationURL: "https://pmrf.in/apply",
		}},
	}
	extractor := fixedClockExtractor(ai)
	document := newExtractorDocument(t, `<html><body><p>Nothing structured here.</p></body></html>`)

	records := extractor.ExtractFromDocument(context.Background(), document, "pmrf", "https://pmrf.in", nil)

	require.Len(t, records, 1)
	assert.Equal(t, "Prime Minister Research Fellowship", records[0].Title)
	assert.Equal(t, "https://pmrf.in/apply", records[0].ApplicationURL)
}

func TestFindScholarshipElementsClassFallback(t *testing.T) {
	extractor := fixedClockExtractor(nil)
	document := newExtractorDocument(t, `<html><body>
<div class="site-nav">Home</div>
<div class="grant-box"><h2>Rural Education Grant Programme</h2>
<p>Support for rural students continuing secondary education with annual book
allowance and hostel support for eligible applicants.</p></div>
</body></html>`)

	elements := extractor.findScholarshipElements(document, nil)

	require.Len(t, elements, 1)
	class, _ := elements[0].Attr("class")
	assert.Equal(t, "grant-box", class)
}

func TestFindScholarshipElementsHonoursConfiguredContainer(t *testing.T) {
	extractor := fixedClockExtractor(nil)
	document := newExtractorDocument(t, `<html><body>
<div class="custom-row">Scholarship entry one with deadline details</div>
<div class="custom-row">Fellowship entry two with eligibility details</div>
<div class="scholarship-item">Decoy scholarship block</div>
</body></html>`)

	definition := &config.SourceDefinition{
		Selectors: config.SelectorSet{Container: ".custom-row"},
	}

	elements := extractor.findScholarshipElements(document, definition)
	assert.Len(t, elements, 2)
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "https://example.org/apply", resolveURL("https://example.org/list", "/apply"))
	assert.Equal(t, "https://other.org/apply", resolveURL("https://example.org/list", "https://other.org/apply"))
	assert.Equal(t, "", resolveURL("https://example.org/list", "  "))
}

func TestMergeExtractionsNilOverlay(t *testing.T) {
	base := rawExtraction{Title: "Some Scholarship Title"}
	assert.Equal(t, base, mergeExtractions(base, nil))
}
