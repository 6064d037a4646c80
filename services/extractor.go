package services

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/alwinjaison18/scholarship/config"
	"github.com/alwinjaison18/scholarship/models"
	"github.com/alwinjaison18/scholarship/parsers"
)

// Gate thresholds for cleaned records. Shorter titles and descriptions are
// noise from navigation chrome, not listings.
const (
	minTitleLength       = 10
	minDescriptionLength = 20
	maxElementsPerPage   = 50
)

// fallbackContainerSelectors are tried when a source defines no container
// selector or its selector matches nothing.
var fallbackContainerSelectors = []string{
	".scholarship-item", ".scholarship-card", ".scheme-item",
	".scholarship-entry", ".scheme-entry", ".result-item",
	".card", ".item", ".entry", ".listing",
}

// elementValidationKeywords gate fallback containers: an element with none
// of these is navigation or boilerplate.
var elementValidationKeywords = []string{
	"scholarship", "fellowship", "grant", "award", "stipend",
	"financial aid", "education", "student", "apply", "deadline",
	"eligibility", "amount", "prize", "benefit",
}

var fallbackClassPattern = regexp.MustCompile(`(?i)scholarship|scheme|grant|award|fellowship`)

// rawExtraction holds field text as found on the page, before parsing and
// cleaning.
type rawExtraction struct {
	Title              string
	Description        string
	Amount             string
	Deadline           string
	Eligibility        []string
	ApplicationURL     string
	Provider           string
	ApplicationProcess string
	Benefits           []string
	RequiredDocuments  []string
}

// ElementExtractor turns page HTML into candidate records. Selector-based
// extraction runs first, AI extraction enriches it when available, and a
// keyword fallback covers pages where the configured selectors match
// nothing.
type ElementExtractor struct {
	amountParser *parsers.AmountParser
	dateParser   *parsers.DateParser
	scorer       *QualityScorer
	ai           AIExtractor
	now          func() time.Time
	logger       *logrus.Entry
}

// NewElementExtractor creates an extractor. The AI extractor may be nil.
func NewElementExtractor(ai AIExtractor) *ElementExtractor {
	return &ElementExtractor{
		amountParser: parsers.NewAmountParser(),
		dateParser:   parsers.NewDateParser(),
		scorer:       NewQualityScorer(),
		ai:           ai,
		now:          time.Now,
		logger:       logrus.WithField("service", "element_extractor"),
	}
}

// NewElementExtractorAt creates an extractor with a fixed reference clock.
func NewElementExtractorAt(ai AIExtractor, clock func() time.Time) *ElementExtractor {
	extractor := NewElementExtractor(ai)
	extractor.dateParser = parsers.NewDateParserAt(clock)
	extractor.scorer = NewQualityScorerAt(clock)
	extractor.now = clock
	return extractor
}

// ExtractFromDocument extracts all candidate records from one page.
func (extractor *ElementExtractor) ExtractFromDocument(ctx context.Context, document *goquery.Document, sourceName, pageURL string, definition *config.SourceDefinition) []*models.CandidateRecord {
	elements := extractor.findScholarshipElements(document, definition)

	aiExtractions := extractor.runAIExtraction(ctx, document)

	var records []*models.CandidateRecord
	for _, element := range elements {
		raw := extractor.extractFromElement(element, definition)
		raw = mergeExtractions(raw, matchAIExtraction(raw, aiExtractions))

		if record, ok := extractor.buildCandidate(raw, sourceName, pageURL); ok {
			records = append(records, record)
		}
	}

	// AI-only listings that matched no selector element still count.
	if len(records) == 0 {
		for _, extraction := range aiExtractions {
			raw := rawFromAIExtraction(extraction)
			if record, ok := extractor.buildCandidate(raw, sourceName, pageURL); ok {
				records = append(records, record)
			}
		}
	}

	extractor.logger.WithFields(logrus.Fields{
		"source":   sourceName,
		"elements": len(elements),
		"records":  len(records),
	}).Debug("Extracted candidate records from page")

	return records
}

// findScholarshipElements locates the page elements that each hold one
// listing, validated by keyword so generic card selectors do not sweep in
// navigation blocks.
func (extractor *ElementExtractor) findScholarshipElements(document *goquery.Document, definition *config.SourceDefinition) []*goquery.Selection {
	selectors := fallbackContainerSelectors
	if definition != nil && definition.Selectors.Container != "" {
		selectors = append(splitSelectors(definition.Selectors.Container), fallbackContainerSelectors...)
	}

	for _, selector := range selectors {
		found := document.Find(selector)
		if found.Length() == 0 {
			continue
		}

		var validated []*goquery.Selection
		found.Each(func(_ int, selection *goquery.Selection) {
			if len(validated) >= maxElementsPerPage {
				return
			}
			text := strings.ToLower(selection.Text())
			for _, keyword := range elementValidationKeywords {
				if strings.Contains(text, keyword) {
					validated = append(validated, selection)
					return
				}
			}
		})
		if len(validated) > 0 {
			return validated
		}
	}

	// Last resort: any element whose class names mention scholarships.
	var fallback []*goquery.Selection
	document.Find("div, section, article, li").Each(func(_ int, selection *goquery.Selection) {
		if len(fallback) >= maxElementsPerPage {
			return
		}
		class, _ := selection.Attr("class")
		if fallbackClassPattern.MatchString(class) && len(strings.TrimSpace(selection.Text())) > 100 {
			fallback = append(fallback, selection)
		}
	})
	if len(fallback) > 0 {
		return fallback
	}

	// Detail pages have no repeated containers; treat the page as one
	// listing.
	return []*goquery.Selection{document.Selection}
}

func (extractor *ElementExtractor) extractFromElement(element *goquery.Selection, definition *config.SourceDefinition) rawExtraction {
	var selectors config.SelectorSet
	if definition != nil {
		selectors = definition.Selectors
	}

	raw := rawExtraction{
		Title:       selectText(element, selectors.Title, "h1, h2, h3, .title"),
		Description: selectText(element, selectors.Description, ".description, .content, p"),
		Amount:      selectText(element, selectors.Amount, ".amount, .prize, .benefit"),
		Deadline:    selectText(element, selectors.Deadline, ".deadline, .last-date, .closing-date"),
	}

	eligibilitySelector := selectors.Eligibility
	if eligibilitySelector == "" {
		eligibilitySelector = ".eligibility, .criteria"
	}
	element.Find(eligibilitySelector).Each(func(_ int, selection *goquery.Selection) {
		if text := strings.TrimSpace(selection.Text()); text != "" {
			raw.Eligibility = append(raw.Eligibility, text)
		}
	})

	urlSelector := selectors.ApplicationURL
	if urlSelector == "" {
		urlSelector = `a[href*="apply"], .apply-link`
	}
	if link := element.Find(urlSelector).First(); link.Length() > 0 {
		raw.ApplicationURL, _ = link.Attr("href")
	}

	if selectors.Documents != "" {
		element.Find(selectors.Documents).Each(func(_ int, selection *goquery.Selection) {
			if text := strings.TrimSpace(selection.Text()); text != "" {
				raw.RequiredDocuments = append(raw.RequiredDocuments, text)
			}
		})
	}

	return raw
}

func (extractor *ElementExtractor) runAIExtraction(ctx context.Context, document *goquery.Document) []AIExtraction {
	if extractor.ai == nil {
		return nil
	}

	extractions, err := extractor.ai.ExtractScholarships(ctx, document.Text())
	if err != nil {
		// AI extraction is best effort; selector results stand alone.
		extractor.logger.WithError(err).Warn("AI extraction failed, continuing with selector extraction")
		return nil
	}
	return extractions
}

// buildCandidate cleans, parses and gates one raw extraction. Records with
// short titles, thin descriptions or already-passed deadlines are dropped.
func (extractor *ElementExtractor) buildCandidate(raw rawExtraction, sourceName, pageURL string) (*models.CandidateRecord, bool) {
	title := parsers.CleanText(raw.Title)
	if len(title) < minTitleLength {
		return nil, false
	}

	description := parsers.CleanText(raw.Description)
	if len(description) < minDescriptionLength {
		return nil, false
	}

	var amount *float64
	if value, ok := extractor.amountParser.ParseAmount(raw.Amount); ok {
		amount = &value
	} else if value, ok := extractor.amountParser.ParseAmount(description); ok {
		amount = &value
	}

	var deadline *time.Time
	if parsed, ok := extractor.dateParser.ParseDate(raw.Deadline); ok {
		deadline = &parsed
	} else if parsed, ok := extractor.dateParser.ExtractDeadline(description); ok {
		deadline = &parsed
	}
	if deadline != nil {
		if deadline.Before(extractor.now()) {
			return nil, false
		}
		// Dates past the plausibility horizon are parse noise, not real
		// closing dates.
		if !extractor.dateParser.IsValidDeadline(*deadline) {
			deadline = nil
		}
	}

	eligibility := make([]string, 0, len(raw.Eligibility))
	for _, entry := range raw.Eligibility {
		if cleaned := parsers.CleanText(entry); cleaned != "" {
			eligibility = append(eligibility, cleaned)
		}
	}

	applicationURL := resolveURL(pageURL, raw.ApplicationURL)
	if applicationURL != "" && !isAbsoluteWebURL(applicationURL) {
		// javascript: and other pseudo-links extract as garbage; treat
		// them as no link at all.
		applicationURL = ""
	}

	record := &models.CandidateRecord{
		Title:              title,
		Description:        description,
		Amount:             amount,
		Deadline:           deadline,
		Eligibility:        eligibility,
		ApplicationURL:     applicationURL,
		Source:             sourceName,
		Category:           parsers.DetermineCategory(title, description),
		Level:              parsers.DetermineEducationLevel(title, description, eligibility),
		State:              parsers.DetermineState(title, description, eligibility),
		Provider:           parsers.CleanText(raw.Provider),
		ApplicationProcess: parsers.CleanText(raw.ApplicationProcess),
		Benefits:           cleanList(raw.Benefits),
		RequiredDocuments:  cleanList(raw.RequiredDocuments),
		Tags:               parsers.GenerateTags(title, description, eligibility),
		ScrapedAt:          extractor.now(),
	}

	if emails := parsers.ExtractEmailAddresses(description); len(emails) > 0 {
		record.ContactEmail = &emails[0]
	}
	if phones := parsers.ExtractPhoneNumbers(description); len(phones) > 0 {
		record.ContactPhone = &phones[0]
	}

	record.QualityScore = extractor.scorer.Score(record)
	return record, true
}

// mergeExtractions overlays AI results on selector results. For scalar
// fields the longer value wins; for lists the longer list wins.
func mergeExtractions(base rawExtraction, overlay *rawExtraction) rawExtraction {
	if overlay == nil {
		return base
	}

	merged := base
	merged.Title = longerString(base.Title, overlay.Title)
	merged.Description = longerString(base.Description, overlay.Description)
	merged.Amount = longerString(base.Amount, overlay.Amount)
	merged.Deadline = longerString(base.Deadline, overlay.Deadline)
	merged.ApplicationURL = longerString(base.ApplicationURL, overlay.ApplicationURL)
	merged.Provider = longerString(base.Provider, overlay.Provider)
	merged.ApplicationProcess = longerString(base.ApplicationProcess, overlay.ApplicationProcess)
	merged.Eligibility = longerList(base.Eligibility, overlay.Eligibility)
	merged.Benefits = longerList(base.Benefits, overlay.Benefits)
	merged.RequiredDocuments = longerList(base.RequiredDocuments, overlay.RequiredDocuments)
	return merged
}

// matchAIExtraction finds the AI listing describing the same scholarship as
// a selector extraction, by title similarity.
func matchAIExtraction(raw rawExtraction, extractions []AIExtraction) *rawExtraction {
	if raw.Title == "" {
		return nil
	}

	for _, extraction := range extractions {
		if extraction.Title == "" {
			continue
		}
		if textSimilarity(raw.Title, extraction.Title) > 0.8 {
			matched := rawFromAIExtraction(extraction)
			return &matched
		}
	}
	return nil
}

func rawFromAIExtraction(extraction AIExtraction) rawExtraction {
	return rawExtraction{
		Title:              extraction.Title,
		Description:        extraction.Description,
		Amount:             extraction.Amount,
		Deadline:           extraction.Deadline,
		Eligibility:        extraction.Eligibility,
		ApplicationURL:     extraction.ApplicationURL,
		Provider:           extraction.Provider,
		ApplicationProcess: extraction.ApplicationProcess,
		Benefits:           extraction.Benefits,
		RequiredDocuments:  extraction.RequiredDocuments,
	}
}

func selectText(element *goquery.Selection, selector, fallback string) string {
	if selector == "" {
		selector = fallback
	}
	return strings.TrimSpace(element.Find(selector).First().Text())
}

func splitSelectors(commaSeparated string) []string {
	parts := strings.Split(commaSeparated, ",")
	selectors := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			selectors = append(selectors, trimmed)
		}
	}
	return selectors
}

// isAbsoluteWebURL reports whether a resolved link is a fetchable http(s)
// URL.
func isAbsoluteWebURL(link string) bool {
	parsed, err := url.Parse(link)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func resolveURL(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	resolved, err := base.Parse(href)
	if err != nil {
		return href
	}
	return resolved.String()
}

func cleanList(entries []string) []string {
	var cleaned []string
	for _, entry := range entries {
		if text := parsers.CleanText(entry); text != "" {
			cleaned = append(cleaned, text)
		}
	}
	return cleaned
}

func longerString(first, second string) string {
	if len(second) > len(first) {
		return second
	}
	return first
}

func longerList(first, second []string) []string {
	if len(second) > len(first) {
		return second
	}
	return first
}
