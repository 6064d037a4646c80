package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/alwinjaison18/scholarship/config"
	"github.com/alwinjaison18/scholarship/models"
	"github.com/alwinjaison18/scholarship/shared"
)

// maxContentBytes bounds how much of a response body is read for content
// analysis.
const maxContentBytes = 1 << 20

var trustedDomains = map[string]struct{}{
	"scholarships.gov.in":   {},
	"nsp.gov.in":            {},
	"ugc.ac.in":             {},
	"aicte-india.org":       {},
	"dst.gov.in":            {},
	"csir.res.in":           {},
	"icmr.gov.in":           {},
	"dbt.gov.in":            {},
	"icar.org.in":           {},
	"indianrailways.gov.in": {},
	"pfms.nic.in":           {},
	"aiims.edu":             {},
	"iisc.ac.in":            {},
	"bits-pilani.ac.in":     {},
	"gov.in":                {},
	"nic.in":                {},
}

var suspiciousURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bit\.ly`),
	regexp.MustCompile(`(?i)tinyurl\.com`),
	regexp.MustCompile(`(?i)goo\.gl`),
	regexp.MustCompile(`(?i)t\.co/`),
	regexp.MustCompile(`(?i)shorturl\.at`),
	regexp.MustCompile(`(?i)click.?here`),
	regexp.MustCompile(`(?i)free.?money`),
	regexp.MustCompile(`(?i)guaranteed.?scholarship`),
	regexp.MustCompile(`(?i)instant.?approval`),
}

var scholarshipContentKeywords = []string{
	"scholarship", "fellowship", "grant", "financial aid", "education",
	"student", "application", "eligibility", "criteria", "deadline",
}

var applicationProcessKeywords = []string{
	"apply", "application form", "submit", "documents", "requirements",
	"how to apply", "selection process", "merit", "interview",
}

var spamContentKeywords = []string{
	"click here", "act now", "limited time", "guaranteed", "instant",
	"free money", "no fee", "easy money", "work from home",
}

// LinkValidationService checks outbound application URLs before records
// carrying them reach storage. Every failure mode maps to a status on the
// result; ValidateURL never returns an error.
type LinkValidationService struct {
	clientFactory *shared.HTTPClientFactory
	config        *config.ValidationConfig
	userAgent     string
	logger        *logrus.Entry
}

// NewLinkValidationService creates a validation service.
func NewLinkValidationService(clientFactory *shared.HTTPClientFactory, validationConfig *config.ValidationConfig, userAgent string) *LinkValidationService {
	if validationConfig == nil {
		validationConfig = config.DefaultValidationConfig()
	}
	return &LinkValidationService{
		clientFactory: clientFactory,
		config:        validationConfig,
		userAgent:     userAgent,
		logger:        logrus.WithField("service", "link_validation"),
	}
}

// ValidateURL validates a single URL end to end: format, suspicious
// patterns, reachability, redirect tracking and content analysis.
func (service *LinkValidationService) ValidateURL(ctx context.Context, rawURL string) *models.ValidationResult {
	startedAt := time.Now()

	result := &models.ValidationResult{
		URL:         rawURL,
		FinalURL:    rawURL,
		Metadata:    map[string]string{},
		ValidatedAt: startedAt,
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		result.Status = models.LinkStatusInvalid
		result.Issues = append(result.Issues, "Invalid URL format")
		return result
	}

	for _, pattern := range suspiciousURLPatterns {
		if pattern.MatchString(rawURL) {
			result.Issues = append(result.Issues, fmt.Sprintf("Suspicious pattern detected: %s", pattern.String()))
		}
	}
	if len(result.Issues) > 0 {
		result.Status = models.LinkStatusSuspicious
		result.QualityScore = 0
		return result
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		result.Status = models.LinkStatusInvalid
		result.Issues = append(result.Issues, fmt.Sprintf("Request build error: %v", err))
		return result
	}
	shared.SetCrawlerHeaders(request, service.userAgent)

	client := service.clientFactory.CreateClient(service.config.Timeout)
	response, err := client.Do(request)
	result.ResponseTime = time.Since(startedAt)
	if err != nil {
		if ctx.Err() != nil || strings.Contains(err.Error(), "Client.Timeout") {
			result.Status = models.LinkStatusSlow
			result.Issues = append(result.Issues, "Request timeout")
		} else {
			result.Status = models.LinkStatusBroken
			result.Issues = append(result.Issues, fmt.Sprintf("Connection error: %v", err))
		}
		return result
	}
	defer response.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(response.Body, maxContentBytes))
	if readErr != nil {
		service.logger.WithField("url", rawURL).WithError(readErr).Debug("Error reading response body")
	}
	content := string(body)

	result.ResponseCode = response.StatusCode
	result.ContentType = response.Header.Get("Content-Type")
	if response.Request != nil && response.Request.URL != nil {
		result.FinalURL = response.Request.URL.String()
	}
	result.Metadata["server"] = response.Header.Get("Server")
	result.Metadata["last_modified"] = response.Header.Get("Last-Modified")
	result.Metadata["cache_control"] = response.Header.Get("Cache-Control")

	if strings.Contains(result.ContentType, "text/html") {
		result.PageTitle = extractPageTitle(content)
	}

	result.Status = service.determineStatus(response.StatusCode, result.ResponseTime, result.FinalURL != rawURL, content)
	result.QualityScore = service.calculateQualityScore(rawURL, result.FinalURL, content, result.ContentType, response.StatusCode, result.ResponseTime)

	if response.StatusCode >= 400 {
		result.Issues = append(result.Issues, fmt.Sprintf("HTTP error: %d", response.StatusCode))
	}
	if result.ResponseTime > service.config.SlowThreshold {
		result.Issues = append(result.Issues, "Slow response time")
	}
	if result.FinalURL != rawURL {
		result.Issues = append(result.Issues, "URL redirected")
	}
	result.Issues = append(result.Issues, contentQualityIssues(content)...)

	return result
}

// ValidateBatch validates URLs in bounded-concurrency batches with a
// mandatory pause between batches.
func (service *LinkValidationService) ValidateBatch(ctx context.Context, urls []string) []*models.ValidationResult {
	results := make([]*models.ValidationResult, len(urls))

	for offset := 0; offset < len(urls); offset += service.config.BatchSize {
		end := offset + service.config.BatchSize
		if end > len(urls) {
			end = len(urls)
		}

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(service.config.MaxConcurrent)

		for index := offset; index < end; index++ {
			index := index
			group.Go(func() error {
				results[index] = service.ValidateURL(groupCtx, urls[index])
				return nil
			})
		}
		// Workers never return errors; Wait only orders the batch.
		_ = group.Wait()

		if end < len(urls) {
			select {
			case <-time.After(service.config.BatchDelay):
			case <-ctx.Done():
				for index := end; index < len(urls); index++ {
					results[index] = &models.ValidationResult{
						URL:         urls[index],
						FinalURL:    urls[index],
						Status:      models.LinkStatusInvalid,
						Issues:      []string{"Validation cancelled"},
						ValidatedAt: time.Now(),
					}
				}
				return results
			}
		}
	}

	return results
}

func (service *LinkValidationService) determineStatus(statusCode int, responseTime time.Duration, redirected bool, content string) models.LinkStatus {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return models.LinkStatusBlocked
	}
	if statusCode >= 400 {
		return models.LinkStatusBroken
	}
	if responseTime > service.config.SlowThreshold {
		return models.LinkStatusSlow
	}
	if isSuspiciousContent(content) {
		return models.LinkStatusSuspicious
	}
	if redirected {
		return models.LinkStatusRedirect
	}
	return models.LinkStatusValid
}

// calculateQualityScore multiplies independent trust, availability, speed
// and content factors into a [0, 100] score. A broken link always scores 0.
func (service *LinkValidationService) calculateQualityScore(originalURL, finalURL, content, contentType string, statusCode int, responseTime time.Duration) float64 {
	score := 100.0

	score *= domainTrustScore(finalURL) / 100.0

	if statusCode >= 400 {
		score = 0
	} else if statusCode >= 300 {
		score *= 0.8
	}

	if responseTime > service.config.SlowThreshold {
		score *= 0.5
	} else if responseTime > service.config.SlowThreshold/2 {
		score *= 0.8
	}

	score *= contentQualityScore(content) / 100.0

	if strings.Contains(contentType, "text/html") {
		score *= 1.1
	} else if strings.Contains(contentType, "application/pdf") {
		score *= 1.05
	}

	if originalURL != finalURL {
		score *= 0.9
	}

	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// DomainTrustScore exposes the domain trust tier for discovery scoring.
func DomainTrustScore(rawURL string) float64 {
	return domainTrustScore(rawURL)
}

func domainTrustScore(rawURL string) float64 {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return 30.0
	}
	domain := strings.ToLower(parsed.Hostname())

	if _, exact := trustedDomains[domain]; exact {
		return 100.0
	}
	for trusted := range trustedDomains {
		if strings.HasSuffix(domain, "."+trusted) {
			return 95.0
		}
	}
	if strings.HasSuffix(domain, ".gov.in") || strings.HasSuffix(domain, ".gov") {
		return 90.0
	}
	if strings.HasSuffix(domain, ".edu") || strings.HasSuffix(domain, ".ac.in") {
		return 85.0
	}
	if strings.HasSuffix(domain, ".org") {
		return 75.0
	}
	if strings.HasSuffix(domain, ".com") || strings.HasSuffix(domain, ".in") {
		return 60.0
	}
	return 40.0
}

func contentQualityScore(content string) float64 {
	if content == "" {
		return 0.0
	}

	lower := strings.ToLower(content)
	score := 50.0

	keywordCount := 0
	for _, keyword := range scholarshipContentKeywords {
		if strings.Contains(lower, keyword) {
			keywordCount++
		}
	}
	score += minFloat(30.0, float64(keywordCount)*3.0)

	processCount := 0
	for _, keyword := range applicationProcessKeywords {
		if strings.Contains(lower, keyword) {
			processCount++
		}
	}
	score += minFloat(20.0, float64(processCount)*2.0)

	spamCount := 0
	for _, keyword := range spamContentKeywords {
		if strings.Contains(lower, keyword) {
			spamCount++
		}
	}
	score -= minFloat(40.0, float64(spamCount)*10.0)

	if len(content) > 1000 {
		score += 10.0
	} else if len(content) > 500 {
		score += 5.0
	}

	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

func contentQualityIssues(content string) []string {
	var issues []string

	if content == "" {
		return []string{"Empty content"}
	}
	if len(content) < 100 {
		issues = append(issues, "Very short content")
	}

	lower := strings.ToLower(content)
	for _, pattern := range []string{
		"click here to download",
		"guaranteed scholarship",
		"no application fee",
		"instant approval",
		"limited time offer",
	} {
		if strings.Contains(lower, pattern) {
			issues = append(issues, fmt.Sprintf("Suspicious content: %s", pattern))
		}
	}

	if !strings.Contains(lower, "eligibility") {
		issues = append(issues, "Missing eligibility criteria")
	}
	if !strings.Contains(lower, "deadline") && !strings.Contains(lower, "last date") {
		issues = append(issues, "Missing deadline information")
	}

	return issues
}

func isSuspiciousContent(content string) bool {
	if content == "" {
		return true
	}

	lower := strings.ToLower(content)
	promotionalCount := 0
	for _, word := range []string{"guaranteed", "instant", "free money", "no fee", "easy money"} {
		if strings.Contains(lower, word) {
			promotionalCount++
		}
	}
	if promotionalCount > 3 {
		return true
	}

	return len(content) < 200
}

func extractPageTitle(htmlContent string) string {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(document.Find("title").First().Text())
}

// ValidationSummary aggregates a batch of results for job reporting.
type ValidationSummary struct {
	TotalURLs           int                       `json:"total_urls"`
	StatusDistribution  map[models.LinkStatus]int `json:"status_distribution"`
	AverageResponseTime time.Duration             `json:"average_response_time"`
	AverageQualityScore float64                   `json:"average_quality_score"`
}

// Summarize folds a batch of results into a ValidationSummary.
func Summarize(results []*models.ValidationResult) ValidationSummary {
	summary := ValidationSummary{
		StatusDistribution: make(map[models.LinkStatus]int),
	}
	if len(results) == 0 {
		return summary
	}

	var totalTime time.Duration
	var totalScore float64
	for _, result := range results {
		summary.StatusDistribution[result.Status]++
		totalTime += result.ResponseTime
		totalScore += result.QualityScore
	}

	summary.TotalURLs = len(results)
	summary.AverageResponseTime = totalTime / time.Duration(len(results))
	summary.AverageQualityScore = totalScore / float64(len(results))
	return summary
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
