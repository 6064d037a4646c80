package services

import (
	"context"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"

	"github.com/alwinjaison18/scholarship/config"
	"github.com/alwinjaison18/scholarship/models"
)

var highRelevanceKeywords = []string{
	"scholarship", "fellowship", "bursary", "grant", "award",
	"financial aid", "educational support", "student aid",
	"merit scholarship", "need based", "विद्यार्थी वृत्ति",
	"छात्रवृत्ति", "scholarship scheme", "fellowship program",
}

var mediumRelevanceKeywords = []string{
	"education", "student", "academic", "university", "college",
	"study", "learning", "tuition", "fee waiver", "admission",
	"eligibility", "application", "deadline", "form",
}

var contextRelevanceKeywords = []string{
	"apply now", "last date", "eligible", "benefits", "amount",
	"criteria", "documents required", "selection process",
	"how to apply", "application process",
}

var discoveryTrustedDomains = []string{
	"scholarships.gov.in", "buddy4study.com", "aicte-india.org",
	"ugc.ac.in", "nta.ac.in", "csab.nic.in", "nic.in",
	"education.gov.in", "dst.gov.in", "meity.gov.in",
	"minorityaffairs.gov.in", "tribal.nic.in", "socialjustice.nic.in",
}

var scholarshipURLPattern = regexp.MustCompile(
	`(?i)scholarship|fellowship|grant|financial.?aid|student.?aid|bursary|award|scheme|yojana|chhatravritti`)

var moneyMentionPattern = regexp.MustCompile(`(?i)₹\s*\d+|rs\.?\s*\d+|\d+\s*lakhs?|\d+\s*crores?`)

var itemCountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)scholarship-item`),
	regexp.MustCompile(`(?i)scholarship-card`),
	regexp.MustCompile(`(?i)scholarship-row`),
	regexp.MustCompile(`(?i)scheme-item`),
	regexp.MustCompile(`(?i)fellowship-item`),
}

// DiscoveryCrawler walks outward from seed URLs breadth first, scoring each
// page for scholarship relevance and recording pages worth scraping later.
type DiscoveryCrawler struct {
	config    *config.DiscoveryConfig
	userAgent string
	logger    *logrus.Entry
}

// NewDiscoveryCrawler creates a crawler.
func NewDiscoveryCrawler(discoveryConfig *config.DiscoveryConfig, userAgent string) *DiscoveryCrawler {
	if discoveryConfig == nil {
		discoveryConfig = config.DefaultDiscoveryConfig()
	}
	return &DiscoveryCrawler{
		config:    discoveryConfig,
		userAgent: userAgent,
		logger:    logrus.WithField("service", "discovery_crawler"),
	}
}

// Discover crawls from the seed URLs and returns relevant sources, best
// first. Pages scoring below the relevance floor are dropped.
func (crawler *DiscoveryCrawler) Discover(ctx context.Context, seedURLs []string) ([]*models.DiscoveredSource, error) {
	var (
		mutex       sync.Mutex
		discovered  []*models.DiscoveredSource
		domainPages = make(map[string]int)
		totalPages  int
	)

	maxTotalPages := crawler.config.MaxTotalPages
	if maxTotalPages <= 0 {
		maxTotalPages = config.DefaultDiscoveryConfig().MaxTotalPages
	}

	collector := colly.NewCollector(
		colly.MaxDepth(crawler.config.MaxDepth+1),
		colly.UserAgent(crawler.userAgent),
		colly.Async(true),
	)

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       crawler.config.RequestDelay,
		Parallelism: 2,
	}); err != nil {
		return nil, err
	}

	collector.OnRequest(func(request *colly.Request) {
		if ctx.Err() != nil {
			request.Abort()
			return
		}

		mutex.Lock()
		if totalPages >= maxTotalPages ||
			domainPages[request.URL.Host] >= crawler.config.MaxPagesPerDomain {
			mutex.Unlock()
			request.Abort()
			return
		}
		totalPages++
		domainPages[request.URL.Host]++
		mutex.Unlock()
	})

	collector.OnHTML("html", func(element *colly.HTMLElement) {
		pageURL := element.Request.URL.String()
		title := strings.TrimSpace(element.DOM.Find("title").First().Text())
		text := element.DOM.Text()
		html, _ := element.DOM.Html()

		score := calculateRelevanceScore(title, text, html, pageURL)
		if score < crawler.config.MinRelevance {
			return
		}

		preview := text
		if len(preview) > 300 {
			preview = preview[:300]
		}

		source := &models.DiscoveredSource{
			URL:                pageURL,
			Title:              title,
			ContentPreview:     strings.TrimSpace(preview),
			RelevanceScore:     score,
			PageType:           determinePageType(html, text),
			EstimatedItemCount: estimateItemCount(html, text),
			Domain:             element.Request.URL.Host,
			Status:             models.SourceStatusDiscovered,
			DiscoveredAt:       time.Now(),
		}

		mutex.Lock()
		discovered = append(discovered, source)
		mutex.Unlock()
	})

	collector.OnHTML("a[href]", func(element *colly.HTMLElement) {
		link := element.Request.AbsoluteURL(element.Attr("href"))
		if link == "" {
			return
		}
		if !crawler.shouldFollow(link, element.Text, element.Request.URL.Host) {
			return
		}
		// Visit errors mean depth, revisit or filter rules stopped the
		// link, which is expected during a bounded crawl.
		_ = element.Request.Visit(link)
	})

	collector.OnError(func(response *colly.Response, err error) {
		crawler.logger.WithFields(logrus.Fields{
			"url": response.Request.URL.String(),
		}).WithError(err).Debug("Discovery request failed")
	})

	for _, seed := range seedURLs {
		if err := collector.Visit(seed); err != nil {
			crawler.logger.WithField("seed", seed).WithError(err).Warn("Could not visit seed URL")
		}
	}

	collector.Wait()

	sort.SliceStable(discovered, func(i, j int) bool {
		return discovered[i].RelevanceScore > discovered[j].RelevanceScore
	})

	crawler.logger.WithFields(logrus.Fields{
		"seeds":      len(seedURLs),
		"discovered": len(discovered),
	}).Info("Discovery crawl completed")

	return discovered, ctx.Err()
}

// HighPrioritySources filters a discovery result down to sources that
// should be scraped without waiting for review.
func (crawler *DiscoveryCrawler) HighPrioritySources(sources []*models.DiscoveredSource) []*models.DiscoveredSource {
	var prioritized []*models.DiscoveredSource
	for _, source := range sources {
		if source.HighPriority(crawler.config.HighPriority) {
			prioritized = append(prioritized, source)
		}
	}
	return prioritized
}

// shouldFollow gates BFS expansion. Same-domain links follow on a
// scholarship-shaped URL or matching anchor text; leaving the current domain
// additionally requires the URL itself to look scholarship related.
func (crawler *DiscoveryCrawler) shouldFollow(link, anchorText, fromHost string) bool {
	parsed, err := url.Parse(link)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return false
	}

	if !strings.EqualFold(parsed.Host, fromHost) {
		return scholarshipURLPattern.MatchString(link)
	}

	if scholarshipURLPattern.MatchString(link) {
		return true
	}

	anchor := strings.ToLower(anchorText)
	for _, keyword := range highRelevanceKeywords {
		if strings.Contains(anchor, keyword) {
			return true
		}
	}
	return false
}

// calculateRelevanceScore scores a page in [0, 1] from keyword placement,
// domain trust, URL shape, application forms and money mentions.
func calculateRelevanceScore(title, text, html, pageURL string) float64 {
	score := 0.0
	titleLower := strings.ToLower(title)
	textLower := strings.ToLower(text)
	urlLower := strings.ToLower(pageURL)

	for _, keyword := range highRelevanceKeywords {
		if strings.Contains(titleLower, keyword) {
			score += 0.3
		}
		if strings.Contains(urlLower, keyword) {
			score += 0.2
		}
		score += float64(strings.Count(textLower, keyword)) * 0.05
	}

	for _, keyword := range mediumRelevanceKeywords {
		if strings.Contains(titleLower, keyword) {
			score += 0.1
		}
		score += float64(strings.Count(textLower, keyword)) * 0.02
	}

	for _, keyword := range contextRelevanceKeywords {
		score += float64(strings.Count(textLower, keyword)) * 0.03
	}

	if parsed, err := url.Parse(pageURL); err == nil {
		domain := strings.ToLower(parsed.Host)
		for _, trusted := range discoveryTrustedDomains {
			if strings.Contains(domain, trusted) {
				score += 0.4
				break
			}
		}
	}

	if scholarshipURLPattern.MatchString(urlLower) {
		score += 0.2
	}

	if strings.Contains(html, "<form") &&
		(strings.Contains(textLower, "apply") || strings.Contains(textLower, "application")) {
		score += 0.3
	}

	if moneyMentionPattern.MatchString(textLower) {
		score += 0.1
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}

func determinePageType(html, text string) models.PageType {
	htmlLower := strings.ToLower(html)
	textLower := strings.ToLower(text)

	for _, indicator := range []string{
		"scholarship list", "available scholarships", "browse scholarships",
		"search scholarships", "scholarship-list", "scholarship-grid", "pagination",
	} {
		if strings.Contains(htmlLower, indicator) {
			return models.PageTypeList
		}
	}

	for _, indicator := range []string{
		"application form", "apply now", "eligibility criteria",
		"how to apply", "required documents", "selection process",
		"application deadline",
	} {
		if strings.Contains(textLower, indicator) {
			return models.PageTypeDetail
		}
	}

	for _, indicator := range []string{
		"scholarship types", "browse by", "merit based", "need based",
	} {
		if strings.Contains(textLower, indicator) {
			return models.PageTypeCategory
		}
	}

	return models.PageTypeUnknown
}

func estimateItemCount(html, text string) int {
	maxCount := 0
	for _, pattern := range itemCountPatterns {
		if count := len(pattern.FindAllString(html, -1)); count > maxCount {
			maxCount = count
		}
	}

	if maxCount == 0 {
		mentions := strings.Count(strings.ToLower(text), "scholarship")
		maxCount = mentions / 2
		if maxCount > 50 {
			maxCount = 50
		}
	}
	return maxCount
}
