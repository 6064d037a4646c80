package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"

	"github.com/alwinjaison18/scholarship/config"
	"github.com/alwinjaison18/scholarship/models"
	"github.com/alwinjaison18/scholarship/shared"
)

// PageFetcher retrieves a page's rendered HTML.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL, waitFor string) (string, error)
}

// StaticPageFetcher fetches pages over plain HTTP for server-rendered
// sources.
type StaticPageFetcher struct {
	clientFactory *shared.HTTPClientFactory
	userAgent     string
	timeout       time.Duration
}

// NewStaticPageFetcher creates a static fetcher.
func NewStaticPageFetcher(clientFactory *shared.HTTPClientFactory, userAgent string, timeout time.Duration) *StaticPageFetcher {
	return &StaticPageFetcher{
		clientFactory: clientFactory,
		userAgent:     userAgent,
		timeout:       timeout,
	}
}

// FetchPage fetches a page. The waitFor selector is meaningless without a
// browser and is ignored.
func (fetcher *StaticPageFetcher) FetchPage(ctx context.Context, pageURL, waitFor string) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", shared.NewInputError("invalid_url", fmt.Sprintf("invalid page URL %s: %v", pageURL, err), "scraper", "fetch_page")
	}
	shared.SetCrawlerHeaders(request, fetcher.userAgent)

	response, err := fetcher.clientFactory.CreateClient(fetcher.timeout).Do(request)
	if err != nil {
		return "", shared.NewTransientNetworkError("fetch_failed", fmt.Sprintf("fetching %s", pageURL), "scraper", "fetch_page", err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		return "", shared.NewTransientNetworkError("http_error",
			fmt.Sprintf("fetching %s: HTTP %d", pageURL, response.StatusCode), "scraper", "fetch_page", nil)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, 8<<20))
	if err != nil {
		return "", shared.NewTransientNetworkError("read_failed", fmt.Sprintf("reading %s", pageURL), "scraper", "fetch_page", err)
	}
	return string(body), nil
}

// dynamicWaitBudget bounds how long the fetcher waits for the readiness
// selector before extracting whatever rendered.
const dynamicWaitBudget = 10 * time.Second

// DynamicPageFetcher renders pages in headless Chrome for sources that build
// their listings with JavaScript.
type DynamicPageFetcher struct {
	userAgent string
	timeout   time.Duration
	run       func(ctx context.Context, actions ...chromedp.Action) error
	logger    *logrus.Entry
}

// NewDynamicPageFetcher creates a browser-backed fetcher.
func NewDynamicPageFetcher(userAgent string, timeout time.Duration) *DynamicPageFetcher {
	return &DynamicPageFetcher{
		userAgent: userAgent,
		timeout:   timeout,
		run:       chromedp.Run,
		logger:    logrus.WithField("service", "dynamic_fetcher"),
	}
}

// FetchPage renders a page and returns its HTML. The waitFor selector is
// advisory: when it does not appear within its budget the page is captured
// as rendered so far.
func (fetcher *DynamicPageFetcher) FetchPage(ctx context.Context, pageURL, waitFor string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-images", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(fetcher.userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, fetcher.timeout)
	defer cancelTimeout()

	if waitFor == "" {
		waitFor = "body"
	}

	err := fetcher.run(browserCtx,
		chromedp.EmulateViewport(1920, 1080),
		chromedp.Navigate(pageURL),
	)
	if err != nil {
		return "", shared.NewTransientNetworkError("render_failed", fmt.Sprintf("rendering %s", pageURL), "scraper", "render_page", err)
	}

	waitCtx, cancelWait := context.WithTimeout(browserCtx, dynamicWaitBudget)
	err = fetcher.run(waitCtx, chromedp.WaitVisible(waitFor, chromedp.ByQuery))
	cancelWait()
	if err != nil {
		if browserCtx.Err() != nil {
			return "", shared.NewTransientNetworkError("render_failed", fmt.Sprintf("rendering %s", pageURL), "scraper", "render_page", browserCtx.Err())
		}
		fetcher.logger.WithFields(logrus.Fields{
			"url":      pageURL,
			"wait_for": waitFor,
		}).Warn("Readiness selector did not appear, extracting rendered content")
	}

	var html string
	err = fetcher.run(browserCtx,
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", shared.NewTransientNetworkError("render_failed", fmt.Sprintf("rendering %s", pageURL), "scraper", "render_page", err)
	}
	return html, nil
}

// ScrapeResult reports one source run.
type ScrapeResult struct {
	Records      []*models.CandidateRecord
	PagesScraped int
	PageErrors   []string
}

// ScrapeOrchestrator walks a configured source page by page, extracting
// candidate records within pagination and politeness bounds.
type ScrapeOrchestrator struct {
	staticFetcher  PageFetcher
	dynamicFetcher PageFetcher
	extractor      *ElementExtractor
	clientFactory  *shared.HTTPClientFactory
	config         *config.ScrapeConfig

	mutex        sync.Mutex
	rateLimiters map[string]*shared.RequestRateLimiter
	robotsCache  map[string]*robotstxt.RobotsData

	logger *logrus.Entry
}

// NewScrapeOrchestrator creates an orchestrator.
func NewScrapeOrchestrator(clientFactory *shared.HTTPClientFactory, extractor *ElementExtractor, scrapeConfig *config.ScrapeConfig) *ScrapeOrchestrator {
	if scrapeConfig == nil {
		scrapeConfig = config.DefaultScrapeConfig()
	}
	return &ScrapeOrchestrator{
		staticFetcher:  NewStaticPageFetcher(clientFactory, scrapeConfig.UserAgent, scrapeConfig.Timeout),
		dynamicFetcher: NewDynamicPageFetcher(scrapeConfig.UserAgent, scrapeConfig.Timeout),
		extractor:      extractor,
		clientFactory:  clientFactory,
		config:         scrapeConfig,
		rateLimiters:   make(map[string]*shared.RequestRateLimiter),
		robotsCache:    make(map[string]*robotstxt.RobotsData),
		logger:         logrus.WithField("service", "scrape_orchestrator"),
	}
}

// ScrapeSource runs one source end to end. A failure on the first page is an
// error; later page failures end pagination early with the pages already
// scraped kept.
func (orchestrator *ScrapeOrchestrator) ScrapeSource(ctx context.Context, definition *config.SourceDefinition) (*ScrapeResult, error) {
	if orchestrator.config.RespectRobots {
		allowed, err := orchestrator.robotsAllowed(ctx, definition.URL)
		if err != nil {
			orchestrator.logger.WithField("source", definition.Name).WithError(err).
				Warn("Could not fetch robots.txt, proceeding")
		} else if !allowed {
			return nil, shared.NewInputError("robots_disallowed",
				fmt.Sprintf("robots.txt disallows scraping %s", definition.URL), "scraper", "scrape_source")
		}
	}

	fetcher := orchestrator.staticFetcher
	if definition.Render {
		fetcher = orchestrator.dynamicFetcher
	}

	limiter := orchestrator.limiterFor(definition)
	maxPages := 1
	if definition.Pagination.Enabled {
		maxPages = definition.Pagination.MaxPages
	}

	result := &ScrapeResult{}
	currentURL := definition.URL

	for page := 1; page <= maxPages; page++ {
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}

		html, err := fetcher.FetchPage(ctx, currentURL, definition.WaitFor)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			result.PageErrors = append(result.PageErrors, fmt.Sprintf("page %d: %v", page, err))
			orchestrator.logger.WithFields(logrus.Fields{
				"source": definition.Name,
				"page":   page,
			}).WithError(err).Warn("Page fetch failed, keeping earlier pages")
			break
		}

		document, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			result.PageErrors = append(result.PageErrors, fmt.Sprintf("page %d: parse: %v", page, err))
			break
		}

		records := orchestrator.extractor.ExtractFromDocument(ctx, document, definition.Name, currentURL, definition)
		result.Records = append(result.Records, records...)
		result.PagesScraped++

		if len(result.Records) >= orchestrator.config.MaxPerSource {
			result.Records = result.Records[:orchestrator.config.MaxPerSource]
			break
		}

		if !definition.Pagination.Enabled || page == maxPages {
			break
		}

		nextURL := findNextPageURL(document, definition.Pagination.NextPageSelector, currentURL)
		if nextURL == "" || nextURL == currentURL {
			break
		}
		currentURL = nextURL
	}

	orchestrator.logger.WithFields(logrus.Fields{
		"source":  definition.Name,
		"pages":   result.PagesScraped,
		"records": len(result.Records),
	}).Info("Scraped scholarships from source")

	return result, nil
}

func (orchestrator *ScrapeOrchestrator) limiterFor(definition *config.SourceDefinition) *shared.RequestRateLimiter {
	orchestrator.mutex.Lock()
	defer orchestrator.mutex.Unlock()

	limiter, exists := orchestrator.rateLimiters[definition.Name]
	if !exists {
		limiter = shared.NewRequestRateLimiter(definition.Delay(orchestrator.config.Delay))
		orchestrator.rateLimiters[definition.Name] = limiter
	}
	return limiter
}

// robotsAllowed checks the target's robots.txt, cached per host. A missing
// or unreadable robots.txt does not block scraping.
func (orchestrator *ScrapeOrchestrator) robotsAllowed(ctx context.Context, pageURL string) (bool, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return false, err
	}

	orchestrator.mutex.Lock()
	data, cached := orchestrator.robotsCache[parsed.Host]
	orchestrator.mutex.Unlock()

	if !cached {
		robotsURL := fmt.Sprintf("%s://%s/robots.txt", parsed.Scheme, parsed.Host)
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
		if err != nil {
			return false, err
		}
		shared.SetCrawlerHeaders(request, orchestrator.config.UserAgent)

		response, err := orchestrator.clientFactory.CreateClient(orchestrator.config.Timeout).Do(request)
		if err != nil {
			return false, err
		}
		defer response.Body.Close()

		data, err = robotstxt.FromResponse(response)
		if err != nil {
			return false, err
		}

		orchestrator.mutex.Lock()
		orchestrator.robotsCache[parsed.Host] = data
		orchestrator.mutex.Unlock()
	}

	return data.TestAgent(parsed.Path, orchestrator.config.UserAgent), nil
}

func findNextPageURL(document *goquery.Document, selector, currentURL string) string {
	if selector == "" {
		return ""
	}

	link := document.Find(selector).First()
	if link.Length() == 0 {
		return ""
	}

	href, exists := link.Attr("href")
	if !exists {
		// Pagination controls are sometimes buttons wrapping a link.
		href, exists = link.Find("a").First().Attr("href")
		if !exists {
			return ""
		}
	}

	return resolveURL(currentURL, href)
}
