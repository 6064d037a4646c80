package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alwinjaison18/scholarship/config"
	"github.com/alwinjaison18/scholarship/shared"
)

func scholarshipListingPage(page, totalPages int) string {
	body := "<html><body>"
	for item := 1; item <= 2; item++ {
		body += fmt.Sprintf(`<div class="scholarship-item">
<h2>State Merit Scholarship Number %d on Page %d</h2>
<p class="description">Annual scholarship support for meritorious students covering tuition
and maintenance costs at recognised institutions, page %d entry %d.</p>
<span class="deadline">31 December 2026</span>
</div>`, item, page, page, item)
	}
	if page < totalPages {
		body += fmt.Sprintf(`<a class="next" href="/page/%d">Next</a>`, page+1)
	}
	return body + "</body></html>"
}

func newScrapeTestOrchestrator(maxPerSource int) *ScrapeOrchestrator {
	scrapeConfig := config.DefaultScrapeConfig()
	scrapeConfig.Delay = time.Millisecond
	scrapeConfig.Timeout = 5 * time.Second
	scrapeConfig.RespectRobots = true
	scrapeConfig.MaxPerSource = maxPerSource

	factory := shared.NewHTTPClientFactory(scrapeConfig.Timeout)
	extractor := NewElementExtractorAt(nil, func() time.Time {
		return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	})
	return NewScrapeOrchestrator(factory, extractor, scrapeConfig)
}

func paginatedSourceDefinition(baseURL string, maxPages int) *config.SourceDefinition {
	return &config.SourceDefinition{
		Name:    "test-source",
		URL:     baseURL + "/page/1",
		BaseURL: baseURL,
		Selectors: config.SelectorSet{
			Container:   ".scholarship-item",
			Title:       "h2",
			Description: ".description",
			Deadline:    ".deadline",
		},
		Pagination: config.Pagination{
			Enabled:          true,
			NextPageSelector: "a.next",
			MaxPages:         maxPages,
		},
	}
}

func TestScrapeSourceStopsAtMaxPages(t *testing.T) {
	requestedPages := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprint(writer, "User-agent: *\nAllow: /\n")
	})
	mux.HandleFunc("/page/", func(writer http.ResponseWriter, request *http.Request) {
		requestedPages++
		var page int
		fmt.Sscanf(request.URL.Path, "/page/%d", &page)
		fmt.Fprint(writer, scholarshipListingPage(page, 5))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	orchestrator := newScrapeTestOrchestrator(100)
	result, err := orchestrator.ScrapeSource(context.Background(), paginatedSourceDefinition(server.URL, 3))

	require.NoError(t, err)
	assert.Equal(t, 3, requestedPages)
	assert.Equal(t, 3, result.PagesScraped)
	assert.Len(t, result.Records, 6)
	assert.Empty(t, result.PageErrors)
}

func TestScrapeSourceTruncatesAtMaxPerSource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprint(writer, "User-agent: *\nAllow: /\n")
	})
	mux.HandleFunc("/page/", func(writer http.ResponseWriter, request *http.Request) {
		var page int
		fmt.Sscanf(request.URL.Path, "/page/%d", &page)
		fmt.Fprint(writer, scholarshipListingPage(page, 5))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	orchestrator := newScrapeTestOrchestrator(3)
	result, err := orchestrator.ScrapeSource(context.Background(), paginatedSourceDefinition(server.URL, 5))

	require.NoError(t, err)
	assert.Len(t, result.Records, 3)
	assert.Equal(t, 2, result.PagesScraped)
}

func TestScrapeSourceFirstPageFailureIsFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprint(writer, "User-agent: *\nAllow: /\n")
	})
	mux.HandleFunc("/page/", func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, "upstream down", http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	orchestrator := newScrapeTestOrchestrator(100)
	result, err := orchestrator.ScrapeSource(context.Background(), paginatedSourceDefinition(server.URL, 3))

	require.Error(t, err)
	assert.Nil(t, result)
}

func TestScrapeSourceLaterPageFailureKeepsEarlierPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprint(writer, "User-agent: *\nAllow: /\n")
	})
	mux.HandleFunc("/page/", func(writer http.ResponseWriter, request *http.Request) {
		var page int
		fmt.Sscanf(request.URL.Path, "/page/%d", &page)
		if page >= 2 {
			http.Error(writer, "upstream down", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(writer, scholarshipListingPage(page, 5))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	orchestrator := newScrapeTestOrchestrator(100)
	result, err := orchestrator.ScrapeSource(context.Background(), paginatedSourceDefinition(server.URL, 3))

	require.NoError(t, err)
	assert.Equal(t, 1, result.PagesScraped)
	assert.Len(t, result.Records, 2)
	require.Len(t, result.PageErrors, 1)
	assert.Contains(t, result.PageErrors[0], "page 2")
}

func TestScrapeSourceRespectsRobotsDisallow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprint(writer, "User-agent: *\nDisallow: /\n")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	orchestrator := newScrapeTestOrchestrator(100)
	result, err := orchestrator.ScrapeSource(context.Background(), paginatedSourceDefinition(server.URL, 3))

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "robots.txt disallows")
}

func TestScrapeSourceMissingRobotsProceeds(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/page/", func(writer http.ResponseWriter, request *http.Request) {
		var page int
		fmt.Sscanf(request.URL.Path, "/page/%d", &page)
		fmt.Fprint(writer, scholarshipListingPage(page, 1))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	orchestrator := newScrapeTestOrchestrator(100)
	result, err := orchestrator.ScrapeSource(context.Background(), paginatedSourceDefinition(server.URL, 1))

	require.NoError(t, err)
	assert.Equal(t, 1, result.PagesScraped)
	assert.Len(t, result.Records, 2)
}

func TestFindNextPageURL(t *testing.T) {
	document := newExtractorDocument(t, `<html><body>
<div class="pager"><a class="next" href="/listing?page=2">Next</a></div>
</body></html>`)

	next := findNextPageURL(document, "a.next", "https://example.org/listing?page=1")
	assert.Equal(t, "https://example.org/listing?page=2", next)

	assert.Empty(t, findNextPageURL(document, "", "https://example.org/listing"))
	assert.Empty(t, findNextPageURL(document, ".absent", "https://example.org/listing"))
}

func TestDynamicFetchProceedsWhenReadinessSelectorMissing(t *testing.T) {
	fetcher := NewDynamicPageFetcher("TestAgent", 5*time.Second)

	var calls int
	fetcher.run = func(ctx context.Context, actions ...chromedp.Action) error {
		calls++
		if calls == 2 {
			// The readiness wait timing out must not fail the fetch.
			return context.DeadlineExceeded
		}
		return nil
	}

	_, err := fetcher.FetchPage(context.Background(), "https://example.org/app", ".listing")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDynamicFetchNavigationFailureIsFatal(t *testing.T) {
	fetcher := NewDynamicPageFetcher("TestAgent", 5*time.Second)

	var calls int
	fetcher.run = func(ctx context.Context, actions ...chromedp.Action) error {
		calls++
		return errors.New("net::ERR_CONNECTION_REFUSED")
	}

	_, err := fetcher.FetchPage(context.Background(), "https://example.org/app", "")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestScrapeSourceContextCancelled(t *testing.T) {
	orchestrator := newScrapeTestOrchestrator(100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	definition := paginatedSourceDefinition("http://127.0.0.1:0", 1)
	result, err := orchestrator.ScrapeSource(ctx, definition)

	require.Error(t, err)
	assert.Nil(t, result)
}
