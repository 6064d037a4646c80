package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alwinjaison18/scholarship/models"
)

type fakeCrawler struct {
	sources []*models.DiscoveredSource
	err     error
	seeds   []string
}

func (crawler *fakeCrawler) Discover(ctx context.Context, seedURLs []string) ([]*models.DiscoveredSource, error) {
	crawler.seeds = seedURLs
	return crawler.sources, crawler.err
}

type fakeSourceRepo struct {
	upserted []*models.DiscoveredSource
	failURL  string
}

func (repo *fakeSourceRepo) Upsert(ctx context.Context, source *models.DiscoveredSource) error {
	if source.URL == repo.failURL {
		return errors.New("constraint violation")
	}
	repo.upserted = append(repo.upserted, source)
	return nil
}

func discoveredSource(url string, score float64) *models.DiscoveredSource {
	return &models.DiscoveredSource{
		URL:            url,
		RelevanceScore: score,
		Status:         models.SourceStatusDiscovered,
		DiscoveredAt:   time.Now(),
	}
}

func TestDiscoveryRunPersistsAndCounts(t *testing.T) {
	crawler := &fakeCrawler{sources: []*models.DiscoveredSource{
		discoveredSource("https://a.example.org/scholarships", 0.9),
		discoveredSource("https://b.example.org/schemes", 0.4),
		discoveredSource("https://c.example.org/grants", 0.7),
	}}
	repo := &fakeSourceRepo{}
	seeds := []string{"https://seed.example.org"}
	runner := NewDiscoveryRunner(crawler, repo, seeds, 0.6)

	report, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, seeds, crawler.seeds)
	assert.Equal(t, 3, report.Discovered)
	assert.Equal(t, 3, report.Persisted)
	assert.Equal(t, 2, report.HighPriority)
	assert.Len(t, repo.upserted, 3)
}

func TestDiscoveryRunSkipsFailedUpserts(t *testing.T) {
	crawler := &fakeCrawler{sources: []*models.DiscoveredSource{
		discoveredSource("https://a.example.org/scholarships", 0.9),
		discoveredSource("https://broken.example.org", 0.5),
	}}
	repo := &fakeSourceRepo{failURL: "https://broken.example.org"}
	runner := NewDiscoveryRunner(crawler, repo, nil, 0.6)

	report, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Discovered)
	assert.Equal(t, 1, report.Persisted)
}

func TestDiscoveryRunCrawlFailure(t *testing.T) {
	crawler := &fakeCrawler{err: errors.New("network unreachable")}
	runner := NewDiscoveryRunner(crawler, &fakeSourceRepo{}, nil, 0.6)

	report, err := runner.Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, report)
}
