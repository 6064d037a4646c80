package jobs

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/alwinjaison18/scholarship/models"
)

// SourceCrawler finds candidate scholarship pages from seed URLs.
type SourceCrawler interface {
	Discover(ctx context.Context, seedURLs []string) ([]*models.DiscoveredSource, error)
}

// SourceRepository persists discovered sources.
type SourceRepository interface {
	Upsert(ctx context.Context, source *models.DiscoveredSource) error
}

// DiscoveryReport summarizes one discovery run.
type DiscoveryReport struct {
	Discovered   int `json:"discovered"`
	Persisted    int `json:"persisted"`
	HighPriority int `json:"high_priority"`
}

// DiscoveryRunner crawls outward from configured seeds and records every
// page relevant enough to scrape later.
type DiscoveryRunner struct {
	crawler              SourceCrawler
	sources              SourceRepository
	seedURLs             []string
	highPriorityMinScore float64
	logger               *logrus.Entry
}

// NewDiscoveryRunner creates a runner.
func NewDiscoveryRunner(crawler SourceCrawler, sources SourceRepository, seedURLs []string, highPriorityMinScore float64) *DiscoveryRunner {
	return &DiscoveryRunner{
		crawler:              crawler,
		sources:              sources,
		seedURLs:             seedURLs,
		highPriorityMinScore: highPriorityMinScore,
		logger:               logrus.WithField("job", "discovery"),
	}
}

// Run crawls the seeds and upserts every discovered source. A source that
// fails to persist is logged and skipped; the run continues.
func (runner *DiscoveryRunner) Run(ctx context.Context) (*DiscoveryReport, error) {
	discovered, err := runner.crawler.Discover(ctx, runner.seedURLs)
	if err != nil {
		return nil, err
	}

	report := &DiscoveryReport{Discovered: len(discovered)}
	for _, source := range discovered {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if err := runner.sources.Upsert(ctx, source); err != nil {
			runner.logger.WithField("url", source.URL).WithError(err).Warn("Could not persist discovered source")
			continue
		}
		report.Persisted++
		if source.HighPriority(runner.highPriorityMinScore) {
			report.HighPriority++
		}
	}

	runner.logger.WithFields(logrus.Fields{
		"discovered":    report.Discovered,
		"persisted":     report.Persisted,
		"high_priority": report.HighPriority,
	}).Info("Discovery job finished")

	return report, nil
}
