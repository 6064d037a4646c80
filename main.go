package main

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"

	"github.com/alwinjaison18/scholarship/config"
	"github.com/alwinjaison18/scholarship/database"
	"github.com/alwinjaison18/scholarship/handlers"
	"github.com/alwinjaison18/scholarship/jobs"
	"github.com/alwinjaison18/scholarship/services"
	"github.com/alwinjaison18/scholarship/shared"
)

func main() {
	cfg := config.LoadConfig()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := database.Connect(cfg.DatabaseURL); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logrus.Warnf("Migration warning: %v", err)
	}

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		logrus.Fatalf("Failed to load sources from %s: %v", cfg.SourcesFile, err)
	}
	logrus.Infof("Loaded %d source definitions from %s", len(sources), cfg.SourcesFile)

	scrapeConfig := config.DefaultScrapeConfig()
	scrapeConfig.Timeout = cfg.GetScrapeTimeout()
	scrapeConfig.Delay = cfg.GetScrapeDelay()
	scrapeConfig.MaxRetries = cfg.GetScrapeRetries()
	scrapeConfig.UserAgent = cfg.UserAgent

	validationConfig := config.DefaultValidationConfig()
	discoveryConfig := config.DefaultDiscoveryConfig()

	clientFactory := shared.NewHTTPClientFactory(scrapeConfig.Timeout)
	defer clientFactory.CleanupAllClients()

	// AI extraction is optional; without an API key the pipeline runs on
	// selectors alone.
	aiExtractor, err := services.NewGeminiExtractor(context.Background(), cfg.GeminiAPIKey)
	if err != nil {
		logrus.Warnf("Gemini extractor unavailable: %v", err)
	}
	var ai services.AIExtractor
	if aiExtractor != nil {
		ai = aiExtractor
		defer aiExtractor.Close()
		logrus.Info("Gemini extraction enabled")
	}

	extractor := services.NewElementExtractor(ai)
	orchestrator := services.NewScrapeOrchestrator(clientFactory, extractor, scrapeConfig)
	validator := services.NewLinkValidationService(clientFactory, validationConfig, scrapeConfig.UserAgent)
	crawler := services.NewDiscoveryCrawler(discoveryConfig, scrapeConfig.UserAgent)

	scholarshipStore := database.NewScholarshipStore(database.DB)
	jobStore := database.NewJobStore(database.DB)
	sourceStore := database.NewSourceStore(database.DB)

	pipelineRunner := jobs.NewPipelineRunner(orchestrator, validator, scholarshipStore, jobStore,
		int(validationConfig.MinQualityScore))
	discoveryRunner := jobs.NewDiscoveryRunner(crawler, sourceStore,
		splitSeeds(cfg.DiscoverySeeds), discoveryConfig.HighPriority)
	revalidationRunner := jobs.NewRevalidationRunner(validator, scholarshipStore,
		48*time.Hour, 30*24*time.Hour)

	adminHandler := handlers.NewAdminHandler(pipelineRunner, discoveryRunner, revalidationRunner,
		jobStore, sourceStore, sources)
	scholarshipHandler := handlers.NewScholarshipHandler(scholarshipStore)

	go runScheduledJobs(cfg, sources, pipelineRunner, discoveryRunner, revalidationRunner)

	app := fiber.New()
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	api := app.Group("/api/v1")
	api.Get("/scholarships", scholarshipHandler.GetActiveScholarships)

	admin := api.Group("/admin", handlers.AdminAuth(cfg.AdminToken))
	admin.Post("/scrape", adminHandler.TriggerScrape)
	admin.Get("/jobs", adminHandler.ListJobs)
	admin.Get("/jobs/:id", adminHandler.GetJob)
	admin.Post("/discover", adminHandler.TriggerDiscovery)
	admin.Post("/validate", adminHandler.TriggerValidation)
	admin.Get("/sources", adminHandler.ListDiscoveredSources)

	logrus.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Server failed to start: %v", err)
	}
}

// runScheduledJobs drives the recurring pipeline. Sources are scraped daily,
// discovery runs weekly and stored links are revalidated on the configured
// interval.
func runScheduledJobs(cfg *config.Config, sources []config.SourceDefinition, pipeline *jobs.PipelineRunner, discovery *jobs.DiscoveryRunner, revalidation *jobs.RevalidationRunner) {
	runAllSources := func() {
		for index := range sources {
			definition := &sources[index]
			if !definition.IsEnabled() {
				continue
			}
			if _, err := pipeline.Run(context.Background(), definition); err != nil {
				logrus.WithField("source", definition.Name).WithError(err).Error("Scheduled scrape failed")
			}
		}
	}

	// Give the database and server a moment before the first full run.
	time.Sleep(5 * time.Second)
	runAllSources()

	scrapeTicker := time.NewTicker(24 * time.Hour)
	discoveryTicker := time.NewTicker(7 * 24 * time.Hour)
	revalidationTicker := time.NewTicker(cfg.GetRevalidationInterval())

	for {
		select {
		case <-scrapeTicker.C:
			runAllSources()
		case <-discoveryTicker.C:
			if _, err := discovery.Run(context.Background()); err != nil {
				logrus.WithError(err).Error("Scheduled discovery failed")
			}
		case <-revalidationTicker.C:
			if _, err := revalidation.Run(context.Background()); err != nil {
				logrus.WithError(err).Error("Scheduled revalidation failed")
			}
		}
	}
}

func splitSeeds(commaSeparated string) []string {
	var seeds []string
	for _, seed := range strings.Split(commaSeparated, ",") {
		if trimmed := strings.TrimSpace(seed); trimmed != "" {
			seeds = append(seeds, trimmed)
		}
	}
	return seeds
}
