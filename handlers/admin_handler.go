package handlers

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/alwinjaison18/scholarship/config"
	"github.com/alwinjaison18/scholarship/jobs"
	"github.com/alwinjaison18/scholarship/models"
)

// PipelineExecutor runs the ingestion pipeline for one source.
type PipelineExecutor interface {
	Run(ctx context.Context, definition *config.SourceDefinition) (*models.PipelineJob, error)
}

// DiscoveryExecutor runs a source discovery crawl.
type DiscoveryExecutor interface {
	Run(ctx context.Context) (*jobs.DiscoveryReport, error)
}

// RevalidationExecutor re-checks stored application links.
type RevalidationExecutor interface {
	Run(ctx context.Context) (*jobs.RevalidationReport, error)
}

// JobReader reads persisted job state.
type JobReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineJob, error)
	ListRecent(ctx context.Context, limit int) ([]*models.PipelineJob, error)
}

// SourceReader lists discovered sources.
type SourceReader interface {
	ListByMinScore(ctx context.Context, minScore float64, limit int) ([]*models.DiscoveredSource, error)
}

// AdminHandler exposes the scrape, discovery and validation triggers plus
// job inspection. Every route behind it requires the admin token.
type AdminHandler struct {
	pipeline     PipelineExecutor
	discovery    DiscoveryExecutor
	revalidation RevalidationExecutor
	jobReader    JobReader
	sourceReader SourceReader
	sources      []config.SourceDefinition
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(pipeline PipelineExecutor, discovery DiscoveryExecutor, revalidation RevalidationExecutor, jobReader JobReader, sourceReader SourceReader, sources []config.SourceDefinition) *AdminHandler {
	return &AdminHandler{
		pipeline:     pipeline,
		discovery:    discovery,
		revalidation: revalidation,
		jobReader:    jobReader,
		sourceReader: sourceReader,
		sources:      sources,
	}
}

// AdminAuth gates a route group behind a bearer token.
func AdminAuth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get("Authorization")
		if provided == "Bearer "+token && token != "" {
			return c.Next()
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid or missing admin token",
		})
	}
}

type scrapeRequest struct {
	Source string `json:"source"`
}

// TriggerScrape runs the pipeline for one configured source, synchronously,
// and returns the finished job.
func (h *AdminHandler) TriggerScrape(c *fiber.Ctx) error {
	var request scrapeRequest
	if err := c.BodyParser(&request); err != nil || request.Source == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Request body must name a source",
		})
	}

	definition := h.findSource(request.Source)
	if definition == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Unknown source: " + request.Source,
		})
	}
	if !definition.IsEnabled() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Source is disabled: " + request.Source,
		})
	}

	logrus.WithField("source", request.Source).Info("Manual scrape triggered via admin endpoint")
	startTime := time.Now()

	job, err := h.pipeline.Run(c.Context(), definition)
	if err != nil && job == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":  job.Status == models.JobStatusCompleted,
		"data":     job,
		"duration": time.Since(startTime).String(),
	})
}

// GetJob returns one pipeline job by id.
func (h *AdminHandler) GetJob(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid job id",
		})
	}

	job, err := h.jobReader.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Job not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    job,
	})
}

// ListJobs returns the most recent pipeline jobs.
func (h *AdminHandler) ListJobs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 200 {
		limit = 20
	}

	recent, err := h.jobReader.ListRecent(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    recent,
		"count":   len(recent),
	})
}

// TriggerDiscovery runs a discovery crawl from the configured seeds.
func (h *AdminHandler) TriggerDiscovery(c *fiber.Ctx) error {
	logrus.Info("Manual discovery crawl triggered via admin endpoint")
	startTime := time.Now()

	report, err := h.discovery.Run(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"data":     report,
		"duration": time.Since(startTime).String(),
	})
}

// TriggerValidation re-checks stored application links.
func (h *AdminHandler) TriggerValidation(c *fiber.Ctx) error {
	logrus.Info("Manual link revalidation triggered via admin endpoint")
	startTime := time.Now()

	report, err := h.revalidation.Run(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"data":     report,
		"duration": time.Since(startTime).String(),
	})
}

// ListDiscoveredSources returns discovered sources above a relevance floor.
func (h *AdminHandler) ListDiscoveredSources(c *fiber.Ctx) error {
	minScore := c.QueryFloat("min_score", 0.2)
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	discovered, err := h.sourceReader.ListByMinScore(c.Context(), minScore, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    discovered,
		"count":   len(discovered),
	})
}

func (h *AdminHandler) findSource(name string) *config.SourceDefinition {
	for index := range h.sources {
		if h.sources[index].Name == name {
			return &h.sources[index]
		}
	}
	return nil
}
