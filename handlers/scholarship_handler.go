package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/alwinjaison18/scholarship/models"
)

// ScholarshipReader lists persisted scholarships.
type ScholarshipReader interface {
	ListActive(ctx context.Context, limit int) ([]*models.Scholarship, error)
}

// ScholarshipHandler serves the public read side: active scholarships that
// passed validation.
type ScholarshipHandler struct {
	reader ScholarshipReader
}

// NewScholarshipHandler creates a scholarship handler.
func NewScholarshipHandler(reader ScholarshipReader) *ScholarshipHandler {
	return &ScholarshipHandler{reader: reader}
}

// GetActiveScholarships returns active scholarships, newest first.
func (h *ScholarshipHandler) GetActiveScholarships(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	scholarships, err := h.reader.ListActive(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    scholarships,
		"count":   len(scholarships),
	})
}
