package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/alwinjaison18/scholarship/models"
)

// revalidationBatchLimit bounds how many stored records one run touches.
const revalidationBatchLimit = 500

// StoredScholarshipSource lists and updates persisted scholarships for
// revalidation sweeps.
type StoredScholarshipSource interface {
	ListActive(ctx context.Context, limit int) ([]*models.Scholarship, error)
	UpdateValidationStatus(ctx context.Context, id uuid.UUID, status string) error
	MarkInactive(ctx context.Context, id uuid.UUID) error
	DeactivateExpired(ctx context.Context, grace time.Duration) (int64, error)
}

// RevalidationReport summarizes one revalidation sweep.
type RevalidationReport struct {
	Checked     int   `json:"checked"`
	StillValid  int   `json:"still_valid"`
	Deactivated int   `json:"deactivated"`
	Expired     int64 `json:"expired"`
}

// RevalidationRunner periodically re-checks the application links of active
// scholarships and retires records whose links stayed broken or whose
// deadlines passed the grace window.
type RevalidationRunner struct {
	validator        LinkValidator
	scholarships     StoredScholarshipSource
	deadlineGrace    time.Duration
	invalidRetention time.Duration
	logger           *logrus.Entry
}

// NewRevalidationRunner creates a runner. invalidRetention is how long a
// link must stay unusable before its record is deactivated.
func NewRevalidationRunner(validator LinkValidator, scholarships StoredScholarshipSource, deadlineGrace, invalidRetention time.Duration) *RevalidationRunner {
	return &RevalidationRunner{
		validator:        validator,
		scholarships:     scholarships,
		deadlineGrace:    deadlineGrace,
		invalidRetention: invalidRetention,
		logger:           logrus.WithField("job", "revalidation"),
	}
}

// Run sweeps active scholarships: every stored link is revalidated and the
// record's validation status refreshed. A record is deactivated only after
// its link has been unusable for the whole retention window, so one portal
// outage does not wipe a host's records. Expired deadlines past the grace
// window are retired in one statement at the end.
func (runner *RevalidationRunner) Run(ctx context.Context) (*RevalidationReport, error) {
	active, err := runner.scholarships.ListActive(ctx, revalidationBatchLimit)
	if err != nil {
		return nil, err
	}

	report := &RevalidationReport{}

	if len(active) > 0 {
		urls := make([]string, len(active))
		for index, scholarship := range active {
			urls[index] = scholarship.ApplicationURL
		}
		validations := runner.validator.ValidateBatch(ctx, urls)

		for index, scholarship := range active {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			validation := validations[index]
			if validation == nil {
				continue
			}
			report.Checked++

			if err := runner.scholarships.UpdateValidationStatus(ctx, scholarship.ID, string(validation.Status)); err != nil {
				runner.logger.WithField("id", scholarship.ID).WithError(err).Warn("Could not update validation status")
			}

			if validation.Usable() {
				report.StillValid++
				continue
			}
			// A fresh failure only stamps invalid_since through the status
			// update above; deactivation waits out the retention window.
			if scholarship.InvalidSince == nil || time.Since(*scholarship.InvalidSince) < runner.invalidRetention {
				continue
			}
			if err := runner.scholarships.MarkInactive(ctx, scholarship.ID); err != nil {
				runner.logger.WithField("id", scholarship.ID).WithError(err).Warn("Could not deactivate scholarship")
				continue
			}
			report.Deactivated++
		}
	}

	expired, err := runner.scholarships.DeactivateExpired(ctx, runner.deadlineGrace)
	if err != nil {
		return report, err
	}
	report.Expired = expired

	runner.logger.WithFields(logrus.Fields{
		"checked":     report.Checked,
		"still_valid": report.StillValid,
		"deactivated": report.Deactivated,
		"expired":     report.Expired,
	}).Info("Revalidation job finished")

	return report, nil
}
