package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/alwinjaison18/scholarship/config"
	"github.com/alwinjaison18/scholarship/models"
	"github.com/alwinjaison18/scholarship/services"
)

// maxRecordedErrors bounds the per-job error audit trail so one broken page
// cannot flood the job row.
const maxRecordedErrors = 25

const defaultMaxRetries = 3

// ScholarshipRepository is the slice of scholarship storage the pipeline
// needs.
type ScholarshipRepository interface {
	Upsert(ctx context.Context, scholarship *models.Scholarship) error
	FindByURL(ctx context.Context, applicationURL string) (*models.Scholarship, error)
	FindSimilarByTitle(ctx context.Context, title string, limit int) ([]*models.Scholarship, error)
	MarkDuplicateOf(ctx context.Context, id, canonical uuid.UUID) error
}

// JobRepository persists pipeline job state transitions.
type JobRepository interface {
	Create(ctx context.Context, job *models.PipelineJob) error
	Save(ctx context.Context, job *models.PipelineJob) error
}

// SourceScraper runs one configured source end to end.
type SourceScraper interface {
	ScrapeSource(ctx context.Context, definition *config.SourceDefinition) (*services.ScrapeResult, error)
}

// LinkValidator checks application URLs in bulk.
type LinkValidator interface {
	ValidateBatch(ctx context.Context, urls []string) []*models.ValidationResult
}

// PipelineRunner executes the full ingestion pipeline for one source:
// scrape, deduplicate within the batch, validate links, check against
// stored records and persist the survivors. Job state is saved at every
// transition so a crash leaves an inspectable row.
type PipelineRunner struct {
	scraper         SourceScraper
	validator       LinkValidator
	detector        *services.DuplicationDetector
	scholarships    ScholarshipRepository
	jobStore        JobRepository
	minQualityScore int
	logger          *logrus.Entry
}

// NewPipelineRunner creates a runner.
func NewPipelineRunner(scraper SourceScraper, validator LinkValidator, scholarships ScholarshipRepository, jobStore JobRepository, minQualityScore int) *PipelineRunner {
	return &PipelineRunner{
		scraper:         scraper,
		validator:       validator,
		detector:        services.NewDuplicationDetector(),
		scholarships:    scholarships,
		jobStore:        jobStore,
		minQualityScore: minQualityScore,
		logger:          logrus.WithField("job", "pipeline"),
	}
}

// Run executes the pipeline for one source. The returned job carries the
// final counters and status even when the run failed part way.
func (runner *PipelineRunner) Run(ctx context.Context, definition *config.SourceDefinition) (*models.PipelineJob, error) {
	job := &models.PipelineJob{
		ID:         uuid.New(),
		SourceName: definition.Name,
		SourceURL:  definition.URL,
		Status:     models.JobStatusPending,
		MaxRetries: defaultMaxRetries,
		CreatedAt:  time.Now(),
	}
	if err := runner.jobStore.Create(ctx, job); err != nil {
		return nil, err
	}

	startedAt := time.Now()
	job.Status = models.JobStatusRunning
	job.StartedAt = &startedAt
	runner.save(ctx, job)

	result, err := runner.scraper.ScrapeSource(ctx, definition)
	if err != nil {
		return runner.fail(ctx, job, fmt.Sprintf("scrape failed: %v", err)), err
	}
	for _, pageError := range result.PageErrors {
		runner.recordError(job, pageError)
	}
	job.ItemsScraped = len(result.Records)

	survivors := runner.detector.Deduplicate(result.Records, services.KeepBest)
	job.ItemsRejected += len(result.Records) - len(survivors)

	runner.persistBatch(ctx, job, survivors)

	if ctx.Err() != nil {
		job.Status = models.JobStatusCancelled
	} else {
		job.Status = models.JobStatusCompleted
	}
	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if !job.CountersReconcile() {
		runner.logger.WithFields(logrus.Fields{
			"job_id":   job.ID,
			"scraped":  job.ItemsScraped,
			"saved":    job.ItemsSaved,
			"rejected": job.ItemsRejected,
		}).Error("Job counters do not reconcile")
	}

	runner.save(ctx, job)
	runner.logger.WithFields(logrus.Fields{
		"job_id":   job.ID,
		"source":   job.SourceName,
		"scraped":  job.ItemsScraped,
		"saved":    job.ItemsSaved,
		"rejected": job.ItemsRejected,
	}).Info("Pipeline job finished")

	return job, nil
}

// persistBatch validates each surviving record and writes the ones that
// clear the quality and duplicate gates.
func (runner *PipelineRunner) persistBatch(ctx context.Context, job *models.PipelineJob, records []*models.CandidateRecord) {
	if len(records) == 0 {
		return
	}

	urls := make([]string, len(records))
	for index, record := range records {
		urls[index] = record.ApplicationURL
	}
	validations := runner.validator.ValidateBatch(ctx, urls)

	for index, record := range records {
		if ctx.Err() != nil {
			return
		}

		validation := validations[index]
		if validation == nil || !validation.Usable() {
			job.ItemsRejected++
			runner.recordError(job, fmt.Sprintf("rejected %q: link %s", record.Title, validationStatus(validation)))
			continue
		}
		job.ItemsValidated++

		if record.QualityScore < runner.minQualityScore {
			job.ItemsRejected++
			runner.recordError(job, fmt.Sprintf("rejected %q: quality score %d below %d",
				record.Title, record.QualityScore, runner.minQualityScore))
			continue
		}

		canonical, err := runner.findStoredDuplicate(ctx, record)
		if err != nil {
			job.ItemsRejected++
			runner.recordError(job, fmt.Sprintf("duplicate check for %q: %v", record.Title, err))
			continue
		}

		scholarship := scholarshipFromCandidate(record, validation)
		if canonical != nil {
			// Keep the row for audit, inactive and pointing at the
			// canonical record.
			scholarship.IsActive = false
		}
		if err := runner.scholarships.Upsert(ctx, scholarship); err != nil {
			job.ItemsRejected++
			runner.recordError(job, fmt.Sprintf("saving %q: %v", record.Title, err))
			continue
		}

		if canonical != nil {
			if err := runner.scholarships.MarkDuplicateOf(ctx, scholarship.ID, canonical.ID); err != nil {
				runner.recordError(job, fmt.Sprintf("marking %q duplicate: %v", record.Title, err))
			}
			job.ItemsRejected++
			continue
		}
		job.ItemsSaved++
	}
}

// findStoredDuplicate returns the stored scholarship the record duplicates
// under a different URL, or nil. Same-URL records are not duplicates; the
// upsert refreshes them in place.
func (runner *PipelineRunner) findStoredDuplicate(ctx context.Context, record *models.CandidateRecord) (*models.Scholarship, error) {
	existing, err := runner.scholarships.FindByURL(ctx, record.ApplicationURL)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	similar, err := runner.scholarships.FindSimilarByTitle(ctx, record.Title, 10)
	if err != nil {
		return nil, err
	}
	for _, candidate := range similar {
		if runner.detector.AreDuplicates(record, candidate.ToCandidate()) {
			return candidate, nil
		}
	}
	return nil, nil
}

func (runner *PipelineRunner) fail(ctx context.Context, job *models.PipelineJob, message string) *models.PipelineJob {
	runner.recordError(job, message)
	job.Status = models.JobStatusFailed
	completedAt := time.Now()
	job.CompletedAt = &completedAt
	runner.save(ctx, job)
	return job
}

func (runner *PipelineRunner) recordError(job *models.PipelineJob, message string) {
	if len(job.Errors) >= maxRecordedErrors {
		return
	}
	job.RecordError(message)
}

// save persists job state without letting a storage hiccup abort the run.
func (runner *PipelineRunner) save(ctx context.Context, job *models.PipelineJob) {
	if err := runner.jobStore.Save(ctx, job); err != nil {
		runner.logger.WithField("job_id", job.ID).WithError(err).Error("Could not save job state")
	}
}

func validationStatus(validation *models.ValidationResult) string {
	if validation == nil {
		return "unchecked"
	}
	return string(validation.Status)
}

// scholarshipFromCandidate builds the durable record for a candidate that
// passed every gate.
func scholarshipFromCandidate(record *models.CandidateRecord, validation *models.ValidationResult) *models.Scholarship {
	now := time.Now()
	return &models.Scholarship{
		ID:                 uuid.New(),
		Title:              record.Title,
		Description:        record.Description,
		Amount:             record.Amount,
		Deadline:           record.Deadline,
		Eligibility:        record.Eligibility,
		ApplicationURL:     record.ApplicationURL,
		Source:             record.Source,
		Category:           record.Category,
		Level:              record.Level,
		State:              record.State,
		Provider:           record.Provider,
		ContactEmail:       record.ContactEmail,
		ContactPhone:       record.ContactPhone,
		ApplicationProcess: record.ApplicationProcess,
		Benefits:           record.Benefits,
		SelectionCriteria:  record.SelectionCriteria,
		RequiredDocuments:  record.RequiredDocuments,
		Tags:               record.Tags,
		QualityScore:       record.QualityScore,
		IsActive:           true,
		ValidationStatus:   string(validation.Status),
		ScrapedAt:          record.ScrapedAt,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
