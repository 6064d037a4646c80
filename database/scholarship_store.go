package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/alwinjaison18/scholarship/models"
)

// ScholarshipStore persists scholarship records. The application URL is the
// natural key; Upsert relies on its unique constraint.
type ScholarshipStore struct {
	db *sql.DB
}

// NewScholarshipStore creates a store bound to the given connection.
func NewScholarshipStore(db *sql.DB) *ScholarshipStore {
	return &ScholarshipStore{db: db}
}

const scholarshipColumns = `
	id, title, description, amount, deadline, eligibility, application_url,
	source, category, level, state, provider, contact_email, contact_phone,
	application_process, benefits, selection_criteria, required_documents,
	tags, quality_score, is_active, is_verified, view_count,
	application_count, validation_status, invalid_since, duplicate_of,
	scraped_at, created_at, updated_at`

// Upsert inserts a scholarship or refreshes the stored row when the
// application URL already exists. Engagement counters and verification flags
// on the stored row are preserved.
func (store *ScholarshipStore) Upsert(ctx context.Context, scholarship *models.Scholarship) error {
	if scholarship.ID == uuid.Nil {
		scholarship.ID = uuid.New()
	}

	query := `
		INSERT INTO scholarships (
			id, title, description, amount, deadline, eligibility,
			application_url, source, category, level, state, provider,
			contact_email, contact_phone, application_process, benefits,
			selection_criteria, required_documents, tags, quality_score,
			is_active, validation_status, scraped_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23
		)
		ON CONFLICT (application_url) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			amount = EXCLUDED.amount,
			deadline = EXCLUDED.deadline,
			eligibility = EXCLUDED.eligibility,
			source = EXCLUDED.source,
			category = EXCLUDED.category,
			level = EXCLUDED.level,
			state = EXCLUDED.state,
			provider = EXCLUDED.provider,
			contact_email = EXCLUDED.contact_email,
			contact_phone = EXCLUDED.contact_phone,
			application_process = EXCLUDED.application_process,
			benefits = EXCLUDED.benefits,
			selection_criteria = EXCLUDED.selection_criteria,
			required_documents = EXCLUDED.required_documents,
			tags = EXCLUDED.tags,
			quality_score = EXCLUDED.quality_score,
			is_active = EXCLUDED.is_active,
			validation_status = EXCLUDED.validation_status,
			scraped_at = EXCLUDED.scraped_at,
			updated_at = NOW()
		RETURNING id`

	err := store.db.QueryRowContext(ctx, query,
		scholarship.ID,
		scholarship.Title,
		scholarship.Description,
		scholarship.Amount,
		scholarship.Deadline,
		pq.Array(scholarship.Eligibility),
		scholarship.ApplicationURL,
		scholarship.Source,
		scholarship.Category,
		scholarship.Level,
		scholarship.State,
		scholarship.Provider,
		scholarship.ContactEmail,
		scholarship.ContactPhone,
		scholarship.ApplicationProcess,
		pq.Array(scholarship.Benefits),
		pq.Array(scholarship.SelectionCriteria),
		pq.Array(scholarship.RequiredDocuments),
		pq.Array(scholarship.Tags),
		scholarship.QualityScore,
		scholarship.IsActive,
		scholarship.ValidationStatus,
		scholarship.ScrapedAt,
	).Scan(&scholarship.ID)
	if err != nil {
		return fmt.Errorf("upserting scholarship %s: %w", scholarship.ApplicationURL, err)
	}
	return nil
}

// FindByURL fetches a scholarship by application URL. Returns (nil, nil)
// when no row matches.
func (store *ScholarshipStore) FindByURL(ctx context.Context, applicationURL string) (*models.Scholarship, error) {
	query := `SELECT ` + scholarshipColumns + ` FROM scholarships WHERE application_url = $1`

	scholarship, err := store.scanOne(store.db.QueryRowContext(ctx, query, applicationURL))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding scholarship by url: %w", err)
	}
	return scholarship, nil
}

// FindSimilarByTitle fetches active scholarships whose lowercased title
// shares a prefix with the given title, for duplicate comparison against
// stored records.
func (store *ScholarshipStore) FindSimilarByTitle(ctx context.Context, title string, limit int) ([]*models.Scholarship, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + scholarshipColumns + `
		FROM scholarships
		WHERE is_active AND LOWER(title) LIKE LOWER($1)
		ORDER BY quality_score DESC
		LIMIT $2`

	prefix := title
	if len(prefix) > 20 {
		prefix = prefix[:20]
	}

	rows, err := store.db.QueryContext(ctx, query, prefix+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("finding similar scholarships: %w", err)
	}
	defer rows.Close()

	var results []*models.Scholarship
	for rows.Next() {
		scholarship, err := store.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning similar scholarship: %w", err)
		}
		results = append(results, scholarship)
	}
	return results, rows.Err()
}

// ListActive fetches active scholarships ordered by quality.
func (store *ScholarshipStore) ListActive(ctx context.Context, limit int) ([]*models.Scholarship, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + scholarshipColumns + `
		FROM scholarships
		WHERE is_active AND duplicate_of IS NULL
		ORDER BY quality_score DESC, created_at DESC
		LIMIT $1`

	rows, err := store.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing active scholarships: %w", err)
	}
	defer rows.Close()

	var results []*models.Scholarship
	for rows.Next() {
		scholarship, err := store.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scholarship: %w", err)
		}
		results = append(results, scholarship)
	}
	return results, rows.Err()
}

// MarkInactive deactivates a scholarship without deleting it.
func (store *ScholarshipStore) MarkInactive(ctx context.Context, id uuid.UUID) error {
	_, err := store.db.ExecContext(ctx,
		`UPDATE scholarships SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("marking scholarship %s inactive: %w", id, err)
	}
	return nil
}

// MarkDuplicateOf links a scholarship to its canonical record and
// deactivates it.
func (store *ScholarshipStore) MarkDuplicateOf(ctx context.Context, id, canonical uuid.UUID) error {
	_, err := store.db.ExecContext(ctx,
		`UPDATE scholarships
		 SET duplicate_of = $2, is_active = FALSE, updated_at = NOW()
		 WHERE id = $1`, id, canonical)
	if err != nil {
		return fmt.Errorf("marking scholarship %s duplicate of %s: %w", id, canonical, err)
	}
	return nil
}

// UpdateValidationStatus records the latest link check outcome. The first
// unusable outcome stamps invalid_since; a usable one clears it, so the
// timestamp marks how long a link has been failing without interruption.
func (store *ScholarshipStore) UpdateValidationStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE scholarships
		SET validation_status = $2, invalid_since = NULL, updated_at = NOW()
		WHERE id = $1`
	if !models.LinkStatus(status).Usable() {
		query = `UPDATE scholarships
			SET validation_status = $2,
			    invalid_since = COALESCE(invalid_since, NOW()),
			    updated_at = NOW()
			WHERE id = $1`
	}

	_, err := store.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("updating validation status for %s: %w", id, err)
	}
	return nil
}

// DeactivateExpired deactivates scholarships whose deadline passed more than
// the grace period ago. Returns the number of rows affected.
func (store *ScholarshipStore) DeactivateExpired(ctx context.Context, grace time.Duration) (int64, error) {
	result, err := store.db.ExecContext(ctx,
		`UPDATE scholarships
		 SET is_active = FALSE, updated_at = NOW()
		 WHERE is_active AND deadline IS NOT NULL AND deadline < $1`,
		time.Now().Add(-grace))
	if err != nil {
		return 0, fmt.Errorf("deactivating expired scholarships: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (store *ScholarshipStore) scanOne(row rowScanner) (*models.Scholarship, error) {
	var scholarship models.Scholarship
	err := row.Scan(
		&scholarship.ID,
		&scholarship.Title,
		&scholarship.Description,
		&scholarship.Amount,
		&scholarship.Deadline,
		pq.Array(&scholarship.Eligibility),
		&scholarship.ApplicationURL,
		&scholarship.Source,
		&scholarship.Category,
		&scholarship.Level,
		&scholarship.State,
		&scholarship.Provider,
		&scholarship.ContactEmail,
		&scholarship.ContactPhone,
		&scholarship.ApplicationProcess,
		pq.Array(&scholarship.Benefits),
		pq.Array(&scholarship.SelectionCriteria),
		pq.Array(&scholarship.RequiredDocuments),
		pq.Array(&scholarship.Tags),
		&scholarship.QualityScore,
		&scholarship.IsActive,
		&scholarship.IsVerified,
		&scholarship.ViewCount,
		&scholarship.ApplicationCount,
		&scholarship.ValidationStatus,
		&scholarship.InvalidSince,
		&scholarship.DuplicateOf,
		&scholarship.ScrapedAt,
		&scholarship.CreatedAt,
		&scholarship.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &scholarship, nil
}
