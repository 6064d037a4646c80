package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alwinjaison18/scholarship/models"
)

// SourceStore persists sources found by the discovery crawler.
type SourceStore struct {
	db *sql.DB
}

// NewSourceStore creates a store bound to the given connection.
func NewSourceStore(db *sql.DB) *SourceStore {
	return &SourceStore{db: db}
}

// Upsert records a discovered source, keeping the higher relevance score
// when the URL was seen before.
func (store *SourceStore) Upsert(ctx context.Context, source *models.DiscoveredSource) error {
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO discovered_sources (
			url, title, content_preview, relevance_score, page_type,
			estimated_item_count, domain, status, discovered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			content_preview = EXCLUDED.content_preview,
			relevance_score = GREATEST(discovered_sources.relevance_score, EXCLUDED.relevance_score),
			page_type = EXCLUDED.page_type,
			estimated_item_count = EXCLUDED.estimated_item_count`,
		source.URL,
		source.Title,
		source.ContentPreview,
		source.RelevanceScore,
		source.PageType,
		source.EstimatedItemCount,
		source.Domain,
		source.Status,
		source.DiscoveredAt)
	if err != nil {
		return fmt.Errorf("upserting discovered source %s: %w", source.URL, err)
	}
	return nil
}

// ListByMinScore fetches discovered sources at or above the given relevance
// score, best first.
func (store *SourceStore) ListByMinScore(ctx context.Context, minScore float64, limit int) ([]*models.DiscoveredSource, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := store.db.QueryContext(ctx,
		`SELECT url, title, content_preview, relevance_score, page_type,
			estimated_item_count, domain, status, discovered_at
		 FROM discovered_sources
		 WHERE relevance_score >= $1
		 ORDER BY relevance_score DESC
		 LIMIT $2`, minScore, limit)
	if err != nil {
		return nil, fmt.Errorf("listing discovered sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.DiscoveredSource
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning discovered source: %w", err)
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

// UpdateStatus moves a source through its lifecycle.
func (store *SourceStore) UpdateStatus(ctx context.Context, url string, status models.SourceStatus) error {
	result, err := store.db.ExecContext(ctx,
		`UPDATE discovered_sources SET status = $2 WHERE url = $1`, url, status)
	if err != nil {
		return fmt.Errorf("updating source status for %s: %w", url, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanSource(row rowScanner) (*models.DiscoveredSource, error) {
	var source models.DiscoveredSource
	err := row.Scan(
		&source.URL,
		&source.Title,
		&source.ContentPreview,
		&source.RelevanceScore,
		&source.PageType,
		&source.EstimatedItemCount,
		&source.Domain,
		&source.Status,
		&source.DiscoveredAt,
	)
	if err != nil {
		return nil, err
	}
	return &source, nil
}
