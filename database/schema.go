package database

const schema = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS scholarships (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    amount DOUBLE PRECISION,
    deadline TIMESTAMPTZ,
    eligibility TEXT[] NOT NULL DEFAULT '{}',
    application_url TEXT NOT NULL UNIQUE,
    source TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT 'general',
    level TEXT NOT NULL DEFAULT 'all-levels',
    state TEXT NOT NULL DEFAULT 'All India',
    provider TEXT NOT NULL DEFAULT '',
    contact_email TEXT,
    contact_phone TEXT,
    application_process TEXT NOT NULL DEFAULT '',
    benefits TEXT[] NOT NULL DEFAULT '{}',
    selection_criteria TEXT[] NOT NULL DEFAULT '{}',
    required_documents TEXT[] NOT NULL DEFAULT '{}',
    tags TEXT[] NOT NULL DEFAULT '{}',
    quality_score INTEGER NOT NULL DEFAULT 0,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    is_verified BOOLEAN NOT NULL DEFAULT FALSE,
    view_count BIGINT NOT NULL DEFAULT 0,
    application_count BIGINT NOT NULL DEFAULT 0,
    validation_status TEXT NOT NULL DEFAULT 'pending',
    invalid_since TIMESTAMPTZ,
    duplicate_of UUID REFERENCES scholarships(id),
    scraped_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_scholarships_source ON scholarships (source);
CREATE INDEX IF NOT EXISTS idx_scholarships_deadline ON scholarships (deadline);
CREATE INDEX IF NOT EXISTS idx_scholarships_active ON scholarships (is_active) WHERE is_active;
CREATE INDEX IF NOT EXISTS idx_scholarships_title_lower ON scholarships (LOWER(title));

CREATE TABLE IF NOT EXISTS pipeline_jobs (
    id UUID PRIMARY KEY,
    source_name TEXT NOT NULL,
    source_url TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    items_scraped INTEGER NOT NULL DEFAULT 0,
    items_validated INTEGER NOT NULL DEFAULT 0,
    items_saved INTEGER NOT NULL DEFAULT 0,
    items_rejected INTEGER NOT NULL DEFAULT 0,
    retry_count INTEGER NOT NULL DEFAULT 0,
    max_retries INTEGER NOT NULL DEFAULT 3,
    errors TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    started_at TIMESTAMPTZ,
    completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_pipeline_jobs_status ON pipeline_jobs (status);
CREATE INDEX IF NOT EXISTS idx_pipeline_jobs_created ON pipeline_jobs (created_at DESC);

CREATE TABLE IF NOT EXISTS discovered_sources (
    url TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    content_preview TEXT NOT NULL DEFAULT '',
    relevance_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    page_type TEXT NOT NULL DEFAULT 'unknown',
    estimated_item_count INTEGER NOT NULL DEFAULT 0,
    domain TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'discovered',
    discovered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_discovered_sources_score ON discovered_sources (relevance_score DESC);
CREATE INDEX IF NOT EXISTS idx_discovered_sources_status ON discovered_sources (status);
`
