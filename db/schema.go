package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS articles (
		article_id         UUID PRIMARY KEY,
		url                TEXT NOT NULL UNIQUE,
		title              TEXT NOT NULL DEFAULT '',
		summary            TEXT NOT NULL DEFAULT '',
		content            TEXT NOT NULL DEFAULT '',
		site_categories    TEXT[] NOT NULL DEFAULT '{}',
		tags               TEXT[] NOT NULL DEFAULT '{}',
		search_keyword     TEXT[] NOT NULL DEFAULT '{}',
		publish_date       TIMESTAMPTZ,
		crawled_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		website            TEXT NOT NULL DEFAULT '',
		user_id            TEXT NOT NULL DEFAULT '',
		status             TEXT NOT NULL DEFAULT 'raw',
		search_id          TEXT[] NOT NULL DEFAULT '{}',
		ai_summary         TEXT[] NOT NULL DEFAULT '{}',
		ai_sentiment_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		ai_sentiment_label TEXT NOT NULL DEFAULT '',
		last_enriched_at   TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_status ON articles (status, crawled_at)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_search_id ON articles USING GIN (search_id)`,

	`CREATE TABLE IF NOT EXISTS search_sessions (
		search_id              TEXT PRIMARY KEY,
		user_id                TEXT NOT NULL,
		keyword_search         TEXT NOT NULL,
		keyword_content        TEXT NOT NULL DEFAULT '',
		max_articles_requested INT NOT NULL DEFAULT 0,
		total_saved            INT NOT NULL DEFAULT 0,
		status                 TEXT NOT NULL DEFAULT 'processing',
		time_range             TEXT NOT NULL DEFAULT '',
		created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
		data_cleared           BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON search_sessions (user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS topics (
		url             TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		website         TEXT NOT NULL,
		is_active       BOOLEAN NOT NULL DEFAULT TRUE,
		last_crawled_at TIMESTAMPTZ
	)`,
}

// Migrate applies the schema idempotently at startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
