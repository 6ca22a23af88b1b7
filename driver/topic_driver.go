package driver

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TopicDriver runs the topic SQL against Postgres.
type TopicDriver struct {
	pool *pgxpool.Pool
}

func NewTopicDriver(pool *pgxpool.Pool) *TopicDriver {
	return &TopicDriver{pool: pool}
}

// UpsertTopics registers topics, preserving the crawl watermark and
// active flag of known ones.
func (d *TopicDriver) UpsertTopics(ctx context.Context, records []*TopicRecord) error {
	for _, rec := range records {
		_, err := d.pool.Exec(ctx, `
			INSERT INTO topics (url, name, website, is_active, last_crawled_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (url) DO UPDATE SET name = EXCLUDED.name
		`, rec.URL, rec.Name, rec.Website, rec.IsActive, rec.LastCrawledAt)
		if err != nil {
			return &DriverError{Op: "UpsertTopics", Err: err.Error()}
		}
	}
	return nil
}

func (d *TopicDriver) ListActiveTopics(ctx context.Context) ([]*TopicRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT url, name, website, is_active, last_crawled_at
		FROM topics
		WHERE is_active = TRUE
		ORDER BY url
	`)
	if err != nil {
		return nil, &DriverError{Op: "ListActiveTopics", Err: err.Error()}
	}
	defer rows.Close()

	var records []*TopicRecord
	for rows.Next() {
		var rec TopicRecord
		if err := rows.Scan(&rec.URL, &rec.Name, &rec.Website, &rec.IsActive, &rec.LastCrawledAt); err != nil {
			return nil, &DriverError{Op: "ListActiveTopics", Err: err.Error()}
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &DriverError{Op: "ListActiveTopics", Err: err.Error()}
	}
	return records, nil
}

func (d *TopicDriver) UpdateLastCrawledAt(ctx context.Context, url string, at time.Time) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE topics SET last_crawled_at = $2 WHERE url = $1`, url, at)
	if err != nil {
		return &DriverError{Op: "UpdateLastCrawledAt", Err: err.Error()}
	}
	return nil
}
