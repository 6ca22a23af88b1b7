package driver

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DatabaseDriver runs the article SQL against Postgres.
type DatabaseDriver struct {
	pool *pgxpool.Pool
}

func NewDatabaseDriver(pool *pgxpool.Pool) *DatabaseDriver {
	return &DatabaseDriver{pool: pool}
}

// Close closes the database connection pool
func (d *DatabaseDriver) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

const articleColumns = `article_id, url, title, summary, content, site_categories,
	tags, search_keyword, publish_date, crawled_at, website, user_id, status,
	search_id, ai_summary, ai_sentiment_score, ai_sentiment_label, last_enriched_at`

// prefixColumns qualifies the shared column list with a table alias.
func prefixColumns(alias string) string {
	cols := strings.Split(articleColumns, ",")
	for i, c := range cols {
		cols[i] = alias + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func scanArticle(row pgx.Row) (*ArticleRecord, error) {
	var rec ArticleRecord
	err := row.Scan(
		&rec.ArticleID, &rec.URL, &rec.Title, &rec.Summary, &rec.Content,
		&rec.SiteCategories, &rec.Tags, &rec.SearchKeyword, &rec.PublishDate,
		&rec.CrawledAt, &rec.Website, &rec.UserID, &rec.Status, &rec.SearchIDs,
		&rec.AISummary, &rec.AISentimentScore, &rec.AISentimentLabel,
		&rec.LastEnrichedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpsertArticles writes records keyed by article_id. On conflict the
// claim and keyword sets are merged; enrichment columns and status are
// left alone so a re-crawl never downgrades an enriched article.
func (d *DatabaseDriver) UpsertArticles(ctx context.Context, records []*ArticleRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (article_id) DO UPDATE SET
			crawled_at     = EXCLUDED.crawled_at,
			search_id      = ARRAY(SELECT DISTINCT unnest(articles.search_id || EXCLUDED.search_id)),
			search_keyword = ARRAY(SELECT DISTINCT unnest(articles.search_keyword || EXCLUDED.search_keyword))
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(query,
			rec.ArticleID, rec.URL, rec.Title, rec.Summary, rec.Content,
			rec.SiteCategories, rec.Tags, rec.SearchKeyword, rec.PublishDate,
			rec.CrawledAt, rec.Website, rec.UserID, rec.Status, rec.SearchIDs,
			rec.AISummary, rec.AISentimentScore, rec.AISentimentLabel,
			rec.LastEnrichedAt,
		)
	}

	results := d.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range records {
		if _, err := results.Exec(); err != nil {
			return &DriverError{Op: "UpsertArticles", Err: err.Error()}
		}
	}
	return nil
}

func (d *DatabaseDriver) GetArticleByID(ctx context.Context, articleID string) (*ArticleRecord, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE article_id = $1`
	rec, err := scanArticle(d.pool.QueryRow(ctx, query, articleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &DriverError{Op: "GetArticleByID", Err: err.Error()}
	}
	return rec, nil
}

func (d *DatabaseDriver) FilterExistingIDs(ctx context.Context, articleIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(articleIDs))
	if len(articleIDs) == 0 {
		return existing, nil
	}

	rows, err := d.pool.Query(ctx,
		`SELECT article_id FROM articles WHERE article_id = ANY($1)`, articleIDs)
	if err != nil {
		return nil, &DriverError{Op: "FilterExistingIDs", Err: err.Error()}
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &DriverError{Op: "FilterExistingIDs", Err: err.Error()}
		}
		existing[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, &DriverError{Op: "FilterExistingIDs", Err: err.Error()}
	}
	return existing, nil
}

// AddSearchID set-adds a claim. The guard keeps the array a set without
// a read-modify-write race.
func (d *DatabaseDriver) AddSearchID(ctx context.Context, articleID, searchID string) (bool, error) {
	tag, err := d.pool.Exec(ctx, `
		UPDATE articles
		SET search_id = array_append(search_id, $2)
		WHERE article_id = $1 AND NOT (search_id @> ARRAY[$2])
	`, articleID, searchID)
	if err != nil {
		return false, &DriverError{Op: "AddSearchID", Err: err.Error()}
	}
	return tag.RowsAffected() > 0, nil
}

// claimBatchQuery picks up both never-processed rows and rows a failed
// enrichment pass flagged ai_error, so flagged articles retry on a later
// tick instead of staying stranded.
var claimBatchQuery = `
	WITH claimed AS (
		SELECT article_id FROM articles
		WHERE status IN ('raw', 'ai_error')
		ORDER BY crawled_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	)
	UPDATE articles a SET status = 'processing'
	FROM claimed c WHERE a.article_id = c.article_id
	RETURNING ` + prefixColumns("a.")

// ClaimRawBatch moves up to limit claimable rows to processing and
// returns them. SKIP LOCKED keeps concurrent enrichment workers disjoint.
func (d *DatabaseDriver) ClaimRawBatch(ctx context.Context, limit int) ([]*ArticleRecord, error) {
	rows, err := d.pool.Query(ctx, claimBatchQuery, limit)
	if err != nil {
		return nil, &DriverError{Op: "ClaimRawBatch", Err: err.Error()}
	}
	defer rows.Close()

	var records []*ArticleRecord
	for rows.Next() {
		rec, err := scanArticle(rows)
		if err != nil {
			return nil, &DriverError{Op: "ClaimRawBatch", Err: err.Error()}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &DriverError{Op: "ClaimRawBatch", Err: err.Error()}
	}
	return records, nil
}

func (d *DatabaseDriver) MarkEnriched(ctx context.Context, rec *ArticleRecord) error {
	_, err := d.pool.Exec(ctx, `
		UPDATE articles SET
			status             = 'enriched',
			ai_summary         = $2,
			ai_sentiment_score = $3,
			ai_sentiment_label = $4,
			last_enriched_at   = now()
		WHERE article_id = $1
	`, rec.ArticleID, rec.AISummary, rec.AISentimentScore, rec.AISentimentLabel)
	if err != nil {
		return &DriverError{Op: "MarkEnriched", Err: err.Error()}
	}
	return nil
}

func (d *DatabaseDriver) MarkAIError(ctx context.Context, articleID string) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE articles SET status = 'ai_error' WHERE article_id = $1`, articleID)
	if err != nil {
		return &DriverError{Op: "MarkAIError", Err: err.Error()}
	}
	return nil
}

// PullSearchID removes the claim everywhere and reports the articles
// left unclaimed.
func (d *DatabaseDriver) PullSearchID(ctx context.Context, searchID string) ([]string, error) {
	rows, err := d.pool.Query(ctx, `
		UPDATE articles
		SET search_id = array_remove(search_id, $1)
		WHERE search_id @> ARRAY[$1]
		RETURNING article_id, cardinality(array_remove(search_id, $1))
	`, searchID)
	if err != nil {
		return nil, &DriverError{Op: "PullSearchID", Err: err.Error()}
	}
	defer rows.Close()

	var orphans []string
	for rows.Next() {
		var id string
		var remaining int
		if err := rows.Scan(&id, &remaining); err != nil {
			return nil, &DriverError{Op: "PullSearchID", Err: err.Error()}
		}
		if remaining == 0 {
			orphans = append(orphans, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &DriverError{Op: "PullSearchID", Err: err.Error()}
	}
	return orphans, nil
}

func (d *DatabaseDriver) DeleteArticles(ctx context.Context, articleIDs []string) error {
	if len(articleIDs) == 0 {
		return nil
	}
	_, err := d.pool.Exec(ctx,
		`DELETE FROM articles WHERE article_id = ANY($1)`, articleIDs)
	if err != nil {
		return &DriverError{Op: "DeleteArticles", Err: err.Error()}
	}
	return nil
}

func (d *DatabaseDriver) ListBySearchID(ctx context.Context, searchID string, offset, limit int) ([]*ArticleRecord, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE search_id @> ARRAY[$1]
		 ORDER BY publish_date DESC NULLS LAST, article_id
		 OFFSET $2 LIMIT $3`, searchID, offset, limit)
	if err != nil {
		return nil, &DriverError{Op: "ListBySearchID", Err: err.Error()}
	}
	defer rows.Close()

	var records []*ArticleRecord
	for rows.Next() {
		rec, err := scanArticle(rows)
		if err != nil {
			return nil, &DriverError{Op: "ListBySearchID", Err: err.Error()}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &DriverError{Op: "ListBySearchID", Err: err.Error()}
	}
	return records, nil
}

func (d *DatabaseDriver) CountBySearchID(ctx context.Context, searchID string) (int, error) {
	var count int
	err := d.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM articles WHERE search_id @> ARRAY[$1]`, searchID).Scan(&count)
	if err != nil {
		return 0, &DriverError{Op: "CountBySearchID", Err: err.Error()}
	}
	return count, nil
}
