package driver

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionDriver runs the search-session SQL against Postgres.
type SessionDriver struct {
	pool *pgxpool.Pool
}

func NewSessionDriver(pool *pgxpool.Pool) *SessionDriver {
	return &SessionDriver{pool: pool}
}

const sessionColumns = `search_id, user_id, keyword_search, keyword_content,
	max_articles_requested, total_saved, status, time_range, created_at,
	updated_at, data_cleared`

func scanSession(row pgx.Row) (*SessionRecord, error) {
	var rec SessionRecord
	err := row.Scan(
		&rec.SearchID, &rec.UserID, &rec.KeywordSearch, &rec.KeywordContent,
		&rec.MaxArticlesRequested, &rec.TotalSaved, &rec.Status, &rec.TimeRange,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.DataCleared,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (d *SessionDriver) CreateSession(ctx context.Context, rec *SessionRecord) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO search_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, rec.SearchID, rec.UserID, rec.KeywordSearch, rec.KeywordContent,
		rec.MaxArticlesRequested, rec.TotalSaved, rec.Status, rec.TimeRange,
		rec.CreatedAt, rec.UpdatedAt, rec.DataCleared)
	if err != nil {
		return &DriverError{Op: "CreateSession", Err: err.Error()}
	}
	return nil
}

func (d *SessionDriver) GetSession(ctx context.Context, searchID string) (*SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM search_sessions WHERE search_id = $1`
	rec, err := scanSession(d.pool.QueryRow(ctx, query, searchID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &DriverError{Op: "GetSession", Err: err.Error()}
	}
	return rec, nil
}

func (d *SessionDriver) UpdateProgress(ctx context.Context, searchID string, totalSaved int) error {
	_, err := d.pool.Exec(ctx, `
		UPDATE search_sessions
		SET total_saved = $2, updated_at = now()
		WHERE search_id = $1
	`, searchID, totalSaved)
	if err != nil {
		return &DriverError{Op: "UpdateProgress", Err: err.Error()}
	}
	return nil
}

func (d *SessionDriver) CompleteSession(ctx context.Context, searchID string, totalSaved int) error {
	_, err := d.pool.Exec(ctx, `
		UPDATE search_sessions
		SET status = 'completed', total_saved = $2, updated_at = now()
		WHERE search_id = $1
	`, searchID, totalSaved)
	if err != nil {
		return &DriverError{Op: "CompleteSession", Err: err.Error()}
	}
	return nil
}

func (d *SessionDriver) ListSessionsByUser(ctx context.Context, userID string, limit int) ([]*SessionRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+sessionColumns+` FROM search_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, &DriverError{Op: "ListSessionsByUser", Err: err.Error()}
	}
	defer rows.Close()

	return collectSessions(rows, "ListSessionsByUser")
}

// SessionsBeyondLimit returns uncleared sessions ranked below the user's
// newest `keep` sessions.
func (d *SessionDriver) SessionsBeyondLimit(ctx context.Context, userID string, keep int) ([]*SessionRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+sessionColumns+` FROM search_sessions
		WHERE user_id = $1 AND data_cleared = FALSE
		ORDER BY created_at DESC
		OFFSET $2
	`, userID, keep)
	if err != nil {
		return nil, &DriverError{Op: "SessionsBeyondLimit", Err: err.Error()}
	}
	defer rows.Close()

	return collectSessions(rows, "SessionsBeyondLimit")
}

func (d *SessionDriver) MarkDataCleared(ctx context.Context, searchID string) error {
	_, err := d.pool.Exec(ctx, `
		UPDATE search_sessions
		SET data_cleared = TRUE, updated_at = now()
		WHERE search_id = $1
	`, searchID)
	if err != nil {
		return &DriverError{Op: "MarkDataCleared", Err: err.Error()}
	}
	return nil
}

func collectSessions(rows pgx.Rows, op string) ([]*SessionRecord, error) {
	var records []*SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, &DriverError{Op: op, Err: err.Error()}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &DriverError{Op: op, Err: err.Error()}
	}
	return records, nil
}
