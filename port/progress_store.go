package port

import (
	"context"

	"news-crawler/domain"
)

// ProgressStore holds the live crawl progress snapshots consumed by the
// SSE stream. Implementations may be volatile; the session repository
// remains the durable record.
type ProgressStore interface {
	SaveProgress(ctx context.Context, snapshot domain.ProgressSnapshot) error
	// GetProgress returns nil when no snapshot exists for the search id.
	GetProgress(ctx context.Context, searchID string) (*domain.ProgressSnapshot, error)
}
