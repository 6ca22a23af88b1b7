package port

import (
	"context"
	"time"

	"news-crawler/domain"
)

// ArticleRepository is the document store, the source of truth for
// crawled articles.
type ArticleRepository interface {
	// UpsertArticles writes articles keyed by article_id, merging
	// search_id sets on conflict.
	UpsertArticles(ctx context.Context, articles []*domain.Article) error
	GetArticleByID(ctx context.Context, articleID string) (*domain.Article, error)
	// FilterExistingIDs returns the subset of ids already stored.
	FilterExistingIDs(ctx context.Context, articleIDs []string) (map[string]bool, error)
	// AddSearchID set-adds a session claim. Returns false when the claim
	// was already present.
	AddSearchID(ctx context.Context, articleID, searchID string) (bool, error)

	// ClaimRawBatch atomically moves up to limit raw articles to
	// processing and returns them. Concurrent claimers never overlap.
	ClaimRawBatch(ctx context.Context, limit int) ([]*domain.Article, error)
	MarkEnriched(ctx context.Context, article *domain.Article) error
	MarkAIError(ctx context.Context, articleID string) error

	// PullSearchID removes the claim from every article holding it and
	// returns the ids of articles left with no claims.
	PullSearchID(ctx context.Context, searchID string) ([]string, error)
	DeleteArticles(ctx context.Context, articleIDs []string) error
	// ListBySearchID pages the articles claimed by a session, newest
	// publish date first.
	ListBySearchID(ctx context.Context, searchID string, offset, limit int) ([]*domain.Article, error)
	CountBySearchID(ctx context.Context, searchID string) (int, error)
}

// SessionRepository persists search sessions and their progress.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *domain.SearchSession) error
	GetSession(ctx context.Context, searchID string) (*domain.SearchSession, error)
	UpdateProgress(ctx context.Context, searchID string, totalSaved int) error
	CompleteSession(ctx context.Context, searchID string, totalSaved int) error
	ListSessionsByUser(ctx context.Context, userID string, limit int) ([]*domain.SearchSession, error)
	// SessionsBeyondLimit returns sessions older than the user's newest
	// `keep` sessions, not yet cleared.
	SessionsBeyondLimit(ctx context.Context, userID string, keep int) ([]*domain.SearchSession, error)
	MarkDataCleared(ctx context.Context, searchID string) error
}

// TopicRepository persists the scheduled category pages.
type TopicRepository interface {
	UpsertTopics(ctx context.Context, topics []*domain.Topic) error
	ListActiveTopics(ctx context.Context) ([]*domain.Topic, error)
	UpdateLastCrawledAt(ctx context.Context, url string, at time.Time) error
}
