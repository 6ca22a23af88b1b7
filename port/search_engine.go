package port

import (
	"context"

	"news-crawler/domain"
)

// SearchEngine is the lexical index over articles.
type SearchEngine interface {
	IndexArticles(ctx context.Context, articles []*domain.Article) error
	DeleteArticles(ctx context.Context, articleIDs []string) error
	// Search runs a keyword query restricted by filter. Hits come back in
	// engine relevance order.
	Search(ctx context.Context, query string, filter domain.SearchFilter, limit int) ([]domain.ArticleHit, error)
	// UpdateSearchIDs rewrites the claim set of one indexed article.
	UpdateSearchIDs(ctx context.Context, articleID string, searchIDs []string) error
	EnsureIndex(ctx context.Context) error
}
