package port

import (
	"context"

	"news-crawler/domain"
)

// VectorIndex is the semantic store of chunk and summary embeddings.
type VectorIndex interface {
	EnsureCollection(ctx context.Context) error
	UpsertPoints(ctx context.Context, points []domain.VectorPoint) error
	// Search returns hits above scoreThreshold in similarity order.
	Search(ctx context.Context, vector []float32, filter domain.VectorFilter, scoreThreshold float32, limit int) ([]domain.ScoredPoint, error)
	// AddSearchID patches the claim set of every point belonging to the
	// article.
	AddSearchID(ctx context.Context, articleID, searchID string) error
	UpdateSearchIDs(ctx context.Context, articleID string, searchIDs []string) error
	DeleteByArticleIDs(ctx context.Context, articleIDs []string) error
}
