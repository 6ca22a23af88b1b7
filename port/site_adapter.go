package port

import (
	"context"
	"time"

	"news-crawler/domain"
)

// SiteAdapter wraps one publisher's search surface, category pages and
// detail pages.
type SiteAdapter interface {
	// Website is the hostname this adapter serves, e.g. "vnexpress.net".
	Website() string
	// SearchListing fetches one page of search results for the keyword.
	// Sites without server-side date filtering ignore the range; the
	// executor filters again. An empty slice means no further results.
	SearchListing(ctx context.Context, keyword string, from, to time.Time, page int) ([]domain.ListingItem, error)
	// CategoryListing fetches one page of a category (topic) feed.
	CategoryListing(ctx context.Context, categoryURL string, page int) ([]domain.ListingItem, error)
	// FetchArticle resolves a listing row into a full article. A page
	// with no extractable body (video players, galleries) returns
	// (nil, nil).
	FetchArticle(ctx context.Context, item domain.ListingItem) (*domain.Article, error)
}

// TopicLister is implemented by adapters whose site exposes a category
// navigation that seeds the topic scheduler.
type TopicLister interface {
	ListTopics(ctx context.Context) ([]*domain.Topic, error)
}
