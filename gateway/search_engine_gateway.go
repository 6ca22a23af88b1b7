package gateway

import (
	"context"
	"time"

	"news-crawler/domain"
	"news-crawler/driver"
)

// SearchDriver is what the gateway needs from the Meilisearch driver.
type SearchDriver interface {
	IndexDocuments(ctx context.Context, docs []driver.SearchDocumentDriver) error
	DeleteDocuments(ctx context.Context, ids []string) error
	Search(ctx context.Context, query string, filter string, limit int) ([]driver.SearchDocumentDriver, error)
	UpdateSearchIDs(ctx context.Context, articleID string, searchIDs []string) error
	EnsureIndex(ctx context.Context) error
}

type SearchEngineGateway struct {
	driver SearchDriver
}

func NewSearchEngineGateway(driver SearchDriver) *SearchEngineGateway {
	return &SearchEngineGateway{driver: driver}
}

func (g *SearchEngineGateway) IndexArticles(ctx context.Context, articles []*domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	docs := make([]driver.SearchDocumentDriver, len(articles))
	for i, a := range articles {
		docs[i] = toSearchDocument(a)
	}

	if err := g.driver.IndexDocuments(ctx, docs); err != nil {
		return &domain.SearchEngineError{Op: "IndexArticles", Err: err.Error()}
	}
	return nil
}

func (g *SearchEngineGateway) DeleteArticles(ctx context.Context, articleIDs []string) error {
	if len(articleIDs) == 0 {
		return nil
	}

	if err := g.driver.DeleteDocuments(ctx, articleIDs); err != nil {
		return &domain.SearchEngineError{Op: "DeleteArticles", Err: err.Error()}
	}
	return nil
}

func (g *SearchEngineGateway) Search(ctx context.Context, query string, filter domain.SearchFilter, limit int) ([]domain.ArticleHit, error) {
	expr := driver.BuildSearchFilter(driver.SearchFilterSpec{
		Websites:         filter.Websites,
		SiteCategories:   filter.SiteCategories,
		SearchID:         filter.SearchID,
		AISentimentLabel: string(filter.SentimentLabel),
		PublishedFrom:    filter.PublishedFrom,
		PublishedTo:      filter.PublishedTo,
	})

	docs, err := g.driver.Search(ctx, query, expr, limit)
	if err != nil {
		return nil, &domain.SearchEngineError{Op: "Search", Err: err.Error()}
	}

	hits := make([]domain.ArticleHit, len(docs))
	for i, doc := range docs {
		hit := domain.ArticleHit{
			ArticleID: doc.ArticleID,
			URL:       doc.URL,
			Title:     doc.Title,
			Summary:   doc.Summary,
			Content:   doc.Content,
		}
		if doc.PublishDate > 0 {
			t := time.Unix(doc.PublishDate, 0)
			hit.PublishDate = &t
		}
		hits[i] = hit
	}
	return hits, nil
}

func (g *SearchEngineGateway) UpdateSearchIDs(ctx context.Context, articleID string, searchIDs []string) error {
	if err := g.driver.UpdateSearchIDs(ctx, articleID, searchIDs); err != nil {
		return &domain.SearchEngineError{Op: "UpdateSearchIDs", Err: err.Error()}
	}
	return nil
}

func (g *SearchEngineGateway) EnsureIndex(ctx context.Context) error {
	if err := g.driver.EnsureIndex(ctx); err != nil {
		return &domain.SearchEngineError{Op: "EnsureIndex", Err: err.Error()}
	}
	return nil
}

func toSearchDocument(a *domain.Article) driver.SearchDocumentDriver {
	doc := driver.SearchDocumentDriver{
		ArticleID:        a.ArticleID,
		URL:              a.URL,
		Title:            a.Title,
		Summary:          a.Summary,
		Content:          a.Content,
		SiteCategories:   emptyIfNil(a.SiteCategories),
		SearchKeyword:    emptyIfNil(a.SearchKeyword),
		Website:          a.Website,
		SearchID:         a.EffectiveSearchIDs(),
		AISentimentLabel: string(a.AISentimentLabel),
	}
	if a.PublishDate != nil {
		doc.PublishDate = a.PublishDate.Unix()
	}
	return doc
}
