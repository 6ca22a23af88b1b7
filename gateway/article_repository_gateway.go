package gateway

import (
	"context"
	"time"

	"news-crawler/domain"
	"news-crawler/driver"
)

// ArticleDriver is what the gateway needs from the Postgres driver.
type ArticleDriver interface {
	UpsertArticles(ctx context.Context, records []*driver.ArticleRecord) error
	GetArticleByID(ctx context.Context, articleID string) (*driver.ArticleRecord, error)
	FilterExistingIDs(ctx context.Context, articleIDs []string) (map[string]bool, error)
	AddSearchID(ctx context.Context, articleID, searchID string) (bool, error)
	ClaimRawBatch(ctx context.Context, limit int) ([]*driver.ArticleRecord, error)
	MarkEnriched(ctx context.Context, rec *driver.ArticleRecord) error
	MarkAIError(ctx context.Context, articleID string) error
	PullSearchID(ctx context.Context, searchID string) ([]string, error)
	DeleteArticles(ctx context.Context, articleIDs []string) error
	ListBySearchID(ctx context.Context, searchID string, offset, limit int) ([]*driver.ArticleRecord, error)
	CountBySearchID(ctx context.Context, searchID string) (int, error)
}

type ArticleRepositoryGateway struct {
	driver ArticleDriver
}

func NewArticleRepositoryGateway(driver ArticleDriver) *ArticleRepositoryGateway {
	return &ArticleRepositoryGateway{driver: driver}
}

func (g *ArticleRepositoryGateway) UpsertArticles(ctx context.Context, articles []*domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	records := make([]*driver.ArticleRecord, len(articles))
	for i, a := range articles {
		records[i] = toArticleRecord(a)
	}

	if err := g.driver.UpsertArticles(ctx, records); err != nil {
		return &domain.RepositoryError{Op: "UpsertArticles", Err: err.Error()}
	}
	return nil
}

func (g *ArticleRepositoryGateway) GetArticleByID(ctx context.Context, articleID string) (*domain.Article, error) {
	rec, err := g.driver.GetArticleByID(ctx, articleID)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "GetArticleByID", Err: err.Error()}
	}
	if rec == nil {
		return nil, &domain.NotFoundError{Kind: "article", Key: articleID}
	}
	return toArticleDomain(rec), nil
}

func (g *ArticleRepositoryGateway) FilterExistingIDs(ctx context.Context, articleIDs []string) (map[string]bool, error) {
	existing, err := g.driver.FilterExistingIDs(ctx, articleIDs)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "FilterExistingIDs", Err: err.Error()}
	}
	return existing, nil
}

func (g *ArticleRepositoryGateway) AddSearchID(ctx context.Context, articleID, searchID string) (bool, error) {
	added, err := g.driver.AddSearchID(ctx, articleID, searchID)
	if err != nil {
		return false, &domain.RepositoryError{Op: "AddSearchID", Err: err.Error()}
	}
	return added, nil
}

func (g *ArticleRepositoryGateway) ClaimRawBatch(ctx context.Context, limit int) ([]*domain.Article, error) {
	records, err := g.driver.ClaimRawBatch(ctx, limit)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "ClaimRawBatch", Err: err.Error()}
	}

	articles := make([]*domain.Article, len(records))
	for i, rec := range records {
		articles[i] = toArticleDomain(rec)
	}
	return articles, nil
}

func (g *ArticleRepositoryGateway) MarkEnriched(ctx context.Context, article *domain.Article) error {
	if err := g.driver.MarkEnriched(ctx, toArticleRecord(article)); err != nil {
		return &domain.RepositoryError{Op: "MarkEnriched", Err: err.Error()}
	}
	return nil
}

func (g *ArticleRepositoryGateway) MarkAIError(ctx context.Context, articleID string) error {
	if err := g.driver.MarkAIError(ctx, articleID); err != nil {
		return &domain.RepositoryError{Op: "MarkAIError", Err: err.Error()}
	}
	return nil
}

func (g *ArticleRepositoryGateway) PullSearchID(ctx context.Context, searchID string) ([]string, error) {
	orphans, err := g.driver.PullSearchID(ctx, searchID)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "PullSearchID", Err: err.Error()}
	}
	return orphans, nil
}

func (g *ArticleRepositoryGateway) DeleteArticles(ctx context.Context, articleIDs []string) error {
	if err := g.driver.DeleteArticles(ctx, articleIDs); err != nil {
		return &domain.RepositoryError{Op: "DeleteArticles", Err: err.Error()}
	}
	return nil
}

func (g *ArticleRepositoryGateway) ListBySearchID(ctx context.Context, searchID string, offset, limit int) ([]*domain.Article, error) {
	records, err := g.driver.ListBySearchID(ctx, searchID, offset, limit)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "ListBySearchID", Err: err.Error()}
	}
	articles := make([]*domain.Article, len(records))
	for i, rec := range records {
		articles[i] = toArticleDomain(rec)
	}
	return articles, nil
}

func (g *ArticleRepositoryGateway) CountBySearchID(ctx context.Context, searchID string) (int, error) {
	count, err := g.driver.CountBySearchID(ctx, searchID)
	if err != nil {
		return 0, &domain.RepositoryError{Op: "CountBySearchID", Err: err.Error()}
	}
	return count, nil
}

func toArticleRecord(a *domain.Article) *driver.ArticleRecord {
	crawledAt := a.CrawledAt
	if crawledAt.IsZero() {
		crawledAt = time.Now()
	}
	return &driver.ArticleRecord{
		ArticleID:        a.ArticleID,
		URL:              a.URL,
		Title:            a.Title,
		Summary:          a.Summary,
		Content:          a.Content,
		SiteCategories:   emptyIfNil(a.SiteCategories),
		Tags:             emptyIfNil(a.Tags),
		SearchKeyword:    emptyIfNil(a.SearchKeyword),
		PublishDate:      a.PublishDate,
		CrawledAt:        crawledAt,
		Website:          a.Website,
		UserID:           a.UserID,
		Status:           string(a.Status),
		SearchIDs:        emptyIfNil(a.SearchIDs),
		AISummary:        emptyIfNil(a.AISummary),
		AISentimentScore: a.AISentimentScore,
		AISentimentLabel: string(a.AISentimentLabel),
		LastEnrichedAt:   a.LastEnrichedAt,
	}
}

func toArticleDomain(rec *driver.ArticleRecord) *domain.Article {
	return &domain.Article{
		ArticleID:        rec.ArticleID,
		URL:              rec.URL,
		Title:            rec.Title,
		Summary:          rec.Summary,
		Content:          rec.Content,
		SiteCategories:   rec.SiteCategories,
		Tags:             rec.Tags,
		SearchKeyword:    rec.SearchKeyword,
		PublishDate:      rec.PublishDate,
		CrawledAt:        rec.CrawledAt,
		Website:          rec.Website,
		UserID:           rec.UserID,
		Status:           domain.ArticleStatus(rec.Status),
		SearchIDs:        rec.SearchIDs,
		AISummary:        rec.AISummary,
		AISentimentScore: rec.AISentimentScore,
		AISentimentLabel: domain.SentimentLabel(rec.AISentimentLabel),
		LastEnrichedAt:   rec.LastEnrichedAt,
	}
}

// emptyIfNil keeps array columns NOT NULL friendly.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
