package usecase

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"

	"news-crawler/config"
	"news-crawler/domain"
	"news-crawler/logger"
	"news-crawler/port"
	"news-crawler/utils/otel"
)

// TopicCrawlUsecase re-scans registered category pages incrementally.
// Each topic pages newest-first and stops as soon as it meets content the
// auto-crawl lane has already ingested below the cutoff.
type TopicCrawlUsecase struct {
	registry    SiteRegistry
	topicRepo   port.TopicRepository
	articleRepo port.ArticleRepository
	fanout      *StoreFanout
}

func NewTopicCrawlUsecase(registry SiteRegistry, topicRepo port.TopicRepository, articleRepo port.ArticleRepository, fanout *StoreFanout) *TopicCrawlUsecase {
	return &TopicCrawlUsecase{
		registry:    registry,
		topicRepo:   topicRepo,
		articleRepo: articleRepo,
		fanout:      fanout,
	}
}

// Execute runs one scheduler pass. website narrows the pass to one site
// when non-empty; forceDaysBack overrides every topic's watermark when
// positive.
func (u *TopicCrawlUsecase) Execute(ctx context.Context, website string, forceDaysBack int) error {
	ctx = logger.WithStage(ctx, "topic_crawl")
	topics, err := u.topicRepo.ListActiveTopics(ctx)
	if err != nil {
		return err
	}

	sem := semaphore.NewWeighted(int64(config.TopicConcurrency))
	for _, topic := range topics {
		if website != "" && topic.Website != website {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		go func(topic *domain.Topic) {
			defer sem.Release(1)
			u.crawlTopic(logger.WithTopic(logger.WithWebsite(ctx, topic.Website), topic.Name), topic, forceDaysBack)
		}(topic)
	}

	// Wait for every topic to finish before the pass returns.
	if err := sem.Acquire(ctx, int64(config.TopicConcurrency)); err != nil {
		return err
	}
	sem.Release(int64(config.TopicConcurrency))
	return nil
}

func (u *TopicCrawlUsecase) crawlTopic(ctx context.Context, topic *domain.Topic, forceDaysBack int) {
	log := logger.GlobalContext.WithContext(ctx)

	adapter, err := u.registry.ForWebsite(topic.Website)
	if err != nil {
		log.Warn("topic has no adapter", "topic_url", topic.URL, "error", err)
		return
	}

	now := time.Now()
	cutoff := topic.CrawlCutoff(now, forceDaysBack)
	saved := 0

	for page := 1; page <= config.MaxSearchPages; page++ {
		items, err := adapter.CategoryListing(ctx, topic.URL, page)
		if err != nil {
			log.Warn("category listing failed", "topic_url", topic.URL, "page", page, "error", err)
			break
		}
		if len(items) == 0 {
			break
		}

		fresh, stop := u.scanListing(ctx, items, cutoff)
		saved += u.ingest(ctx, adapter, topic, fresh)
		if stop {
			break
		}
	}

	if err := u.topicRepo.UpdateLastCrawledAt(ctx, topic.URL, now); err != nil {
		log.Error("update topic watermark", "topic_url", topic.URL, "error", err)
	}
	log.Info("topic pass done", "topic_url", topic.URL, "saved", saved)
}

// scanListing walks one page in listed order, returning the stubs still
// worth fetching. stop is true once the page shows an article that is
// both older than the cutoff and already ingested by the auto lane.
func (u *TopicCrawlUsecase) scanListing(ctx context.Context, items []domain.ListingItem, cutoff time.Time) ([]domain.ListingItem, bool) {
	var fresh []domain.ListingItem
	for _, item := range items {
		seen := u.alreadyAutoIngested(ctx, domain.ArticleIDForURL(item.URL))
		if seen && item.OlderThan(cutoff) {
			return fresh, true
		}
		if seen {
			continue
		}
		fresh = append(fresh, item)
	}
	return fresh, false
}

func (u *TopicCrawlUsecase) alreadyAutoIngested(ctx context.Context, articleID string) bool {
	article, err := u.articleRepo.GetArticleByID(ctx, articleID)
	if err != nil {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			logger.GlobalContext.LogError(ctx, "topic existence check", err)
		}
		return false
	}
	return article.HasSearchID(domain.AutoSearchID)
}

// ingest detail-fetches the stubs and stores them attributed to the
// system auto-crawl lane. No content filter applies on this lane.
func (u *TopicCrawlUsecase) ingest(ctx context.Context, adapter port.SiteAdapter, topic *domain.Topic, items []domain.ListingItem) int {
	log := logger.GlobalContext.WithContext(ctx)

	var articles []*domain.Article
	for _, item := range items {
		if u.fanout.IsNearDuplicate(ctx, item.Title, item.Summary, float32(config.DuplicateScoreThreshold)) {
			continue
		}
		article, err := adapter.FetchArticle(ctx, item)
		if err != nil {
			log.Warn("topic detail fetch failed", "url", item.URL, "error", err)
			continue
		}
		if article == nil {
			continue
		}

		article.UserID = domain.SystemUserID
		article.SearchIDs = []string{domain.AutoSearchID}
		article.SearchKeyword = attributedKeywords("", article)
		articles = append(articles, article)
	}

	if len(articles) == 0 {
		return 0
	}
	if err := u.fanout.SaveArticles(ctx, articles); err != nil {
		log.Error("save topic batch", "topic_url", topic.URL, "error", err)
		return 0
	}
	if otel.Metrics != nil {
		otel.Metrics.CrawledTotal.Add(ctx, int64(len(articles)))
	}
	return len(articles)
}
