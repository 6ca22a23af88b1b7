package usecase

import (
	"context"

	"news-crawler/logger"
	"news-crawler/port"
)

// InitTopicsUsecase seeds the topic registry by scraping a site's
// homepage navigation.
type InitTopicsUsecase struct {
	registry  SiteRegistry
	topicRepo port.TopicRepository
}

func NewInitTopicsUsecase(registry SiteRegistry, topicRepo port.TopicRepository) *InitTopicsUsecase {
	return &InitTopicsUsecase{registry: registry, topicRepo: topicRepo}
}

// Execute scrapes and upserts the site's topics, returning how many were
// found. The caller decides whether to kick a crawl pass afterwards.
func (u *InitTopicsUsecase) Execute(ctx context.Context, website string) (int, error) {
	lister, err := u.registry.TopicLister(website)
	if err != nil {
		return 0, err
	}

	topics, err := lister.ListTopics(ctx)
	if err != nil {
		return 0, err
	}
	if len(topics) == 0 {
		return 0, nil
	}

	if err := u.topicRepo.UpsertTopics(ctx, topics); err != nil {
		return 0, err
	}

	logger.GlobalContext.WithContext(logger.WithWebsite(ctx, website)).Info("topics initialized", "count", len(topics))
	return len(topics), nil
}
