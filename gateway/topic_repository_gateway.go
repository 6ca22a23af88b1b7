package gateway

import (
	"context"
	"time"

	"news-crawler/domain"
	"news-crawler/driver"
)

// TopicDriver is what the gateway needs from the Postgres driver.
type TopicDriver interface {
	UpsertTopics(ctx context.Context, records []*driver.TopicRecord) error
	ListActiveTopics(ctx context.Context) ([]*driver.TopicRecord, error)
	UpdateLastCrawledAt(ctx context.Context, url string, at time.Time) error
}

type TopicRepositoryGateway struct {
	driver TopicDriver
}

func NewTopicRepositoryGateway(driver TopicDriver) *TopicRepositoryGateway {
	return &TopicRepositoryGateway{driver: driver}
}

func (g *TopicRepositoryGateway) UpsertTopics(ctx context.Context, topics []*domain.Topic) error {
	if len(topics) == 0 {
		return nil
	}

	records := make([]*driver.TopicRecord, len(topics))
	for i, t := range topics {
		records[i] = &driver.TopicRecord{
			URL:           t.URL,
			Name:          t.Name,
			Website:       t.Website,
			IsActive:      t.IsActive,
			LastCrawledAt: t.LastCrawledAt,
		}
	}

	if err := g.driver.UpsertTopics(ctx, records); err != nil {
		return &domain.RepositoryError{Op: "UpsertTopics", Err: err.Error()}
	}
	return nil
}

func (g *TopicRepositoryGateway) ListActiveTopics(ctx context.Context) ([]*domain.Topic, error) {
	records, err := g.driver.ListActiveTopics(ctx)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "ListActiveTopics", Err: err.Error()}
	}

	topics := make([]*domain.Topic, len(records))
	for i, rec := range records {
		topics[i] = &domain.Topic{
			URL:           rec.URL,
			Name:          rec.Name,
			Website:       rec.Website,
			IsActive:      rec.IsActive,
			LastCrawledAt: rec.LastCrawledAt,
		}
	}
	return topics, nil
}

func (g *TopicRepositoryGateway) UpdateLastCrawledAt(ctx context.Context, url string, at time.Time) error {
	if err := g.driver.UpdateLastCrawledAt(ctx, url, at); err != nil {
		return &domain.RepositoryError{Op: "UpdateLastCrawledAt", Err: err.Error()}
	}
	return nil
}
