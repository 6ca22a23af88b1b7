package usecase

import (
	"context"
	"errors"
	"testing"

	"news-crawler/domain"
	"news-crawler/port"
)

func TestInitTopics_Execute(t *testing.T) {
	lister := &mockTopicLister{topics: []*domain.Topic{
		{URL: "https://cafef.vn/thi-truong-chung-khoan.chn", Name: "Chứng khoán", Website: "cafef.vn"},
		{URL: "https://cafef.vn/bat-dong-san.chn", Name: "Bất động sản", Website: "cafef.vn"},
	}}
	registry := &mockRegistry{listers: map[string]port.TopicLister{"cafef.vn": lister}}
	topicRepo := &mockTopicRepo{}
	u := NewInitTopicsUsecase(registry, topicRepo)

	count, err := u.Execute(context.Background(), "cafef.vn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d", count)
	}
	if len(topicRepo.topics) != 2 {
		t.Errorf("upserted = %d topics", len(topicRepo.topics))
	}
}

func TestInitTopics_UnknownWebsite(t *testing.T) {
	u := NewInitTopicsUsecase(&mockRegistry{}, &mockTopicRepo{})

	_, err := u.Execute(context.Background(), "unknown.example")
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("want NotFoundError, got %v", err)
	}
}

func TestInitTopics_EmptyNavigation(t *testing.T) {
	registry := &mockRegistry{listers: map[string]port.TopicLister{"cafef.vn": &mockTopicLister{}}}
	topicRepo := &mockTopicRepo{}
	u := NewInitTopicsUsecase(registry, topicRepo)

	count, err := u.Execute(context.Background(), "cafef.vn")
	if err != nil || count != 0 {
		t.Errorf("empty navigation = (%d, %v), want (0, nil)", count, err)
	}
	if len(topicRepo.topics) != 0 {
		t.Error("nothing must be upserted")
	}
}
