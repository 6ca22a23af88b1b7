package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"news-crawler/config"
	"news-crawler/logger"
	"news-crawler/usecase"
)

// TopicScheduler re-scans registered topics on a cron cadence that can be
// changed at runtime.
type TopicScheduler struct {
	crawl *usecase.TopicCrawlUsecase

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	minutes int
}

func NewTopicScheduler(crawl *usecase.TopicCrawlUsecase) *TopicScheduler {
	return &TopicScheduler{
		crawl:   crawl,
		cron:    cron.New(),
		minutes: config.TopicCrawlIntervalMinutes,
	}
}

func (s *TopicScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(fmt.Sprintf("@every %dm", s.minutes), func() {
		s.run(ctx, "", 0)
	})
	if err != nil {
		return err
	}
	s.entryID = id
	s.cron.Start()

	logger.Logger.Info("topic scheduler started", "interval_minutes", s.minutes)
	return nil
}

func (s *TopicScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	<-s.cron.Stop().Done()
}

// Reschedule swaps the cadence. Cadences below the minimum are rejected.
func (s *TopicScheduler) Reschedule(ctx context.Context, minutes int) error {
	if minutes < config.MinScheduleMinutes {
		return fmt.Errorf("schedule interval must be at least %d minutes: got %d", config.MinScheduleMinutes, minutes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cron.Remove(s.entryID)
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %dm", minutes), func() {
		s.run(ctx, "", 0)
	})
	if err != nil {
		return err
	}
	s.entryID = id
	s.minutes = minutes

	logger.Logger.Info("topic scheduler rescheduled", "interval_minutes", minutes)
	return nil
}

// Minutes reports the current cadence.
func (s *TopicScheduler) Minutes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minutes
}

// Trigger runs an off-schedule pass in the background.
func (s *TopicScheduler) Trigger(ctx context.Context, website string, forceDaysBack int) {
	go s.run(context.WithoutCancel(ctx), website, forceDaysBack)
}

func (s *TopicScheduler) run(ctx context.Context, website string, forceDaysBack int) {
	if err := s.crawl.Execute(ctx, website, forceDaysBack); err != nil {
		logger.Logger.Error("topic crawl pass failed", "website", website, "error", err)
	}
}
