// Package scheduler owns the background cadences: the enrichment ticker
// and the cron-driven topic crawler.
package scheduler

import (
	"context"
	"time"

	"news-crawler/config"
	"news-crawler/logger"
	"news-crawler/usecase"
)

// EnrichmentScheduler ticks the enrichment pipeline. A slot semaphore
// bounds overlapping ticks; when a tick outlives the interval, the next
// one is skipped rather than queued.
type EnrichmentScheduler struct {
	enrich *usecase.EnrichArticlesUsecase
	slots  chan struct{}
	done   chan struct{}
}

func NewEnrichmentScheduler(enrich *usecase.EnrichArticlesUsecase) *EnrichmentScheduler {
	return &EnrichmentScheduler{
		enrich: enrich,
		slots:  make(chan struct{}, config.EnrichMaxInstances),
		done:   make(chan struct{}),
	}
}

func (s *EnrichmentScheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(config.EnrichInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

func (s *EnrichmentScheduler) Stop() {
	close(s.done)
}

func (s *EnrichmentScheduler) tick(ctx context.Context) {
	select {
	case s.slots <- struct{}{}:
	default:
		logger.Logger.Warn("enrichment tick skipped, previous ticks still running")
		return
	}

	go func() {
		defer func() { <-s.slots }()

		enriched, err := s.enrich.Execute(ctx)
		if err != nil {
			logger.Logger.Error("enrichment tick failed", "error", err)
			return
		}
		if enriched > 0 {
			logger.Logger.Info("enrichment tick done", "enriched", enriched)
		}
	}()
}
