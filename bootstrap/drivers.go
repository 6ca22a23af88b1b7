package bootstrap

import (
	"fmt"
	"time"

	"github.com/meilisearch/meilisearch-go"

	"news-crawler/config"
	"news-crawler/logger"
	"news-crawler/search_engine"
)

// initMeilisearchClient connects to Meilisearch, retrying while the engine
// comes up alongside this service.
func initMeilisearchClient(cfg *config.MeilisearchConfig) (meilisearch.ServiceManager, error) {
	const maxRetries = 5
	const retryDelay = 5 * time.Second

	logger.Logger.Info("Connecting to Meilisearch", "host", cfg.Host)

	var msClient meilisearch.ServiceManager
	for i := range maxRetries {
		msClient = search_engine.NewMeilisearchClient(cfg.Host, cfg.APIKey)

		if _, healthErr := msClient.Health(); healthErr != nil {
			logger.Logger.Warn("Meilisearch not ready, retrying", "attempt", i+1, "max", maxRetries, "err", healthErr)
			if i < maxRetries-1 {
				time.Sleep(retryDelay)
				continue
			}
			return nil, fmt.Errorf("failed to connect to Meilisearch after %d attempts: %w", maxRetries, healthErr)
		}

		logger.Logger.Info("Connected to Meilisearch successfully")
		break
	}

	return msClient, nil
}
