package config

import (
	"os"
	"strconv"
	"time"
)

// Service-wide knobs. Every value can be overridden from the environment
// so staging can run with tighter limits than production.
var (
	HTTPAddr = stringEnv("HTTP_ADDR", ":8080")

	// Crawl limits.
	MaxConcurrentFetches = intEnv("MAX_CONCURRENT_FETCHES", 20)
	MaxConnsPerHost      = intEnv("MAX_CONNS_PER_HOST", 5)
	ListingFetchTimeout  = durationEnv("LISTING_FETCH_TIMEOUT", 15*time.Second)
	DetailFetchTimeout   = durationEnv("DETAIL_FETCH_TIMEOUT", 60*time.Second)
	PageDelay            = durationEnv("PAGE_DELAY", 1*time.Second)
	MaxSearchPages       = intEnv("MAX_SEARCH_PAGES", 50)
	TopicConcurrency     = intEnv("TOPIC_CONCURRENCY", 5)

	// Enrichment cadence.
	EnrichInterval     = durationEnv("ENRICH_INTERVAL", 30*time.Second)
	EnrichBatchSize    = intEnv("ENRICH_BATCH_SIZE", 20)
	EnrichMaxInstances = intEnv("ENRICH_MAX_INSTANCES", 2)

	// Topic crawl schedule.
	TopicCrawlIntervalMinutes = intEnv("TOPIC_CRAWL_INTERVAL_MINUTES", 120)
	MinScheduleMinutes        = 5

	// Retrieval tuning.
	SemanticScoreThreshold  = floatEnv("SEMANTIC_SCORE_THRESHOLD", 0.55)
	DuplicateScoreThreshold = floatEnv("DUPLICATE_SCORE_THRESHOLD", 0.90)
	LexicalOverfetch        = intEnv("LEXICAL_OVERFETCH", 100)
)

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func floatEnv(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
