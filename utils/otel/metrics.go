package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all OTel metric instruments for news-crawler.
var Metrics *CrawlerMetrics

// CrawlerMetrics contains all metric instruments.
type CrawlerMetrics struct {
	CrawledTotal       metric.Int64Counter
	EnrichedTotal      metric.Int64Counter
	FanoutErrorsTotal  metric.Int64Counter
	SearchDuration     metric.Float64Histogram
	CrawlBatchDuration metric.Float64Histogram
}

// InitMetrics initializes all metric instruments.
func InitMetrics() error {
	meter := otel.Meter("news-crawler")

	crawledTotal, err := meter.Int64Counter("news_crawler_crawled_total",
		metric.WithDescription("Total number of articles crawled and stored"),
	)
	if err != nil {
		return err
	}

	enrichedTotal, err := meter.Int64Counter("news_crawler_enriched_total",
		metric.WithDescription("Total number of articles enriched"),
	)
	if err != nil {
		return err
	}

	fanoutErrorsTotal, err := meter.Int64Counter("news_crawler_fanout_errors_total",
		metric.WithDescription("Total number of store fanout failures"),
	)
	if err != nil {
		return err
	}

	searchDuration, err := meter.Float64Histogram("news_crawler_search_duration_seconds",
		metric.WithDescription("Hybrid search request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	crawlBatchDuration, err := meter.Float64Histogram("news_crawler_crawl_batch_duration_seconds",
		metric.WithDescription("Crawl batch duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	Metrics = &CrawlerMetrics{
		CrawledTotal:       crawledTotal,
		EnrichedTotal:      enrichedTotal,
		FanoutErrorsTotal:  fanoutErrorsTotal,
		SearchDuration:     searchDuration,
		CrawlBatchDuration: crawlBatchDuration,
	}

	return nil
}
