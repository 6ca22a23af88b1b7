package domain

import "time"

// Topic is a registered category page that the scheduler re-scans
// incrementally.
type Topic struct {
	URL           string
	Name          string
	Website       string
	IsActive      bool
	LastCrawledAt *time.Time
}

const (
	// topicMargin is subtracted from the watermark to tolerate listing-page
	// time drift.
	topicMargin = 24 * time.Hour

	// topicBackstop bounds how far back an incremental scan ever reaches.
	topicBackstop = 60 * 24 * time.Hour
)

// CrawlCutoff computes the time boundary below which the scheduler stops
// paging this topic. forceDaysBack overrides the watermark when positive.
func (t *Topic) CrawlCutoff(now time.Time, forceDaysBack int) time.Time {
	if forceDaysBack > 0 {
		return now.AddDate(0, 0, -forceDaysBack)
	}
	backstop := now.Add(-topicBackstop)
	if t.LastCrawledAt == nil {
		return backstop
	}
	cutoff := t.LastCrawledAt.Add(-topicMargin)
	if cutoff.Before(backstop) {
		return backstop
	}
	return cutoff
}
