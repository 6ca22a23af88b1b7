package domain

import "time"

// ListingItem is one row on a publisher's search-results page. The
// detail fetch turns it into a full Article.
type ListingItem struct {
	URL         string
	Title       string
	Summary     string
	PublishDate *time.Time
}

// OlderThan reports whether the listing carries a date before cutoff.
// Undated listings are never considered old; the detail page decides.
func (l ListingItem) OlderThan(cutoff time.Time) bool {
	return l.PublishDate != nil && l.PublishDate.Before(cutoff)
}
