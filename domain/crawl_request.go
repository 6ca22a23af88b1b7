package domain

import (
	"fmt"
	"strings"
	"time"
)

// CrawlRequest is the validated form of a search/crawl invocation.
type CrawlRequest struct {
	Websites       []string
	KeywordSearch  string
	KeywordContent string
	MaxArticles    int
	StartDate      time.Time
	EndDate        time.Time
	UserID         string
	Page           int
	PageSize       int
}

// Validate enforces the request invariants shared by the HTTP surface and
// the background crawl lane.
func (r *CrawlRequest) Validate() error {
	if strings.TrimSpace(r.KeywordSearch) == "" {
		return fmt.Errorf("keyword_search cannot be empty")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return fmt.Errorf("user_id cannot be empty")
	}
	if r.MaxArticles <= 0 {
		return fmt.Errorf("max_articles must be positive: got %d", r.MaxArticles)
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return fmt.Errorf("start_date and end_date are required")
	}
	if r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("end_date is before start_date")
	}
	if r.Page <= 0 {
		return fmt.Errorf("page must be positive: got %d", r.Page)
	}
	if r.PageSize <= 0 || r.PageSize > 50 {
		return fmt.Errorf("page_size must be in 1..50: got %d", r.PageSize)
	}
	return nil
}

// ContentTerms parses the keyword_content filter into its OR terms
// (comma-separated, lowercased, empties dropped).
func (r *CrawlRequest) ContentTerms() []string {
	return SplitContentTerms(r.KeywordContent)
}

// WithQuota returns a copy of the request scoped to a gap-fill quota.
func (r *CrawlRequest) WithQuota(missing int) CrawlRequest {
	out := *r
	out.MaxArticles = missing
	return out
}

// SplitContentTerms parses a comma-separated OR list into lowercased terms.
func SplitContentTerms(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.ToLower(strings.TrimSpace(p)); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// MatchesAnyTerm reports whether any OR term occurs in one of the texts,
// case-insensitively. An empty term list matches everything.
func MatchesAnyTerm(terms []string, texts ...string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}
