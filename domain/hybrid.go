package domain

import (
	"sort"
	"time"
)

// ArticleHit is the slim projection both retrieval lanes produce before
// merging. Summary and Content are populated by the lexical lane only,
// for the post-fetch content filter. PublishDate is nil when the backing
// store had none.
type ArticleHit struct {
	ArticleID   string
	URL         string
	Title       string
	Summary     string
	Content     string
	PublishDate *time.Time
}

// MergeHits reconciles the lexical and semantic lanes: dedupe by URL
// (first occurrence wins, lexical lane first), order by publish date
// descending with undated hits last, then cap at limit.
func MergeHits(lexical, semantic []ArticleHit, limit int) []ArticleHit {
	seen := make(map[string]struct{}, len(lexical)+len(semantic))
	merged := make([]ArticleHit, 0, len(lexical)+len(semantic))
	for _, h := range append(append([]ArticleHit{}, lexical...), semantic...) {
		if h.URL == "" {
			continue
		}
		if _, dup := seen[h.URL]; dup {
			continue
		}
		seen[h.URL] = struct{}{}
		merged = append(merged, h)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i].PublishDate, merged[j].PublishDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// ProgressSnapshot is the observable state of a search-triggered crawl.
type ProgressSnapshot struct {
	SearchID   string
	Status     SessionStatus
	TotalSaved int
	UpdatedAt  time.Time
}

// Changed reports whether an emission is due relative to the previously
// pushed snapshot.
func (p ProgressSnapshot) Changed(prev *ProgressSnapshot) bool {
	if prev == nil {
		return true
	}
	return p.Status != prev.Status || p.TotalSaved != prev.TotalSaved
}
