package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArticleStatus tracks where an article sits in the enrichment lifecycle.
// Transitions are monotonic and serialized through the document store:
// raw -> processing -> enriched | ai_error; ai_error rows are claimed
// again on a later enrichment tick alongside raw ones.
type ArticleStatus string

const (
	StatusRaw        ArticleStatus = "raw"
	StatusProcessing ArticleStatus = "processing"
	StatusEnriched   ArticleStatus = "enriched"
	StatusAIError    ArticleStatus = "ai_error"
)

// SentimentLabel is the classifier output attached to enriched articles.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

// Article is the canonical crawled unit. URL is the unique natural key;
// ArticleID is derived deterministically from it.
type Article struct {
	ArticleID      string
	URL            string
	Title          string
	Summary        string
	Content        string
	SiteCategories []string
	Tags           []string
	SearchKeyword  []string
	PublishDate    *time.Time
	CrawledAt      time.Time
	Website        string
	UserID         string
	Status         ArticleStatus

	// SearchIDs is the set of search sessions that have claimed this
	// article. It only grows, except under history retention.
	SearchIDs []string

	AISummary        []string
	AISentimentScore float64
	AISentimentLabel SentimentLabel
	LastEnrichedAt   *time.Time
}

// ArticleIDForURL derives the stable article identity from the source URL
// (UUIDv5 over the URL namespace). Re-crawling the same URL always maps to
// the same article.
func ArticleIDForURL(rawURL string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(rawURL)).String()
}

// AnalysisText selects the text enrichment operates on: content when
// present, the publisher lede otherwise.
func (a *Article) AnalysisText() string {
	if strings.TrimSpace(a.Content) != "" {
		return a.Content
	}
	return a.Summary
}

// HasSearchID reports whether the session id has already claimed this article.
func (a *Article) HasSearchID(id string) bool {
	for _, s := range a.SearchIDs {
		if s == id {
			return true
		}
	}
	return false
}

// EffectiveSearchIDs returns the claim set, defaulting to the auto-crawl
// lane when nothing has claimed the article yet. Mirrored stores never see
// an empty set.
func (a *Article) EffectiveSearchIDs() []string {
	if len(a.SearchIDs) == 0 {
		return []string{AutoSearchID}
	}
	return a.SearchIDs
}

// Identifiers of the system-owned crawl lane. Topic-scheduler articles are
// attributed to the system user and tagged with the auto search id.
const (
	SystemUserID = "system"
	AutoSearchID = "system_auto"
)
