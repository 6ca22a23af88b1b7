package domain

import "time"

// SearchFilter narrows the lexical lane. Zero values mean "no
// constraint"; the driver renders only the populated fields.
type SearchFilter struct {
	Websites       []string
	SiteCategories []string
	SearchID       string
	SentimentLabel SentimentLabel
	PublishedFrom  *time.Time
	PublishedTo    *time.Time
}

// VectorFilter narrows the semantic lane.
type VectorFilter struct {
	Kinds     []PointKind
	ArticleID string
	Websites  []string
	Topic     string
	SearchID  string
	// UserIDs limits hits to points owned by any of these users.
	UserIDs []string
}
