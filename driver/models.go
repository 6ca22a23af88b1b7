package driver

import "time"

// ArticleRecord is one row of the articles table.
type ArticleRecord struct {
	ArticleID        string
	URL              string
	Title            string
	Summary          string
	Content          string
	SiteCategories   []string
	Tags             []string
	SearchKeyword    []string
	PublishDate      *time.Time
	CrawledAt        time.Time
	Website          string
	UserID           string
	Status           string
	SearchIDs        []string
	AISummary        []string
	AISentimentScore float64
	AISentimentLabel string
	LastEnrichedAt   *time.Time
}

// SessionRecord is one row of the search_sessions table.
type SessionRecord struct {
	SearchID             string
	UserID               string
	KeywordSearch        string
	KeywordContent       string
	MaxArticlesRequested int
	TotalSaved           int
	Status               string
	TimeRange            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	DataCleared          bool
}

// TopicRecord is one row of the topics table.
type TopicRecord struct {
	URL           string
	Name          string
	Website       string
	IsActive      bool
	LastCrawledAt *time.Time
}

// SearchDocumentDriver is the article projection stored in the lexical
// index. Field names are the index attribute names.
type SearchDocumentDriver struct {
	ArticleID        string   `json:"article_id"`
	URL              string   `json:"url"`
	Title            string   `json:"title"`
	Summary          string   `json:"summary"`
	Content          string   `json:"content"`
	SiteCategories   []string `json:"site_categories"`
	SearchKeyword    []string `json:"search_keyword"`
	PublishDate      int64    `json:"publish_date"`
	Website          string   `json:"website"`
	SearchID         []string `json:"search_id"`
	AISentimentLabel string   `json:"ai_sentiment_label"`
}

// DriverError represents an error from the driver layer
type DriverError struct {
	Op  string
	Err string
}

func (e *DriverError) Error() string {
	return e.Op + ": " + e.Err
}
