package domain

import (
	"fmt"
	"time"
)

// SessionStatus is the lifecycle of one user retrieval intent.
type SessionStatus string

const (
	SessionProcessing SessionStatus = "processing"
	SessionCompleted  SessionStatus = "completed"
)

// HistoryLimit is the number of sessions retained per user. Older sessions
// are swept and their claims pulled from articles.
const HistoryLimit = 10

// SearchSession records one user search. SearchID sorts chronologically by
// construction (timestamp prefix).
type SearchSession struct {
	SearchID             string
	UserID               string
	KeywordSearch        string
	KeywordContent       string
	MaxArticlesRequested int
	TotalSaved           int
	Status               SessionStatus
	TimeRange            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	DataCleared          bool
}

// NewSearchID allocates a sortable session identifier: timestamp + user.
func NewSearchID(now time.Time, userID string) string {
	return fmt.Sprintf("%s_%s", now.Format("20060102150405"), userID)
}
