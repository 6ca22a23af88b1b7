package gateway

import (
	"context"

	"news-crawler/domain"
	"news-crawler/driver"
)

// SessionDriver is what the gateway needs from the Postgres driver.
type SessionDriver interface {
	CreateSession(ctx context.Context, rec *driver.SessionRecord) error
	GetSession(ctx context.Context, searchID string) (*driver.SessionRecord, error)
	UpdateProgress(ctx context.Context, searchID string, totalSaved int) error
	CompleteSession(ctx context.Context, searchID string, totalSaved int) error
	ListSessionsByUser(ctx context.Context, userID string, limit int) ([]*driver.SessionRecord, error)
	SessionsBeyondLimit(ctx context.Context, userID string, keep int) ([]*driver.SessionRecord, error)
	MarkDataCleared(ctx context.Context, searchID string) error
}

type SessionRepositoryGateway struct {
	driver SessionDriver
}

func NewSessionRepositoryGateway(driver SessionDriver) *SessionRepositoryGateway {
	return &SessionRepositoryGateway{driver: driver}
}

func (g *SessionRepositoryGateway) CreateSession(ctx context.Context, session *domain.SearchSession) error {
	if err := g.driver.CreateSession(ctx, toSessionRecord(session)); err != nil {
		return &domain.RepositoryError{Op: "CreateSession", Err: err.Error()}
	}
	return nil
}

func (g *SessionRepositoryGateway) GetSession(ctx context.Context, searchID string) (*domain.SearchSession, error) {
	rec, err := g.driver.GetSession(ctx, searchID)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "GetSession", Err: err.Error()}
	}
	if rec == nil {
		return nil, &domain.NotFoundError{Kind: "search session", Key: searchID}
	}
	return toSessionDomain(rec), nil
}

func (g *SessionRepositoryGateway) UpdateProgress(ctx context.Context, searchID string, totalSaved int) error {
	if err := g.driver.UpdateProgress(ctx, searchID, totalSaved); err != nil {
		return &domain.RepositoryError{Op: "UpdateProgress", Err: err.Error()}
	}
	return nil
}

func (g *SessionRepositoryGateway) CompleteSession(ctx context.Context, searchID string, totalSaved int) error {
	if err := g.driver.CompleteSession(ctx, searchID, totalSaved); err != nil {
		return &domain.RepositoryError{Op: "CompleteSession", Err: err.Error()}
	}
	return nil
}

func (g *SessionRepositoryGateway) ListSessionsByUser(ctx context.Context, userID string, limit int) ([]*domain.SearchSession, error) {
	records, err := g.driver.ListSessionsByUser(ctx, userID, limit)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "ListSessionsByUser", Err: err.Error()}
	}
	return toSessionDomains(records), nil
}

func (g *SessionRepositoryGateway) SessionsBeyondLimit(ctx context.Context, userID string, keep int) ([]*domain.SearchSession, error) {
	records, err := g.driver.SessionsBeyondLimit(ctx, userID, keep)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "SessionsBeyondLimit", Err: err.Error()}
	}
	return toSessionDomains(records), nil
}

func (g *SessionRepositoryGateway) MarkDataCleared(ctx context.Context, searchID string) error {
	if err := g.driver.MarkDataCleared(ctx, searchID); err != nil {
		return &domain.RepositoryError{Op: "MarkDataCleared", Err: err.Error()}
	}
	return nil
}

func toSessionRecord(s *domain.SearchSession) *driver.SessionRecord {
	return &driver.SessionRecord{
		SearchID:             s.SearchID,
		UserID:               s.UserID,
		KeywordSearch:        s.KeywordSearch,
		KeywordContent:       s.KeywordContent,
		MaxArticlesRequested: s.MaxArticlesRequested,
		TotalSaved:           s.TotalSaved,
		Status:               string(s.Status),
		TimeRange:            s.TimeRange,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
		DataCleared:          s.DataCleared,
	}
}

func toSessionDomain(rec *driver.SessionRecord) *domain.SearchSession {
	return &domain.SearchSession{
		SearchID:             rec.SearchID,
		UserID:               rec.UserID,
		KeywordSearch:        rec.KeywordSearch,
		KeywordContent:       rec.KeywordContent,
		MaxArticlesRequested: rec.MaxArticlesRequested,
		TotalSaved:           rec.TotalSaved,
		Status:               domain.SessionStatus(rec.Status),
		TimeRange:            rec.TimeRange,
		CreatedAt:            rec.CreatedAt,
		UpdatedAt:            rec.UpdatedAt,
		DataCleared:          rec.DataCleared,
	}
}

func toSessionDomains(records []*driver.SessionRecord) []*domain.SearchSession {
	sessions := make([]*domain.SearchSession, len(records))
	for i, rec := range records {
		sessions[i] = toSessionDomain(rec)
	}
	return sessions
}
