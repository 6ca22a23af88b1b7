package usecase

import (
	"context"

	"news-crawler/domain"
	"news-crawler/port"
)

// CrawlStatusUsecase reads the observable state of a search session: the
// progress-store snapshot when the crawl lane keeps one, the document
// store otherwise.
type CrawlStatusUsecase struct {
	progress    port.ProgressStore
	sessionRepo port.SessionRepository
	articleRepo port.ArticleRepository
}

func NewCrawlStatusUsecase(progress port.ProgressStore, sessionRepo port.SessionRepository, articleRepo port.ArticleRepository) *CrawlStatusUsecase {
	return &CrawlStatusUsecase{
		progress:    progress,
		sessionRepo: sessionRepo,
		articleRepo: articleRepo,
	}
}

// Snapshot returns the current (status, total_saved) for the session.
func (u *CrawlStatusUsecase) Snapshot(ctx context.Context, searchID string) (*domain.ProgressSnapshot, error) {
	snap, err := u.progress.GetProgress(ctx, searchID)
	if err == nil && snap != nil {
		return snap, nil
	}

	session, err := u.sessionRepo.GetSession(ctx, searchID)
	if err != nil {
		return nil, err
	}

	count, err := u.articleRepo.CountBySearchID(ctx, searchID)
	if err != nil {
		return nil, err
	}
	if session.TotalSaved > count {
		count = session.TotalSaved
	}

	return &domain.ProgressSnapshot{
		SearchID:   searchID,
		Status:     session.Status,
		TotalSaved: count,
		UpdatedAt:  session.UpdatedAt,
	}, nil
}
