package usecase

import (
	"context"

	"news-crawler/domain"
	"news-crawler/port"
)

// HistoryUsecase serves a user's recent sessions and the articles a
// session claimed.
type HistoryUsecase struct {
	sessionRepo port.SessionRepository
	articleRepo port.ArticleRepository
}

// SessionArticlesResult is one page of a session's claimed articles.
type SessionArticlesResult struct {
	Articles   []*domain.Article
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

func NewHistoryUsecase(sessionRepo port.SessionRepository, articleRepo port.ArticleRepository) *HistoryUsecase {
	return &HistoryUsecase{sessionRepo: sessionRepo, articleRepo: articleRepo}
}

// ListSessions returns the user's newest sessions, capped at the
// retention limit.
func (u *HistoryUsecase) ListSessions(ctx context.Context, userID string) ([]*domain.SearchSession, error) {
	return u.sessionRepo.ListSessionsByUser(ctx, userID, domain.HistoryLimit)
}

// SessionArticles pages the articles claimed by one session. The session
// must belong to the requesting user.
func (u *HistoryUsecase) SessionArticles(ctx context.Context, searchID, userID string, page, pageSize int) (*SessionArticlesResult, error) {
	session, err := u.sessionRepo.GetSession(ctx, searchID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, &domain.NotFoundError{Kind: "search session", Key: searchID}
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 10
	}

	total, err := u.articleRepo.CountBySearchID(ctx, searchID)
	if err != nil {
		return nil, err
	}

	articles, err := u.articleRepo.ListBySearchID(ctx, searchID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	return &SessionArticlesResult{
		Articles:   articles,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
