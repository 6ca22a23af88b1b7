package usecase

import (
	"context"

	"news-crawler/domain"
	"news-crawler/logger"
	"news-crawler/port"
)

// SweepHistoryUsecase enforces the per-user session retention limit:
// sessions beyond the newest HistoryLimit lose their article claims, and
// articles left unclaimed are deleted everywhere.
type SweepHistoryUsecase struct {
	sessionRepo port.SessionRepository
	articleRepo port.ArticleRepository
	fanout      *StoreFanout
}

func NewSweepHistoryUsecase(sessionRepo port.SessionRepository, articleRepo port.ArticleRepository, fanout *StoreFanout) *SweepHistoryUsecase {
	return &SweepHistoryUsecase{
		sessionRepo: sessionRepo,
		articleRepo: articleRepo,
		fanout:      fanout,
	}
}

// Execute sweeps one user's history. Returns how many sessions were
// cleared.
func (u *SweepHistoryUsecase) Execute(ctx context.Context, userID string) (int, error) {
	ctx = logger.WithStage(ctx, "retention")
	expired, err := u.sessionRepo.SessionsBeyondLimit(ctx, userID, domain.HistoryLimit)
	if err != nil {
		return 0, err
	}

	log := logger.GlobalContext.WithContext(ctx)
	cleared := 0
	for _, session := range expired {
		sctx := logger.WithSearchID(ctx, session.SearchID)

		orphans, err := u.articleRepo.PullSearchID(sctx, session.SearchID)
		if err != nil {
			log.Error("pull search id", "search_id", session.SearchID, "error", err)
			continue
		}
		if len(orphans) > 0 {
			if err := u.fanout.DeleteByArticleIDs(sctx, orphans); err != nil {
				log.Error("delete orphaned articles", "search_id", session.SearchID, "error", err)
				continue
			}
		}

		if err := u.sessionRepo.MarkDataCleared(sctx, session.SearchID); err != nil {
			log.Error("mark session cleared", "search_id", session.SearchID, "error", err)
			continue
		}

		log.Info("session history cleared", "search_id", session.SearchID, "orphans_deleted", len(orphans))
		cleared++
	}
	return cleared, nil
}
