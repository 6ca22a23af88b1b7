package usecase

import (
	"context"
	"errors"
	"testing"

	"news-crawler/domain"
)

func TestSweepHistory_ClearsExpiredSessions(t *testing.T) {
	repo := newMockArticleRepo()
	sessions := newMockSessionRepo()
	engine := newMockSearchEngine()
	vectors := newMockVectorIndex()
	fanout := NewStoreFanout(repo, engine, vectors, &mockEmbedder{})
	u := NewSweepHistoryUsecase(sessions, repo, fanout)

	// One article only claimed by the expired session, one shared with a
	// live session.
	repo.put(&domain.Article{ArticleID: "orphan", URL: "https://x/orphan", SearchIDs: []string{"s-old"}})
	repo.put(&domain.Article{ArticleID: "shared", URL: "https://x/shared", SearchIDs: []string{"s-old", "s-live"}})
	sessions.expired = []*domain.SearchSession{{SearchID: "s-old", UserID: "u1"}}

	cleared, err := u.Execute(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleared != 1 {
		t.Errorf("cleared = %d", cleared)
	}

	if _, still := repo.articles["orphan"]; still {
		t.Error("orphaned article must be deleted")
	}
	shared, ok := repo.articles["shared"]
	if !ok {
		t.Fatal("shared article must survive")
	}
	if shared.HasSearchID("s-old") || !shared.HasSearchID("s-live") {
		t.Errorf("shared claims = %v", shared.SearchIDs)
	}

	if len(vectors.deleted) != 1 || vectors.deleted[0] != "orphan" {
		t.Errorf("vector deletes = %v", vectors.deleted)
	}
	if len(engine.deleted) != 1 || engine.deleted[0] != "orphan" {
		t.Errorf("lexical deletes = %v", engine.deleted)
	}
	if len(sessions.cleared) != 1 || sessions.cleared[0] != "s-old" {
		t.Errorf("marked cleared = %v", sessions.cleared)
	}
}

func TestSweepHistory_NothingExpired(t *testing.T) {
	repo := newMockArticleRepo()
	sessions := newMockSessionRepo()
	fanout := NewStoreFanout(repo, newMockSearchEngine(), newMockVectorIndex(), &mockEmbedder{})
	u := NewSweepHistoryUsecase(sessions, repo, fanout)

	cleared, err := u.Execute(context.Background(), "u1")
	if err != nil || cleared != 0 {
		t.Errorf("sweep = (%d, %v), want (0, nil)", cleared, err)
	}
}

func TestSweepHistory_PullFailureLeavesSessionUncleared(t *testing.T) {
	repo := newMockArticleRepo()
	repo.pullErr = errors.New("pg down")
	sessions := newMockSessionRepo()
	sessions.expired = []*domain.SearchSession{{SearchID: "s-old", UserID: "u1"}}
	fanout := NewStoreFanout(repo, newMockSearchEngine(), newMockVectorIndex(), &mockEmbedder{})
	u := NewSweepHistoryUsecase(sessions, repo, fanout)

	cleared, err := u.Execute(context.Background(), "u1")
	if err != nil {
		t.Fatalf("per-session failures must not abort the sweep: %v", err)
	}
	if cleared != 0 {
		t.Errorf("cleared = %d", cleared)
	}
	if len(sessions.cleared) != 0 {
		t.Error("failed session must stay uncleared for the next sweep")
	}
}
