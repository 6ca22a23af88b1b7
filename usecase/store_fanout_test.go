package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"news-crawler/domain"
)

func TestStoreFanout_SaveArticles(t *testing.T) {
	ctx := context.Background()

	t.Run("document store failure aborts", func(t *testing.T) {
		repo := newMockArticleRepo()
		repo.upsertErr = errors.New("pg down")
		engine := newMockSearchEngine()
		f := NewStoreFanout(repo, engine, newMockVectorIndex(), &mockEmbedder{})

		err := f.SaveArticles(ctx, []*domain.Article{{ArticleID: "a1", URL: "https://x/a1"}})
		if err == nil {
			t.Fatal("want error when the document store rejects the batch")
		}
		if len(engine.indexed) != 0 {
			t.Error("lexical index must not be written after a store failure")
		}
	})

	t.Run("lexical index failure is absorbed", func(t *testing.T) {
		repo := newMockArticleRepo()
		f := NewStoreFanout(repo, &failingSearchEngine{mockSearchEngine: newMockSearchEngine()}, newMockVectorIndex(), &mockEmbedder{})

		err := f.SaveArticles(ctx, []*domain.Article{{ArticleID: "a1", URL: "https://x/a1"}})
		if err != nil {
			t.Errorf("index failure must not fail the save: %v", err)
		}
		if _, ok := repo.articles["a1"]; !ok {
			t.Error("article missing from the document store")
		}
	})
}

func TestStoreFanout_EnsuresIndexOnFanout(t *testing.T) {
	ctx := context.Background()

	t.Run("settings applied once across fanouts", func(t *testing.T) {
		engine := newMockSearchEngine()
		f := NewStoreFanout(newMockArticleRepo(), engine, newMockVectorIndex(), &mockEmbedder{})

		if err := f.SaveArticles(ctx, []*domain.Article{{ArticleID: "a1", URL: "https://x/a1"}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := f.SaveArticles(ctx, []*domain.Article{{ArticleID: "a2", URL: "https://x/a2"}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if engine.ensureCalls != 1 {
			t.Errorf("EnsureIndex calls = %d, want 1 once settings stick", engine.ensureCalls)
		}
		if len(engine.indexed) != 2 {
			t.Errorf("index writes = %d", len(engine.indexed))
		}
	})

	t.Run("ensure failure retries on the next fanout", func(t *testing.T) {
		engine := newMockSearchEngine()
		engine.ensureErr = errors.New("meilisearch unavailable")
		repo := newMockArticleRepo()
		f := NewStoreFanout(repo, engine, newMockVectorIndex(), &mockEmbedder{})

		if err := f.SaveArticles(ctx, []*domain.Article{{ArticleID: "a1", URL: "https://x/a1"}}); err != nil {
			t.Fatalf("index bootstrap failure must not fail the save: %v", err)
		}
		if _, ok := repo.articles["a1"]; !ok {
			t.Fatal("article missing from the document store")
		}
		if len(engine.indexed) != 0 {
			t.Error("no index write expected while the settings are unapplied")
		}

		engine.ensureErr = nil
		if err := f.SaveArticles(ctx, []*domain.Article{{ArticleID: "a2", URL: "https://x/a2"}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if engine.ensureCalls != 2 {
			t.Errorf("EnsureIndex calls = %d, want a retry after the failure", engine.ensureCalls)
		}
		if len(engine.indexed) != 1 {
			t.Errorf("index writes = %d, want the second batch mirrored", len(engine.indexed))
		}
	})
}

// failingSearchEngine rejects every index write.
type failingSearchEngine struct {
	*mockSearchEngine
}

func (f *failingSearchEngine) IndexArticles(ctx context.Context, articles []*domain.Article) error {
	return errors.New("meilisearch unavailable")
}

func TestStoreFanout_AddSearchID(t *testing.T) {
	ctx := context.Background()

	t.Run("new claim propagates to both indexes", func(t *testing.T) {
		repo := newMockArticleRepo()
		repo.put(&domain.Article{ArticleID: "a1", URL: "https://x/a1", SearchIDs: []string{"old"}})
		engine := newMockSearchEngine()
		vectors := newMockVectorIndex()
		f := NewStoreFanout(repo, engine, vectors, &mockEmbedder{})

		f.AddSearchID(ctx, []string{"a1"}, "s-new")

		got := engine.updated["a1"]
		if len(got) != 2 || got[0] != "old" || got[1] != "s-new" {
			t.Errorf("lexical claim set = %v", got)
		}
		if claims := vectors.claims["a1"]; len(claims) != 1 || claims[0] != "s-new" {
			t.Errorf("vector claims = %v", claims)
		}
	})

	t.Run("already claimed skips index patches", func(t *testing.T) {
		repo := newMockArticleRepo()
		repo.put(&domain.Article{ArticleID: "a1", URL: "https://x/a1", SearchIDs: []string{"s1"}})
		engine := newMockSearchEngine()
		vectors := newMockVectorIndex()
		f := NewStoreFanout(repo, engine, vectors, &mockEmbedder{})

		f.AddSearchID(ctx, []string{"a1"}, "s1")

		if _, patched := engine.updated["a1"]; patched {
			t.Error("no index patch expected for an existing claim")
		}
		if len(vectors.claims["a1"]) != 0 {
			t.Errorf("vector claims = %v", vectors.claims["a1"])
		}
	})
}

func TestStoreFanout_EmitEnriched(t *testing.T) {
	ctx := context.Background()

	content := strings.Repeat("Thị trường chứng khoán Việt Nam tăng điểm mạnh trong phiên sáng nay. ", 20)
	article := &domain.Article{
		ArticleID: "a1",
		URL:       "https://x/a1",
		Title:     "Tiêu đề",
		Content:   content,
		AISummary: []string{"Câu tóm tắt thứ nhất.", "Câu tóm tắt thứ hai."},
	}

	repo := newMockArticleRepo()
	engine := newMockSearchEngine()
	vectors := newMockVectorIndex()
	embedder := &mockEmbedder{}
	f := NewStoreFanout(repo, engine, vectors, embedder)

	if err := f.EmitEnriched(ctx, article); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(engine.indexed) != 1 {
		t.Errorf("lexical re-index calls = %d", len(engine.indexed))
	}
	if len(vectors.upserted) != 1 {
		t.Fatalf("vector upsert calls = %d", len(vectors.upserted))
	}

	points := vectors.upserted[0]
	chunks := domain.SplitChunks("a1", content, domain.DefaultChunkSize)
	if len(points) != len(chunks)+1 {
		t.Fatalf("points = %d, want %d chunks plus the summary point", len(points), len(chunks))
	}

	// Re-emission must land on the same point ids.
	if points[0].ID != domain.ChunkPointID(chunks[0].ChunkID) {
		t.Errorf("chunk point id = %s", points[0].ID)
	}
	last := points[len(points)-1]
	if last.ID != domain.SummaryPointID("a1") {
		t.Errorf("summary point id = %s", last.ID)
	}
	if last.Payload.Kind != domain.PointAISummary || len(last.Payload.SummaryText) != 2 {
		t.Errorf("summary payload = %+v", last.Payload)
	}
}

func TestStoreFanout_EmitEnriched_EmbeddingFailure(t *testing.T) {
	article := &domain.Article{
		ArticleID: "a1",
		Content:   strings.Repeat("Nội dung đủ dài để sinh ra một chunk hợp lệ cho bài kiểm thử. ", 5),
	}
	f := NewStoreFanout(newMockArticleRepo(), newMockSearchEngine(), newMockVectorIndex(), &mockEmbedder{err: errors.New("model down")})

	if err := f.EmitEnriched(context.Background(), article); err == nil {
		t.Error("embedding failure must surface so the caller can flag the article")
	}
}

func TestStoreFanout_IsNearDuplicate(t *testing.T) {
	ctx := context.Background()

	t.Run("hit above threshold", func(t *testing.T) {
		vectors := newMockVectorIndex()
		vectors.points = []domain.ScoredPoint{{Score: 0.95, Payload: domain.PointPayload{ArticleID: "dup"}}}
		f := NewStoreFanout(newMockArticleRepo(), newMockSearchEngine(), vectors, &mockEmbedder{})

		if !f.IsNearDuplicate(ctx, "Giá vàng lập đỉnh", "", 0.9) {
			t.Error("want duplicate")
		}
	})

	t.Run("empty probe text", func(t *testing.T) {
		embedder := &mockEmbedder{}
		f := NewStoreFanout(newMockArticleRepo(), newMockSearchEngine(), newMockVectorIndex(), embedder)

		if f.IsNearDuplicate(ctx, "  ", "", 0.9) {
			t.Error("blank probe can never be a duplicate")
		}
		if len(embedder.calls) != 0 {
			t.Error("blank probe must not be embedded")
		}
	})

	t.Run("probe failure reports not duplicate", func(t *testing.T) {
		vectors := newMockVectorIndex()
		vectors.searchErr = errors.New("qdrant timeout")
		f := NewStoreFanout(newMockArticleRepo(), newMockSearchEngine(), vectors, &mockEmbedder{})

		if f.IsNearDuplicate(ctx, "Giá vàng lập đỉnh", "", 0.9) {
			t.Error("probe failures must not block crawling")
		}
	})
}

func TestStoreFanout_DeleteByArticleIDs(t *testing.T) {
	repo := newMockArticleRepo()
	repo.put(&domain.Article{ArticleID: "a1", URL: "https://x/a1"})
	engine := newMockSearchEngine()
	vectors := newMockVectorIndex()
	f := NewStoreFanout(repo, engine, vectors, &mockEmbedder{})

	if err := f.DeleteByArticleIDs(context.Background(), []string{"a1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, still := repo.articles["a1"]; still {
		t.Error("article must leave the document store")
	}
	if len(engine.deleted) != 1 || engine.deleted[0] != "a1" {
		t.Errorf("lexical deletes = %v", engine.deleted)
	}
	if len(vectors.deleted) != 1 || vectors.deleted[0] != "a1" {
		t.Errorf("vector deletes = %v", vectors.deleted)
	}
}
