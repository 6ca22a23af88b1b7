package usecase

import (
	"context"
	"testing"
	"time"

	"news-crawler/domain"
)

func TestRetrieveContext_Execute(t *testing.T) {
	published := time.Date(2025, 6, 10, 8, 0, 0, 0, time.Local)

	vectors := newMockVectorIndex()
	vectors.points = []domain.ScoredPoint{
		{Score: 0.92, Payload: domain.PointPayload{
			Kind:        domain.PointChunk,
			ArticleID:   "a1",
			Text:        "Đoạn nội dung về thị trường chứng khoán.",
			Title:       "Bản tin thị trường",
			URL:         "https://x/a1",
			PublishDate: &published,
		}},
		{Score: 0.85, Payload: domain.PointPayload{
			Kind:        domain.PointAISummary,
			ArticleID:   "a2",
			SummaryText: []string{"Câu một.", "Câu hai."},
			Title:       "Bài tóm tắt",
			URL:         "https://x/a2",
		}},
	}

	repo := newMockArticleRepo()
	repo.put(&domain.Article{ArticleID: "a1", URL: "https://x/a1", AISentimentLabel: domain.SentimentPositive})

	u := NewRetrieveContextUsecase(vectors, &mockEmbedder{}, repo)

	contexts, err := u.Execute(context.Background(), "thị trường hôm nay thế nào?", "u1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contexts) != 2 {
		t.Fatalf("contexts = %d", len(contexts))
	}

	first := contexts[0]
	if first.Text != "Đoạn nội dung về thị trường chứng khoán." || first.Score != 0.92 {
		t.Errorf("first context = %+v", first)
	}
	if first.PublishDate != published.Format(time.RFC3339) {
		t.Errorf("publish date = %q", first.PublishDate)
	}
	if first.SentimentLabel != domain.SentimentPositive {
		t.Errorf("sentiment = %s, want the document-store label", first.SentimentLabel)
	}

	// Summary points read as joined summary text; the unknown article id
	// leaves sentiment blank.
	second := contexts[1]
	if second.Text != "Câu một.\nCâu hai." {
		t.Errorf("summary context text = %q", second.Text)
	}
	if second.SentimentLabel != "" {
		t.Errorf("sentiment = %q", second.SentimentLabel)
	}

	// The user scope admits the requester plus the system lanes.
	filter := vectors.lastFilter
	if len(filter.UserIDs) != 3 || filter.UserIDs[0] != "u1" {
		t.Errorf("user filter = %v", filter.UserIDs)
	}
}

func TestRetrieveContext_EmptyQuestion(t *testing.T) {
	u := NewRetrieveContextUsecase(newMockVectorIndex(), &mockEmbedder{}, newMockArticleRepo())

	if _, err := u.Execute(context.Background(), "", "u1", 3); err == nil {
		t.Error("empty question must be rejected")
	}
}

func TestRetrieveContext_AnonymousScope(t *testing.T) {
	vectors := newMockVectorIndex()
	u := NewRetrieveContextUsecase(vectors, &mockEmbedder{}, newMockArticleRepo())

	if _, err := u.Execute(context.Background(), "câu hỏi", "", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors.lastFilter.UserIDs) != 0 {
		t.Errorf("anonymous queries must not be user-scoped: %v", vectors.lastFilter.UserIDs)
	}
}
