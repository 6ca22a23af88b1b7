package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"news-crawler/domain"
	"news-crawler/port"
)

func listingFixture(n int, published time.Time) ([]domain.ListingItem, map[string]*domain.Article) {
	items := make([]domain.ListingItem, n)
	articles := make(map[string]*domain.Article, n)
	for i := 0; i < n; i++ {
		url := fmt.Sprintf("https://vnexpress.net/bai-%d.html", i)
		items[i] = domain.ListingItem{
			URL:         url,
			Title:       fmt.Sprintf("Chứng khoán bản tin %d", i),
			PublishDate: &published,
		}
		articles[url] = &domain.Article{
			ArticleID:   domain.ArticleIDForURL(url),
			URL:         url,
			Title:       items[i].Title,
			Content:     "Nội dung bản tin chứng khoán dài hơn mức tối thiểu.",
			Website:     "vnexpress.net",
			PublishDate: &published,
			Status:      domain.StatusRaw,
		}
	}
	return items, articles
}

func executorFixture(adapter *mockAdapter) (*CrawlExecutor, *mockArticleRepo, *mockSessionRepo, *mockProgressStore) {
	repo := newMockArticleRepo()
	sessions := newMockSessionRepo()
	progress := newMockProgressStore()
	fanout := NewStoreFanout(repo, newMockSearchEngine(), newMockVectorIndex(), &mockEmbedder{})
	registry := &mockRegistry{adapters: map[string]port.SiteAdapter{adapter.website: adapter}}

	return NewCrawlExecutor(registry, fanout, repo, sessions, progress), repo, sessions, progress
}

func TestCrawlExecutor_QuotaIsExact(t *testing.T) {
	published := time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local)
	items, articles := listingFixture(8, published)
	adapter := &mockAdapter{
		website:  "vnexpress.net",
		pages:    map[int][]domain.ListingItem{1: items},
		articles: articles,
	}
	u, repo, _, _ := executorFixture(adapter)

	req := searchRequest(3)
	saved := u.Execute(context.Background(), req, "s1", 0)

	if saved != 3 {
		t.Fatalf("saved = %d, want exactly the quota", saved)
	}
	count, _ := repo.CountBySearchID(context.Background(), "s1")
	if count != 3 {
		t.Errorf("claimed articles = %d", count)
	}
	for _, a := range repo.articles {
		if a.UserID != "u1" {
			t.Errorf("article %s attributed to %q", a.ArticleID, a.UserID)
		}
		if len(a.SearchKeyword) != 1 || a.SearchKeyword[0] != req.KeywordSearch {
			t.Errorf("search keyword = %v", a.SearchKeyword)
		}
	}
}

func TestCrawlExecutor_ExistingArticlesClaimedWithoutRefetch(t *testing.T) {
	published := time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local)
	items, articles := listingFixture(2, published)

	// The first listing row is already stored; a refetch attempt would
	// error out.
	adapter := &mockAdapter{
		website:   "vnexpress.net",
		pages:     map[int][]domain.ListingItem{1: items},
		articles:  map[string]*domain.Article{items[1].URL: articles[items[1].URL]},
		fetchErrs: map[string]error{items[0].URL: fmt.Errorf("must not refetch")},
	}
	u, repo, _, _ := executorFixture(adapter)

	stored := articles[items[0].URL]
	stored.SearchIDs = []string{"older-session"}
	repo.put(stored)

	saved := u.Execute(context.Background(), searchRequest(2), "s1", 0)
	if saved != 2 {
		t.Fatalf("saved = %d, want 2 (1 claimed + 1 fetched)", saved)
	}

	if !repo.articles[stored.ArticleID].HasSearchID("s1") {
		t.Error("existing article must gain the new session claim")
	}
	if !repo.articles[stored.ArticleID].HasSearchID("older-session") {
		t.Error("existing claims must survive")
	}
}

func TestCrawlExecutor_DateWindowFilter(t *testing.T) {
	inWindow := time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local)
	outOfWindow := time.Date(2025, 8, 1, 0, 0, 0, 0, time.Local)

	items, articles := listingFixture(2, inWindow)
	articles[items[1].URL].PublishDate = &outOfWindow

	adapter := &mockAdapter{
		website:  "vnexpress.net",
		pages:    map[int][]domain.ListingItem{1: items},
		articles: articles,
	}
	u, repo, _, _ := executorFixture(adapter)

	saved := u.Execute(context.Background(), searchRequest(5), "s1", 0)
	if saved != 1 {
		t.Errorf("saved = %d, want the in-window article only", saved)
	}
	if len(repo.articles) != 1 {
		t.Errorf("stored = %d articles", len(repo.articles))
	}
}

func TestCrawlExecutor_UnknownWebsiteSkipped(t *testing.T) {
	adapter := &mockAdapter{website: "vnexpress.net"}
	u, _, _, _ := executorFixture(adapter)

	req := searchRequest(3)
	req.Websites = []string{"unknown.example", "vnexpress.net"}

	// The unknown site is skipped, the known one simply has no results.
	if saved := u.Execute(context.Background(), req, "s1", 0); saved != 0 {
		t.Errorf("saved = %d", saved)
	}
}

func TestCrawlExecutor_RunCompletesSession(t *testing.T) {
	published := time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local)
	items, articles := listingFixture(2, published)
	adapter := &mockAdapter{
		website:  "vnexpress.net",
		pages:    map[int][]domain.ListingItem{1: items},
		articles: articles,
	}
	u, _, sessions, progress := executorFixture(adapter)

	sessions.CreateSession(context.Background(), &domain.SearchSession{
		SearchID: "s1", UserID: "u1", Status: domain.SessionProcessing, TotalSaved: 3,
	})

	u.Run(context.Background(), searchRequest(2), "s1", 3)

	session, _ := sessions.GetSession(context.Background(), "s1")
	if session.Status != domain.SessionCompleted || session.TotalSaved != 5 {
		t.Errorf("session = %+v, want completed with baseline plus crawled", session)
	}

	snap, _ := progress.GetProgress(context.Background(), "s1")
	if snap == nil || snap.Status != domain.SessionCompleted || snap.TotalSaved != 5 {
		t.Errorf("final snapshot = %+v", snap)
	}
}

func TestAttributedKeywords(t *testing.T) {
	article := &domain.Article{
		Website:        "cafef.vn",
		Tags:           []string{"thép", "hòa phát"},
		SiteCategories: []string{"Thị trường", "Chứng khoán", "Cổ phiếu"},
	}

	if got := attributedKeywords("thép", article); len(got) != 1 || got[0] != "thép" {
		t.Errorf("keyword wins: %v", got)
	}
	if got := attributedKeywords("", article); len(got) != 2 || got[0] != "thép" {
		t.Errorf("tags next: %v", got)
	}

	article.Tags = nil
	if got := attributedKeywords("", article); len(got) != 2 || got[0] != "Chứng khoán" || got[1] != "Cổ phiếu" {
		t.Errorf("two most specific categories: %v", got)
	}

	article.SiteCategories = nil
	if got := attributedKeywords("", article); len(got) != 1 || got[0] != "cafef.vn" {
		t.Errorf("website as last resort: %v", got)
	}
}
