package usecase

import (
	"context"
	"sync"
	"time"

	"news-crawler/config"
	"news-crawler/domain"
	"news-crawler/logger"
	"news-crawler/port"
	"news-crawler/utils/otel"
)

// SiteRegistry resolves website hostnames to their crawl adapters.
type SiteRegistry interface {
	ForWebsite(website string) (port.SiteAdapter, error)
	Websites() []string
	// TopicLister fails for sites whose navigation cannot seed topics.
	TopicLister(website string) (port.TopicLister, error)
}

// CrawlExecutor runs keyword-search crawls. Sites run sequentially so the
// quota is respected exactly; detail fetches inside a page run
// concurrently under the fetcher's global cap.
type CrawlExecutor struct {
	registry    SiteRegistry
	fanout      *StoreFanout
	articleRepo port.ArticleRepository
	sessionRepo port.SessionRepository
	progress    port.ProgressStore
}

func NewCrawlExecutor(
	registry SiteRegistry,
	fanout *StoreFanout,
	articleRepo port.ArticleRepository,
	sessionRepo port.SessionRepository,
	progress port.ProgressStore,
) *CrawlExecutor {
	return &CrawlExecutor{
		registry:    registry,
		fanout:      fanout,
		articleRepo: articleRepo,
		sessionRepo: sessionRepo,
		progress:    progress,
	}
}

// Run executes a gap-fill crawl for the session and marks it completed.
// It is the background half of the hybrid search.
func (u *CrawlExecutor) Run(ctx context.Context, req domain.CrawlRequest, searchID string, baseline int) {
	ctx = logger.WithStage(logger.WithSearchID(ctx, searchID), "search_crawl")
	log := logger.GlobalContext.WithContext(ctx)

	started := time.Now()
	saved := u.Execute(ctx, req, searchID, baseline)
	if otel.Metrics != nil {
		otel.Metrics.CrawlBatchDuration.Record(ctx, time.Since(started).Seconds())
	}

	final := baseline + saved
	if err := u.sessionRepo.CompleteSession(ctx, searchID, final); err != nil {
		log.Error("complete session", "error", err)
	}
	u.saveProgress(ctx, searchID, domain.SessionCompleted, final)

	log.Info("background crawl finished", "saved", saved, "total", final)
}

// Execute crawls until the request quota is met or every site is
// exhausted. Returns the number of articles newly claimed for searchID.
func (u *CrawlExecutor) Execute(ctx context.Context, req domain.CrawlRequest, searchID string, baseline int) int {
	websites := req.Websites
	if len(websites) == 0 {
		websites = u.registry.Websites()
	}

	remaining := req.MaxArticles
	saved := 0
	for _, website := range websites {
		if remaining <= 0 {
			break
		}
		adapter, err := u.registry.ForWebsite(website)
		if err != nil {
			logger.GlobalContext.WithContext(ctx).Warn("skipping website", "website", website, "error", err)
			continue
		}

		u.crawlSite(logger.WithWebsite(ctx, website), adapter, req, searchID, remaining, func(added int) {
			saved += added
			remaining -= added
			u.reportProgress(ctx, searchID, baseline+saved)
		})
	}
	return saved
}

// crawlSite pages one site's search endpoint. onSaved is called after
// every stored batch with the number of articles it added.
func (u *CrawlExecutor) crawlSite(ctx context.Context, adapter port.SiteAdapter, req domain.CrawlRequest, searchID string, quota int, onSaved func(int)) {
	log := logger.GlobalContext.WithContext(ctx)
	terms := req.ContentTerms()
	saved := 0

	for page := 1; page <= config.MaxSearchPages && saved < quota; page++ {
		items, err := adapter.SearchListing(ctx, req.KeywordSearch, req.StartDate, req.EndDate, page)
		if err != nil {
			log.Warn("search listing failed", "page", page, "error", err)
			break
		}
		if len(items) == 0 {
			break
		}

		// Cap the page's candidates at the remaining quota before
		// spending detail fetches.
		if len(items) > quota-saved {
			items = items[:quota-saved]
		}

		fresh, claimed := u.splitExisting(ctx, items, searchID)
		saved += claimed
		if claimed > 0 {
			onSaved(claimed)
		}
		if saved >= quota {
			break
		}

		articles := u.fetchDetails(ctx, adapter, fresh, req, terms)
		if len(articles) > quota-saved {
			articles = articles[:quota-saved]
		}
		if len(articles) == 0 {
			continue
		}

		for _, a := range articles {
			a.UserID = req.UserID
			a.SearchIDs = []string{searchID}
			a.SearchKeyword = attributedKeywords(req.KeywordSearch, a)
		}

		if err := u.fanout.SaveArticles(ctx, articles); err != nil {
			log.Error("save crawled batch", "error", err)
			continue
		}
		if otel.Metrics != nil {
			otel.Metrics.CrawledTotal.Add(ctx, int64(len(articles)))
		}

		saved += len(articles)
		onSaved(len(articles))
	}
}

// splitExisting separates listing stubs into unseen ones and ones already
// stored. Stored articles are claimed for the session in place, without a
// refetch, and count toward the quota.
func (u *CrawlExecutor) splitExisting(ctx context.Context, items []domain.ListingItem, searchID string) ([]domain.ListingItem, int) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = domain.ArticleIDForURL(item.URL)
	}

	existing, err := u.articleRepo.FilterExistingIDs(ctx, ids)
	if err != nil {
		logger.GlobalContext.LogError(ctx, "filter existing articles", err)
		return items, 0
	}

	var fresh []domain.ListingItem
	var claimIDs []string
	for i, item := range items {
		if existing[ids[i]] {
			claimIDs = append(claimIDs, ids[i])
		} else {
			fresh = append(fresh, item)
		}
	}
	if len(claimIDs) > 0 {
		u.fanout.AddSearchID(ctx, claimIDs, searchID)
	}
	return fresh, len(claimIDs)
}

// fetchDetails resolves listing stubs concurrently. The shared fetcher
// bounds in-flight requests process-wide.
func (u *CrawlExecutor) fetchDetails(ctx context.Context, adapter port.SiteAdapter, items []domain.ListingItem, req domain.CrawlRequest, terms []string) []*domain.Article {
	log := logger.GlobalContext.WithContext(ctx)

	var mu sync.Mutex
	var wg sync.WaitGroup
	var articles []*domain.Article

	for _, item := range items {
		if u.fanout.IsNearDuplicate(ctx, item.Title, item.Summary, float32(config.DuplicateScoreThreshold)) {
			continue
		}

		wg.Add(1)
		go func(item domain.ListingItem) {
			defer wg.Done()

			article, err := adapter.FetchArticle(ctx, item)
			if err != nil {
				log.Warn("detail fetch failed", "url", item.URL, "error", err)
				return
			}
			if article == nil {
				return
			}
			if !domain.MatchesAnyTerm(terms, article.Content, article.Summary) {
				return
			}
			if article.PublishDate != nil &&
				(article.PublishDate.Before(req.StartDate) || article.PublishDate.After(req.EndDate.AddDate(0, 0, 1))) {
				return
			}

			mu.Lock()
			articles = append(articles, article)
			mu.Unlock()
		}(item)
	}
	wg.Wait()
	return articles
}

// attributedKeywords records what led to this article: the search
// keyword, else extracted tags, else the two most specific categories,
// else the website itself.
func attributedKeywords(keyword string, article *domain.Article) []string {
	if keyword != "" {
		return []string{keyword}
	}
	if len(article.Tags) > 0 {
		return article.Tags
	}
	if n := len(article.SiteCategories); n > 0 {
		start := n - 2
		if start < 0 {
			start = 0
		}
		return article.SiteCategories[start:]
	}
	return []string{article.Website}
}

func (u *CrawlExecutor) reportProgress(ctx context.Context, searchID string, total int) {
	if err := u.sessionRepo.UpdateProgress(ctx, searchID, total); err != nil {
		logger.GlobalContext.LogError(ctx, "update session progress", err)
	}
	u.saveProgress(ctx, searchID, domain.SessionProcessing, total)
}

func (u *CrawlExecutor) saveProgress(ctx context.Context, searchID string, status domain.SessionStatus, total int) {
	err := u.progress.SaveProgress(ctx, domain.ProgressSnapshot{
		SearchID:   searchID,
		Status:     status,
		TotalSaved: total,
		UpdatedAt:  time.Now(),
	})
	if err != nil {
		logger.GlobalContext.LogError(ctx, "save progress", err)
	}
}
