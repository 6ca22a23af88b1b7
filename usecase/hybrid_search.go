package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"news-crawler/config"
	"news-crawler/domain"
	"news-crawler/logger"
	"news-crawler/port"
	"news-crawler/utils/otel"
)

// CrawlRunner executes a gap-fill crawl for a search session. baseline is
// the number of articles the session already claimed before the crawl.
type CrawlRunner interface {
	Run(ctx context.Context, req domain.CrawlRequest, searchID string, baseline int)
}

// HybridSearchUsecase reconciles a search request against the lexical and
// vector indexes, claims the matches for the new session and queues a
// background crawl when the stores cannot meet the requested count.
type HybridSearchUsecase struct {
	searchEngine port.SearchEngine
	vectorIndex  port.VectorIndex
	embedder     port.Embedder
	fanout       *StoreFanout
	sessionRepo  port.SessionRepository
	progress     port.ProgressStore
	runner       CrawlRunner
}

// HybridSearchResult is what the caller gets back immediately; crawling,
// if any, continues in the background.
type HybridSearchResult struct {
	SearchID          string
	Status            domain.SessionStatus
	TotalAvailableNow int
	Page              int
	PageSize          int
	StreamURL         string
}

func NewHybridSearchUsecase(
	searchEngine port.SearchEngine,
	vectorIndex port.VectorIndex,
	embedder port.Embedder,
	fanout *StoreFanout,
	sessionRepo port.SessionRepository,
	progress port.ProgressStore,
	runner CrawlRunner,
) *HybridSearchUsecase {
	return &HybridSearchUsecase{
		searchEngine: searchEngine,
		vectorIndex:  vectorIndex,
		embedder:     embedder,
		fanout:       fanout,
		sessionRepo:  sessionRepo,
		progress:     progress,
		runner:       runner,
	}
}

func (u *HybridSearchUsecase) Execute(ctx context.Context, req domain.CrawlRequest) (*HybridSearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	defer func() {
		if otel.Metrics != nil {
			otel.Metrics.SearchDuration.Record(ctx, time.Since(started).Seconds())
		}
	}()

	now := time.Now()
	searchID := domain.NewSearchID(now, req.UserID)
	ctx = logger.WithSearchID(ctx, searchID)
	log := logger.GlobalContext.WithContext(ctx)

	lexical := u.searchLexical(ctx, req)
	semantic := u.searchSemantic(ctx, req)
	merged := domain.MergeHits(lexical, semantic, req.MaxArticles)

	log.Info("hybrid search merged",
		"keyword", req.KeywordSearch,
		"lexical", len(lexical),
		"semantic", len(semantic),
		"merged", len(merged),
	)

	if len(merged) > 0 {
		ids := make([]string, 0, len(merged))
		for _, h := range merged {
			if h.ArticleID != "" {
				ids = append(ids, h.ArticleID)
			}
		}
		u.fanout.AddSearchID(ctx, ids, searchID)
	}

	total := len(merged)
	status := domain.SessionCompleted
	if total < req.MaxArticles {
		status = domain.SessionProcessing
	}

	session := &domain.SearchSession{
		SearchID:             searchID,
		UserID:               req.UserID,
		KeywordSearch:        req.KeywordSearch,
		KeywordContent:       req.KeywordContent,
		MaxArticlesRequested: req.MaxArticles,
		TotalSaved:           total,
		Status:               status,
		TimeRange:            fmt.Sprintf("%s - %s", req.StartDate.Format("02/01/2006"), req.EndDate.Format("02/01/2006")),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := u.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	u.saveProgress(ctx, searchID, status, total)

	if status == domain.SessionProcessing {
		missing := req.MaxArticles - total
		crawlReq := req.WithQuota(missing)
		go u.runner.Run(context.WithoutCancel(ctx), crawlReq, searchID, total)
	}

	return &HybridSearchResult{
		SearchID:          searchID,
		Status:            status,
		TotalAvailableNow: total,
		Page:              req.Page,
		PageSize:          req.PageSize,
		StreamURL:         "/crawl/stream-status/" + searchID,
	}, nil
}

// searchLexical overfetches from the lexical index, then applies the
// title-substring and keyword_content post-filters. Index failures return
// an empty lane; the semantic lane and the crawl can still serve.
func (u *HybridSearchUsecase) searchLexical(ctx context.Context, req domain.CrawlRequest) []domain.ArticleHit {
	filter := domain.SearchFilter{
		Websites:      req.Websites,
		PublishedFrom: &req.StartDate,
		PublishedTo:   &req.EndDate,
	}

	hits, err := u.searchEngine.Search(ctx, req.KeywordSearch, filter, req.MaxArticles+config.LexicalOverfetch)
	if err != nil {
		logger.GlobalContext.LogError(ctx, "lexical search", err)
		return nil
	}

	// The engine matches across all searchable fields; the title
	// substring check narrows hits to the headline, as the result list
	// presents headlines only.
	keyword := strings.ToLower(req.KeywordSearch)
	terms := req.ContentTerms()

	out := make([]domain.ArticleHit, 0, len(hits))
	for _, h := range hits {
		if !strings.Contains(strings.ToLower(h.Title), keyword) {
			continue
		}
		if !domain.MatchesAnyTerm(terms, h.Content, h.Summary) {
			continue
		}
		out = append(out, h)
	}
	return out
}

// searchSemantic embeds the query and searches the vector index above the
// semantic score threshold, post-filtering by the request's date window
// and content terms.
func (u *HybridSearchUsecase) searchSemantic(ctx context.Context, req domain.CrawlRequest) []domain.ArticleHit {
	vectors, err := u.embedder.EmbedTexts(ctx, []string{req.KeywordSearch})
	if err != nil || len(vectors) == 0 {
		if err != nil {
			logger.GlobalContext.LogError(ctx, "query embedding", err)
		}
		return nil
	}

	points, err := u.vectorIndex.Search(ctx, vectors[0],
		domain.VectorFilter{Websites: req.Websites},
		float32(config.SemanticScoreThreshold),
		req.MaxArticles+config.LexicalOverfetch,
	)
	if err != nil {
		logger.GlobalContext.LogError(ctx, "semantic search", err)
		return nil
	}

	// The listing-date window on vnexpress is inclusive of the end day;
	// extend the semantic window the same way.
	windowEnd := req.EndDate.AddDate(0, 0, 1)
	terms := req.ContentTerms()

	var out []domain.ArticleHit
	for _, p := range points {
		payload := p.Payload
		if payload.ArticleID == "" || payload.PublishDate == nil {
			continue
		}
		if payload.PublishDate.Before(req.StartDate) || payload.PublishDate.After(windowEnd) {
			continue
		}
		if !domain.MatchesAnyTerm(terms, payload.ContextText()) {
			continue
		}
		out = append(out, domain.ArticleHit{
			ArticleID:   payload.ArticleID,
			URL:         payload.URL,
			Title:       payload.Title,
			PublishDate: payload.PublishDate,
		})
	}
	return out
}

func (u *HybridSearchUsecase) saveProgress(ctx context.Context, searchID string, status domain.SessionStatus, total int) {
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
