package usecase

import (
	"context"
	"strings"
	"sync/atomic"

	"news-crawler/domain"
	"news-crawler/logger"
	"news-crawler/port"
	"news-crawler/textutil"
	"news-crawler/utils/otel"
)

// StoreFanout mirrors article writes across the document store, the
// lexical index and the vector index. The document store is
// authoritative; index writes are best-effort and converge through the
// next enrichment pass.
type StoreFanout struct {
	articleRepo  port.ArticleRepository
	searchEngine port.SearchEngine
	vectorIndex  port.VectorIndex
	embedder     port.Embedder
	lexicalReady atomic.Bool
}

func NewStoreFanout(articleRepo port.ArticleRepository, searchEngine port.SearchEngine, vectorIndex port.VectorIndex, embedder port.Embedder) *StoreFanout {
	return &StoreFanout{
		articleRepo:  articleRepo,
		searchEngine: searchEngine,
		vectorIndex:  vectorIndex,
		embedder:     embedder,
	}
}

// SaveArticles upserts the batch into the document store and mirrors it
// into the lexical index. An index failure is logged, counted and left
// for enrichment to repair.
func (f *StoreFanout) SaveArticles(ctx context.Context, articles []*domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	if err := f.articleRepo.UpsertArticles(ctx, articles); err != nil {
		return err
	}

	f.mirrorLexical(ctx, articles)
	return nil
}

// mirrorLexical writes the lexical projection, applying the index settings
// first. Settings application is idempotent on the engine side and is
// retried on every fanout until it sticks, so an engine that was down at
// startup still converges.
func (f *StoreFanout) mirrorLexical(ctx context.Context, articles []*domain.Article) {
	if !f.lexicalReady.Load() {
		if err := f.searchEngine.EnsureIndex(ctx); err != nil {
			f.recordFanoutError(ctx, "lexical_index", err)
			return
		}
		f.lexicalReady.Store(true)
	}
	if err := f.searchEngine.IndexArticles(ctx, articles); err != nil {
		f.recordFanoutError(ctx, "lexical_index", err)
	}
}

// EmitEnriched re-emits an enriched article's projections: the lexical
// mirror and the full set of vector points (chunks plus summary point).
// Point ids are stable, so re-emission overwrites instead of duplicating.
func (f *StoreFanout) EmitEnriched(ctx context.Context, article *domain.Article) error {
	f.mirrorLexical(ctx, []*domain.Article{article})

	points, err := f.buildVectorPoints(ctx, article)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}
	if err := f.vectorIndex.UpsertPoints(ctx, points); err != nil {
		f.recordFanoutError(ctx, "vector_index", err)
	}
	return nil
}

// buildVectorPoints embeds the article's chunks and its AI summary. An
// article too short to chunk yields no points.
func (f *StoreFanout) buildVectorPoints(ctx context.Context, article *domain.Article) ([]domain.VectorPoint, error) {
	chunks := domain.SplitChunks(article.ArticleID, article.Content, domain.DefaultChunkSize)

	texts := make([]string, 0, len(chunks)+1)
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	summaryText := strings.Join(article.AISummary, "\n")
	if summaryText != "" {
		texts = append(texts, summaryText)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := f.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}

	points := make([]domain.VectorPoint, 0, len(texts))
	for i, c := range chunks {
		points = append(points, domain.VectorPoint{
			ID:      domain.ChunkPointID(c.ChunkID),
			Vector:  vectors[i],
			Payload: f.pointPayload(article, domain.PointChunk, c.ChunkID, c.Text),
		})
	}
	if summaryText != "" {
		points = append(points, domain.VectorPoint{
			ID:      domain.SummaryPointID(article.ArticleID),
			Vector:  vectors[len(vectors)-1],
			Payload: f.pointPayload(article, domain.PointAISummary, "", ""),
		})
	}
	return points, nil
}

func (f *StoreFanout) pointPayload(article *domain.Article, kind domain.PointKind, chunkID, text string) domain.PointPayload {
	p := domain.PointPayload{
		Kind:        kind,
		ArticleID:   article.ArticleID,
		Title:       article.Title,
		URL:         article.URL,
		Website:     article.Website,
		PublishDate: article.PublishDate,
		Sentiment:   article.AISentimentScore,
		Topic:       article.SiteCategories,
		SearchIDs:   article.EffectiveSearchIDs(),
		UserID:      article.UserID,
	}
	if kind == domain.PointAISummary {
		p.SummaryText = article.AISummary
	} else {
		p.ChunkID = chunkID
		p.Text = text
	}
	return p
}

// AddSearchID grows the claim set of each article across all three
// stores. The document store leads; index patches follow best-effort.
func (f *StoreFanout) AddSearchID(ctx context.Context, articleIDs []string, searchID string) {
	for _, id := range articleIDs {
		added, err := f.articleRepo.AddSearchID(ctx, id, searchID)
		if err != nil {
			f.recordFanoutError(ctx, "document_store", err)
			continue
		}
		if !added {
			continue
		}

		article, err := f.articleRepo.GetArticleByID(ctx, id)
		if err != nil {
			f.recordFanoutError(ctx, "document_store", err)
			continue
		}

		if err := f.searchEngine.UpdateSearchIDs(ctx, id, article.EffectiveSearchIDs()); err != nil {
			f.recordFanoutError(ctx, "lexical_index", err)
		}
		if err := f.vectorIndex.AddSearchID(ctx, id, searchID); err != nil {
			f.recordFanoutError(ctx, "vector_index", err)
		}
	}
}

// DeleteByArticleIDs removes articles from all three stores.
func (f *StoreFanout) DeleteByArticleIDs(ctx context.Context, articleIDs []string) error {
	if len(articleIDs) == 0 {
		return nil
	}

	if err := f.articleRepo.DeleteArticles(ctx, articleIDs); err != nil {
		return err
	}
	if err := f.searchEngine.DeleteArticles(ctx, articleIDs); err != nil {
		f.recordFanoutError(ctx, "lexical_index", err)
	}
	if err := f.vectorIndex.DeleteByArticleIDs(ctx, articleIDs); err != nil {
		f.recordFanoutError(ctx, "vector_index", err)
	}
	return nil
}

// IsNearDuplicate probes the vector index with the article's headline
// text. A hit at or above the duplicate threshold means a semantically
// equivalent article is already stored. Probe failures report
// not-duplicate so crawling never stalls on the index.
func (f *StoreFanout) IsNearDuplicate(ctx context.Context, title, summary string, threshold float32) bool {
	probe := textutil.TruncateRunes(strings.TrimSpace(title+" "+summary), 1000)
	if probe == "" {
		return false
	}

	vectors, err := f.embedder.EmbedTexts(ctx, []string{probe})
	if err != nil || len(vectors) == 0 {
		return false
	}

	hits, err := f.vectorIndex.Search(ctx, vectors[0], domain.VectorFilter{}, threshold, 1)
	if err != nil {
		logger.Logger.Warn("duplicate probe failed", "error", err)
		return false
	}
	return len(hits) > 0
}

func (f *StoreFanout) recordFanoutError(ctx context.Context, store string, err error) {
	logger.Logger.Error("store fanout failed", "store", store, "error", err)
	if otel.Metrics != nil {
		otel.Metrics.FanoutErrorsTotal.Add(ctx, 1)
	}
}
