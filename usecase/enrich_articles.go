package usecase

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"news-crawler/config"
	"news-crawler/domain"
	"news-crawler/logger"
	"news-crawler/port"
	"news-crawler/textutil"
	"news-crawler/utils/otel"
)

const (
	// minEnrichRunes short-circuits enrichment: articles below this get a
	// Neutral synthetic result without touching the models.
	minEnrichRunes = 50

	// summarySentences is the size of the extractive summary.
	summarySentences = 3

	// sentimentInputRunes caps classifier input.
	sentimentInputRunes = 1500
)

// EnrichArticlesUsecase drives one enrichment tick: claim a batch of
// raw/ai_error articles, derive summary and sentiment, and re-emit every
// store projection.
type EnrichArticlesUsecase struct {
	articleRepo port.ArticleRepository
	embedder    port.Embedder
	sentiment   port.SentimentClassifier
	fanout      *StoreFanout
}

func NewEnrichArticlesUsecase(articleRepo port.ArticleRepository, embedder port.Embedder, sentiment port.SentimentClassifier, fanout *StoreFanout) *EnrichArticlesUsecase {
	return &EnrichArticlesUsecase{
		articleRepo: articleRepo,
		embedder:    embedder,
		sentiment:   sentiment,
		fanout:      fanout,
	}
}

// Execute claims and processes one batch. Returns how many articles ended
// up enriched.
func (u *EnrichArticlesUsecase) Execute(ctx context.Context) (int, error) {
	ctx = logger.WithStage(ctx, "enrichment")
	batch, err := u.articleRepo.ClaimRawBatch(ctx, config.EnrichBatchSize)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, nil
	}

	log := logger.GlobalContext.WithContext(ctx)
	enriched := 0
	for _, article := range batch {
		actx := logger.WithArticleID(ctx, article.ArticleID)
		if err := u.enrichOne(actx, article); err != nil {
			log.Error("enrichment failed", "article_id", article.ArticleID, "error", err)
			if markErr := u.articleRepo.MarkAIError(actx, article.ArticleID); markErr != nil {
				log.Error("mark ai_error failed", "article_id", article.ArticleID, "error", markErr)
			}
			continue
		}
		enriched++
	}

	if otel.Metrics != nil && enriched > 0 {
		otel.Metrics.EnrichedTotal.Add(ctx, int64(enriched))
	}
	return enriched, nil
}

func (u *EnrichArticlesUsecase) enrichOne(ctx context.Context, article *domain.Article) error {
	text := article.AnalysisText()

	if len([]rune(strings.TrimSpace(text))) < minEnrichRunes {
		article.AISummary = nil
		article.AISentimentLabel = domain.SentimentNeutral
		article.AISentimentScore = 0.0
	} else {
		summary, err := u.extractSummary(ctx, text)
		if err != nil {
			return err
		}
		article.AISummary = summary

		label, score := u.classify(ctx, article)
		article.AISentimentLabel = label
		article.AISentimentScore = score
	}

	now := time.Now()
	article.LastEnrichedAt = &now
	article.Status = domain.StatusEnriched

	if err := u.articleRepo.MarkEnriched(ctx, article); err != nil {
		return err
	}

	// Embedding failures here leave the article enriched in the document
	// store but without vector points; flag it so the next tick re-runs
	// the whole pass.
	if err := u.fanout.EmitEnriched(ctx, article); err != nil {
		if markErr := u.articleRepo.MarkAIError(ctx, article.ArticleID); markErr != nil {
			logger.GlobalContext.LogError(ctx, "mark ai_error", markErr)
		}
		return err
	}
	return nil
}

// extractSummary picks the sentences closest to the document centroid,
// keeping them in document order.
func (u *EnrichArticlesUsecase) extractSummary(ctx context.Context, text string) ([]string, error) {
	candidates := textutil.SummaryCandidates(textutil.SplitSentences(text))
	if len(candidates) == 0 {
		return nil, nil
	}
	if len(candidates) <= summarySentences {
		return candidates, nil
	}

	vectors, err := u.embedder.EmbedTexts(ctx, candidates)
	if err != nil {
		return nil, err
	}

	centroid := meanVector(vectors)
	type scored struct {
		index int
		score float64
	}
	scores := make([]scored, len(vectors))
	for i, v := range vectors {
		scores[i] = scored{index: i, score: cosineSimilarity(v, centroid)}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	picked := scores[:summarySentences]
	sort.Slice(picked, func(i, j int) bool { return picked[i].index < picked[j].index })

	summary := make([]string, len(picked))
	for i, s := range picked {
		summary[i] = candidates[s.index]
	}
	return summary, nil
}

// classify scores sentiment on the summary when present, else on the
// leading slice of the content. An unavailable classifier degrades to
// Neutral.
func (u *EnrichArticlesUsecase) classify(ctx context.Context, article *domain.Article) (domain.SentimentLabel, float64) {
	input := strings.Join(article.AISummary, " ")
	if strings.TrimSpace(input) == "" {
		input = textutil.TruncateRunes(article.Content, sentimentInputRunes)
	} else {
		input = textutil.TruncateRunes(input, sentimentInputRunes)
	}
	if strings.TrimSpace(input) == "" {
		return domain.SentimentNeutral, 0.0
	}

	if u.sentiment == nil {
		return domain.SentimentNeutral, 0.0
	}
	label, score, err := u.sentiment.Classify(ctx, input)
	if err != nil {
		logger.GlobalContext.LogError(ctx, "sentiment classify", err)
		return domain.SentimentNeutral, 0.0
	}
	return label, score
}

func meanVector(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	mean := make([]float32, len(vectors[0]))
	for _, v := range vectors {
		for i, x := range v {
			mean[i] += x
		}
	}
	n := float32(len(vectors))
	for i := range mean {
		mean[i] /= n
	}
	return mean
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
