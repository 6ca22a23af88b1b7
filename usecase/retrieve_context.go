package usecase

import (
	"context"
	"errors"
	"time"

	"news-crawler/domain"
	"news-crawler/logger"
	"news-crawler/port"
)

// RetrieveContextUsecase is the semantic retrieval lane consumed by the
// chat assistant: vector-only search over chunk and summary points.
type RetrieveContextUsecase struct {
	vectorIndex port.VectorIndex
	embedder    port.Embedder
	articleRepo port.ArticleRepository
}

func NewRetrieveContextUsecase(vectorIndex port.VectorIndex, embedder port.Embedder, articleRepo port.ArticleRepository) *RetrieveContextUsecase {
	return &RetrieveContextUsecase{
		vectorIndex: vectorIndex,
		embedder:    embedder,
		articleRepo: articleRepo,
	}
}

// Execute returns at most topK contexts in similarity order. When userID
// is set, hits are limited to that user's articles plus the system crawl
// lanes.
func (u *RetrieveContextUsecase) Execute(ctx context.Context, question, userID string, topK int) ([]domain.RetrievedContext, error) {
	if question == "" {
		return nil, errors.New("question cannot be empty")
	}
	if topK <= 0 {
		topK = 3
	}

	vectors, err := u.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return nil, err
	}

	var filter domain.VectorFilter
	if userID != "" {
		filter.UserIDs = []string{userID, domain.SystemUserID, domain.AutoSearchID}
	}

	points, err := u.vectorIndex.Search(ctx, vectors[0], filter, 0, topK)
	if err != nil {
		return nil, err
	}

	contexts := make([]domain.RetrievedContext, 0, len(points))
	for _, p := range points {
		payload := p.Payload
		rc := domain.RetrievedContext{
			Text:  payload.ContextText(),
			Title: payload.Title,
			URL:   payload.URL,
			Score: p.Score,
		}
		if payload.PublishDate != nil {
			rc.PublishDate = payload.PublishDate.Format(time.RFC3339)
		}
		rc.SentimentLabel = u.lookupSentiment(ctx, payload.ArticleID)
		contexts = append(contexts, rc)
	}
	return contexts, nil
}

// lookupSentiment reads the label from the document store; the vector
// payload only carries the confidence score.
func (u *RetrieveContextUsecase) lookupSentiment(ctx context.Context, articleID string) domain.SentimentLabel {
	if articleID == "" {
		return ""
	}
	article, err := u.articleRepo.GetArticleByID(ctx, articleID)
	if err != nil {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			logger.GlobalContext.LogError(ctx, "lookup sentiment", err)
		}
		return ""
	}
	return article.AISentimentLabel
}
