package port

import (
	"context"

	"news-crawler/domain"
)

// Embedder turns texts into fixed-size vectors. Implementations return
// one vector per input text, in order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// SentimentClassifier scores one document's sentiment.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (domain.SentimentLabel, float64, error)
}
