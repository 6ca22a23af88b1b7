package gateway

import (
	"context"
	"strings"

	"news-crawler/domain"
)

// EmbeddingDriver is what the gateway needs from the embedding client.
type EmbeddingDriver interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// SentimentDriver is what the gateway needs from the sentiment client.
type SentimentDriver interface {
	Classify(ctx context.Context, text string) (string, float64, error)
}

type EmbedderGateway struct {
	driver EmbeddingDriver
}

func NewEmbedderGateway(driver EmbeddingDriver) *EmbedderGateway {
	return &EmbedderGateway{driver: driver}
}

func (g *EmbedderGateway) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := g.driver.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, &domain.ProviderError{Provider: "embedding", Err: err.Error()}
	}
	return vectors, nil
}

type SentimentGateway struct {
	driver SentimentDriver
}

func NewSentimentGateway(driver SentimentDriver) *SentimentGateway {
	return &SentimentGateway{driver: driver}
}

// Classify maps the model's raw labels (POS, NEG, NEU) onto the domain
// labels. Unknown labels fall back to neutral.
func (g *SentimentGateway) Classify(ctx context.Context, text string) (domain.SentimentLabel, float64, error) {
	label, score, err := g.driver.Classify(ctx, text)
	if err != nil {
		return "", 0, &domain.ProviderError{Provider: "sentiment", Err: err.Error()}
	}

	switch strings.ToUpper(label) {
	case "POS", "POSITIVE":
		return domain.SentimentPositive, score, nil
	case "NEG", "NEGATIVE":
		return domain.SentimentNegative, score, nil
	default:
		return domain.SentimentNeutral, score, nil
	}
}
