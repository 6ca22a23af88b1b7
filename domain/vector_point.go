package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PointKind is the closed set of payload variants stored in the vector
// index.
type PointKind string

const (
	PointChunk     PointKind = "chunk"
	PointAISummary PointKind = "ai_summary"
)

// EmbeddingDim is the vector size of every point. Changing the embedding
// model's dimensionality requires dropping and recreating the collection.
const EmbeddingDim = 384

// PointPayload is the metadata carried by a vector point. Text is set for
// chunk points, SummaryText for ai_summary points.
type PointPayload struct {
	Kind        PointKind
	ArticleID   string
	ChunkID     string
	Text        string
	SummaryText []string
	Title       string
	URL         string
	Website     string
	PublishDate *time.Time
	Sentiment   float64
	Topic       []string
	SearchIDs   []string
	UserID      string
}

// ContextText is what a retrieval consumer reads from a hit: chunk text, or
// the joined summary sentences for ai_summary points.
func (p *PointPayload) ContextText() string {
	if p.Kind == PointAISummary {
		return strings.Join(p.SummaryText, "\n")
	}
	return p.Text
}

// VectorPoint couples a stable id, the embedding and its payload.
type VectorPoint struct {
	ID      string
	Vector  []float32
	Payload PointPayload
}

// ChunkPointID derives the stable vector point id for a chunk (UUIDv5 over
// the chunk's logical key). Re-enrichment of unchanged content overwrites
// the same points.
func ChunkPointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(chunkID)).String()
}

// SummaryPointID derives the stable vector point id for an article's
// summary point.
func SummaryPointID(articleID string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(articleID+"_summary")).String()
}

// ScoredPoint is a vector search hit.
type ScoredPoint struct {
	Score   float32
	Payload PointPayload
}

// RetrievedContext is one entry of the retrieval contract consumed by the
// chat assistant.
type RetrievedContext struct {
	Text           string
	Title          string
	URL            string
	Score          float32
	PublishDate    string
	SentimentLabel SentimentLabel
}
