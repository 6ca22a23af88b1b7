package domain

import (
	"fmt"
	"strings"
)

const (
	// DefaultChunkSize is the character window used to slice content into
	// retrieval chunks.
	DefaultChunkSize = 1000

	// MinChunkChars drops trailing slices too short to be useful as a
	// semantic retrieval unit.
	MinChunkChars = 50
)

// Chunk is a fixed-size slice of an article's content used as the semantic
// retrieval unit. Identity is "<article_id>_<index>", which keeps vector
// point ids stable across re-enrichment of unchanged content.
type Chunk struct {
	ChunkID   string
	ArticleID string
	Index     int
	Text      string
}

// SplitChunks slices content into character windows of the given size.
// Windows are cut on runes so multi-byte Vietnamese text never splits
// mid-character. Slices shorter than MinChunkChars are skipped but keep
// their index, so ids stay aligned with offsets.
func SplitChunks(articleID, content string, size int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	runes := []rune(content)
	if len(runes) == 0 {
		return nil
	}

	var chunks []Chunk
	for i := 0; i*size < len(runes); i++ {
		offset := i * size
		end := offset + size
		if end > len(runes) {
			end = len(runes)
		}
		text := string(runes[offset:end])
		if len([]rune(strings.TrimSpace(text))) < MinChunkChars {
			continue
		}
		chunks = append(chunks, Chunk{
			ChunkID:   fmt.Sprintf("%s_%d", articleID, i),
			ArticleID: articleID,
			Index:     i,
			Text:      text,
		})
	}
	return chunks
}
