// Package textutil holds the text-processing helpers shared by the
// enrichment pipeline and the site adapters.
package textutil

import (
	"strings"
	"unicode"
)

const (
	// MinSummarySentenceRunes filters fragments out of summary selection.
	MinSummarySentenceRunes = 25

	// MaxSummaryCandidates bounds how many sentences the extractive
	// summarizer embeds per document.
	MaxSummaryCandidates = 50
)

// SplitSentences cuts text on sentence terminators (. ! ?) followed by
// whitespace. Terminators stay attached to their sentence.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		// Swallow runs of terminators ("?!", "...").
		j := i
		for j+1 < len(runes) && isTerminator(runes[j+1]) {
			j++
		}
		if j+1 >= len(runes) || unicode.IsSpace(runes[j+1]) {
			if s := strings.TrimSpace(string(runes[start : j+1])); s != "" {
				sentences = append(sentences, s)
			}
			start = j + 1
		}
		i = j
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// SummaryCandidates keeps sentences long enough to carry meaning, capped
// at the first MaxSummaryCandidates to bound embedding cost.
func SummaryCandidates(sentences []string) []string {
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if len([]rune(s)) >= MinSummarySentenceRunes {
			out = append(out, s)
		}
		if len(out) == MaxSummaryCandidates {
			break
		}
	}
	return out
}

// TruncateRunes caps text at n runes without splitting a character.
func TruncateRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
