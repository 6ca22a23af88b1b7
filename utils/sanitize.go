// Package utils provides input sanitization for user-supplied search
// keywords before they reach the crawl pipeline and the search stores.
package utils

import (
	"strings"
)

// MaxKeywordLength caps user-supplied keywords and content terms.
const MaxKeywordLength = 500

// KeywordError reports a keyword that failed validation.
type KeywordError struct {
	Reason string
}

func (e *KeywordError) Error() string {
	return "invalid keyword: " + e.Reason
}

var zeroWidthChars = []rune{
	'\u200B', // zero width space
	'\u200C', // zero width non-joiner
	'\u200D', // zero width joiner
	'\uFEFF', // BOM
	'\u200E', // left-to-right mark
	'\u200F', // right-to-left mark
}

// SanitizeKeyword normalizes a search keyword: strips zero-width
// characters and HTML tags, collapses whitespace. Vietnamese diacritics
// pass through untouched.
func SanitizeKeyword(keyword string) (string, error) {
	if len(keyword) > MaxKeywordLength {
		return "", &KeywordError{Reason: "exceeds maximum length"}
	}
	for _, r := range keyword {
		if r == 0 || (r < 32 && r != '\t' && r != '\n' && r != '\r') {
			return "", &KeywordError{Reason: "contains control character"}
		}
	}

	for _, char := range zeroWidthChars {
		keyword = strings.ReplaceAll(keyword, string(char), "")
	}
	keyword = stripTags(keyword)

	keyword = strings.Join(strings.Fields(keyword), " ")
	if keyword == "" {
		return "", &KeywordError{Reason: "empty after sanitization"}
	}
	return keyword, nil
}

func stripTags(input string) string {
	for {
		start := strings.Index(input, "<")
		if start == -1 {
			return input
		}
		end := strings.Index(input[start:], ">")
		if end == -1 {
			return input[:start]
		}
		input = input[:start] + input[start+end+1:]
	}
}
