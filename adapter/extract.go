package adapter

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Publishers push tags through the analytics dataLayer as
// 'articleTags':'tag1, tag2'.
var reArticleTags = regexp.MustCompile(`['"]articleTags['"]\s*:\s*['"]([^'"]+)['"]`)

func absoluteURL(base, href string) string {
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return b.ResolveReference(ref).String()
}

// titleOf prefers the title attribute over the anchor text, matching how
// listing markup carries the full headline.
func titleOf(sel *goquery.Selection) string {
	if t, ok := sel.Attr("title"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	return strings.TrimSpace(sel.Text())
}

// cleanLines strips blank lines and per-line whitespace from extracted
// content.
func cleanLines(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// joinText joins the trimmed text of every node in the selection.
func joinText(sel *goquery.Selection) string {
	var lines []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			lines = append(lines, t)
		}
	})
	return strings.Join(lines, "\n")
}

// paragraphText joins the trimmed text of every <p> in the selection.
func paragraphText(sel *goquery.Selection) string {
	var lines []string
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := strings.TrimSpace(p.Text()); t != "" {
			lines = append(lines, t)
		}
	})
	return strings.Join(lines, "\n")
}

// scriptTags scans inline scripts for the dataLayer articleTags entry.
func scriptTags(doc *goquery.Document) []string {
	var tags []string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if !strings.Contains(text, "articleTags") {
			return true
		}
		m := reArticleTags.FindStringSubmatch(text)
		if m == nil {
			return true
		}
		tags = splitCSV(m[1])
		return false
	})
	return tags
}

func metaContentList(doc *goquery.Document, name string) []string {
	content, ok := doc.Find(`meta[name="` + name + `"]`).First().Attr("content")
	if !ok {
		return nil
	}
	return splitCSV(content)
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseISOTime handles the ISO timestamps listing markup carries in title
// attributes ("2025-12-17T13:45:00").
func parseISOTime(raw string) *time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return &t
		}
	}
	return nil
}
