package adapter

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		href string
		want string
	}{
		{name: "relative path", base: "https://cafef.vn", href: "/thi-truong/bai.chn", want: "https://cafef.vn/thi-truong/bai.chn"},
		{name: "already absolute", base: "https://cafef.vn", href: "https://other.vn/x.chn", want: "https://other.vn/x.chn"},
		{name: "empty href", base: "https://cafef.vn", href: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := absoluteURL(tt.base, tt.href); got != tt.want {
				t.Errorf("absoluteURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
			}
		})
	}
}

func TestTitleOf(t *testing.T) {
	doc := docFrom(t, `<a href="/x" title=" Full headline ">short</a><a href="/y">  anchor text </a>`)
	links := doc.Find("a")

	if got := titleOf(links.Eq(0)); got != "Full headline" {
		t.Errorf("title attr preferred, got %q", got)
	}
	if got := titleOf(links.Eq(1)); got != "anchor text" {
		t.Errorf("text fallback, got %q", got)
	}
}

func TestCleanLines(t *testing.T) {
	in := "  first \n\n\t\n second line \n"
	want := "first\nsecond line"
	if got := cleanLines(in); got != want {
		t.Errorf("cleanLines = %q, want %q", got, want)
	}
}

func TestScriptTags(t *testing.T) {
	doc := docFrom(t, `<html><head>
<script>var a = 1;</script>
<script>dataLayer.push({'articleTags':'chứng khoán, lãi suất ,vàng'});</script>
</head></html>`)

	got := scriptTags(doc)
	want := []string{"chứng khoán", "lãi suất", "vàng"}
	if len(got) != len(want) {
		t.Fatalf("scriptTags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMetaContentList(t *testing.T) {
	doc := docFrom(t, `<html><head><meta name="keywords" content="a, b,,c "></head></html>`)
	got := metaContentList(doc, "keywords")
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("metaContentList = %v", got)
	}
	if got := metaContentList(doc, "news_keywords"); got != nil {
		t.Errorf("missing meta should be nil, got %v", got)
	}
}

func TestParseISOTime(t *testing.T) {
	if got := parseISOTime("2025-12-17T13:45:00"); got == nil || !got.Equal(time.Date(2025, 12, 17, 13, 45, 0, 0, time.Local)) {
		t.Errorf("parseISOTime = %v", got)
	}
	if got := parseISOTime("not a date"); got != nil {
		t.Errorf("garbage should be nil, got %v", got)
	}
}
