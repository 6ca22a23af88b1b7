package domain

import "testing"

func TestArticleIDForURL(t *testing.T) {
	url := "https://vnexpress.net/kinh-doanh/bai-viet-123.html"

	first := ArticleIDForURL(url)
	second := ArticleIDForURL(url)
	if first != second {
		t.Errorf("id not deterministic: %s vs %s", first, second)
	}
	if other := ArticleIDForURL(url + "?page=2"); other == first {
		t.Error("different urls must map to different ids")
	}
}

func TestArticle_AnalysisText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		summary string
		want    string
	}{
		{name: "content preferred", content: "body", summary: "lede", want: "body"},
		{name: "summary fallback", content: "  ", summary: "lede", want: "lede"},
		{name: "both empty", content: "", summary: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Article{Content: tt.content, Summary: tt.summary}
			if got := a.AnalysisText(); got != tt.want {
				t.Errorf("AnalysisText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArticle_EffectiveSearchIDs(t *testing.T) {
	claimed := &Article{SearchIDs: []string{"20250101120000_user1"}}
	if got := claimed.EffectiveSearchIDs(); len(got) != 1 || got[0] != "20250101120000_user1" {
		t.Errorf("EffectiveSearchIDs() = %v", got)
	}

	unclaimed := &Article{}
	if got := unclaimed.EffectiveSearchIDs(); len(got) != 1 || got[0] != AutoSearchID {
		t.Errorf("unclaimed article should default to %s, got %v", AutoSearchID, got)
	}
}

func TestArticle_HasSearchID(t *testing.T) {
	a := &Article{SearchIDs: []string{"a", "b"}}
	if !a.HasSearchID("b") {
		t.Error("expected claim b")
	}
	if a.HasSearchID("c") {
		t.Error("unexpected claim c")
	}
}
