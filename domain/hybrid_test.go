package domain

import (
	"testing"
	"time"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestMergeHits(t *testing.T) {
	d1 := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC)

	t.Run("dedupe by url, lexical wins", func(t *testing.T) {
		lexical := []ArticleHit{{ArticleID: "lex", URL: "https://a/1", Title: "lexical title"}}
		semantic := []ArticleHit{{ArticleID: "sem", URL: "https://a/1", Title: "semantic title"}}

		merged := MergeHits(lexical, semantic, 10)
		if len(merged) != 1 {
			t.Fatalf("len = %d, want 1", len(merged))
		}
		if merged[0].ArticleID != "lex" {
			t.Errorf("kept %q, want lexical occurrence", merged[0].ArticleID)
		}
	})

	t.Run("publish date descending, undated last", func(t *testing.T) {
		lexical := []ArticleHit{
			{URL: "https://a/1", PublishDate: datePtr(d1)},
			{URL: "https://a/2", PublishDate: nil},
		}
		semantic := []ArticleHit{
			{URL: "https://a/3", PublishDate: datePtr(d3)},
			{URL: "https://a/4", PublishDate: datePtr(d2)},
		}

		merged := MergeHits(lexical, semantic, 10)
		wantOrder := []string{"https://a/3", "https://a/4", "https://a/1", "https://a/2"}
		if len(merged) != len(wantOrder) {
			t.Fatalf("len = %d, want %d", len(merged), len(wantOrder))
		}
		for i, url := range wantOrder {
			if merged[i].URL != url {
				t.Errorf("position %d = %s, want %s", i, merged[i].URL, url)
			}
		}
	})

	t.Run("cap at limit", func(t *testing.T) {
		var lexical []ArticleHit
		for _, d := range []time.Time{d1, d2, d3} {
			lexical = append(lexical, ArticleHit{URL: "https://a/" + d.String(), PublishDate: datePtr(d)})
		}
		merged := MergeHits(lexical, nil, 2)
		if len(merged) != 2 {
			t.Fatalf("len = %d, want 2", len(merged))
		}
		// The two newest survive the cap.
		if !merged[0].PublishDate.Equal(d3) || !merged[1].PublishDate.Equal(d2) {
			t.Errorf("cap kept %v, %v; want newest two", merged[0].PublishDate, merged[1].PublishDate)
		}
	})

	t.Run("empty urls dropped", func(t *testing.T) {
		merged := MergeHits([]ArticleHit{{URL: ""}}, nil, 10)
		if len(merged) != 0 {
			t.Errorf("len = %d, want 0", len(merged))
		}
	})
}

func TestProgressSnapshot_Changed(t *testing.T) {
	snap := ProgressSnapshot{SearchID: "s", Status: SessionProcessing, TotalSaved: 5}

	tests := []struct {
		name string
		prev *ProgressSnapshot
		want bool
	}{
		{name: "no previous", prev: nil, want: true},
		{name: "same state", prev: &ProgressSnapshot{Status: SessionProcessing, TotalSaved: 5}, want: false},
		{name: "count advanced", prev: &ProgressSnapshot{Status: SessionProcessing, TotalSaved: 3}, want: true},
		{name: "status changed", prev: &ProgressSnapshot{Status: SessionCompleted, TotalSaved: 5}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := snap.Changed(tt.prev); got != tt.want {
				t.Errorf("Changed() = %v, want %v", got, tt.want)
			}
		})
	}
}
