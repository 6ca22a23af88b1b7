package driver

import (
	"testing"
	"time"
)

func TestBuildSearchFilter(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		spec SearchFilterSpec
		want string
	}{
		{name: "empty spec", spec: SearchFilterSpec{}, want: ""},
		{
			name: "single website",
			spec: SearchFilterSpec{Websites: []string{"vnexpress.net"}},
			want: `website = "vnexpress.net"`,
		},
		{
			name: "multiple websites or-joined",
			spec: SearchFilterSpec{Websites: []string{"vnexpress.net", "cafef.vn"}},
			want: `(website = "vnexpress.net" OR website = "cafef.vn")`,
		},
		{
			name: "empty website entries skipped",
			spec: SearchFilterSpec{Websites: []string{"", "cafef.vn"}},
			want: `website = "cafef.vn"`,
		},
		{
			name: "date range",
			spec: SearchFilterSpec{PublishedFrom: &from, PublishedTo: &to},
			want: `publish_date >= 1735689600 AND publish_date <= 1738281600`,
		},
		{
			name: "search id claim",
			spec: SearchFilterSpec{SearchID: "20250101120000_user1"},
			want: `search_id = "20250101120000_user1"`,
		},
		{
			name: "quotes escaped",
			spec: SearchFilterSpec{SearchID: `evil"quote`},
			want: `search_id = "evil\"quote"`,
		},
		{
			name: "combined clauses and-joined",
			spec: SearchFilterSpec{
				Websites:         []string{"vneconomy.vn"},
				AISentimentLabel: "Positive",
			},
			want: `website = "vneconomy.vn" AND ai_sentiment_label = "Positive"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildSearchFilter(tt.spec); got != tt.want {
				t.Errorf("BuildSearchFilter() = %q, want %q", got, tt.want)
			}
		})
	}
}
