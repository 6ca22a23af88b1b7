package driver

import (
	"fmt"
	"strings"
	"time"
)

// escapeMeilisearchValue escapes special characters in Meilisearch filter values.
func escapeMeilisearchValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	return value
}

// SearchFilterSpec carries the populated lexical-filter fields in driver
// terms. Publish dates are unix seconds matching the indexed attribute.
type SearchFilterSpec struct {
	Websites         []string
	SiteCategories   []string
	SearchID         string
	AISentimentLabel string
	PublishedFrom    *time.Time
	PublishedTo      *time.Time
}

// BuildSearchFilter renders the filter expression, AND-joining every
// populated field. Empty spec means no filter.
func BuildSearchFilter(spec SearchFilterSpec) string {
	var clauses []string

	if len(spec.Websites) > 0 {
		sites := make([]string, 0, len(spec.Websites))
		for _, w := range spec.Websites {
			if w != "" {
				sites = append(sites, fmt.Sprintf("website = \"%s\"", escapeMeilisearchValue(w)))
			}
		}
		if len(sites) == 1 {
			clauses = append(clauses, sites[0])
		} else if len(sites) > 1 {
			clauses = append(clauses, "("+strings.Join(sites, " OR ")+")")
		}
	}
	for _, cat := range spec.SiteCategories {
		if cat != "" {
			clauses = append(clauses, fmt.Sprintf("site_categories = \"%s\"", escapeMeilisearchValue(cat)))
		}
	}
	if spec.SearchID != "" {
		clauses = append(clauses, fmt.Sprintf("search_id = \"%s\"", escapeMeilisearchValue(spec.SearchID)))
	}
	if spec.AISentimentLabel != "" {
		clauses = append(clauses, fmt.Sprintf("ai_sentiment_label = \"%s\"", escapeMeilisearchValue(spec.AISentimentLabel)))
	}
	if spec.PublishedFrom != nil {
		clauses = append(clauses, fmt.Sprintf("publish_date >= %d", spec.PublishedFrom.Unix()))
	}
	if spec.PublishedTo != nil {
		clauses = append(clauses, fmt.Sprintf("publish_date <= %d", spec.PublishedTo.Unix()))
	}

	return strings.Join(clauses, " AND ")
}
