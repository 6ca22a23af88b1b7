package adapter

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"news-crawler/config"
	"news-crawler/domain"
	"news-crawler/textutil"
)

const (
	cafefHost    = "cafef.vn"
	cafefBaseURL = "https://cafef.vn"
)

// Zone ids drive cafef's timeline pagination. They appear either in
// data-cd-key attributes ("...zone18835") or inline scripts
// (zoneId = '18835').
var (
	reZoneAttr   = regexp.MustCompile(`zone(\d+)`)
	reZoneScript = regexp.MustCompile(`zoneId\s*=\s*['"](\d+)['"]`)
)

// CafeFAdapter crawls cafef.vn. Category pages past the first load through
// /timelinelist/<zone>/<page>.chn, so the adapter caches the zone id it
// discovers on page one.
type CafeFAdapter struct {
	fetcher *Fetcher

	mu    sync.Mutex
	zones map[string]string
}

func NewCafeFAdapter(fetcher *Fetcher) *CafeFAdapter {
	return &CafeFAdapter{fetcher: fetcher, zones: make(map[string]string)}
}

func (a *CafeFAdapter) Website() string { return cafefHost }

// SearchListing queries /tim-kiem. The site ignores date filters on
// search; the caller filters by date afterwards.
func (a *CafeFAdapter) SearchListing(ctx context.Context, keyword string, from, to time.Time, page int) ([]domain.ListingItem, error) {
	target := fmt.Sprintf("%s/tim-kiem/trang-%d.chn?keywords=%s", cafefBaseURL, page, url.QueryEscape(keyword))

	ctx, cancel := context.WithTimeout(ctx, config.ListingFetchTimeout)
	defer cancel()

	doc, err := a.fetcher.Document(ctx, target)
	if err != nil {
		return nil, err
	}

	var items []domain.ListingItem
	seen := make(map[string]struct{})
	doc.Find(".timeline.list-bytags .item").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("h3 a").First()
		if link.Length() == 0 {
			link = item.Find(".box-category-link-title").First()
		}
		href, _ := link.Attr("href")
		if href == "" || strings.Contains(href, "javascript") {
			return
		}
		full := absoluteURL(cafefBaseURL, href)
		if _, dup := seen[full]; dup {
			return
		}

		items = append(items, domain.ListingItem{
			URL:         full,
			Title:       titleOf(link),
			PublishDate: timeOf(item.Find(".time").First()),
		})
		seen[full] = struct{}{}
	})
	return items, nil
}

// CategoryListing fetches page one from the category URL itself and later
// pages from the timeline endpoint keyed by the cached zone id.
func (a *CafeFAdapter) CategoryListing(ctx context.Context, categoryURL string, page int) ([]domain.ListingItem, error) {
	target := categoryURL
	if page > 1 {
		if zone := a.zoneFor(categoryURL); zone != "" {
			target = fmt.Sprintf("%s/timelinelist/%s/%d.chn", cafefBaseURL, zone, page)
		} else if strings.Contains(categoryURL, ".chn") {
			target = strings.Replace(categoryURL, ".chn", fmt.Sprintf("/trang-%d.chn", page), 1)
		} else {
			target = fmt.Sprintf("%s/trang-%d.chn", categoryURL, page)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, config.ListingFetchTimeout)
	defer cancel()

	doc, err := a.fetcher.Document(ctx, target)
	if err != nil {
		return nil, err
	}

	if page == 1 {
		if zone := extractZoneID(doc); zone != "" {
			a.mu.Lock()
			a.zones[categoryURL] = zone
			a.mu.Unlock()
		}
	}

	return a.extractCategoryListing(doc), nil
}

func (a *CafeFAdapter) zoneFor(categoryURL string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.zones[categoryURL]
}

func extractZoneID(doc *goquery.Document) string {
	var zone string
	doc.Find("[data-cd-key]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		key, _ := el.Attr("data-cd-key")
		if m := reZoneAttr.FindStringSubmatch(key); m != nil {
			zone = m[1]
			return false
		}
		return true
	})
	if zone != "" {
		return zone
	}
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := reZoneScript.FindStringSubmatch(s.Text()); m != nil {
			zone = m[1]
			return false
		}
		return true
	})
	return zone
}

// extractCategoryListing handles both full category pages and the bare
// list the timeline endpoint returns.
func (a *CafeFAdapter) extractCategoryListing(doc *goquery.Document) []domain.ListingItem {
	containers := doc.Find(".listchungkhoannew .tlitem, .box-category-item, li.knswli, .timeline-item")
	if containers.Length() == 0 {
		containers = doc.Find("li")
	}

	var items []domain.ListingItem
	seen := make(map[string]struct{})
	containers.Each(func(_ int, container *goquery.Selection) {
		link := container.Find("h3 a, h4 a, a.title").First()
		if link.Length() == 0 && goquery.NodeName(container) == "li" {
			link = container.Find("a[title]").First()
		}
		if link.Length() == 0 {
			return
		}

		href, _ := link.Attr("href")
		if len(href) < 5 || strings.Contains(href, "javascript") {
			return
		}
		full := absoluteURL(cafefBaseURL, href)
		if _, dup := seen[full]; dup {
			return
		}
		title := titleOf(link)
		if title == "" {
			return
		}

		timeTag := container.Find(".time.time-ago").First()
		if timeTag.Length() == 0 {
			timeTag = container.Find(".time, .knswli-time").First()
		}

		items = append(items, domain.ListingItem{
			URL:         full,
			Title:       title,
			PublishDate: timeOf(timeTag),
		})
		seen[full] = struct{}{}
	})
	return items
}

// timeOf reads a listing timestamp, preferring the ISO title attribute
// over the rendered text.
func timeOf(sel *goquery.Selection) *time.Time {
	if sel.Length() == 0 {
		return nil
	}
	if iso, ok := sel.Attr("title"); ok {
		if t := parseISOTime(iso); t != nil {
			return t
		}
	}
	return textutil.ParseVietnameseDate(strings.TrimSpace(sel.Text()))
}

// FetchArticle extracts the detail page. Pages without extractable body
// text return (nil, nil).
func (a *CafeFAdapter) FetchArticle(ctx context.Context, item domain.ListingItem) (*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DetailFetchTimeout)
	defer cancel()

	doc, err := a.fetcher.Document(ctx, item.URL)
	if err != nil {
		return nil, err
	}

	title := item.Title
	if t := strings.TrimSpace(doc.Find("h1.title").First().Text()); t != "" {
		title = t
	}

	publishDate := item.PublishDate
	if publishDate == nil {
		raw := strings.TrimSpace(doc.Find(".pdate").First().Text())
		raw = strings.TrimSpace(strings.ReplaceAll(raw, "|", ""))
		publishDate = textutil.ParseVietnameseDate(raw)
	}
	if publishDate == nil {
		now := time.Now()
		publishDate = &now
	}

	var cats []string
	if t := strings.TrimSpace(doc.Find("a.category-page__name, a.cat").First().Text()); t != "" {
		cats = append(cats, t)
	}

	summary := strings.TrimSpace(doc.Find(".sapo").First().Text())

	body := doc.Find(".detail-content.afcbc-body").First()
	if body.Length() == 0 {
		body = doc.Find(".detail-content").First()
	}
	var content string
	if body.Length() > 0 {
		body.Find(".link-content-footer, .avatar-content, .box-dautu, .related-news, .relate-container").Remove()
		content = paragraphText(body)
	}
	if content == "" {
		return nil, nil
	}

	var tags []string
	tagArea := doc.Find(`.row2[data-marked-zoneid="cafef_detail_tag"]`).First()
	if tagArea.Length() == 0 {
		tagArea = doc.Find(".tags").First()
	}
	tagArea.Find("a").Each(func(_ int, t *goquery.Selection) {
		if txt := strings.TrimSpace(t.Text()); txt != "" {
			tags = append(tags, txt)
		}
	})

	return &domain.Article{
		ArticleID:      domain.ArticleIDForURL(item.URL),
		URL:            item.URL,
		Title:          title,
		Summary:        summary,
		Content:        content,
		SiteCategories: cats,
		Tags:           tags,
		PublishDate:    publishDate,
		CrawledAt:      time.Now(),
		Website:        cafefHost,
		Status:         domain.StatusRaw,
	}, nil
}
