package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"news-crawler/config"
	"news-crawler/domain"
	"news-crawler/textutil"
)

const (
	vneconomyHost    = "vneconomy.vn"
	vneconomyBaseURL = "https://vneconomy.vn"
)

// Listing anchors on vneconomy carry no shared class; the extractor walks
// every link and climbs to these wrappers for headline and date.
const (
	vneconomyItemWrappers = ".featured-row_item, .featured-column_item, .story-item, .list-new-item, .highlight-item, .story, .grid-new-column_item"
	vneconomyTimeTags     = ".story__time, .time, .date, .meta-time, .featured-row_item__meta"
)

type VneconomyAdapter struct {
	fetcher *Fetcher
}

func NewVneconomyAdapter(fetcher *Fetcher) *VneconomyAdapter {
	return &VneconomyAdapter{fetcher: fetcher}
}

func (a *VneconomyAdapter) Website() string { return vneconomyHost }

// SearchListing queries /tim-kiem.html, which accepts an ISO date window
// and sorts newest first.
func (a *VneconomyAdapter) SearchListing(ctx context.Context, keyword string, from, to time.Time, page int) ([]domain.ListingItem, error) {
	target := fmt.Sprintf("%s/tim-kiem.html?Text=%s&FromDate=%s&ToDate=%s&SortBy=newest&page=%d",
		vneconomyBaseURL, url.QueryEscape(keyword), from.Format("2006-01-02"), to.Format("2006-01-02"), page)

	ctx, cancel := context.WithTimeout(ctx, config.ListingFetchTimeout)
	defer cancel()

	doc, err := a.fetcher.Document(ctx, target)
	if err != nil {
		return nil, err
	}
	return a.extractListing(doc), nil
}

// CategoryListing pages a category feed through the trang query param.
func (a *VneconomyAdapter) CategoryListing(ctx context.Context, categoryURL string, page int) ([]domain.ListingItem, error) {
	sep := "?"
	if strings.Contains(categoryURL, "?") {
		sep = "&"
	}
	target := fmt.Sprintf("%s%strang=%d", categoryURL, sep, page)

	ctx, cancel := context.WithTimeout(ctx, config.ListingFetchTimeout)
	defer cancel()

	doc, err := a.fetcher.Document(ctx, target)
	if err != nil {
		return nil, err
	}
	return a.extractListing(doc), nil
}

func (a *VneconomyAdapter) extractListing(doc *goquery.Document) []domain.ListingItem {
	var items []domain.ListingItem
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !strings.Contains(href, ".htm") || strings.Contains(href, "video") || len(href) < 15 {
			return
		}
		full := absoluteURL(vneconomyBaseURL, href)
		if full == "" {
			return
		}
		if _, dup := seen[full]; dup {
			return
		}

		title := titleOf(link)
		wrapper := link.Closest(vneconomyItemWrappers)
		if title == "" && wrapper.Length() > 0 {
			title = titleOf(wrapper.Find("h3, h4, .featured-row_item__title h3, .story__title").First())
		}
		if len([]rune(title)) < 5 {
			return
		}

		item := domain.ListingItem{URL: full, Title: title}
		if wrapper.Length() > 0 {
			if raw := strings.TrimSpace(wrapper.Find(vneconomyTimeTags).First().Text()); raw != "" {
				item.PublishDate = textutil.ParseVietnameseDate(raw)
			}
		}

		items = append(items, item)
		seen[full] = struct{}{}
	})
	return items
}

// FetchArticle extracts the detail page. Pages without extractable body
// text return (nil, nil).
func (a *VneconomyAdapter) FetchArticle(ctx context.Context, item domain.ListingItem) (*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DetailFetchTimeout)
	defer cancel()

	doc, err := a.fetcher.Document(ctx, item.URL)
	if err != nil {
		return nil, err
	}

	summary := strings.TrimSpace(doc.Find(".news-sapo, .sapo, .detail-sapo").First().Text())

	body := doc.Find(`div[data-field="body"], .detail-content, .content-detail, .multimedia-content, article.post-content`).First()
	var content string
	if body.Length() > 0 {
		body.Find(".box-dautu, .related-news, table").Remove()
		content = paragraphText(body)
	}
	if content == "" {
		main := doc.Find("main").First()
		if main.Length() == 0 {
			main = doc.Find("body").First()
		}
		var lines []string
		main.Find("p").Each(func(_ int, p *goquery.Selection) {
			if t := strings.TrimSpace(p.Text()); len([]rune(t)) > 20 {
				lines = append(lines, t)
			}
		})
		content = textutil.TruncateRunes(strings.Join(lines, "\n"), 5000)
	}
	content = cleanLines(content)
	if content == "" {
		return nil, nil
	}

	publishDate := item.PublishDate
	if raw := strings.TrimSpace(doc.Find(".detail-time, .date-detail .date, .msg-time").First().Text()); raw != "" {
		if t := textutil.ParseVietnameseDate(raw); t != nil {
			publishDate = t
		}
	}
	if publishDate == nil {
		now := time.Now()
		publishDate = &now
	}

	cats := a.extractCategories(doc)

	tags := scriptTags(doc)
	if len(tags) == 0 {
		doc.Find(".list-tag .tag, .list-tag a, .tags-list a, .tag-item a").Each(func(_ int, t *goquery.Selection) {
			txt := strings.TrimSpace(t.Find("span").First().Text())
			if txt == "" {
				txt = strings.TrimSpace(t.Text())
			}
			if txt != "" {
				tags = append(tags, txt)
			}
		})
	}

	return &domain.Article{
		ArticleID:      domain.ArticleIDForURL(item.URL),
		URL:            item.URL,
		Title:          item.Title,
		Summary:        summary,
		Content:        content,
		SiteCategories: cats,
		Tags:           tags,
		PublishDate:    publishDate,
		CrawledAt:      time.Now(),
		Website:        vneconomyHost,
		Status:         domain.StatusRaw,
	}, nil
}

// extractCategories walks the breadcrumb variants the site has shipped
// over time, newest markup first.
func (a *VneconomyAdapter) extractCategories(doc *goquery.Document) []string {
	var cats []string
	doc.Find(".breadcrumb-topbar a.text-breadcrumb").Each(func(_ int, b *goquery.Selection) {
		if t := strings.TrimSpace(b.Text()); t != "" && !strings.Contains(t, "Trang chủ") {
			cats = append(cats, t)
		}
	})
	if len(cats) > 0 {
		return cats
	}

	header := doc.Find(".layout-header-section-page").First()
	if header.Length() > 0 {
		if t := strings.TrimSpace(header.Find(".title-header-section-dt .title, h1.title").First().Text()); t != "" {
			cats = append(cats, t)
		}
		header.Find("a.text-header-dt").Each(func(_ int, sc *goquery.Selection) {
			if t := strings.TrimSpace(sc.Text()); t != "" && !contains(cats, t) {
				cats = append(cats, t)
			}
		})
	}
	if len(cats) > 0 {
		return cats
	}

	doc.Find(".breadcrumb li a, .breadcrumb-item a, ul.breadcrumb a").Each(func(_ int, b *goquery.Selection) {
		if t := strings.TrimSpace(b.Text()); t != "" && !strings.Contains(t, "Trang chủ") && !contains(cats, t) {
			cats = append(cats, t)
		}
	})
	return cats
}

// ListTopics scrapes the header menu. Category URLs end in .htm and sit at
// most one path segment deep.
func (a *VneconomyAdapter) ListTopics(ctx context.Context) ([]*domain.Topic, error) {
	ctx, cancel := context.WithTimeout(ctx, config.ListingFetchTimeout)
	defer cancel()

	doc, err := a.fetcher.Document(ctx, vneconomyBaseURL)
	if err != nil {
		return nil, err
	}

	links := doc.Find(".list-menu-header li a")
	if links.Length() == 0 {
		links = doc.Find("li a")
	}

	var topics []*domain.Topic
	seen := make(map[string]struct{})
	links.Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		name := titleOf(link)
		if href == "" || len([]rune(name)) <= 2 || strings.Contains(name, "Tiêu điểm") {
			return
		}
		if !strings.HasPrefix(href, "http") {
			if strings.HasPrefix(href, "/") {
				href = vneconomyBaseURL + href
			} else {
				href = vneconomyBaseURL + "/" + href
			}
		}
		if _, dup := seen[href]; dup {
			return
		}
		if !strings.Contains(href, ".htm") || len(strings.Split(href, "/")) > 5 {
			return
		}
		seen[href] = struct{}{}
		topics = append(topics, &domain.Topic{
			URL:      href,
			Name:     name,
			Website:  vneconomyHost,
			IsActive: true,
		})
	})
	return topics, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
