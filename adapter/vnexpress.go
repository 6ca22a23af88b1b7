package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"news-crawler/config"
	"news-crawler/domain"
	"news-crawler/textutil"
)

const (
	vnexpressHost      = "vnexpress.net"
	vnexpressBaseURL   = "https://vnexpress.net"
	vnexpressSearchURL = "https://timkiem.vnexpress.net/"
)

// VnExpressAdapter crawls vnexpress.net through its dedicated search host.
type VnExpressAdapter struct {
	fetcher *Fetcher
}

func NewVnExpressAdapter(fetcher *Fetcher) *VnExpressAdapter {
	return &VnExpressAdapter{fetcher: fetcher}
}

func (a *VnExpressAdapter) Website() string { return vnexpressHost }

// SearchListing queries timkiem.vnexpress.net, which filters server-side
// on title/tags and a unix date window.
func (a *VnExpressAdapter) SearchListing(ctx context.Context, keyword string, from, to time.Time, page int) ([]domain.ListingItem, error) {
	params := url.Values{}
	params.Set("search_f", "title,tag_list")
	params.Set("q", keyword)
	params.Set("media_type", "all")
	params.Set("fromdate", strconv.FormatInt(from.Unix(), 10))
	params.Set("todate", strconv.FormatInt(to.Unix(), 10))
	params.Set("page", strconv.Itoa(page))
	params.Set("date_format", "all")
	params.Set("latest", "")

	ctx, cancel := context.WithTimeout(ctx, config.ListingFetchTimeout)
	defer cancel()

	doc, err := a.fetcher.Document(ctx, vnexpressSearchURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	return a.extractListing(doc, "article.item-news.item-news-common"), nil
}

// CategoryListing pages a category feed; page n lives at <category>-p<n>.
func (a *VnExpressAdapter) CategoryListing(ctx context.Context, categoryURL string, page int) ([]domain.ListingItem, error) {
	target := categoryURL
	if page > 1 {
		target = fmt.Sprintf("%s-p%d", categoryURL, page)
	}

	ctx, cancel := context.WithTimeout(ctx, config.ListingFetchTimeout)
	defer cancel()

	doc, err := a.fetcher.Document(ctx, target)
	if err != nil {
		return nil, err
	}
	return a.extractListing(doc, "article.item-news"), nil
}

func (a *VnExpressAdapter) extractListing(doc *goquery.Document, selector string) []domain.ListingItem {
	var items []domain.ListingItem
	doc.Find(selector).Each(func(_ int, item *goquery.Selection) {
		link := item.Find("h3.title-news a").First()
		href, _ := link.Attr("href")
		if href == "" {
			href, _ = item.Attr("data-url")
		}
		if href == "" {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = vnexpressBaseURL + href
		}

		listing := domain.ListingItem{URL: href, Title: titleOf(link)}
		if ts, ok := item.Attr("data-publishtime"); ok {
			if unix, err := strconv.ParseInt(ts, 10, 64); err == nil {
				t := time.Unix(unix, 0)
				listing.PublishDate = &t
			}
		}
		items = append(items, listing)
	})
	return items
}

// FetchArticle extracts the detail page. Video-only pages and pages
// without extractable body text return (nil, nil).
func (a *VnExpressAdapter) FetchArticle(ctx context.Context, item domain.ListingItem) (*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DetailFetchTimeout)
	defer cancel()

	doc, err := a.fetcher.Document(ctx, item.URL)
	if err != nil {
		return nil, err
	}

	title := item.Title
	if t := strings.TrimSpace(doc.Find("h2.title, h1.title-detail, h1.title-news").First().Text()); t != "" {
		title = t
	}

	summary := strings.TrimSpace(doc.Find("p.description").First().Text())

	body := doc.Find("article.fck_detail").First()
	var content string
	if body.Length() > 0 {
		content = joinText(body.Find("p.Normal"))
		if content == "" {
			content = paragraphText(body)
		}
		if content == "" {
			content = strings.TrimSpace(body.Text())
		}
	} else {
		content = joinText(doc.Find("p.Normal"))
	}
	content = cleanLines(content)
	if content == "" {
		return nil, nil
	}

	publishDate := item.PublishDate
	if raw := strings.TrimSpace(doc.Find("span.date").First().Text()); raw != "" {
		if t := textutil.ParseVietnameseDate(raw); t != nil {
			publishDate = t
		}
	}

	var cats []string
	doc.Find("ul.breadcrumb li a").Each(func(_ int, a *goquery.Selection) {
		if t := strings.TrimSpace(a.Text()); t != "" && !strings.Contains(t, "VnExpress") {
			cats = append(cats, t)
		}
	})

	tags := scriptTags(doc)
	if len(tags) == 0 {
		tags = metaContentList(doc, "keywords")
	}
	if len(tags) == 0 {
		tags = metaContentList(doc, "news_keywords")
	}
	if len(tags) == 0 {
		doc.Find(".tags .item-tag a, .tag-list a").Each(func(_ int, t *goquery.Selection) {
			if txt := titleOf(t); txt != "" {
				tags = append(tags, txt)
			}
		})
	}

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
		Website:        vnexpressHost,
		Status:         domain.StatusRaw,
	}, nil
}

// ListTopics scrapes the homepage navigation. Menu anchors carry a
// data-medium marker; article links (.html) and media sections are
// excluded.
func (a *VnExpressAdapter) ListTopics(ctx context.Context) ([]*domain.Topic, error) {
	ctx, cancel := context.WithTimeout(ctx, config.ListingFetchTimeout)
	defer cancel()

	doc, err := a.fetcher.Document(ctx, vnexpressBaseURL)
	if err != nil {
		return nil, err
	}

	var topics []*domain.Topic
	seen := make(map[string]struct{})
	doc.Find(`a[data-medium^="Menu-"], .ul-nav-folder a, nav a`).Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		name := titleOf(link)
		if href == "" || len([]rune(name)) <= 2 {
			return
		}
		if !strings.HasPrefix(href, "http") {
			if strings.HasPrefix(href, "/") {
				href = vnexpressBaseURL + href
			} else {
				href = vnexpressBaseURL + "/" + href
			}
		}
		if _, dup := seen[href]; dup {
			return
		}
		if strings.Contains(href, ".html") || strings.Contains(href, "video") || strings.Contains(href, "podcast") {
			return
		}
		seen[href] = struct{}{}
		topics = append(topics, &domain.Topic{
			URL:      href,
			Name:     name,
			Website:  vnexpressHost,
			IsActive: true,
		})
	})
	return topics, nil
}
