package adapter

import (
	"testing"
	"time"
)

const vnexpressSearchHTML = `<html><body>
<article class="item-news item-news-common" data-publishtime="1734678300">
  <h3 class="title-news"><a href="https://vnexpress.net/bai-mot-4800000.html" title="Bài một">Bài một</a></h3>
</article>
<article class="item-news item-news-common" data-url="/bai-hai-4800001.html">
  <h3 class="title-news"><a title="Bài hai">Bài hai</a></h3>
</article>
<article class="item-news item-news-common">
  <h3 class="title-news"><a>no href at all</a></h3>
</article>
</body></html>`

func TestVnExpress_ExtractListing(t *testing.T) {
	a := NewVnExpressAdapter(nil)
	doc := docFrom(t, vnexpressSearchHTML)

	items := a.extractListing(doc, "article.item-news.item-news-common")
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}

	if items[0].URL != "https://vnexpress.net/bai-mot-4800000.html" {
		t.Errorf("url[0] = %s", items[0].URL)
	}
	if items[0].Title != "Bài một" {
		t.Errorf("title[0] = %s", items[0].Title)
	}
	if items[0].PublishDate == nil || !items[0].PublishDate.Equal(time.Unix(1734678300, 0)) {
		t.Errorf("publish date[0] = %v", items[0].PublishDate)
	}

	// Relative data-url is prefixed with the site base.
	if items[1].URL != "https://vnexpress.net/bai-hai-4800001.html" {
		t.Errorf("url[1] = %s", items[1].URL)
	}
	if items[1].PublishDate != nil {
		t.Errorf("publish date[1] = %v, want nil", items[1].PublishDate)
	}
}

const vnexpressDetailHTML = `<html><head>
<script>dataLayer.push({'articleTags':'tỷ giá,ngân hàng'});</script>
</head><body>
<ul class="breadcrumb">
  <li><a href="/">VnExpress</a></li>
  <li><a href="/kinh-doanh">Kinh doanh</a></li>
  <li><a href="/kinh-doanh/ngan-hang">Ngân hàng</a></li>
</ul>
<h1 class="title-detail">Tỷ giá USD tăng mạnh</h1>
<span class="date">Thứ sáu, 20/12/2024, 14:05 (GMT+7)</span>
<p class="description">USD lên đỉnh mới trong phiên sáng nay.</p>
<article class="fck_detail">
  <p class="Normal">Đoạn mở đầu của bài viết.</p>
  <p class="Normal">Đoạn thứ hai với số liệu.</p>
</article>
</body></html>`

func TestVnExpress_ExtractListing_CategorySelector(t *testing.T) {
	a := NewVnExpressAdapter(nil)
	doc := docFrom(t, `<article class="item-news">
  <h3 class="title-news"><a href="/cat-bai-1.html" title="Bài danh mục">Bài danh mục</a></h3>
</article>`)

	items := a.extractListing(doc, "article.item-news")
	if len(items) != 1 || items[0].URL != "https://vnexpress.net/cat-bai-1.html" {
		t.Fatalf("items = %+v", items)
	}
}

func TestVnExpress_DetailExtraction(t *testing.T) {
	doc := docFrom(t, vnexpressDetailHTML)

	title := doc.Find("h2.title, h1.title-detail, h1.title-news").First().Text()
	if title != "Tỷ giá USD tăng mạnh" {
		t.Errorf("title = %q", title)
	}

	content := joinText(doc.Find("article.fck_detail").First().Find("p.Normal"))
	want := "Đoạn mở đầu của bài viết.\nĐoạn thứ hai với số liệu."
	if content != want {
		t.Errorf("content = %q, want %q", content, want)
	}

	tags := scriptTags(doc)
	if len(tags) != 2 || tags[0] != "tỷ giá" || tags[1] != "ngân hàng" {
		t.Errorf("tags = %v", tags)
	}
}
