// Package adapter implements the per-publisher crawling surface: listing
// pages, detail pages and the category navigation that seeds topics.
package adapter

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/temoto/robotstxt"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"news-crawler/config"
)

// Publishers block default Go user agents; a browser UA keeps listing and
// detail pages renderable.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Fetcher is the polite HTTP client shared by every site adapter. It caps
// global concurrency, paces requests per host and honors robots.txt.
type Fetcher struct {
	client *http.Client
	sem    *semaphore.Weighted

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	robots   map[string]*robotstxt.RobotsData
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Transport: &http.Transport{MaxConnsPerHost: config.MaxConnsPerHost},
		},
		sem:      semaphore.NewWeighted(int64(config.MaxConcurrentFetches)),
		limiters: make(map[string]*rate.Limiter),
		robots:   make(map[string]*robotstxt.RobotsData),
	}
}

// Document fetches rawURL and parses it. The caller bounds the wait
// through ctx; deadline includes the time spent queued on the global
// semaphore and the per-host limiter.
func (f *Fetcher) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}

	if err := f.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer f.sem.Release(1)

	if err := f.limiter(u.Hostname()).Wait(ctx); err != nil {
		return nil, err
	}

	if !f.allowed(ctx, u) {
		return nil, fmt.Errorf("robots.txt disallows %s", rawURL)
	}

	resp, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return doc, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "vi-VN,vi;q=0.9,en;q=0.5")
	return f.client.Do(req)
}

func (f *Fetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(config.PageDelay), 1)
		f.limiters[host] = l
	}
	return l
}

// allowed consults the host's robots.txt, fetching and caching it on first
// contact. A host whose robots.txt cannot be fetched is treated as open.
func (f *Fetcher) allowed(ctx context.Context, u *url.URL) bool {
	f.mu.Lock()
	data, cached := f.robots[u.Hostname()]
	f.mu.Unlock()

	if !cached {
		data = f.fetchRobots(ctx, u)
		f.mu.Lock()
		f.robots[u.Hostname()] = data
		f.mu.Unlock()
	}

	if data == nil {
		return true
	}
	return data.TestAgent(u.Path, userAgent)
}

func (f *Fetcher) fetchRobots(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	resp, err := f.get(ctx, robotsURL)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil
	}
	return data
}
