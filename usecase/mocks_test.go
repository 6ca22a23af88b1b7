package usecase

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"news-crawler/domain"
	"news-crawler/logger"
	"news-crawler/port"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// mockArticleRepo is an in-memory ArticleRepository keyed by article id.
type mockArticleRepo struct {
	mu       sync.Mutex
	articles map[string]*domain.Article

	claimErr   error
	upsertErr  error
	pullErr    error
	markedErr  []string
	enrichedOK []string
}

func newMockArticleRepo() *mockArticleRepo {
	return &mockArticleRepo{articles: make(map[string]*domain.Article)}
}

func (m *mockArticleRepo) put(a *domain.Article) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articles[a.ArticleID] = a
}

func (m *mockArticleRepo) UpsertArticles(ctx context.Context, articles []*domain.Article) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range articles {
		m.articles[a.ArticleID] = a
	}
	return nil
}

func (m *mockArticleRepo) GetArticleByID(ctx context.Context, articleID string) (*domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[articleID]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "article", Key: articleID}
	}
	return a, nil
}

func (m *mockArticleRepo) FilterExistingIDs(ctx context.Context, articleIDs []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool)
	for _, id := range articleIDs {
		if _, ok := m.articles[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (m *mockArticleRepo) AddSearchID(ctx context.Context, articleID, searchID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[articleID]
	if !ok {
		return false, nil
	}
	if a.HasSearchID(searchID) {
		return false, nil
	}
	a.SearchIDs = append(a.SearchIDs, searchID)
	return true, nil
}

func (m *mockArticleRepo) ClaimRawBatch(ctx context.Context, limit int) ([]*domain.Article, error) {
	if m.claimErr != nil {
		return nil, m.claimErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Article
	for _, a := range m.articles {
		if len(out) == limit {
			break
		}
		if a.Status == domain.StatusRaw || a.Status == domain.StatusAIError {
			a.Status = domain.StatusProcessing
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockArticleRepo) MarkEnriched(ctx context.Context, article *domain.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articles[article.ArticleID] = article
	m.enrichedOK = append(m.enrichedOK, article.ArticleID)
	return nil
}

func (m *mockArticleRepo) MarkAIError(ctx context.Context, articleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.articles[articleID]; ok {
		a.Status = domain.StatusAIError
	}
	m.markedErr = append(m.markedErr, articleID)
	return nil
}

func (m *mockArticleRepo) PullSearchID(ctx context.Context, searchID string) ([]string, error) {
	if m.pullErr != nil {
		return nil, m.pullErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var orphans []string
	for _, a := range m.articles {
		var kept []string
		for _, id := range a.SearchIDs {
			if id != searchID {
				kept = append(kept, id)
			}
		}
		if len(kept) != len(a.SearchIDs) {
			a.SearchIDs = kept
			if len(kept) == 0 {
				orphans = append(orphans, a.ArticleID)
			}
		}
	}
	return orphans, nil
}

func (m *mockArticleRepo) DeleteArticles(ctx context.Context, articleIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range articleIDs {
		delete(m.articles, id)
	}
	return nil
}

func (m *mockArticleRepo) ListBySearchID(ctx context.Context, searchID string, offset, limit int) ([]*domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var claimed []*domain.Article
	for _, a := range m.articles {
		if a.HasSearchID(searchID) {
			claimed = append(claimed, a)
		}
	}
	if offset >= len(claimed) {
		return nil, nil
	}
	end := offset + limit
	if end > len(claimed) {
		end = len(claimed)
	}
	return claimed[offset:end], nil
}

func (m *mockArticleRepo) CountBySearchID(ctx context.Context, searchID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, a := range m.articles {
		if a.HasSearchID(searchID) {
			count++
		}
	}
	return count, nil
}

// mockSessionRepo records session writes.
type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.SearchSession
	expired  []*domain.SearchSession
	cleared  []string
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*domain.SearchSession)}
}

func (m *mockSessionRepo) CreateSession(ctx context.Context, session *domain.SearchSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.SearchID] = session
	return nil
}

func (m *mockSessionRepo) GetSession(ctx context.Context, searchID string) (*domain.SearchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[searchID]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "search session", Key: searchID}
	}
	return s, nil
}

func (m *mockSessionRepo) UpdateProgress(ctx context.Context, searchID string, totalSaved int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[searchID]; ok {
		s.TotalSaved = totalSaved
	}
	return nil
}

func (m *mockSessionRepo) CompleteSession(ctx context.Context, searchID string, totalSaved int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[searchID]; ok {
		s.TotalSaved = totalSaved
		s.Status = domain.SessionCompleted
	}
	return nil
}

func (m *mockSessionRepo) ListSessionsByUser(ctx context.Context, userID string, limit int) ([]*domain.SearchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.SearchSession
	for _, s := range m.sessions {
		if s.UserID == userID && len(out) < limit {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSessionRepo) SessionsBeyondLimit(ctx context.Context, userID string, keep int) ([]*domain.SearchSession, error) {
	return m.expired, nil
}

func (m *mockSessionRepo) MarkDataCleared(ctx context.Context, searchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = append(m.cleared, searchID)
	return nil
}

// mockTopicRepo records watermark updates.
type mockTopicRepo struct {
	mu      sync.Mutex
	topics  []*domain.Topic
	updated []string
}

func (m *mockTopicRepo) UpsertTopics(ctx context.Context, topics []*domain.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics = append(m.topics, topics...)
	return nil
}

func (m *mockTopicRepo) ListActiveTopics(ctx context.Context) ([]*domain.Topic, error) {
	return m.topics, nil
}

func (m *mockTopicRepo) UpdateLastCrawledAt(ctx context.Context, url string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, url)
	return nil
}

// mockSearchEngine returns canned hits and records index writes.
type mockSearchEngine struct {
	mu          sync.Mutex
	hits        []domain.ArticleHit
	searchErr   error
	ensureErr   error
	ensureCalls int
	indexed     [][]*domain.Article
	updated     map[string][]string
	deleted     []string
}

func newMockSearchEngine() *mockSearchEngine {
	return &mockSearchEngine{updated: make(map[string][]string)}
}

func (m *mockSearchEngine) IndexArticles(ctx context.Context, articles []*domain.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexed = append(m.indexed, articles)
	return nil
}

func (m *mockSearchEngine) DeleteArticles(ctx context.Context, articleIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, articleIDs...)
	return nil
}

func (m *mockSearchEngine) Search(ctx context.Context, query string, filter domain.SearchFilter, limit int) ([]domain.ArticleHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.hits) > limit {
		return m.hits[:limit], nil
	}
	return m.hits, nil
}

func (m *mockSearchEngine) UpdateSearchIDs(ctx context.Context, articleID string, searchIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated[articleID] = searchIDs
	return nil
}

func (m *mockSearchEngine) EnsureIndex(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureCalls++
	return m.ensureErr
}

// mockVectorIndex returns canned scored points and records writes.
type mockVectorIndex struct {
	mu         sync.Mutex
	points     []domain.ScoredPoint
	searchErr  error
	lastFilter domain.VectorFilter
	upserted   [][]domain.VectorPoint
	claims     map[string][]string
	deleted    []string
}

func newMockVectorIndex() *mockVectorIndex {
	return &mockVectorIndex{claims: make(map[string][]string)}
}

func (m *mockVectorIndex) EnsureCollection(ctx context.Context) error { return nil }

func (m *mockVectorIndex) UpsertPoints(ctx context.Context, points []domain.VectorPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserted = append(m.upserted, points)
	return nil
}

func (m *mockVectorIndex) Search(ctx context.Context, vector []float32, filter domain.VectorFilter, scoreThreshold float32, limit int) ([]domain.ScoredPoint, error) {
	m.mu.Lock()
	m.lastFilter = filter
	m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.points) > limit {
		return m.points[:limit], nil
	}
	return m.points, nil
}

func (m *mockVectorIndex) AddSearchID(ctx context.Context, articleID, searchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims[articleID] = append(m.claims[articleID], searchID)
	return nil
}

func (m *mockVectorIndex) UpdateSearchIDs(ctx context.Context, articleID string, searchIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims[articleID] = searchIDs
	return nil
}

func (m *mockVectorIndex) DeleteByArticleIDs(ctx context.Context, articleIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, articleIDs...)
	return nil
}

// mockEmbedder returns one fixed-size vector per input; fn overrides the
// default when per-call control is needed.
type mockEmbedder struct {
	err   error
	fn    func(texts []string) ([][]float32, error)
	calls [][]string
}

func (m *mockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls = append(m.calls, texts)
	if m.err != nil {
		return nil, m.err
	}
	if m.fn != nil {
		return m.fn(texts)
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

type mockSentiment struct {
	label domain.SentimentLabel
	score float64
	err   error
	input string
}

func (m *mockSentiment) Classify(ctx context.Context, text string) (domain.SentimentLabel, float64, error) {
	m.input = text
	if m.err != nil {
		return "", 0, m.err
	}
	return m.label, m.score, nil
}

// mockProgressStore keeps snapshots in memory.
type mockProgressStore struct {
	mu        sync.Mutex
	snapshots map[string]domain.ProgressSnapshot
}

func newMockProgressStore() *mockProgressStore {
	return &mockProgressStore{snapshots: make(map[string]domain.ProgressSnapshot)}
}

func (m *mockProgressStore) SaveProgress(ctx context.Context, snapshot domain.ProgressSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.SearchID] = snapshot
	return nil
}

func (m *mockProgressStore) GetProgress(ctx context.Context, searchID string) (*domain.ProgressSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.snapshots[searchID]; ok {
		return &s, nil
	}
	return nil, nil
}

// mockAdapter serves canned listings keyed by page.
type mockAdapter struct {
	website   string
	pages     map[int][]domain.ListingItem
	catPages  map[int][]domain.ListingItem
	articles  map[string]*domain.Article
	fetchErrs map[string]error
}

func (m *mockAdapter) Website() string { return m.website }

func (m *mockAdapter) SearchListing(ctx context.Context, keyword string, from, to time.Time, page int) ([]domain.ListingItem, error) {
	return m.pages[page], nil
}

func (m *mockAdapter) CategoryListing(ctx context.Context, categoryURL string, page int) ([]domain.ListingItem, error) {
	return m.catPages[page], nil
}

func (m *mockAdapter) FetchArticle(ctx context.Context, item domain.ListingItem) (*domain.Article, error) {
	if err, ok := m.fetchErrs[item.URL]; ok {
		return nil, err
	}
	a, ok := m.articles[item.URL]
	if !ok {
		return nil, nil
	}
	return a, nil
}

type mockTopicLister struct {
	topics []*domain.Topic
	err    error
}

func (m *mockTopicLister) ListTopics(ctx context.Context) ([]*domain.Topic, error) {
	return m.topics, m.err
}

type mockRegistry struct {
	adapters map[string]port.SiteAdapter
	listers  map[string]port.TopicLister
}

func (m *mockRegistry) ForWebsite(website string) (port.SiteAdapter, error) {
	a, ok := m.adapters[website]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "site adapter", Key: website}
	}
	return a, nil
}

func (m *mockRegistry) Websites() []string {
	var out []string
	for w := range m.adapters {
		out = append(out, w)
	}
	return out
}

func (m *mockRegistry) TopicLister(website string) (port.TopicLister, error) {
	l, ok := m.listers[website]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "topic lister", Key: website}
	}
	return l, nil
}

type mockRunner struct {
	mu       sync.Mutex
	ran      bool
	req      domain.CrawlRequest
	searchID string
	baseline int
	done     chan struct{}
}

func newMockRunner() *mockRunner {
	return &mockRunner{done: make(chan struct{})}
}

func (m *mockRunner) Run(ctx context.Context, req domain.CrawlRequest, searchID string, baseline int) {
	m.mu.Lock()
	m.ran = true
	m.req = req
	m.searchID = searchID
	m.baseline = baseline
	m.mu.Unlock()
	close(m.done)
}
