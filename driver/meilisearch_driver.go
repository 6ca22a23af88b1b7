package driver

import (
	"context"
	"encoding/json"

	"github.com/meilisearch/meilisearch-go"
)

const meiliTaskTimeoutMs = 15 * 1000

// MeilisearchDriver owns the lexical index over articles.
type MeilisearchDriver struct {
	client    meilisearch.ServiceManager
	index     meilisearch.IndexManager
	indexName string
}

func NewMeilisearchDriver(client meilisearch.ServiceManager, indexName string) *MeilisearchDriver {
	return &MeilisearchDriver{
		client:    client,
		index:     client.Index(indexName),
		indexName: indexName,
	}
}

func (d *MeilisearchDriver) IndexDocuments(ctx context.Context, docs []SearchDocumentDriver) error {
	if len(docs) == 0 {
		return nil
	}

	task, err := d.index.AddDocuments(docs, "article_id")
	if err != nil {
		return &DriverError{Op: "IndexDocuments", Err: err.Error()}
	}

	_, err = d.index.WaitForTask(task.TaskUID, meiliTaskTimeoutMs)
	if err != nil {
		return &DriverError{
			Op:  "IndexDocuments",
			Err: "failed to wait for indexing task: " + err.Error(),
		}
	}

	return nil
}

func (d *MeilisearchDriver) DeleteDocuments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	task, err := d.index.DeleteDocuments(ids)
	if err != nil {
		return &DriverError{Op: "DeleteDocuments", Err: err.Error()}
	}

	_, err = d.index.WaitForTask(task.TaskUID, meiliTaskTimeoutMs)
	if err != nil {
		return &DriverError{
			Op:  "DeleteDocuments",
			Err: "failed to wait for deletion task: " + err.Error(),
		}
	}

	return nil
}

// Search runs the query with an optional filter expression. Hits come
// back in engine relevance order.
func (d *MeilisearchDriver) Search(ctx context.Context, query string, filter string, limit int) ([]SearchDocumentDriver, error) {
	searchRequest := &meilisearch.SearchRequest{
		Query: query,
		Limit: int64(limit),
	}
	if filter != "" {
		searchRequest.Filter = filter
	}

	result, err := d.index.Search(query, searchRequest)
	if err != nil {
		return nil, &DriverError{Op: "Search", Err: err.Error()}
	}

	docs := make([]SearchDocumentDriver, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}

		doc := SearchDocumentDriver{
			ArticleID:        getString(hitMap, "article_id"),
			URL:              getString(hitMap, "url"),
			Title:            getString(hitMap, "title"),
			Summary:          getString(hitMap, "summary"),
			Content:          getString(hitMap, "content"),
			SiteCategories:   getStringSlice(hitMap, "site_categories"),
			SearchKeyword:    getStringSlice(hitMap, "search_keyword"),
			PublishDate:      getInt64(hitMap, "publish_date"),
			Website:          getString(hitMap, "website"),
			SearchID:         getStringSlice(hitMap, "search_id"),
			AISentimentLabel: getString(hitMap, "ai_sentiment_label"),
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// UpdateSearchIDs rewrites one document's claim set via a partial update.
func (d *MeilisearchDriver) UpdateSearchIDs(ctx context.Context, articleID string, searchIDs []string) error {
	partial := []map[string]interface{}{
		{
			"article_id": articleID,
			"search_id":  searchIDs,
		},
	}

	task, err := d.index.UpdateDocuments(partial, "article_id")
	if err != nil {
		return &DriverError{Op: "UpdateSearchIDs", Err: err.Error()}
	}

	_, err = d.index.WaitForTask(task.TaskUID, meiliTaskTimeoutMs)
	if err != nil {
		return &DriverError{
			Op:  "UpdateSearchIDs",
			Err: "failed to wait for update task: " + err.Error(),
		}
	}

	return nil
}

// EnsureIndex creates the index and declares its attributes. Safe to
// call on every startup.
func (d *MeilisearchDriver) EnsureIndex(ctx context.Context) error {
	_, err := d.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        d.indexName,
		PrimaryKey: "article_id",
	})
	_ = err // index may already exist

	filterable := []string{
		"publish_date", "website", "site_categories", "search_id", "ai_sentiment_label",
	}
	task, err := d.index.UpdateFilterableAttributes(&filterable)
	if err != nil {
		return &DriverError{
			Op:  "EnsureIndex",
			Err: "failed to set filterable attributes: " + err.Error(),
		}
	}
	if _, err = d.index.WaitForTask(task.TaskUID, meiliTaskTimeoutMs); err != nil {
		return &DriverError{Op: "EnsureIndex", Err: err.Error()}
	}

	searchable := []string{
		"title", "summary", "content", "site_categories", "search_keyword", "ai_sentiment_label",
	}
	task, err = d.index.UpdateSearchableAttributes(&searchable)
	if err != nil {
		return &DriverError{
			Op:  "EnsureIndex",
			Err: "failed to set searchable attributes: " + err.Error(),
		}
	}
	if _, err = d.index.WaitForTask(task.TaskUID, meiliTaskTimeoutMs); err != nil {
		return &DriverError{Op: "EnsureIndex", Err: err.Error()}
	}

	return nil
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getStringSlice(m map[string]interface{}, key string) []string {
	if v, ok := m[key]; ok {
		if slice, ok := v.([]interface{}); ok {
			result := make([]string, 0, len(slice))
			for _, item := range slice {
				if s, ok := item.(string); ok {
					result = append(result, s)
				}
			}
			return result
		}
	}
	return []string{}
}

func getInt64(m map[string]interface{}, key string) int64 {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case float64:
			return int64(n)
		case int64:
			return n
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i
			}
		}
	}
	return 0
}
