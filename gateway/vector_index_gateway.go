package gateway

import (
	"context"
	"time"

	"news-crawler/domain"
	"news-crawler/driver"
)

// VectorDriver is what the gateway needs from the Qdrant driver.
type VectorDriver interface {
	EnsureCollection(ctx context.Context) error
	UpsertPoints(ctx context.Context, records []driver.PointRecord) error
	Search(ctx context.Context, vector []float32, spec driver.FilterSpec, scoreThreshold float32, limit int) ([]driver.ScoredPointRecord, error)
	SetPayloadByArticleID(ctx context.Context, articleID string, payload map[string]interface{}) error
	ScrollByArticleID(ctx context.Context, articleID string) ([]driver.ScoredPointRecord, error)
	DeleteByArticleIDs(ctx context.Context, articleIDs []string) error
}

type VectorIndexGateway struct {
	driver VectorDriver
}

func NewVectorIndexGateway(driver VectorDriver) *VectorIndexGateway {
	return &VectorIndexGateway{driver: driver}
}

func (g *VectorIndexGateway) EnsureCollection(ctx context.Context) error {
	if err := g.driver.EnsureCollection(ctx); err != nil {
		return &domain.VectorIndexError{Op: "EnsureCollection", Err: err.Error()}
	}
	return nil
}

func (g *VectorIndexGateway) UpsertPoints(ctx context.Context, points []domain.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	records := make([]driver.PointRecord, len(points))
	for i, p := range points {
		records[i] = driver.PointRecord{
			ID:      p.ID,
			Vector:  p.Vector,
			Payload: toPointPayload(p.Payload),
		}
	}

	if err := g.driver.UpsertPoints(ctx, records); err != nil {
		return &domain.VectorIndexError{Op: "UpsertPoints", Err: err.Error()}
	}
	return nil
}

func (g *VectorIndexGateway) Search(ctx context.Context, vector []float32, filter domain.VectorFilter, scoreThreshold float32, limit int) ([]domain.ScoredPoint, error) {
	kinds := make([]string, len(filter.Kinds))
	for i, k := range filter.Kinds {
		kinds[i] = string(k)
	}

	hits, err := g.driver.Search(ctx, vector, driver.FilterSpec{
		Kinds:     kinds,
		ArticleID: filter.ArticleID,
		Websites:  filter.Websites,
		Topic:     filter.Topic,
		SearchID:  filter.SearchID,
		UserIDs:   filter.UserIDs,
	}, scoreThreshold, limit)
	if err != nil {
		return nil, &domain.VectorIndexError{Op: "Search", Err: err.Error()}
	}

	points := make([]domain.ScoredPoint, len(hits))
	for i, hit := range hits {
		points[i] = domain.ScoredPoint{
			Score:   hit.Score,
			Payload: fromPointPayload(hit.Payload),
		}
	}
	return points, nil
}

// AddSearchID patches the claim set of every point of the article,
// reading the current set first so the patch stays a set-add.
func (g *VectorIndexGateway) AddSearchID(ctx context.Context, articleID, searchID string) error {
	points, err := g.driver.ScrollByArticleID(ctx, articleID)
	if err != nil {
		return &domain.VectorIndexError{Op: "AddSearchID", Err: err.Error()}
	}
	if len(points) == 0 {
		return nil
	}

	current := toStringSlice(points[0].Payload["search_id"])
	for _, id := range current {
		if id == searchID {
			return nil
		}
	}
	updated := append(current, searchID)

	if err := g.driver.SetPayloadByArticleID(ctx, articleID, map[string]interface{}{
		"search_id": toInterfaceSlice(updated),
	}); err != nil {
		return &domain.VectorIndexError{Op: "AddSearchID", Err: err.Error()}
	}
	return nil
}

func (g *VectorIndexGateway) UpdateSearchIDs(ctx context.Context, articleID string, searchIDs []string) error {
	if err := g.driver.SetPayloadByArticleID(ctx, articleID, map[string]interface{}{
		"search_id": toInterfaceSlice(searchIDs),
	}); err != nil {
		return &domain.VectorIndexError{Op: "UpdateSearchIDs", Err: err.Error()}
	}
	return nil
}

func (g *VectorIndexGateway) DeleteByArticleIDs(ctx context.Context, articleIDs []string) error {
	if len(articleIDs) == 0 {
		return nil
	}
	if err := g.driver.DeleteByArticleIDs(ctx, articleIDs); err != nil {
		return &domain.VectorIndexError{Op: "DeleteByArticleIDs", Err: err.Error()}
	}
	return nil
}

func toPointPayload(p domain.PointPayload) map[string]interface{} {
	payload := map[string]interface{}{
		"type":       string(p.Kind),
		"article_id": p.ArticleID,
		"title":      p.Title,
		"url":        p.URL,
		"website":    p.Website,
		"sentiment":  p.Sentiment,
		"topic":      toInterfaceSlice(p.Topic),
		"search_id":  toInterfaceSlice(p.SearchIDs),
		"user_id":    p.UserID,
	}
	if p.Kind == domain.PointAISummary {
		payload["summary_text"] = toInterfaceSlice(p.SummaryText)
	} else {
		payload["chunk_id"] = p.ChunkID
		payload["text"] = p.Text
	}
	if p.PublishDate != nil {
		payload["publish_date"] = p.PublishDate.UTC().Format(time.RFC3339)
	}
	return payload
}

func fromPointPayload(payload map[string]interface{}) domain.PointPayload {
	p := domain.PointPayload{
		Kind:        domain.PointKind(toString(payload["type"])),
		ArticleID:   toString(payload["article_id"]),
		ChunkID:     toString(payload["chunk_id"]),
		Text:        toString(payload["text"]),
		SummaryText: toStringSlice(payload["summary_text"]),
		Title:       toString(payload["title"]),
		URL:         toString(payload["url"]),
		Website:     toString(payload["website"]),
		Topic:       toStringSlice(payload["topic"]),
		SearchIDs:   toStringSlice(payload["search_id"]),
		UserID:      toString(payload["user_id"]),
	}
	if f, ok := payload["sentiment"].(float64); ok {
		p.Sentiment = f
	}
	if raw := toString(payload["publish_date"]); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			p.PublishDate = &t
		}
	}
	return p
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func toStringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toInterfaceSlice(items []string) []interface{} {
	out := make([]interface{}, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}
