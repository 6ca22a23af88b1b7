package driver

import (
	"context"
	"strings"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"news-crawler/config"
)

// QdrantDriver owns the vector collection of chunk and summary points.
type QdrantDriver struct {
	client     *qdrant.Client
	collection string
	vectorSize uint64
}

func NewQdrantDriver(cfg *config.QdrantConfig, vectorSize uint64) (*QdrantDriver, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, &DriverError{Op: "NewQdrantDriver", Err: err.Error()}
	}

	return &QdrantDriver{
		client:     client,
		collection: cfg.Collection,
		vectorSize: vectorSize,
	}, nil
}

func (d *QdrantDriver) Close() error {
	return d.client.Close()
}

// EnsureCollection creates the collection and its payload indexes. Safe
// to call on every startup.
func (d *QdrantDriver) EnsureCollection(ctx context.Context) error {
	exists, err := d.client.CollectionExists(ctx, d.collection)
	if err != nil {
		return &DriverError{Op: "EnsureCollection", Err: err.Error()}
	}

	if !exists {
		err = d.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: d.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     d.vectorSize,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			return &DriverError{Op: "EnsureCollection", Err: err.Error()}
		}
	}

	for _, field := range []string{"type", "article_id", "website", "user_id", "search_id"} {
		_, err := d.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: d.collection,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			return &DriverError{Op: "EnsureCollection", Err: "field index " + field + ": " + err.Error()}
		}
	}

	return nil
}

// PointRecord is the driver form of one vector point.
type PointRecord struct {
	ID      string
	Vector  []float32
	Payload map[string]interface{}
}

// ScoredPointRecord is one search hit.
type ScoredPointRecord struct {
	ID      string
	Score   float32
	Payload map[string]interface{}
}

func (d *QdrantDriver) UpsertPoints(ctx context.Context, records []PointRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, rec := range records {
		payload := make(map[string]*qdrant.Value, len(rec.Payload))
		for key, value := range rec.Payload {
			val, err := qdrant.NewValue(value)
			if err != nil {
				return &DriverError{Op: "UpsertPoints", Err: "payload key " + key + ": " + err.Error()}
			}
			payload[key] = val
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(rec.ID),
			Vectors: qdrant.NewVectors(rec.Vector...),
			Payload: payload,
		})
	}

	_, err := d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: d.collection,
		Points:         points,
	})
	if err != nil {
		return &DriverError{Op: "UpsertPoints", Err: err.Error()}
	}
	return nil
}

// FilterSpec carries the populated vector-filter fields. Each populated
// field becomes a must condition.
type FilterSpec struct {
	Kinds     []string
	ArticleID string
	Websites  []string
	Topic     string
	SearchID  string
	UserIDs   []string
}

func buildFilter(spec FilterSpec) *qdrant.Filter {
	var must []*qdrant.Condition

	if len(spec.Kinds) == 1 {
		must = append(must, matchKeyword("type", spec.Kinds[0]))
	} else if len(spec.Kinds) > 1 {
		must = append(must, matchAnyKeyword("type", spec.Kinds))
	}
	if spec.ArticleID != "" {
		must = append(must, matchKeyword("article_id", spec.ArticleID))
	}
	if len(spec.Websites) == 1 {
		must = append(must, matchKeyword("website", spec.Websites[0]))
	} else if len(spec.Websites) > 1 {
		must = append(must, matchAnyKeyword("website", spec.Websites))
	}
	if spec.Topic != "" {
		must = append(must, matchKeyword("topic", spec.Topic))
	}
	if spec.SearchID != "" {
		must = append(must, matchKeyword("search_id", spec.SearchID))
	}
	if len(spec.UserIDs) > 0 {
		must = append(must, matchAnyKeyword("user_id", spec.UserIDs))
	}

	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

func matchKeyword(key, value string) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: key,
				Match: &qdrant.Match{
					MatchValue: &qdrant.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}

func matchAnyKeyword(key string, values []string) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: key,
				Match: &qdrant.Match{
					MatchValue: &qdrant.Match_Keywords{
						Keywords: &qdrant.RepeatedStrings{Strings: values},
					},
				},
			},
		},
	}
}

// Search returns hits above scoreThreshold, best first.
func (d *QdrantDriver) Search(ctx context.Context, vector []float32, spec FilterSpec, scoreThreshold float32, limit int) ([]ScoredPointRecord, error) {
	searchRequest := &qdrant.SearchPoints{
		CollectionName: d.collection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if scoreThreshold > 0 {
		searchRequest.ScoreThreshold = &scoreThreshold
	}
	if filter := buildFilter(spec); filter != nil {
		searchRequest.Filter = filter
	}

	result, err := d.client.GetPointsClient().Search(ctx, searchRequest)
	if err != nil {
		return nil, &DriverError{Op: "Search", Err: err.Error()}
	}

	hits := make([]ScoredPointRecord, 0, len(result.Result))
	for _, point := range result.Result {
		hits = append(hits, ScoredPointRecord{
			ID:      pointIDString(point.Id),
			Score:   point.Score,
			Payload: decodePayload(point.Payload),
		})
	}
	return hits, nil
}

// SetPayloadByArticleID patches the given payload fields on every point
// of the article.
func (d *QdrantDriver) SetPayloadByArticleID(ctx context.Context, articleID string, payload map[string]interface{}) error {
	values := make(map[string]*qdrant.Value, len(payload))
	for key, value := range payload {
		val, err := qdrant.NewValue(value)
		if err != nil {
			return &DriverError{Op: "SetPayloadByArticleID", Err: "payload key " + key + ": " + err.Error()}
		}
		values[key] = val
	}

	_, err := d.client.SetPayload(ctx, &qdrant.SetPayloadPoints{
		CollectionName: d.collection,
		Payload:        values,
		PointsSelector: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: buildFilter(FilterSpec{ArticleID: articleID}),
			},
		},
	})
	if err != nil {
		return &DriverError{Op: "SetPayloadByArticleID", Err: err.Error()}
	}
	return nil
}

// ScrollByArticleID returns all points of the article, payload only.
func (d *QdrantDriver) ScrollByArticleID(ctx context.Context, articleID string) ([]ScoredPointRecord, error) {
	limit := uint32(256)
	points, err := d.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: d.collection,
		Filter:         buildFilter(FilterSpec{ArticleID: articleID}),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, &DriverError{Op: "ScrollByArticleID", Err: err.Error()}
	}

	records := make([]ScoredPointRecord, 0, len(points))
	for _, point := range points {
		records = append(records, ScoredPointRecord{
			ID:      pointIDString(point.Id),
			Payload: decodePayload(point.Payload),
		})
	}
	return records, nil
}

// DeleteByArticleIDs drops every point belonging to the articles.
func (d *QdrantDriver) DeleteByArticleIDs(ctx context.Context, articleIDs []string) error {
	if len(articleIDs) == 0 {
		return nil
	}

	_, err := d.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: d.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{matchAnyKeyword("article_id", articleIDs)},
				},
			},
		},
	})
	if err != nil {
		return &DriverError{Op: "DeleteByArticleIDs", Err: err.Error()}
	}
	return nil
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid, ok := id.PointIdOptions.(*qdrant.PointId_Uuid); ok {
		return uuid.Uuid
	}
	return ""
}

func decodePayload(payload map[string]*qdrant.Value) map[string]interface{} {
	out := make(map[string]interface{}, len(payload))
	for key, value := range payload {
		out[key] = decodeValue(value)
	}
	return out
}

func decodeValue(value *qdrant.Value) interface{} {
	if value == nil {
		return nil
	}
	switch v := value.Kind.(type) {
	case *qdrant.Value_StringValue:
		return v.StringValue
	case *qdrant.Value_IntegerValue:
		return v.IntegerValue
	case *qdrant.Value_DoubleValue:
		return v.DoubleValue
	case *qdrant.Value_BoolValue:
		return v.BoolValue
	case *qdrant.Value_ListValue:
		if v.ListValue == nil {
			return nil
		}
		list := make([]interface{}, len(v.ListValue.Values))
		for i, item := range v.ListValue.Values {
			list[i] = decodeValue(item)
		}
		return list
	default:
		return nil
	}
}

// PayloadTime formats timestamps stored in point payloads.
func PayloadTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
