package driver

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// progressTTL bounds how long a finished crawl's snapshot lingers.
const progressTTL = 2 * time.Hour

// ProgressRecord is the stored form of a crawl progress snapshot.
type ProgressRecord struct {
	SearchID   string    `json:"search_id"`
	Status     string    `json:"status"`
	TotalSaved int       `json:"total_saved"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RedisDriver holds live crawl progress keyed by search id.
type RedisDriver struct {
	client *redis.Client
}

func NewRedisDriver(url string) (*RedisDriver, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, &DriverError{Op: "NewRedisDriver", Err: err.Error()}
	}
	return &RedisDriver{client: redis.NewClient(opts)}, nil
}

func (d *RedisDriver) Ping(ctx context.Context) error {
	if err := d.client.Ping(ctx).Err(); err != nil {
		return &DriverError{Op: "Ping", Err: err.Error()}
	}
	return nil
}

func (d *RedisDriver) Close() error {
	return d.client.Close()
}

func progressKey(searchID string) string {
	return "crawl:progress:" + searchID
}

func (d *RedisDriver) SaveProgress(ctx context.Context, rec ProgressRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return &DriverError{Op: "SaveProgress", Err: err.Error()}
	}
	if err := d.client.Set(ctx, progressKey(rec.SearchID), data, progressTTL).Err(); err != nil {
		return &DriverError{Op: "SaveProgress", Err: err.Error()}
	}
	return nil
}

// GetProgress returns nil when no snapshot exists.
func (d *RedisDriver) GetProgress(ctx context.Context, searchID string) (*ProgressRecord, error) {
	data, err := d.client.Get(ctx, progressKey(searchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &DriverError{Op: "GetProgress", Err: err.Error()}
	}

	var rec ProgressRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &DriverError{Op: "GetProgress", Err: err.Error()}
	}
	return &rec, nil
}
