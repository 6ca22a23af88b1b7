package gateway

import (
	"context"
	"sync"

	"news-crawler/domain"
	"news-crawler/driver"
)

// ProgressDriver is what the gateway needs from the Redis driver.
type ProgressDriver interface {
	SaveProgress(ctx context.Context, rec driver.ProgressRecord) error
	GetProgress(ctx context.Context, searchID string) (*driver.ProgressRecord, error)
}

type ProgressGateway struct {
	driver ProgressDriver
}

func NewProgressGateway(driver ProgressDriver) *ProgressGateway {
	return &ProgressGateway{driver: driver}
}

func (g *ProgressGateway) SaveProgress(ctx context.Context, snapshot domain.ProgressSnapshot) error {
	err := g.driver.SaveProgress(ctx, driver.ProgressRecord{
		SearchID:   snapshot.SearchID,
		Status:     string(snapshot.Status),
		TotalSaved: snapshot.TotalSaved,
		UpdatedAt:  snapshot.UpdatedAt,
	})
	if err != nil {
		return &domain.RepositoryError{Op: "SaveProgress", Err: err.Error()}
	}
	return nil
}

func (g *ProgressGateway) GetProgress(ctx context.Context, searchID string) (*domain.ProgressSnapshot, error) {
	rec, err := g.driver.GetProgress(ctx, searchID)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "GetProgress", Err: err.Error()}
	}
	if rec == nil {
		return nil, nil
	}
	return &domain.ProgressSnapshot{
		SearchID:   rec.SearchID,
		Status:     domain.SessionStatus(rec.Status),
		TotalSaved: rec.TotalSaved,
		UpdatedAt:  rec.UpdatedAt,
	}, nil
}

// MemoryProgressStore is the fallback when Redis is not configured.
// Snapshots live only in this process.
type MemoryProgressStore struct {
	mu        sync.RWMutex
	snapshots map[string]domain.ProgressSnapshot
}

func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{snapshots: make(map[string]domain.ProgressSnapshot)}
}

func (s *MemoryProgressStore) SaveProgress(ctx context.Context, snapshot domain.ProgressSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.SearchID] = snapshot
	return nil
}

func (s *MemoryProgressStore) GetProgress(ctx context.Context, searchID string) (*domain.ProgressSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if snapshot, ok := s.snapshots[searchID]; ok {
		return &snapshot, nil
	}
	return nil, nil
}
