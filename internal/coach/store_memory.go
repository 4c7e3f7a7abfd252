package coach

import (
	"context"
	"sort"
	"sync"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
)

// InMemoryStore keeps coach rows in a map, enforcing the same reference
// uniqueness the entrenador table does.
type InMemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[domain.CoachID]Coach
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{rows: make(map[domain.CoachID]Coach)}
}

func (s *InMemoryStore) Create(_ context.Context, rec Coach) (Coach, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.ExternalRef == rec.ExternalRef {
			return Coach{}, sentinel.ErrConflict
		}
	}
	s.nextID++
	rec.ID = domain.CoachID(s.nextID)
	s.rows[rec.ID] = rec
	return rec, nil
}

func (s *InMemoryStore) Update(_ context.Context, rec Coach) (Coach, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[rec.ID]; !ok {
		return Coach{}, sentinel.ErrNotFound
	}
	for id, existing := range s.rows {
		if id != rec.ID && existing.ExternalRef == rec.ExternalRef {
			return Coach{}, sentinel.ErrConflict
		}
	}
	s.rows[rec.ID] = rec
	return rec, nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.CoachID) (Coach, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.rows[id]
	if !ok {
		return Coach{}, sentinel.ErrNotFound
	}
	return rec, nil
}

func (s *InMemoryStore) GetByExternalRef(_ context.Context, ref domain.ExternalRef) (Coach, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.rows {
		if rec.ExternalRef == ref {
			return rec, nil
		}
	}
	return Coach{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ExistsActiveByExternalRef(_ context.Context, ref domain.ExternalRef, excludeID domain.CoachID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, rec := range s.rows {
		if id != excludeID && rec.ExternalRef == ref && rec.Active {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) ListActive(_ context.Context) ([]Coach, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Coach, 0, len(s.rows))
	for _, rec := range s.rows {
		if rec.Active {
			out = append(out, rec)
		}
	}
	// Newest first, matching the postgres ordering.
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].RegisteredAt.After(out[j].RegisteredAt)
	})
	return out, nil
}

func (s *InMemoryStore) SetActive(_ context.Context, id domain.CoachID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	rec.Active = active
	s.rows[id] = rec
	return nil
}
