package administrator

import (
	"context"
	"sort"
	"sync"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
)

// InMemoryStore keeps administrator rows in a map. It enforces the same
// external-reference uniqueness the postgres schema does, so service tests
// exercise the conflict paths without a database.
type InMemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[domain.AdministratorID]Administrator
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{rows: make(map[domain.AdministratorID]Administrator)}
}

func (s *InMemoryStore) Create(_ context.Context, rec Administrator) (Administrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.ExternalRef == rec.ExternalRef {
			return Administrator{}, sentinel.ErrConflict
		}
	}
	s.nextID++
	rec.ID = domain.AdministratorID(s.nextID)
	s.rows[rec.ID] = rec
	return rec, nil
}

func (s *InMemoryStore) Update(_ context.Context, rec Administrator) (Administrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[rec.ID]; !ok {
		return Administrator{}, sentinel.ErrNotFound
	}
	for id, existing := range s.rows {
		if id != rec.ID && existing.ExternalRef == rec.ExternalRef {
			return Administrator{}, sentinel.ErrConflict
		}
	}
	s.rows[rec.ID] = rec
	return rec, nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.AdministratorID) (Administrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.rows[id]
	if !ok {
		return Administrator{}, sentinel.ErrNotFound
	}
	return rec, nil
}

func (s *InMemoryStore) GetByExternalRef(_ context.Context, ref domain.ExternalRef) (Administrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.rows {
		if rec.ExternalRef == ref {
			return rec, nil
		}
	}
	return Administrator{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ExistsActiveByExternalRef(_ context.Context, ref domain.ExternalRef, excludeID domain.AdministratorID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, rec := range s.rows {
		if id != excludeID && rec.ExternalRef == ref && rec.Active {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) ListActive(_ context.Context) ([]Administrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Administrator, 0, len(s.rows))
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

func (s *InMemoryStore) SetActive(_ context.Context, id domain.AdministratorID, active bool) error {
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
