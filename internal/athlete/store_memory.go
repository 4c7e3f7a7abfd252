package athlete

import (
	"context"
	"sort"
	"sync"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
)

// InMemoryStore keeps athlete rows in a map, enforcing the same uniqueness
// the atleta table does on persona_external and cedula.
type InMemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[domain.AthleteID]Athlete
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{rows: make(map[domain.AthleteID]Athlete)}
}

func (s *InMemoryStore) Create(_ context.Context, rec Athlete) (Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.ExternalRef == rec.ExternalRef || existing.NationalID == rec.NationalID {
			return Athlete{}, sentinel.ErrConflict
		}
	}
	s.nextID++
	rec.ID = domain.AthleteID(s.nextID)
	s.rows[rec.ID] = rec
	return rec, nil
}

func (s *InMemoryStore) Update(_ context.Context, rec Athlete) (Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[rec.ID]; !ok {
		return Athlete{}, sentinel.ErrNotFound
	}
	for id, existing := range s.rows {
		if id == rec.ID {
			continue
		}
		if existing.ExternalRef == rec.ExternalRef || existing.NationalID == rec.NationalID {
			return Athlete{}, sentinel.ErrConflict
		}
	}
	s.rows[rec.ID] = rec
	return rec, nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.AthleteID) (Athlete, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.rows[id]
	if !ok {
		return Athlete{}, sentinel.ErrNotFound
	}
	return rec, nil
}

func (s *InMemoryStore) GetByExternalRef(_ context.Context, ref domain.ExternalRef) (Athlete, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.rows {
		if rec.ExternalRef == ref {
			return rec, nil
		}
	}
	return Athlete{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) GetByNationalID(_ context.Context, nationalID domain.NationalID) (Athlete, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.rows {
		if rec.NationalID == nationalID {
			return rec, nil
		}
	}
	return Athlete{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListActive(_ context.Context) ([]Athlete, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Athlete, 0, len(s.rows))
	for _, rec := range s.rows {
		if rec.Active {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].RegisteredAt.After(out[j].RegisteredAt)
	})
	return out, nil
}

func (s *InMemoryStore) SetActive(_ context.Context, id domain.AthleteID, active bool) error {
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
