package studentvol

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
)

// InMemoryStore keeps volunteer rows in a map, enforcing the same reference
// uniqueness the estudiante_vinculacion table does.
type InMemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[domain.StudentVolunteerID]StudentVolunteer
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{rows: make(map[domain.StudentVolunteerID]StudentVolunteer)}
}

func (s *InMemoryStore) Create(_ context.Context, rec StudentVolunteer) (StudentVolunteer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.ExternalRef == rec.ExternalRef {
			return StudentVolunteer{}, sentinel.ErrConflict
		}
	}
	s.nextID++
	rec.ID = domain.StudentVolunteerID(s.nextID)
	s.rows[rec.ID] = rec
	return rec, nil
}

func (s *InMemoryStore) Update(_ context.Context, rec StudentVolunteer) (StudentVolunteer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[rec.ID]; !ok {
		return StudentVolunteer{}, sentinel.ErrNotFound
	}
	for id, existing := range s.rows {
		if id != rec.ID && existing.ExternalRef == rec.ExternalRef {
			return StudentVolunteer{}, sentinel.ErrConflict
		}
	}
	s.rows[rec.ID] = rec
	return rec, nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.StudentVolunteerID) (StudentVolunteer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.rows[id]
	if !ok {
		return StudentVolunteer{}, sentinel.ErrNotFound
	}
	return rec, nil
}

func (s *InMemoryStore) GetByExternalRef(_ context.Context, ref domain.ExternalRef) (StudentVolunteer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.rows {
		if rec.ExternalRef == ref {
			return rec, nil
		}
	}
	return StudentVolunteer{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ExistsActiveByExternalRef(_ context.Context, ref domain.ExternalRef, excludeID domain.StudentVolunteerID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, rec := range s.rows {
		if id != excludeID && rec.ExternalRef == ref && rec.Active {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) ListActive(_ context.Context) ([]StudentVolunteer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeSorted(), nil
}

func (s *InMemoryStore) ListActivePage(_ context.Context, offset, limit int) ([]StudentVolunteer, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.activeSorted()
	total := len(all)
	if offset >= total {
		return []StudentVolunteer{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *InMemoryStore) ListActiveByCareer(_ context.Context, career string) ([]StudentVolunteer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fragment := strings.ToLower(career)
	out := make([]StudentVolunteer, 0)
	for _, rec := range s.activeSorted() {
		if strings.Contains(strings.ToLower(rec.Career), fragment) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *InMemoryStore) SetActive(_ context.Context, id domain.StudentVolunteerID, active bool) error {
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

// activeSorted returns active rows newest first, matching the postgres
// ordering. Callers hold at least the read lock.
func (s *InMemoryStore) activeSorted() []StudentVolunteer {
	out := make([]StudentVolunteer, 0, len(s.rows))
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
	return out
}
