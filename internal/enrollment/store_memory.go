package enrollment

import (
	"context"
	"sort"
	"sync"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
)

// InMemoryStore keeps enrollment rows in a map, enforcing the same
// one-row-per-athlete uniqueness the inscripcion table does.
type InMemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[domain.EnrollmentID]Enrollment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{rows: make(map[domain.EnrollmentID]Enrollment)}
}

func (s *InMemoryStore) Create(_ context.Context, rec Enrollment) (Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.AthleteID == rec.AthleteID {
			return Enrollment{}, sentinel.ErrConflict
		}
	}
	s.nextID++
	rec.ID = domain.EnrollmentID(s.nextID)
	s.rows[rec.ID] = rec
	return rec, nil
}

func (s *InMemoryStore) Update(_ context.Context, rec Enrollment) (Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[rec.ID]; !ok {
		return Enrollment{}, sentinel.ErrNotFound
	}
	for id, existing := range s.rows {
		if id != rec.ID && existing.AthleteID == rec.AthleteID {
			return Enrollment{}, sentinel.ErrConflict
		}
	}
	s.rows[rec.ID] = rec
	return rec, nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.EnrollmentID) (Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.rows[id]
	if !ok {
		return Enrollment{}, sentinel.ErrNotFound
	}
	return rec, nil
}

func (s *InMemoryStore) GetByAthleteID(_ context.Context, athleteID domain.AthleteID) (Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.rows {
		if rec.AthleteID == athleteID {
			return rec, nil
		}
	}
	return Enrollment{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Enrollment, 0, len(s.rows))
	for _, rec := range s.rows {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) SetEnabled(_ context.Context, id domain.EnrollmentID, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	rec.Enabled = enabled
	s.rows[id] = rec
	return nil
}
