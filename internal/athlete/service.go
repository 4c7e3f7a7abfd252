package athlete

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/requestcontext"
)

const snapshotConcurrency = 4

// SnapshotProvider fetches person snapshots, degrading to nil on failure.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, token string, ref domain.ExternalRef) person.Payload
}

// Service serves athlete read views. Writes go through enrollment, which
// owns the reconciliation rules; this side only merges rows with snapshots.
type Service struct {
	store     Store
	snapshots SnapshotProvider
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, snapshots SnapshotProvider, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot provider is required")
	}
	s := &Service{
		store:     store,
		snapshots: snapshots,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get returns an active athlete merged with a best-effort person snapshot.
func (s *Service) Get(ctx context.Context, id domain.AthleteID) (View, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return View{}, dErrors.New(dErrors.CodeNotFound, "athlete not found")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "load athlete")
	}
	if !rec.Active {
		return View{}, dErrors.New(dErrors.CodeNotFound, "athlete not found")
	}
	token := requestcontext.BearerToken(ctx)
	return rec.view(s.snapshots.Snapshot(ctx, token, rec.ExternalRef)), nil
}

// List returns all active athletes with best-effort snapshots.
func (s *Service) List(ctx context.Context) ([]View, error) {
	records, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list athletes")
	}
	token := requestcontext.BearerToken(ctx)
	views := make([]View, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotConcurrency)
	for i, rec := range records {
		g.Go(func() error {
			views[i] = rec.view(s.snapshots.Snapshot(gctx, token, rec.ExternalRef))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "enrich athletes")
	}
	return views, nil
}
