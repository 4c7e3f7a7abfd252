package administrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/administrator/metrics"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/audit"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person/resolver"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/privacy"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/requestcontext"
)

// snapshotConcurrency bounds the parallel user module calls made while
// enriching a listing.
const snapshotConcurrency = 4

// IdentityResolver resolves identity input to an external reference.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string, payload person.Payload, mode resolver.Mode) (domain.ExternalRef, error)
}

// SnapshotProvider fetches person snapshots, degrading to nil on failure.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, token string, ref domain.ExternalRef) person.Payload
}

// IdentityPusher is the slice of the user module client the update flow
// needs: push changed person data upstream and look the person up again.
type IdentityPusher interface {
	PushUpdate(ctx context.Context, token string, payload person.Payload) (*person.Envelope, error)
	SearchByIdentification(ctx context.Context, token, nationalID string) (*person.Envelope, error)
}

// Service owns administrator registration. Identity lives in the external
// user module; administrators are registered with the caller's own
// credentials, so every write requires the caller's bearer token.
type Service struct {
	store     Store
	resolver  IdentityResolver
	snapshots SnapshotProvider
	identity  IdentityPusher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	audit     *audit.Recorder
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAudit sets the audit recorder.
func WithAudit(recorder *audit.Recorder) Option {
	return func(s *Service) {
		s.audit = recorder
	}
}

func New(store Store, identityResolver IdentityResolver, snapshots SnapshotProvider, identity IdentityPusher, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if identityResolver == nil {
		return nil, fmt.Errorf("identity resolver is required")
	}
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot provider is required")
	}
	if identity == nil {
		return nil, fmt.Errorf("identity pusher is required")
	}
	s := &Service{
		store:     store,
		resolver:  identityResolver,
		snapshots: snapshots,
		identity:  identity,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create registers an administrator. The person is created in the user
// module first; only the returned reference is stored locally. Identity
// resolution is strict: no reference, no administrator.
func (s *Service) Create(ctx context.Context, persona person.Payload, position string) (view View, err error) {
	if s.metrics != nil {
		start := time.Now()
		defer func() { s.metrics.ObserveOperation("create", outcomeLabel(err), start) }()
	}

	token := requestcontext.BearerToken(ctx)
	if token == "" {
		return View{}, dErrors.New(dErrors.CodeUnauthorized, "authentication token required")
	}
	if len(persona) == 0 {
		return View{}, dErrors.New(dErrors.CodeValidation, "persona data is required")
	}
	persona.NormalizeEmail()
	if persona.Email() == "" {
		return View{}, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if persona.Password() == "" {
		return View{}, dErrors.New(dErrors.CodeValidation, "password is required")
	}

	ref, err := s.resolver.Resolve(ctx, token, persona, resolver.Strict)
	if err != nil {
		return View{}, err
	}

	inUse, err := s.store.ExistsActiveByExternalRef(ctx, ref, 0)
	if err != nil {
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "check administrator uniqueness")
	}
	if inUse {
		return View{}, dErrors.New(dErrors.CodeConflict, "an administrator with that external reference already exists")
	}

	created, err := s.store.Create(ctx, Administrator{
		ExternalRef:  ref,
		Position:     position,
		Active:       true,
		RegisteredAt: requestcontext.Now(ctx),
	})
	if err != nil {
		if err == sentinel.ErrConflict {
			return View{}, dErrors.New(dErrors.CodeConflict, "an administrator with that external reference already exists")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "save administrator")
	}

	s.audit.Record(ctx, audit.Event{
		Action:      audit.ActionAdministratorRegistered,
		Role:        "administrador",
		RecordID:    int64(created.ID),
		ExternalRef: created.ExternalRef.String(),
		NationalID:  privacy.MaskNationalID(persona.Identification()),
	})

	return created.view(s.snapshots.Snapshot(ctx, token, created.ExternalRef)), nil
}

// Update pushes changed person data upstream, re-resolves the reference in
// case the user module reassigned it, and updates the local row. The
// upstream push is best-effort: a failure is logged and the local update
// proceeds, so person edits survive user module outages.
func (s *Service) Update(ctx context.Context, id domain.AdministratorID, persona person.Payload, position *string) (view View, err error) {
	if s.metrics != nil {
		start := time.Now()
		defer func() { s.metrics.ObserveOperation("update", outcomeLabel(err), start) }()
	}

	token := requestcontext.BearerToken(ctx)
	if token == "" {
		return View{}, dErrors.New(dErrors.CodeUnauthorized, "authentication token required")
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return View{}, dErrors.New(dErrors.CodeNotFound, "administrator not found")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "load administrator")
	}
	if !current.Active {
		return View{}, dErrors.New(dErrors.CodeNotFound, "administrator not found")
	}
	if len(persona) == 0 {
		return View{}, dErrors.New(dErrors.CodeValidation, "persona data is required")
	}

	persona = persona.Clone()
	persona.SetDefault("external", current.ExternalRef.String(), []string{"external"})
	persona.NormalizeEmail()

	if _, pushErr := s.identity.PushUpdate(ctx, token, persona); pushErr != nil {
		s.logger.WarnContext(ctx, "user module update push failed, keeping local changes",
			"administrator_id", id,
			"error", pushErr,
		)
	}

	// The user module may reassign the reference during an update, so the
	// person is looked up again by identification. Lookup trouble keeps the
	// reference already on file.
	newRef := current.ExternalRef
	if ident := persona.Identification(); ident != "" {
		if env, lookupErr := s.identity.SearchByIdentification(ctx, token, ident); lookupErr == nil {
			if ref, ok := person.ExtractRefFromEnvelope(env); ok {
				newRef = ref
			}
		}
	}

	if newRef != current.ExternalRef {
		inUse, checkErr := s.store.ExistsActiveByExternalRef(ctx, newRef, current.ID)
		if checkErr != nil {
			return View{}, dErrors.Wrap(checkErr, dErrors.CodeInternal, "check administrator uniqueness")
		}
		if inUse {
			return View{}, dErrors.New(dErrors.CodeConflict, "the returned external reference is already in use by another administrator")
		}
	}

	current.ExternalRef = newRef
	if position != nil {
		current.Position = *position
	}
	current.Active = true

	updated, err := s.store.Update(ctx, current)
	if err != nil {
		switch err {
		case sentinel.ErrNotFound:
			return View{}, dErrors.New(dErrors.CodeNotFound, "administrator not found")
		case sentinel.ErrConflict:
			return View{}, dErrors.New(dErrors.CodeConflict, "the returned external reference is already in use by another administrator")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "update administrator")
	}

	s.audit.Record(ctx, audit.Event{
		Action:      audit.ActionAdministratorUpdated,
		Role:        "administrador",
		RecordID:    int64(updated.ID),
		ExternalRef: updated.ExternalRef.String(),
		NationalID:  privacy.MaskNationalID(persona.Identification()),
	})

	return updated.view(s.snapshots.Snapshot(ctx, token, updated.ExternalRef)), nil
}

// SoftDelete retires an administrator. Retiring an already retired record
// succeeds; the row keeps existing either way.
func (s *Service) SoftDelete(ctx context.Context, id domain.AdministratorID) (err error) {
	if s.metrics != nil {
		start := time.Now()
		defer func() { s.metrics.ObserveOperation("delete", outcomeLabel(err), start) }()
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return dErrors.New(dErrors.CodeNotFound, "administrator not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load administrator")
	}
	if err := s.store.SetActive(ctx, id, false); err != nil {
		if err == sentinel.ErrNotFound {
			return dErrors.New(dErrors.CodeNotFound, "administrator not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "retire administrator")
	}

	s.audit.Record(ctx, audit.Event{
		Action:      audit.ActionAdministratorDeactivated,
		Role:        "administrador",
		RecordID:    int64(current.ID),
		ExternalRef: current.ExternalRef.String(),
	})
	return nil
}

// Get returns an active administrator with a best-effort person snapshot.
// No token is required: without one the snapshot degrades to null.
func (s *Service) Get(ctx context.Context, id domain.AdministratorID) (View, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return View{}, dErrors.New(dErrors.CodeNotFound, "administrator not found")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "load administrator")
	}
	if !rec.Active {
		return View{}, dErrors.New(dErrors.CodeNotFound, "administrator not found")
	}
	token := requestcontext.BearerToken(ctx)
	return rec.view(s.snapshots.Snapshot(ctx, token, rec.ExternalRef)), nil
}

// List returns all active administrators, each with a best-effort snapshot.
// Snapshot fetches fan out with bounded concurrency so a listing costs one
// round of upstream latency instead of one call per record.
func (s *Service) List(ctx context.Context) ([]View, error) {
	records, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list administrators")
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
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "enrich administrators")
	}
	return views, nil
}

// GetByExternalRef returns the record holding a reference, active or not.
// Used by other contexts to answer "is this person an administrator".
func (s *Service) GetByExternalRef(ctx context.Context, ref domain.ExternalRef) (Administrator, error) {
	rec, err := s.store.GetByExternalRef(ctx, ref)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return Administrator{}, dErrors.New(dErrors.CodeNotFound, "administrator not found")
		}
		return Administrator{}, dErrors.Wrap(err, dErrors.CodeInternal, "load administrator")
	}
	return rec, nil
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	return string(dErrors.CodeOf(err))
}
