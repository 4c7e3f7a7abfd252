package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/audit"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person/resolver"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/email"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/privacy"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/requestcontext"
)

const snapshotConcurrency = 4

// IdentityResolver resolves identity input to an external reference.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string, payload person.Payload, mode resolver.Mode) (domain.ExternalRef, error)
}

// SnapshotProvider fetches person snapshots, degrading to nil on failure.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, token string, ref domain.ExternalRef) person.Payload
}

// IdentityPusher pushes person changes upstream and looks people up again.
type IdentityPusher interface {
	PushUpdate(ctx context.Context, token string, payload person.Payload) (*person.Envelope, error)
	SearchByIdentification(ctx context.Context, token, nationalID string) (*person.Envelope, error)
}

// Service owns coach registration. Coaches hold institutional accounts, so
// their identity input is validated against the institution's rules before
// the user module ever sees it.
type Service struct {
	store     Store
	resolver  IdentityResolver
	snapshots SnapshotProvider
	identity  IdentityPusher
	logger    *slog.Logger
	audit     *audit.Recorder
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

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

// Create registers a coach. All identity fields are required up front and
// checked against the institutional account rules; resolution is strict.
func (s *Service) Create(ctx context.Context, persona person.Payload, specialty, assignedClub string) (View, error) {
	token := requestcontext.BearerToken(ctx)
	if token == "" {
		return View{}, dErrors.New(dErrors.CodeUnauthorized, "authentication token required")
	}
	if len(persona) == 0 {
		return View{}, dErrors.New(dErrors.CodeValidation, "persona data is required")
	}

	if persona.FirstName() == "" {
		return View{}, dErrors.New(dErrors.CodeValidation, "first name is required")
	}
	if persona.LastName() == "" {
		return View{}, dErrors.New(dErrors.CodeValidation, "last name is required")
	}
	if persona.Email() == "" {
		return View{}, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if persona.Identification() == "" {
		return View{}, dErrors.New(dErrors.CodeValidation, "identification is required")
	}
	if persona.Password() == "" {
		return View{}, dErrors.New(dErrors.CodeValidation, "password is required")
	}
	specialty = strings.TrimSpace(specialty)
	if specialty == "" {
		return View{}, dErrors.New(dErrors.CodeValidation, "specialty is required")
	}
	assignedClub = strings.TrimSpace(assignedClub)
	if assignedClub == "" {
		return View{}, dErrors.New(dErrors.CodeValidation, "assigned club is required")
	}
	if err := checkInstitutionalEmail(persona); err != nil {
		return View{}, err
	}
	if _, err := domain.ParseDNI(persona.Identification()); err != nil {
		return View{}, err
	}

	ref, err := s.resolver.Resolve(ctx, token, persona, resolver.Strict)
	if err != nil {
		return View{}, err
	}

	inUse, err := s.store.ExistsActiveByExternalRef(ctx, ref, 0)
	if err != nil {
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "check coach uniqueness")
	}
	if inUse {
		return View{}, dErrors.New(dErrors.CodeConflict, "a coach with that external reference already exists")
	}

	created, err := s.store.Create(ctx, Coach{
		ExternalRef:  ref,
		Specialty:    specialty,
		AssignedClub: assignedClub,
		Active:       true,
		RegisteredAt: requestcontext.Now(ctx),
	})
	if err != nil {
		if err == sentinel.ErrConflict {
			return View{}, dErrors.New(dErrors.CodeConflict, "a coach with that external reference already exists")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "save coach")
	}

	s.audit.Record(ctx, audit.Event{
		Action:      audit.ActionCoachRegistered,
		Role:        "entrenador",
		RecordID:    int64(created.ID),
		ExternalRef: created.ExternalRef.String(),
		NationalID:  privacy.MaskNationalID(persona.Identification()),
	})

	return created.view(s.snapshots.Snapshot(ctx, token, created.ExternalRef)), nil
}

// Update pushes identity changes upstream best-effort and updates the local
// assignment. Persona may be omitted entirely when only the assignment
// changes; when present, an email is re-checked against the institutional
// rules.
func (s *Service) Update(ctx context.Context, id domain.CoachID, persona person.Payload, specialty, assignedClub *string) (View, error) {
	token := requestcontext.BearerToken(ctx)
	if token == "" {
		return View{}, dErrors.New(dErrors.CodeUnauthorized, "authentication token required")
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return View{}, dErrors.New(dErrors.CodeNotFound, "coach not found")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "load coach")
	}
	if !current.Active {
		return View{}, dErrors.New(dErrors.CodeNotFound, "coach not found")
	}

	if len(persona) > 0 {
		persona = persona.Clone()
		persona.SetDefault("external", current.ExternalRef.String(), []string{"external"})
		if persona.NormalizeEmail() != "" {
			if err := checkInstitutionalEmail(persona); err != nil {
				return View{}, err
			}
		}

		if _, pushErr := s.identity.PushUpdate(ctx, token, persona); pushErr != nil {
			s.logger.WarnContext(ctx, "user module update push failed, keeping local changes",
				"coach_id", id,
				"error", pushErr,
			)
		}

		// The user module may hand back a different reference after an
		// update; look the person up again and re-link when it did.
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
				return View{}, dErrors.Wrap(checkErr, dErrors.CodeInternal, "check coach uniqueness")
			}
			if inUse {
				return View{}, dErrors.New(dErrors.CodeConflict, "the returned external reference is already in use by another coach")
			}
			current.ExternalRef = newRef
		}
	}

	if specialty != nil {
		current.Specialty = strings.TrimSpace(*specialty)
	}
	if assignedClub != nil {
		current.AssignedClub = strings.TrimSpace(*assignedClub)
	}

	updated, err := s.store.Update(ctx, current)
	if err != nil {
		switch err {
		case sentinel.ErrNotFound:
			return View{}, dErrors.New(dErrors.CodeNotFound, "coach not found")
		case sentinel.ErrConflict:
			return View{}, dErrors.New(dErrors.CodeConflict, "the returned external reference is already in use by another coach")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "update coach")
	}

	s.audit.Record(ctx, audit.Event{
		Action:      audit.ActionCoachUpdated,
		Role:        "entrenador",
		RecordID:    int64(updated.ID),
		ExternalRef: updated.ExternalRef.String(),
		NationalID:  privacy.MaskNationalID(persona.Identification()),
	})

	return updated.view(s.snapshots.Snapshot(ctx, token, updated.ExternalRef)), nil
}

// SoftDelete retires a coach. Retiring an already retired coach succeeds.
func (s *Service) SoftDelete(ctx context.Context, id domain.CoachID) error {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return dErrors.New(dErrors.CodeNotFound, "coach not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load coach")
	}
	if err := s.store.SetActive(ctx, id, false); err != nil {
		if err == sentinel.ErrNotFound {
			return dErrors.New(dErrors.CodeNotFound, "coach not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "retire coach")
	}

	s.audit.Record(ctx, audit.Event{
		Action:      audit.ActionCoachDeactivated,
		Role:        "entrenador",
		RecordID:    int64(current.ID),
		ExternalRef: current.ExternalRef.String(),
	})
	return nil
}

// Reactivate brings a retired coach back. Reactivating an active coach is a
// conflict, unlike SoftDelete which is idempotent.
func (s *Service) Reactivate(ctx context.Context, id domain.CoachID) (View, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return View{}, dErrors.New(dErrors.CodeNotFound, "coach not found")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "load coach")
	}
	if current.Active {
		return View{}, dErrors.New(dErrors.CodeConflict, "the coach is already active")
	}
	if err := s.store.SetActive(ctx, id, true); err != nil {
		if err == sentinel.ErrNotFound {
			return View{}, dErrors.New(dErrors.CodeNotFound, "coach not found")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "reactivate coach")
	}
	current.Active = true

	s.audit.Record(ctx, audit.Event{
		Action:      audit.ActionCoachReactivated,
		Role:        "entrenador",
		RecordID:    int64(current.ID),
		ExternalRef: current.ExternalRef.String(),
	})

	token := requestcontext.BearerToken(ctx)
	return current.view(s.snapshots.Snapshot(ctx, token, current.ExternalRef)), nil
}

// Get returns an active coach with a best-effort person snapshot.
func (s *Service) Get(ctx context.Context, id domain.CoachID) (View, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return View{}, dErrors.New(dErrors.CodeNotFound, "coach not found")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "load coach")
	}
	if !rec.Active {
		return View{}, dErrors.New(dErrors.CodeNotFound, "coach not found")
	}
	token := requestcontext.BearerToken(ctx)
	return rec.view(s.snapshots.Snapshot(ctx, token, rec.ExternalRef)), nil
}

// List returns all active coaches with best-effort snapshots.
func (s *Service) List(ctx context.Context) ([]View, error) {
	records, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list coaches")
	}
	return s.collectViews(ctx, records)
}

// Search filters active coaches by a term matched against the assignment
// fields and, when a snapshot is available, the person's name, email and
// identification. With the user module down only the local fields match.
func (s *Service) Search(ctx context.Context, term string) ([]View, error) {
	records, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "search coaches")
	}
	views, err := s.collectViews(ctx, records)
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(strings.TrimSpace(term))
	matched := make([]View, 0, len(views))
	for _, v := range views {
		if matchesTerm(v, term) {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

// GetByExternalRef returns the record holding a reference, active or not.
func (s *Service) GetByExternalRef(ctx context.Context, ref domain.ExternalRef) (Coach, error) {
	rec, err := s.store.GetByExternalRef(ctx, ref)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return Coach{}, dErrors.New(dErrors.CodeNotFound, "coach not found")
		}
		return Coach{}, dErrors.Wrap(err, dErrors.CodeInternal, "load coach")
	}
	return rec, nil
}

func (s *Service) collectViews(ctx context.Context, records []Coach) ([]View, error) {
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
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "enrich coaches")
	}
	return views, nil
}

func matchesTerm(v View, term string) bool {
	if strings.Contains(strings.ToLower(v.Record.Specialty), term) ||
		strings.Contains(strings.ToLower(v.Record.AssignedClub), term) {
		return true
	}
	if v.Person == nil {
		return false
	}
	for _, field := range []string{v.Person.FirstName(), v.Person.LastName(), v.Person.Email(), v.Person.Identification()} {
		if field != "" && strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// checkInstitutionalEmail validates the payload's email against the
// institution's account rules, normalizing it in place first.
func checkInstitutionalEmail(persona person.Payload) error {
	addr := persona.NormalizeEmail()
	if addr == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if !strings.HasSuffix(addr, email.InstitutionalDomain) {
		return dErrors.New(dErrors.CodeValidation, "email must be institutional (@unl.edu.ec)")
	}
	if !email.IsInstitutional(addr) {
		return dErrors.New(dErrors.CodeValidation, "invalid institutional email format")
	}
	return nil
}
