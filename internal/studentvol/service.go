package studentvol

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

const (
	snapshotConcurrency = 4

	defaultPageSize = 10
	maxPageSize     = 100

	minSearchTermLen = 2
)

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

// Service owns volunteer student registration. Volunteers hold institutional
// accounts like coaches do, plus an academic placement (career and semester)
// validated locally.
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

// Create registers a volunteer student. Identity fields follow the
// institutional account rules; the semester accepts suffixed spellings and
// is stored normalized.
func (s *Service) Create(ctx context.Context, persona person.Payload, career, semesterRaw string) (View, error) {
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
	career = strings.TrimSpace(career)
	if career == "" {
		return View{}, dErrors.New(dErrors.CodeValidation, "career is required")
	}
	semester, err := domain.ParseSemester(semesterRaw)
	if err != nil {
		return View{}, err
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
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "check volunteer uniqueness")
	}
	if inUse {
		return View{}, dErrors.New(dErrors.CodeConflict, "a volunteer student with that external reference already exists")
	}

	created, err := s.store.Create(ctx, StudentVolunteer{
		ExternalRef:  ref,
		Career:       career,
		Semester:     semester.Int16(),
		Active:       true,
		RegisteredAt: requestcontext.Now(ctx),
	})
	if err != nil {
		if err == sentinel.ErrConflict {
			return View{}, dErrors.New(dErrors.CodeConflict, "a volunteer student with that external reference already exists")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "save volunteer")
	}

	s.audit.Record(ctx, audit.Event{
		Action:      audit.ActionVolunteerRegistered,
		Role:        "estudiante_vinculacion",
		RecordID:    int64(created.ID),
		ExternalRef: created.ExternalRef.String(),
		NationalID:  privacy.MaskNationalID(persona.Identification()),
	})

	return created.view(s.snapshots.Snapshot(ctx, token, created.ExternalRef)), nil
}

// Update pushes identity changes upstream best-effort and updates the local
// placement. A semester arriving here is re-validated the same way Create
// validates it.
func (s *Service) Update(ctx context.Context, id domain.StudentVolunteerID, persona person.Payload, career, semesterRaw *string) (View, error) {
	token := requestcontext.BearerToken(ctx)
	if token == "" {
		return View{}, dErrors.New(dErrors.CodeUnauthorized, "authentication token required")
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return View{}, dErrors.New(dErrors.CodeNotFound, "volunteer student not found")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "load volunteer")
	}
	if !current.Active {
		return View{}, dErrors.New(dErrors.CodeNotFound, "volunteer student not found")
	}

	if semesterRaw != nil {
		semester, err := domain.ParseSemester(*semesterRaw)
		if err != nil {
			return View{}, err
		}
		current.Semester = semester.Int16()
	}
	if career != nil {
		current.Career = strings.TrimSpace(*career)
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
				"volunteer_id", id,
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
				return View{}, dErrors.Wrap(checkErr, dErrors.CodeInternal, "check volunteer uniqueness")
			}
			if inUse {
				return View{}, dErrors.New(dErrors.CodeConflict, "the returned external reference is already in use by another volunteer student")
			}
			current.ExternalRef = newRef
		}
	}

	updated, err := s.store.Update(ctx, current)
	if err != nil {
		switch err {
		case sentinel.ErrNotFound:
			return View{}, dErrors.New(dErrors.CodeNotFound, "volunteer student not found")
		case sentinel.ErrConflict:
			return View{}, dErrors.New(dErrors.CodeConflict, "the returned external reference is already in use by another volunteer student")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "update volunteer")
	}

	s.audit.Record(ctx, audit.Event{
		Action:      audit.ActionVolunteerUpdated,
		Role:        "estudiante_vinculacion",
		RecordID:    int64(updated.ID),
		ExternalRef: updated.ExternalRef.String(),
		NationalID:  privacy.MaskNationalID(persona.Identification()),
	})

	return updated.view(s.snapshots.Snapshot(ctx, token, updated.ExternalRef)), nil
}

// SoftDelete retires a volunteer. Retiring an already retired volunteer
// succeeds.
func (s *Service) SoftDelete(ctx context.Context, id domain.StudentVolunteerID) error {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return dErrors.New(dErrors.CodeNotFound, "volunteer student not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load volunteer")
	}
	if err := s.store.SetActive(ctx, id, false); err != nil {
		if err == sentinel.ErrNotFound {
			return dErrors.New(dErrors.CodeNotFound, "volunteer student not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "retire volunteer")
	}

	s.audit.Record(ctx, audit.Event{
		Action:      audit.ActionVolunteerDeactivated,
		Role:        "estudiante_vinculacion",
		RecordID:    int64(current.ID),
		ExternalRef: current.ExternalRef.String(),
	})
	return nil
}

// Reactivate brings a retired volunteer back. Reactivating an active
// volunteer is a conflict, unlike SoftDelete which is idempotent.
func (s *Service) Reactivate(ctx context.Context, id domain.StudentVolunteerID) (View, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return View{}, dErrors.New(dErrors.CodeNotFound, "volunteer student not found")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "load volunteer")
	}
	if current.Active {
		return View{}, dErrors.New(dErrors.CodeConflict, "the volunteer student is already active")
	}
	if err := s.store.SetActive(ctx, id, true); err != nil {
		if err == sentinel.ErrNotFound {
			return View{}, dErrors.New(dErrors.CodeNotFound, "volunteer student not found")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "reactivate volunteer")
	}
	current.Active = true

	s.audit.Record(ctx, audit.Event{
		Action:      audit.ActionVolunteerReactivated,
		Role:        "estudiante_vinculacion",
		RecordID:    int64(current.ID),
		ExternalRef: current.ExternalRef.String(),
	})

	token := requestcontext.BearerToken(ctx)
	return current.view(s.snapshots.Snapshot(ctx, token, current.ExternalRef)), nil
}

// Get returns an active volunteer with a best-effort person snapshot.
func (s *Service) Get(ctx context.Context, id domain.StudentVolunteerID) (View, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return View{}, dErrors.New(dErrors.CodeNotFound, "volunteer student not found")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "load volunteer")
	}
	if !rec.Active {
		return View{}, dErrors.New(dErrors.CodeNotFound, "volunteer student not found")
	}
	token := requestcontext.BearerToken(ctx)
	return rec.view(s.snapshots.Snapshot(ctx, token, rec.ExternalRef)), nil
}

// List returns all active volunteers with best-effort snapshots.
func (s *Service) List(ctx context.Context) ([]View, error) {
	records, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list volunteers")
	}
	return s.collectViews(ctx, records)
}

// ListPage returns one page of active volunteers, newest first. Page numbers
// start at 1; out-of-range sizes fall back to the defaults.
func (s *Service) ListPage(ctx context.Context, page, pageSize int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	records, total, err := s.store.ListActivePage(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return Page{}, dErrors.Wrap(err, dErrors.CodeInternal, "list volunteer page")
	}
	views, err := s.collectViews(ctx, records)
	if err != nil {
		return Page{}, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	return Page{
		Items:      views,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Search filters active volunteers by a term of at least two characters,
// matched against the career and, when a snapshot is available, the
// person's name, email and identification. With the user module down only
// the career matches.
func (s *Service) Search(ctx context.Context, term string) ([]View, error) {
	term = strings.TrimSpace(term)
	if len(term) < minSearchTermLen {
		return nil, dErrors.New(dErrors.CodeValidation, "search term must have at least 2 characters")
	}

	records, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "search volunteers")
	}
	views, err := s.collectViews(ctx, records)
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(term)
	matched := make([]View, 0, len(views))
	for _, v := range views {
		if matchesTerm(v, term) {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

// FilterByCareer returns active volunteers whose career contains the
// fragment, case-insensitively. An empty fragment matches everyone.
func (s *Service) FilterByCareer(ctx context.Context, career string) ([]View, error) {
	records, err := s.store.ListActiveByCareer(ctx, strings.TrimSpace(career))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "filter volunteers")
	}
	return s.collectViews(ctx, records)
}

// GetByExternalRef returns the record holding a reference, active or not.
func (s *Service) GetByExternalRef(ctx context.Context, ref domain.ExternalRef) (StudentVolunteer, error) {
	rec, err := s.store.GetByExternalRef(ctx, ref)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return StudentVolunteer{}, dErrors.New(dErrors.CodeNotFound, "volunteer student not found")
		}
		return StudentVolunteer{}, dErrors.Wrap(err, dErrors.CodeInternal, "load volunteer")
	}
	return rec, nil
}

func (s *Service) collectViews(ctx context.Context, records []StudentVolunteer) ([]View, error) {
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
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "enrich volunteers")
	}
	return views, nil
}

func matchesTerm(v View, term string) bool {
	if strings.Contains(strings.ToLower(v.Record.Career), term) {
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
