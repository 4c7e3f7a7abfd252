package enrollment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/athlete"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/audit"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/enrollment/metrics"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person/resolver"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/email"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/privacy"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/requestcontext"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/secrets"
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

// IdentityPusher pushes person changes upstream.
type IdentityPusher interface {
	PushUpdate(ctx context.Context, token string, payload person.Payload) (*person.Envelope, error)
}

// Transactor runs fn inside one storage transaction so the athlete and
// enrollment writes land together or not at all.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service orchestrates enrollment: resolve the identity without ever
// blocking on the user module, upsert the athlete without blanking local
// data, and keep exactly one enrollment row per athlete.
type Service struct {
	athletes    athlete.Store
	enrollments Store
	resolver    IdentityResolver
	snapshots   SnapshotProvider
	identity    IdentityPusher
	txr         Transactor
	logger      *slog.Logger
	audit       *audit.Recorder
	metrics     *metrics.Metrics
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

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(athletes athlete.Store, enrollments Store, identityResolver IdentityResolver, snapshots SnapshotProvider, identity IdentityPusher, txr Transactor, opts ...Option) (*Service, error) {
	if athletes == nil {
		return nil, fmt.Errorf("athlete store is required")
	}
	if enrollments == nil {
		return nil, fmt.Errorf("enrollment store is required")
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
	if txr == nil {
		return nil, fmt.Errorf("transactor is required")
	}
	s := &Service{
		athletes:    athletes,
		enrollments: enrollments,
		resolver:    identityResolver,
		snapshots:   snapshots,
		identity:    identity,
		txr:         txr,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Enroll registers an athlete and their enrollment in one shot. The identity
// is resolved best-effort: a degraded user module yields a synthetic
// reference instead of a failure. Credentials the caller omits are
// provisioned, since the upstream create endpoint demands them and athletes
// rarely bring their own account. Calling Enroll again for the same identity
// reuses the athlete row and re-enables its enrollment instead of
// duplicating either.
func (s *Service) Enroll(ctx context.Context, persona person.Payload, fields athlete.Fields, enrollFields Fields) (view View, err error) {
	if s.metrics != nil {
		start := time.Now()
		defer func() { s.metrics.ObserveOperation("enroll", outcomeLabel(err), start) }()
	}

	token := requestcontext.BearerToken(ctx)
	if token == "" {
		return View{}, dErrors.New(dErrors.CodeUnauthorized, "authentication token required")
	}
	if len(persona) == 0 {
		return View{}, dErrors.New(dErrors.CodeValidation, "persona data is required")
	}

	rawID := persona.Identification()
	if rawID == "" {
		rawID = fields.NationalID
	}
	if rawID == "" {
		return View{}, dErrors.New(dErrors.CodeValidation, "identification is required")
	}
	nationalID, err := domain.ParseDNI(rawID)
	if err != nil {
		return View{}, err
	}

	payload, err := s.registrationPayload(ctx, persona, nationalID)
	if err != nil {
		return View{}, err
	}

	ref, err := s.resolver.Resolve(ctx, token, payload, resolver.BestEffort)
	if err != nil {
		return View{}, err
	}
	if ref.IsSynthetic() {
		if s.metrics != nil {
			s.metrics.IncrementDegraded()
		}
		s.audit.Record(ctx, audit.Event{
			Action:      audit.ActionIdentityFallbackUsed,
			Role:        "atleta",
			ExternalRef: ref.String(),
			NationalID:  privacy.MaskNationalID(nationalID.String()),
			Outcome:     ref.SyntheticKind(),
		})
	}

	var ath athlete.Athlete
	var enr Enrollment
	var athleteReused, reenabled bool
	err = s.txr.InTx(ctx, func(ctx context.Context) error {
		existing, lookupErr := s.lookupAthlete(ctx, ref, nationalID)
		switch lookupErr {
		case nil:
			athleteReused = true
			existing.NationalID = nationalID
			existing.ExternalRef = s.reconcileRef(ctx, existing.ExternalRef, ref)
			existing.MergeIdentity(persona)
			if applyErr := existing.Apply(fields); applyErr != nil {
				return applyErr
			}
			existing.Active = true
			ath, lookupErr = s.athletes.Update(ctx, existing)
			if lookupErr != nil {
				return translateAthleteWrite(lookupErr)
			}
		case sentinel.ErrNotFound:
			fresh := athlete.Athlete{
				ExternalRef:  ref,
				NationalID:   nationalID,
				Active:       true,
				RegisteredAt: requestcontext.Now(ctx),
			}
			fresh.MergeIdentity(persona)
			if applyErr := fresh.Apply(fields); applyErr != nil {
				return applyErr
			}
			ath, lookupErr = s.athletes.Create(ctx, fresh)
			if lookupErr != nil {
				return translateAthleteWrite(lookupErr)
			}
		default:
			return dErrors.Wrap(lookupErr, dErrors.CodeInternal, "look up athlete")
		}

		current, enrErr := s.enrollments.GetByAthleteID(ctx, ath.ID)
		switch enrErr {
		case nil:
			if applyErr := enrollFields.apply(&current); applyErr != nil {
				return applyErr
			}
			if !current.Enabled {
				current.Enabled = true
				reenabled = true
			}
			enr, enrErr = s.enrollments.Update(ctx, current)
			if enrErr != nil {
				return translateEnrollmentWrite(enrErr)
			}
		case sentinel.ErrNotFound:
			now := requestcontext.Now(ctx)
			fresh := Enrollment{
				AthleteID:  ath.ID,
				EnrolledOn: now,
				Type:       defaultType,
				CreatedAt:  now,
				Enabled:    true,
			}
			if applyErr := enrollFields.apply(&fresh); applyErr != nil {
				return applyErr
			}
			enr, enrErr = s.enrollments.Create(ctx, fresh)
			if enrErr != nil {
				return translateEnrollmentWrite(enrErr)
			}
		default:
			return dErrors.Wrap(enrErr, dErrors.CodeInternal, "look up enrollment")
		}
		return nil
	})
	if err != nil {
		return View{}, err
	}

	athleteOutcome := "created"
	if athleteReused {
		athleteOutcome = "reused"
	}
	if s.metrics != nil {
		s.metrics.IncrementEnrollment(athleteOutcome)
	}
	s.audit.Record(ctx, audit.Event{
		Action:      audit.ActionAthleteEnrolled,
		Role:        "atleta",
		RecordID:    int64(ath.ID),
		ExternalRef: ath.ExternalRef.String(),
		NationalID:  privacy.MaskNationalID(nationalID.String()),
		Outcome:     athleteOutcome,
	})
	if reenabled {
		s.audit.Record(ctx, audit.Event{
			Action:      audit.ActionEnrollmentReenabled,
			Role:        "atleta",
			RecordID:    int64(enr.ID),
			ExternalRef: ath.ExternalRef.String(),
		})
	}

	return makeView(ath, enr, s.snapshots.Snapshot(ctx, token, ath.ExternalRef)), nil
}

// registrationPayload completes the identity input for the upstream create
// call. The original persona stays untouched: provisioned credentials go
// upstream but never into the local identity copy.
func (s *Service) registrationPayload(ctx context.Context, persona person.Payload, nationalID domain.NationalID) (person.Payload, error) {
	payload := persona.Clone()
	payload.SetDefault("identification", nationalID.String(), person.IdentificationKeys)

	provisioned := false
	if payload.NormalizeEmail() == "" {
		payload["email"] = email.TechnicalAddress(nationalID.String())
		provisioned = true
	}
	if payload.Password() == "" {
		secret, err := secrets.Generate()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "provision athlete credentials")
		}
		payload["password"] = secret
		provisioned = true
	}
	if payload.FirstName() == "" || payload.LastName() == "" {
		first, last := email.DeriveNameFromEmail(payload.Email())
		payload.SetDefault("first_name", first, person.FirstNameKeys)
		payload.SetDefault("last_name", last, person.LastNameKeys)
	}
	if provisioned {
		s.logger.InfoContext(ctx, "provisioned technical credentials for athlete account",
			"identification", privacy.MaskNationalID(nationalID.String()),
		)
	}
	return payload, nil
}

// lookupAthlete finds the row this identity already owns: by reference
// first, then by cedula, which catches athletes enrolled earlier under a
// synthetic reference.
func (s *Service) lookupAthlete(ctx context.Context, ref domain.ExternalRef, nationalID domain.NationalID) (athlete.Athlete, error) {
	rec, err := s.athletes.GetByExternalRef(ctx, ref)
	if err == nil {
		return rec, nil
	}
	if err != sentinel.ErrNotFound {
		return athlete.Athlete{}, err
	}
	return s.athletes.GetByNationalID(ctx, nationalID)
}

// reconcileRef decides which reference a reused athlete keeps. A stored
// synthetic reference is upgraded as soon as a real one arrives; a stored
// real reference is never downgraded or swapped.
func (s *Service) reconcileRef(ctx context.Context, stored, resolved domain.ExternalRef) domain.ExternalRef {
	if stored == resolved {
		return stored
	}
	if stored.IsSynthetic() && !resolved.IsSynthetic() {
		s.logger.InfoContext(ctx, "reconciled synthetic reference to user module identity",
			"stored", stored.String(),
			"resolved", resolved.String(),
		)
		return resolved
	}
	if !stored.IsSynthetic() && !resolved.IsSynthetic() {
		s.logger.WarnContext(ctx, "resolved reference differs from stored reference, keeping stored",
			"stored", stored.String(),
			"resolved", resolved.String(),
		)
	}
	return stored
}

// Update edits an existing enrollment and its athlete. Identity changes are
// pushed upstream best-effort; unlike Enroll there is no re-resolution, the
// stored reference stays authoritative.
func (s *Service) Update(ctx context.Context, id domain.EnrollmentID, persona person.Payload, fields athlete.Fields, enrollFields Fields) (view View, err error) {
	if s.metrics != nil {
		start := time.Now()
		defer func() { s.metrics.ObserveOperation("update", outcomeLabel(err), start) }()
	}

	token := requestcontext.BearerToken(ctx)
	if token == "" {
		return View{}, dErrors.New(dErrors.CodeUnauthorized, "authentication token required")
	}

	enr, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return View{}, dErrors.New(dErrors.CodeNotFound, "enrollment not found")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "load enrollment")
	}
	ath, err := s.athletes.GetByID(ctx, enr.AthleteID)
	if err != nil {
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "load enrolled athlete")
	}

	if len(persona) > 0 {
		push := persona.Clone()
		push.SetDefault("external", ath.ExternalRef.String(), person.RefKeys)
		if _, pushErr := s.identity.PushUpdate(ctx, token, push); pushErr != nil {
			s.logger.WarnContext(ctx, "user module update push failed, keeping local changes",
				"reference", ath.ExternalRef.String(),
				"error", pushErr.Error(),
			)
		}
		ath.MergeIdentity(persona)
	}
	if err := ath.Apply(fields); err != nil {
		return View{}, err
	}
	if err := enrollFields.apply(&enr); err != nil {
		return View{}, err
	}

	err = s.txr.InTx(ctx, func(ctx context.Context) error {
		var writeErr error
		ath, writeErr = s.athletes.Update(ctx, ath)
		if writeErr != nil {
			return translateAthleteWrite(writeErr)
		}
		enr, writeErr = s.enrollments.Update(ctx, enr)
		if writeErr != nil {
			return translateEnrollmentWrite(writeErr)
		}
		return nil
	})
	if err != nil {
		return View{}, err
	}

	s.audit.Record(ctx, audit.Event{
		Action:      audit.ActionAthleteUpdated,
		Role:        "atleta",
		RecordID:    int64(ath.ID),
		ExternalRef: ath.ExternalRef.String(),
		NationalID:  privacy.MaskNationalID(ath.NationalID.String()),
	})

	return makeView(ath, enr, s.snapshots.Snapshot(ctx, token, ath.ExternalRef)), nil
}

// ToggleEnabled flips habilitada, the only state transition an enrollment
// has. Toggling twice lands back on the original state.
func (s *Service) ToggleEnabled(ctx context.Context, id domain.EnrollmentID) (rec Record, err error) {
	if s.metrics != nil {
		start := time.Now()
		defer func() { s.metrics.ObserveOperation("toggle", outcomeLabel(err), start) }()
	}

	token := requestcontext.BearerToken(ctx)
	if token == "" {
		return Record{}, dErrors.New(dErrors.CodeUnauthorized, "authentication token required")
	}

	enr, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return Record{}, dErrors.New(dErrors.CodeNotFound, "enrollment not found")
		}
		return Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "load enrollment")
	}

	enr.Enabled = !enr.Enabled
	if err := s.enrollments.SetEnabled(ctx, id, enr.Enabled); err != nil {
		if err == sentinel.ErrNotFound {
			return Record{}, dErrors.New(dErrors.CodeNotFound, "enrollment not found")
		}
		return Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "toggle enrollment")
	}

	outcome := "disabled"
	if enr.Enabled {
		outcome = "enabled"
	}
	event := audit.Event{
		Action:   audit.ActionEnrollmentToggled,
		Role:     "atleta",
		RecordID: int64(enr.ID),
		Outcome:  outcome,
	}
	if ath, athErr := s.athletes.GetByID(ctx, enr.AthleteID); athErr == nil {
		event.ExternalRef = ath.ExternalRef.String()
	}
	s.audit.Record(ctx, event)

	return enr.record(), nil
}

// Get returns one enrollment with its athlete and a best-effort snapshot.
func (s *Service) Get(ctx context.Context, id domain.EnrollmentID) (View, error) {
	enr, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return View{}, dErrors.New(dErrors.CodeNotFound, "enrollment not found")
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "load enrollment")
	}
	ath, err := s.athletes.GetByID(ctx, enr.AthleteID)
	if err != nil {
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "load enrolled athlete")
	}
	token := requestcontext.BearerToken(ctx)
	return makeView(ath, enr, s.snapshots.Snapshot(ctx, token, ath.ExternalRef)), nil
}

// List returns every enrollment, disabled ones included, each with its
// athlete and best-effort snapshot.
func (s *Service) List(ctx context.Context) ([]View, error) {
	records, err := s.enrollments.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list enrollments")
	}
	token := requestcontext.BearerToken(ctx)
	views := make([]View, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotConcurrency)
	for i, enr := range records {
		g.Go(func() error {
			ath, athErr := s.athletes.GetByID(gctx, enr.AthleteID)
			if athErr != nil {
				return fmt.Errorf("load athlete %d: %w", int64(enr.AthleteID), athErr)
			}
			views[i] = makeView(ath, enr, s.snapshots.Snapshot(gctx, token, ath.ExternalRef))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "enrich enrollments")
	}
	return views, nil
}

// ExistsActiveByNationalID reports whether the holder of a national id
// already has an enabled enrollment on an active athlete row. Serves the
// real-time duplicate pre-check.
func (s *Service) ExistsActiveByNationalID(ctx context.Context, rawID string) (bool, error) {
	nationalID, err := domain.ParseDNI(rawID)
	if err != nil {
		return false, err
	}
	ath, err := s.athletes.GetByNationalID(ctx, nationalID)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "look up athlete")
	}
	if !ath.Active {
		return false, nil
	}
	enr, err := s.enrollments.GetByAthleteID(ctx, ath.ID)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "look up enrollment")
	}
	return enr.Enabled, nil
}

func translateAthleteWrite(err error) error {
	switch err {
	case sentinel.ErrConflict:
		return dErrors.New(dErrors.CodeConflict, "an athlete with that identification or reference already exists")
	case sentinel.ErrNotFound:
		return dErrors.New(dErrors.CodeNotFound, "athlete not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "save athlete")
}

func translateEnrollmentWrite(err error) error {
	switch err {
	case sentinel.ErrConflict:
		return dErrors.New(dErrors.CodeConflict, "the athlete already has an enrollment")
	case sentinel.ErrNotFound:
		return dErrors.New(dErrors.CodeNotFound, "enrollment not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "save enrollment")
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	return string(dErrors.CodeOf(err))
}
