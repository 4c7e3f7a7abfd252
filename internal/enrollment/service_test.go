package enrollment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/athlete"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/audit"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person/resolver"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/tx"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/requestcontext"
)

type fakeResolver struct {
	ref        domain.ExternalRef
	err        error
	calls      int
	gotMode    resolver.Mode
	gotPayload person.Payload
}

func (f *fakeResolver) Resolve(_ context.Context, _ string, payload person.Payload, mode resolver.Mode) (domain.ExternalRef, error) {
	f.calls++
	f.gotMode = mode
	f.gotPayload = payload
	if f.err != nil {
		return "", f.err
	}
	return f.ref, nil
}

type fakeSnapshots struct {
	mu   sync.Mutex
	data map[domain.ExternalRef]person.Payload
}

func (f *fakeSnapshots) Snapshot(_ context.Context, _ string, ref domain.ExternalRef) person.Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[ref]
}

type fakePusher struct {
	pushErr   error
	pushCalls int
	gotPush   person.Payload
}

func (f *fakePusher) PushUpdate(_ context.Context, _ string, payload person.Payload) (*person.Envelope, error) {
	f.pushCalls++
	f.gotPush = payload
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	return &person.Envelope{Body: map[string]any{}}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authedCtx() context.Context {
	return requestcontext.WithBearerToken(context.Background(), "caller-token")
}

func validPersona() person.Payload {
	return person.Payload{
		"identification": "1102223334",
		"first_name":     "Juan",
		"last_name":      "Perez",
	}
}

type testDeps struct {
	athletes    *athlete.InMemoryStore
	enrollments *InMemoryStore
	resolver    *fakeResolver
	snapshots   *fakeSnapshots
	pusher      *fakePusher
	recorder    *audit.Recorder
}

func newTestService(t *testing.T, deps *testDeps) *Service {
	t.Helper()
	if deps.athletes == nil {
		deps.athletes = athlete.NewInMemoryStore()
	}
	if deps.enrollments == nil {
		deps.enrollments = NewInMemoryStore()
	}
	if deps.resolver == nil {
		deps.resolver = &fakeResolver{ref: "atleta-uuid"}
	}
	if deps.snapshots == nil {
		deps.snapshots = &fakeSnapshots{}
	}
	if deps.pusher == nil {
		deps.pusher = &fakePusher{}
	}
	if deps.recorder == nil {
		deps.recorder = audit.NewRecorder(audit.WithLogger(testLogger()))
	}
	svc, err := New(deps.athletes, deps.enrollments, deps.resolver, deps.snapshots, deps.pusher, tx.Direct{},
		WithLogger(testLogger()), WithAudit(deps.recorder))
	require.NoError(t, err)
	return svc
}

func nextEvent(t *testing.T, recorder *audit.Recorder) audit.Event {
	t.Helper()
	select {
	case event := <-recorder.Inbox():
		return event
	default:
		t.Fatal("expected an audit event")
		return audit.Event{}
	}
}

func drainEvents(recorder *audit.Recorder) {
	for {
		select {
		case <-recorder.Inbox():
		default:
			return
		}
	}
}

func TestEnrollValidation(t *testing.T) {
	t.Run("requires a token", func(t *testing.T) {
		deps := &testDeps{}
		svc := newTestService(t, deps)

		_, err := svc.Enroll(context.Background(), validPersona(), athlete.Fields{}, Fields{})
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
		assert.Zero(t, deps.resolver.calls)
	})

	t.Run("requires persona data", func(t *testing.T) {
		svc := newTestService(t, &testDeps{})

		_, err := svc.Enroll(authedCtx(), nil, athlete.Fields{}, Fields{})
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "persona data is required")
	})

	t.Run("requires an identification", func(t *testing.T) {
		svc := newTestService(t, &testDeps{})

		_, err := svc.Enroll(authedCtx(), person.Payload{"first_name": "Juan"}, athlete.Fields{}, Fields{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "identification is required")
	})

	t.Run("accepts the identification from the athlete block", func(t *testing.T) {
		svc := newTestService(t, &testDeps{})

		view, err := svc.Enroll(authedCtx(), person.Payload{"first_name": "Juan"},
			athlete.Fields{NationalID: "1102223334"}, Fields{})
		require.NoError(t, err)
		assert.Equal(t, "1102223334", view.Athlete.NationalID)
	})

	t.Run("rejects a malformed identification", func(t *testing.T) {
		deps := &testDeps{}
		svc := newTestService(t, deps)

		persona := validPersona()
		persona["identification"] = "12345"
		_, err := svc.Enroll(authedCtx(), persona, athlete.Fields{}, Fields{})
		assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
		assert.Zero(t, deps.resolver.calls)
	})

	t.Run("rejects a malformed birth date", func(t *testing.T) {
		svc := newTestService(t, &testDeps{})

		_, err := svc.Enroll(authedCtx(), validPersona(),
			athlete.Fields{BirthDate: "09-03-2011"}, Fields{})
		assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "YYYY-MM-DD")
	})

	t.Run("rejects a malformed enrollment date", func(t *testing.T) {
		svc := newTestService(t, &testDeps{})

		_, err := svc.Enroll(authedCtx(), validPersona(),
			athlete.Fields{}, Fields{EnrolledOn: "01/02/2026"})
		assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
	})
}

func TestEnrollCreatesAthleteAndEnrollment(t *testing.T) {
	deps := &testDeps{
		snapshots: &fakeSnapshots{data: map[domain.ExternalRef]person.Payload{
			"atleta-uuid": {"first_name": "Juan", "direction": "Av. Universitaria"},
		}},
	}
	svc := newTestService(t, deps)

	enrolledOn := "2026-02-01"
	view, err := svc.Enroll(authedCtx(), validPersona(),
		athlete.Fields{BloodType: "O+", GuardianName: "Maria Perez"},
		Fields{EnrolledOn: enrolledOn, Type: "MAYOR_EDAD"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), view.Athlete.ID)
	assert.Equal(t, "atleta-uuid", view.Athlete.ExternalRef)
	assert.Equal(t, "1102223334", view.Athlete.NationalID)
	assert.Equal(t, "Juan", view.Athlete.FirstName)
	assert.Equal(t, "Av. Universitaria", view.Athlete.Address, "snapshot fills what the caller omitted")
	assert.Equal(t, "O+", view.Athlete.BloodType)
	assert.True(t, view.Athlete.Active)

	assert.Equal(t, int64(1), view.Enrollment.ID)
	assert.Equal(t, enrolledOn, view.Enrollment.EnrolledOn)
	assert.Equal(t, "MAYOR_EDAD", view.Enrollment.Type)
	assert.True(t, view.Enrollment.Enabled)

	assert.Equal(t, resolver.BestEffort, deps.resolver.gotMode)

	event := nextEvent(t, deps.recorder)
	assert.Equal(t, audit.ActionAthleteEnrolled, event.Action)
	assert.Equal(t, "atleta", event.Role)
	assert.Equal(t, "created", event.Outcome)
	assert.Equal(t, "*******334", event.NationalID)
}

func TestEnrollDefaultsType(t *testing.T) {
	svc := newTestService(t, &testDeps{})

	view, err := svc.Enroll(authedCtx(), validPersona(), athlete.Fields{}, Fields{})
	require.NoError(t, err)
	assert.Equal(t, "ORDINARIA", view.Enrollment.Type)
	assert.NotEmpty(t, view.Enrollment.EnrolledOn)
}

func TestEnrollProvisionsCredentials(t *testing.T) {
	t.Run("fills missing email and password upstream only", func(t *testing.T) {
		deps := &testDeps{}
		svc := newTestService(t, deps)

		persona := validPersona()
		view, err := svc.Enroll(authedCtx(), persona, athlete.Fields{}, Fields{})
		require.NoError(t, err)

		sent := deps.resolver.gotPayload
		require.NotNil(t, sent)
		assert.Equal(t, "atleta_1102223334@atletas.unl.edu.ec", sent.Email())
		assert.NotEmpty(t, sent.Password())

		_, hasEmail := persona["email"]
		_, hasPassword := persona["password"]
		assert.False(t, hasEmail, "provisioned credentials never land in the caller's persona")
		assert.False(t, hasPassword)
		assert.Empty(t, view.Athlete.Email, "the local copy only keeps what the caller provided")
	})

	t.Run("keeps caller credentials when provided", func(t *testing.T) {
		deps := &testDeps{}
		svc := newTestService(t, deps)

		persona := validPersona()
		persona["email"] = "Juan.Perez@unl.edu.ec"
		persona["password"] = "secret123"
		view, err := svc.Enroll(authedCtx(), persona, athlete.Fields{}, Fields{})
		require.NoError(t, err)

		sent := deps.resolver.gotPayload
		assert.Equal(t, "juan.perez@unl.edu.ec", sent.Email())
		assert.Equal(t, "secret123", sent.Password())
		assert.Equal(t, "juan.perez@unl.edu.ec", view.Athlete.Email)
	})

	t.Run("derives names from the email when missing", func(t *testing.T) {
		deps := &testDeps{}
		svc := newTestService(t, deps)

		persona := person.Payload{
			"identification": "1102223334",
			"email":          "juan.perez@unl.edu.ec",
		}
		_, err := svc.Enroll(authedCtx(), persona, athlete.Fields{}, Fields{})
		require.NoError(t, err)

		sent := deps.resolver.gotPayload
		assert.Equal(t, "Juan", sent.FirstName())
		assert.Equal(t, "Perez", sent.LastName())
	})
}

func TestEnrollTwiceReusesAthlete(t *testing.T) {
	deps := &testDeps{}
	svc := newTestService(t, deps)

	first, err := svc.Enroll(authedCtx(), validPersona(), athlete.Fields{}, Fields{})
	require.NoError(t, err)
	drainEvents(deps.recorder)

	second, err := svc.Enroll(authedCtx(), validPersona(),
		athlete.Fields{Address: "Av. Universitaria"}, Fields{})
	require.NoError(t, err)

	assert.Equal(t, first.Athlete.ID, second.Athlete.ID, "same identity reuses the athlete row")
	assert.Equal(t, first.Enrollment.ID, second.Enrollment.ID, "one enrollment per athlete")
	assert.Equal(t, "Av. Universitaria", second.Athlete.Address)
	assert.True(t, second.Enrollment.Enabled)

	records, err := deps.athletes.ListActive(authedCtx())
	require.NoError(t, err)
	assert.Len(t, records, 1)

	event := nextEvent(t, deps.recorder)
	assert.Equal(t, audit.ActionAthleteEnrolled, event.Action)
	assert.Equal(t, "reused", event.Outcome)
}

func TestEnrollReenablesDisabledEnrollment(t *testing.T) {
	deps := &testDeps{}
	svc := newTestService(t, deps)

	first, err := svc.Enroll(authedCtx(), validPersona(), athlete.Fields{}, Fields{})
	require.NoError(t, err)
	_, err = svc.ToggleEnabled(authedCtx(), domain.EnrollmentID(first.Enrollment.ID))
	require.NoError(t, err)
	drainEvents(deps.recorder)

	again, err := svc.Enroll(authedCtx(), validPersona(), athlete.Fields{}, Fields{})
	require.NoError(t, err)
	assert.True(t, again.Enrollment.Enabled, "re-enrollment turns a disabled enrollment back on")

	event := nextEvent(t, deps.recorder)
	assert.Equal(t, audit.ActionAthleteEnrolled, event.Action)
	event = nextEvent(t, deps.recorder)
	assert.Equal(t, audit.ActionEnrollmentReenabled, event.Action)
	assert.Equal(t, first.Enrollment.ID, event.RecordID)
}

func TestEnrollSurvivesDegradedUpstream(t *testing.T) {
	deps := &testDeps{
		resolver: &fakeResolver{ref: domain.SyntheticOfflineRef(time.Unix(1700000000, 0))},
	}
	svc := newTestService(t, deps)

	view, err := svc.Enroll(authedCtx(), validPersona(), athlete.Fields{}, Fields{})
	require.NoError(t, err, "a dead user module must not block enrollment")

	ref := domain.ExternalRef(view.Athlete.ExternalRef)
	assert.True(t, ref.IsSynthetic())
	assert.Equal(t, "offline", ref.SyntheticKind())
	assert.Nil(t, view.Person, "no snapshot exists for a synthetic reference")
	assert.Equal(t, "Juan", view.Athlete.FirstName, "the local copy keeps the roster readable")
	assert.True(t, view.Enrollment.Enabled)

	event := nextEvent(t, deps.recorder)
	assert.Equal(t, audit.ActionIdentityFallbackUsed, event.Action)
	assert.Equal(t, "offline", event.Outcome)
	assert.Equal(t, "*******334", event.NationalID)

	event = nextEvent(t, deps.recorder)
	assert.Equal(t, audit.ActionAthleteEnrolled, event.Action)
	assert.Equal(t, "created", event.Outcome)
}

func TestEnrollReconcilesSyntheticReference(t *testing.T) {
	deps := &testDeps{
		resolver: &fakeResolver{ref: domain.SyntheticOfflineRef(time.Unix(1700000000, 0))},
	}
	svc := newTestService(t, deps)

	degraded, err := svc.Enroll(authedCtx(), validPersona(), athlete.Fields{}, Fields{})
	require.NoError(t, err)
	require.True(t, domain.ExternalRef(degraded.Athlete.ExternalRef).IsSynthetic())

	deps.resolver.ref = "atleta-uuid"
	recovered, err := svc.Enroll(authedCtx(), validPersona(), athlete.Fields{}, Fields{})
	require.NoError(t, err)

	assert.Equal(t, degraded.Athlete.ID, recovered.Athlete.ID, "the cedula lookup finds the offline row")
	assert.Equal(t, "atleta-uuid", recovered.Athlete.ExternalRef, "the synthetic reference is upgraded")
	assert.Equal(t, degraded.Enrollment.ID, recovered.Enrollment.ID)

	rec, err := deps.athletes.GetByExternalRef(authedCtx(), "atleta-uuid")
	require.NoError(t, err)
	assert.Equal(t, domain.AthleteID(degraded.Athlete.ID), rec.ID)
}

func TestEnrollKeepsStoredRealReference(t *testing.T) {
	deps := &testDeps{resolver: &fakeResolver{ref: "atleta-uuid"}}
	svc := newTestService(t, deps)

	first, err := svc.Enroll(authedCtx(), validPersona(), athlete.Fields{}, Fields{})
	require.NoError(t, err)

	deps.resolver.ref = "other-uuid"
	second, err := svc.Enroll(authedCtx(), validPersona(), athlete.Fields{}, Fields{})
	require.NoError(t, err)

	assert.Equal(t, first.Athlete.ID, second.Athlete.ID)
	assert.Equal(t, "atleta-uuid", second.Athlete.ExternalRef, "a stored real reference is never swapped")
}

func TestEnrollNeverBlanksStoredFields(t *testing.T) {
	deps := &testDeps{}
	svc := newTestService(t, deps)

	_, err := svc.Enroll(authedCtx(), validPersona(),
		athlete.Fields{BloodType: "O+", Allergies: "polen", GuardianName: "Maria Perez"}, Fields{})
	require.NoError(t, err)

	view, err := svc.Enroll(authedCtx(), validPersona(),
		athlete.Fields{Allergies: "polvo"}, Fields{})
	require.NoError(t, err)

	assert.Equal(t, "polvo", view.Athlete.Allergies, "provided fields overwrite")
	assert.Equal(t, "O+", view.Athlete.BloodType, "omitted fields survive")
	assert.Equal(t, "Maria Perez", view.Athlete.GuardianName)
}

func TestEnrollConflictingIdentification(t *testing.T) {
	deps := &testDeps{resolver: &fakeResolver{ref: "ref-a"}}
	svc := newTestService(t, deps)

	_, err := svc.Enroll(authedCtx(), validPersona(), athlete.Fields{}, Fields{})
	require.NoError(t, err)

	deps.resolver.ref = "ref-b"
	other := person.Payload{"identification": "1101112223", "first_name": "Luis", "last_name": "Rios"}
	_, err = svc.Enroll(authedCtx(), other, athlete.Fields{}, Fields{})
	require.NoError(t, err)

	// Resolver hands athlete B's reference to athlete A's identification.
	deps.resolver.ref = "ref-b"
	stolen := person.Payload{"identification": "1102223334", "first_name": "Juan", "last_name": "Perez"}
	_, err = svc.Enroll(authedCtx(), stolen, athlete.Fields{}, Fields{})
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
	assert.Contains(t, err.Error(), "already exists")
}

func TestUpdate(t *testing.T) {
	setup := func(t *testing.T) (*Service, *testDeps, View) {
		t.Helper()
		deps := &testDeps{}
		svc := newTestService(t, deps)
		view, err := svc.Enroll(authedCtx(), validPersona(), athlete.Fields{}, Fields{})
		require.NoError(t, err)
		drainEvents(deps.recorder)
		return svc, deps, view
	}

	t.Run("applies athlete and enrollment changes", func(t *testing.T) {
		svc, deps, enrolled := setup(t)

		view, err := svc.Update(authedCtx(), domain.EnrollmentID(enrolled.Enrollment.ID),
			person.Payload{"direction": "Av. Nueva"},
			athlete.Fields{Phone: "0991112223"},
			Fields{Type: "MAYOR_EDAD"})
		require.NoError(t, err)

		assert.Equal(t, "Av. Nueva", view.Athlete.Address)
		assert.Equal(t, "0991112223", view.Athlete.Phone)
		assert.Equal(t, "MAYOR_EDAD", view.Enrollment.Type)
		assert.Equal(t, 1, deps.resolver.calls, "update never re-resolves the identity")
		assert.Equal(t, 1, deps.pusher.pushCalls)
		assert.Equal(t, "atleta-uuid", deps.pusher.gotPush["external"], "the push targets the stored reference")

		event := nextEvent(t, deps.recorder)
		assert.Equal(t, audit.ActionAthleteUpdated, event.Action)
		assert.Equal(t, enrolled.Athlete.ID, event.RecordID)
	})

	t.Run("tolerates a failing upstream push", func(t *testing.T) {
		svc, deps, enrolled := setup(t)
		deps.pusher.pushErr = errors.New("connection refused")

		view, err := svc.Update(authedCtx(), domain.EnrollmentID(enrolled.Enrollment.ID),
			person.Payload{"direction": "Av. Nueva"}, athlete.Fields{}, Fields{})
		require.NoError(t, err, "local changes land even when the user module is down")
		assert.Equal(t, "Av. Nueva", view.Athlete.Address)
	})

	t.Run("skips the push without persona changes", func(t *testing.T) {
		svc, deps, enrolled := setup(t)

		_, err := svc.Update(authedCtx(), domain.EnrollmentID(enrolled.Enrollment.ID),
			nil, athlete.Fields{BloodType: "A+"}, Fields{})
		require.NoError(t, err)
		assert.Zero(t, deps.pusher.pushCalls)
	})

	t.Run("missing enrollment is not found", func(t *testing.T) {
		svc, _, _ := setup(t)

		_, err := svc.Update(authedCtx(), 99, nil, athlete.Fields{}, Fields{})
		assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	})

	t.Run("requires a token", func(t *testing.T) {
		svc, _, enrolled := setup(t)

		_, err := svc.Update(context.Background(), domain.EnrollmentID(enrolled.Enrollment.ID),
			nil, athlete.Fields{}, Fields{})
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}

func TestToggleEnabled(t *testing.T) {
	t.Run("flips and restores", func(t *testing.T) {
		deps := &testDeps{}
		svc := newTestService(t, deps)
		enrolled, err := svc.Enroll(authedCtx(), validPersona(), athlete.Fields{}, Fields{})
		require.NoError(t, err)
		drainEvents(deps.recorder)
		id := domain.EnrollmentID(enrolled.Enrollment.ID)

		rec, err := svc.ToggleEnabled(authedCtx(), id)
		require.NoError(t, err)
		assert.False(t, rec.Enabled)

		event := nextEvent(t, deps.recorder)
		assert.Equal(t, audit.ActionEnrollmentToggled, event.Action)
		assert.Equal(t, "disabled", event.Outcome)
		assert.Equal(t, "atleta-uuid", event.ExternalRef)

		rec, err = svc.ToggleEnabled(authedCtx(), id)
		require.NoError(t, err)
		assert.True(t, rec.Enabled, "toggling twice lands back on the original state")

		event = nextEvent(t, deps.recorder)
		assert.Equal(t, "enabled", event.Outcome)
	})

	t.Run("missing enrollment is not found", func(t *testing.T) {
		svc := newTestService(t, &testDeps{})

		_, err := svc.ToggleEnabled(authedCtx(), 99)
		assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	})

	t.Run("requires a token", func(t *testing.T) {
		svc := newTestService(t, &testDeps{})

		_, err := svc.ToggleEnabled(context.Background(), 1)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}

func TestGetAndList(t *testing.T) {
	deps := &testDeps{
		snapshots: &fakeSnapshots{data: map[domain.ExternalRef]person.Payload{
			"ref-a": {"direction": "Loja"},
		}},
		resolver: &fakeResolver{ref: "ref-a"},
	}
	svc := newTestService(t, deps)

	first, err := svc.Enroll(authedCtx(), validPersona(), athlete.Fields{}, Fields{})
	require.NoError(t, err)

	deps.resolver.ref = "ref-b"
	other := person.Payload{"identification": "1101112223", "first_name": "Luis", "last_name": "Rios"}
	second, err := svc.Enroll(authedCtx(), other, athlete.Fields{}, Fields{})
	require.NoError(t, err)
	_, err = svc.ToggleEnabled(authedCtx(), domain.EnrollmentID(second.Enrollment.ID))
	require.NoError(t, err)

	t.Run("get merges the snapshot", func(t *testing.T) {
		view, err := svc.Get(authedCtx(), domain.EnrollmentID(first.Enrollment.ID))
		require.NoError(t, err)
		assert.Equal(t, first.Athlete.ID, view.Athlete.ID)
		assert.Equal(t, "Loja", view.Athlete.Address)
	})

	t.Run("get missing enrollment", func(t *testing.T) {
		_, err := svc.Get(authedCtx(), 99)
		assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	})

	t.Run("list includes disabled enrollments", func(t *testing.T) {
		views, err := svc.List(authedCtx())
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, second.Enrollment.ID, views[0].Enrollment.ID, "newest first")
		assert.False(t, views[0].Enrollment.Enabled)
		assert.Equal(t, first.Enrollment.ID, views[1].Enrollment.ID)
		assert.True(t, views[1].Enrollment.Enabled)
	})
}

func TestExistsActiveByNationalID(t *testing.T) {
	deps := &testDeps{}
	svc := newTestService(t, deps)

	enrolled, err := svc.Enroll(authedCtx(), validPersona(), athlete.Fields{}, Fields{})
	require.NoError(t, err)

	t.Run("enrolled and enabled", func(t *testing.T) {
		exists, err := svc.ExistsActiveByNationalID(context.Background(), "1102223334")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("unknown identification", func(t *testing.T) {
		exists, err := svc.ExistsActiveByNationalID(context.Background(), "1109998887")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("malformed identification", func(t *testing.T) {
		_, err := svc.ExistsActiveByNationalID(context.Background(), "12345")
		assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
	})

	t.Run("disabled enrollment does not count", func(t *testing.T) {
		_, err := svc.ToggleEnabled(authedCtx(), domain.EnrollmentID(enrolled.Enrollment.ID))
		require.NoError(t, err)

		exists, err := svc.ExistsActiveByNationalID(context.Background(), "1102223334")
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = svc.ToggleEnabled(authedCtx(), domain.EnrollmentID(enrolled.Enrollment.ID))
		require.NoError(t, err)
	})

	t.Run("retired athlete does not count", func(t *testing.T) {
		require.NoError(t, deps.athletes.SetActive(context.Background(), domain.AthleteID(enrolled.Athlete.ID), false))

		exists, err := svc.ExistsActiveByNationalID(context.Background(), "1102223334")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
