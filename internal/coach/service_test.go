package coach

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/audit"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person/resolver"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
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
	searchEnv *person.Envelope
	searchErr error
}

func (f *fakePusher) PushUpdate(_ context.Context, _ string, _ person.Payload) (*person.Envelope, error) {
	f.pushCalls++
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	return &person.Envelope{Body: map[string]any{}}, nil
}

func (f *fakePusher) SearchByIdentification(_ context.Context, _, _ string) (*person.Envelope, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchEnv, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authedCtx() context.Context {
	return requestcontext.WithBearerToken(context.Background(), "caller-token")
}

func validCoachPersona() person.Payload {
	return person.Payload{
		"identification": "1102223334",
		"first_name":     "Carla",
		"last_name":      "Mendoza",
		"email":          "carla.mendoza@unl.edu.ec",
		"password":       "secret123",
	}
}

func newTestService(t *testing.T, store Store, res *fakeResolver, snaps *fakeSnapshots, pusher *fakePusher, opts ...Option) *Service {
	t.Helper()
	opts = append(opts, WithLogger(testLogger()))
	svc, err := New(store, res, snaps, pusher, opts...)
	require.NoError(t, err)
	return svc
}

func TestCreateValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(p person.Payload)
		message string
	}{
		{"missing first name", func(p person.Payload) { delete(p, "first_name") }, "first name is required"},
		{"missing last name", func(p person.Payload) { delete(p, "last_name") }, "last name is required"},
		{"missing email", func(p person.Payload) { delete(p, "email") }, "email is required"},
		{"missing identification", func(p person.Payload) { delete(p, "identification") }, "identification is required"},
		{"missing password", func(p person.Payload) { delete(p, "password") }, "password is required"},
		{"external email domain", func(p person.Payload) { p["email"] = "carla@gmail.com" }, "email must be institutional (@unl.edu.ec)"},
		{"malformed institutional email", func(p person.Payload) { p["email"] = "carla mendoza@unl.edu.ec" }, "invalid institutional email format"},
		{"short identification", func(p person.Payload) { p["identification"] = "110222" }, "identification must have exactly 10 digits"},
		{"non numeric identification", func(p person.Payload) { p["identification"] = "11022A333B" }, "identification must be numeric"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := &fakeResolver{ref: "ext-1"}
			svc := newTestService(t, NewInMemoryStore(), res, &fakeSnapshots{}, &fakePusher{})

			persona := validCoachPersona()
			tc.mutate(persona)
			_, err := svc.Create(authedCtx(), persona, "Formativa", "Club UNL")
			assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
			assert.Equal(t, tc.message, dErrors.MessageOf(err))
			assert.Zero(t, res.calls)
		})
	}

	t.Run("missing specialty", func(t *testing.T) {
		svc := newTestService(t, NewInMemoryStore(), &fakeResolver{ref: "x"}, &fakeSnapshots{}, &fakePusher{})
		_, err := svc.Create(authedCtx(), validCoachPersona(), "  ", "Club UNL")
		assert.Equal(t, "specialty is required", dErrors.MessageOf(err))
	})

	t.Run("missing assigned club", func(t *testing.T) {
		svc := newTestService(t, NewInMemoryStore(), &fakeResolver{ref: "x"}, &fakeSnapshots{}, &fakePusher{})
		_, err := svc.Create(authedCtx(), validCoachPersona(), "Formativa", "")
		assert.Equal(t, "assigned club is required", dErrors.MessageOf(err))
	})
}

func TestCreate(t *testing.T) {
	t.Run("registers and returns snapshot", func(t *testing.T) {
		store := NewInMemoryStore()
		res := &fakeResolver{ref: "ext-1"}
		snaps := &fakeSnapshots{data: map[domain.ExternalRef]person.Payload{
			"ext-1": {"first_name": "Carla", "identification": "1102223334"},
		}}
		recorder := audit.NewRecorder(audit.WithLogger(testLogger()))
		svc := newTestService(t, store, res, snaps, &fakePusher{}, WithAudit(recorder))

		view, err := svc.Create(authedCtx(), validCoachPersona(), "  Formativa ", " Club UNL ")
		require.NoError(t, err)

		assert.Equal(t, int64(1), view.Record.ID)
		assert.Equal(t, "ext-1", view.Record.ExternalRef)
		assert.Equal(t, "Formativa", view.Record.Specialty)
		assert.Equal(t, "Club UNL", view.Record.AssignedClub)
		assert.True(t, view.Record.Active)
		assert.Equal(t, "Carla", view.Person.FirstName())
		assert.Equal(t, resolver.Strict, res.gotMode)

		select {
		case event := <-recorder.Inbox():
			assert.Equal(t, audit.ActionCoachRegistered, event.Action)
			assert.Equal(t, "entrenador", event.Role)
			assert.Equal(t, "*******334", event.NationalID)
		default:
			t.Fatal("expected an audit event")
		}
	})

	t.Run("requires a token", func(t *testing.T) {
		res := &fakeResolver{ref: "ext-1"}
		svc := newTestService(t, NewInMemoryStore(), res, &fakeSnapshots{}, &fakePusher{})

		_, err := svc.Create(context.Background(), validCoachPersona(), "Formativa", "Club UNL")
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
		assert.Zero(t, res.calls)
	})

	t.Run("conflict when reference already held", func(t *testing.T) {
		store := NewInMemoryStore()
		svc := newTestService(t, store, &fakeResolver{ref: "ext-1"}, &fakeSnapshots{}, &fakePusher{})

		_, err := svc.Create(authedCtx(), validCoachPersona(), "Formativa", "Club UNL")
		require.NoError(t, err)

		_, err = svc.Create(authedCtx(), validCoachPersona(), "Competitiva", "Club UNL")
		assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
		assert.Equal(t, "a coach with that external reference already exists", dErrors.MessageOf(err))
	})

	t.Run("resolver failure propagates", func(t *testing.T) {
		res := &fakeResolver{err: dErrors.New(dErrors.CodeUnavailable, "could not contact user module")}
		svc := newTestService(t, NewInMemoryStore(), res, &fakeSnapshots{}, &fakePusher{})

		_, err := svc.Create(authedCtx(), validCoachPersona(), "Formativa", "Club UNL")
		assert.True(t, dErrors.Is(err, dErrors.CodeUnavailable))
	})
}

func TestUpdate(t *testing.T) {
	seed := func(t *testing.T, store Store) Coach {
		t.Helper()
		created, err := store.Create(context.Background(), Coach{
			ExternalRef: "ext-1", Specialty: "Formativa", AssignedClub: "Club UNL", Active: true,
		})
		require.NoError(t, err)
		return created
	}

	t.Run("not found", func(t *testing.T) {
		svc := newTestService(t, NewInMemoryStore(), &fakeResolver{}, &fakeSnapshots{}, &fakePusher{})
		_, err := svc.Update(authedCtx(), 9, nil, nil, nil)
		assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	})

	t.Run("retired coach reads as not found", func(t *testing.T) {
		store := NewInMemoryStore()
		rec := seed(t, store)
		require.NoError(t, store.SetActive(context.Background(), rec.ID, false))

		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, &fakePusher{})
		_, err := svc.Update(authedCtx(), rec.ID, nil, nil, nil)
		assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	})

	t.Run("assignment only skips the upstream push", func(t *testing.T) {
		store := NewInMemoryStore()
		rec := seed(t, store)
		pusher := &fakePusher{}
		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, pusher)

		specialty := "Competitiva"
		view, err := svc.Update(authedCtx(), rec.ID, nil, &specialty, nil)
		require.NoError(t, err)

		assert.Equal(t, "Competitiva", view.Record.Specialty)
		assert.Equal(t, "Club UNL", view.Record.AssignedClub)
		assert.Zero(t, pusher.pushCalls)
	})

	t.Run("push failure keeps local changes", func(t *testing.T) {
		store := NewInMemoryStore()
		rec := seed(t, store)
		pusher := &fakePusher{pushErr: dErrors.New(dErrors.CodeUnavailable, "could not contact user module")}
		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, pusher)

		club := "Club Loja"
		view, err := svc.Update(authedCtx(), rec.ID, person.Payload{"first_name": "Carla"}, nil, &club)
		require.NoError(t, err)
		assert.Equal(t, "Club Loja", view.Record.AssignedClub)
		assert.Equal(t, 1, pusher.pushCalls)
	})

	t.Run("rejects non institutional email on update", func(t *testing.T) {
		store := NewInMemoryStore()
		rec := seed(t, store)
		pusher := &fakePusher{}
		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, pusher)

		_, err := svc.Update(authedCtx(), rec.ID, person.Payload{"email": "carla@gmail.com"}, nil, nil)
		assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
		assert.Zero(t, pusher.pushCalls)
	})

	t.Run("adopts reassigned reference", func(t *testing.T) {
		store := NewInMemoryStore()
		rec := seed(t, store)
		pusher := &fakePusher{searchEnv: &person.Envelope{Body: map[string]any{
			"data": map[string]any{"external": "ext-2"},
		}}}
		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, pusher)

		view, err := svc.Update(authedCtx(), rec.ID, person.Payload{"identification": "1102223334"}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "ext-2", view.Record.ExternalRef)
	})

	t.Run("reassigned reference held by another coach", func(t *testing.T) {
		store := NewInMemoryStore()
		rec := seed(t, store)
		_, err := store.Create(context.Background(), Coach{ExternalRef: "ext-2", Active: true})
		require.NoError(t, err)

		pusher := &fakePusher{searchEnv: &person.Envelope{Body: map[string]any{
			"data": map[string]any{"external": "ext-2"},
		}}}
		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, pusher)

		_, err = svc.Update(authedCtx(), rec.ID, person.Payload{"identification": "1102223334"}, nil, nil)
		assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
		assert.Equal(t, "the returned external reference is already in use by another coach", dErrors.MessageOf(err))
	})
}

func TestSoftDelete(t *testing.T) {
	t.Run("retires and stays idempotent", func(t *testing.T) {
		store := NewInMemoryStore()
		created, err := store.Create(context.Background(), Coach{ExternalRef: "ext-1", Active: true})
		require.NoError(t, err)

		recorder := audit.NewRecorder(audit.WithLogger(testLogger()))
		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, &fakePusher{}, WithAudit(recorder))

		require.NoError(t, svc.SoftDelete(authedCtx(), created.ID))
		require.NoError(t, svc.SoftDelete(authedCtx(), created.ID))

		rec, err := store.GetByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.False(t, rec.Active)

		select {
		case event := <-recorder.Inbox():
			assert.Equal(t, audit.ActionCoachDeactivated, event.Action)
		default:
			t.Fatal("expected an audit event")
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc := newTestService(t, NewInMemoryStore(), &fakeResolver{}, &fakeSnapshots{}, &fakePusher{})
		err := svc.SoftDelete(authedCtx(), 7)
		assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func TestReactivate(t *testing.T) {
	t.Run("brings a retired coach back", func(t *testing.T) {
		store := NewInMemoryStore()
		created, err := store.Create(context.Background(), Coach{ExternalRef: "ext-1", Specialty: "Formativa", Active: false})
		require.NoError(t, err)

		recorder := audit.NewRecorder(audit.WithLogger(testLogger()))
		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, &fakePusher{}, WithAudit(recorder))

		view, err := svc.Reactivate(context.Background(), created.ID)
		require.NoError(t, err)
		assert.True(t, view.Record.Active)

		rec, err := store.GetByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.True(t, rec.Active)

		select {
		case event := <-recorder.Inbox():
			assert.Equal(t, audit.ActionCoachReactivated, event.Action)
		default:
			t.Fatal("expected an audit event")
		}
	})

	t.Run("conflict when already active", func(t *testing.T) {
		store := NewInMemoryStore()
		created, err := store.Create(context.Background(), Coach{ExternalRef: "ext-1", Active: true})
		require.NoError(t, err)

		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, &fakePusher{})
		_, err = svc.Reactivate(context.Background(), created.ID)
		assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
		assert.Equal(t, "the coach is already active", dErrors.MessageOf(err))
	})

	t.Run("not found", func(t *testing.T) {
		svc := newTestService(t, NewInMemoryStore(), &fakeResolver{}, &fakeSnapshots{}, &fakePusher{})
		_, err := svc.Reactivate(context.Background(), 3)
		assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func TestSearch(t *testing.T) {
	seed := func(t *testing.T) (*InMemoryStore, *fakeSnapshots) {
		t.Helper()
		store := NewInMemoryStore()
		_, err := store.Create(context.Background(), Coach{ExternalRef: "ext-1", Specialty: "Formativa", AssignedClub: "Club UNL", Active: true})
		require.NoError(t, err)
		_, err = store.Create(context.Background(), Coach{ExternalRef: "ext-2", Specialty: "Competitiva", AssignedClub: "Club Loja", Active: true})
		require.NoError(t, err)

		snaps := &fakeSnapshots{data: map[domain.ExternalRef]person.Payload{
			"ext-1": {"first_name": "Carla", "last_name": "Mendoza", "email": "carla.mendoza@unl.edu.ec"},
			"ext-2": {"first_name": "Diego", "last_name": "Paz", "email": "diego.paz@unl.edu.ec"},
		}}
		return store, snaps
	}

	t.Run("matches snapshot fields", func(t *testing.T) {
		store, snaps := seed(t)
		svc := newTestService(t, store, &fakeResolver{}, snaps, &fakePusher{})

		views, err := svc.Search(authedCtx(), "mendoza")
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "ext-1", views[0].Record.ExternalRef)
	})

	t.Run("matches local assignment fields", func(t *testing.T) {
		store, snaps := seed(t)
		svc := newTestService(t, store, &fakeResolver{}, snaps, &fakePusher{})

		views, err := svc.Search(authedCtx(), "loja")
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "ext-2", views[0].Record.ExternalRef)
	})

	t.Run("local fields still match with the user module down", func(t *testing.T) {
		store, _ := seed(t)
		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, &fakePusher{})

		views, err := svc.Search(authedCtx(), "competitiva")
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Nil(t, views[0].Person)
	})

	t.Run("no match yields empty list", func(t *testing.T) {
		store, snaps := seed(t)
		svc := newTestService(t, store, &fakeResolver{}, snaps, &fakePusher{})

		views, err := svc.Search(authedCtx(), "nadie")
		require.NoError(t, err)
		assert.Empty(t, views)
	})
}

func TestGetAndList(t *testing.T) {
	store := NewInMemoryStore()
	created, err := store.Create(context.Background(), Coach{ExternalRef: "ext-1", Specialty: "Formativa", Active: true})
	require.NoError(t, err)
	retired, err := store.Create(context.Background(), Coach{ExternalRef: "ext-2", Active: false})
	require.NoError(t, err)

	snaps := &fakeSnapshots{data: map[domain.ExternalRef]person.Payload{
		"ext-1": {"first_name": "Carla"},
	}}
	svc := newTestService(t, store, &fakeResolver{}, snaps, &fakePusher{})

	view, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carla", view.Person.FirstName())

	_, err = svc.Get(context.Background(), retired.ID)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))

	views, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "ext-1", views[0].Record.ExternalRef)
}
