package studentvol

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

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
	ref     domain.ExternalRef
	err     error
	calls   int
	gotMode resolver.Mode
}

func (f *fakeResolver) Resolve(_ context.Context, _ string, _ person.Payload, mode resolver.Mode) (domain.ExternalRef, error) {
	f.calls++
	f.gotMode = mode
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

func validVolunteerPersona() person.Payload {
	return person.Payload{
		"identification": "1103334445",
		"first_name":     "Juan",
		"last_name":      "Perez",
		"email":          "juan.perez@unl.edu.ec",
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
		name     string
		mutate   func(p person.Payload)
		career   string
		semester string
		message  string
	}{
		{"missing first name", func(p person.Payload) { delete(p, "first_name") }, "Sistemas", "7", "first name is required"},
		{"missing last name", func(p person.Payload) { delete(p, "last_name") }, "Sistemas", "7", "last name is required"},
		{"missing email", func(p person.Payload) { delete(p, "email") }, "Sistemas", "7", "email is required"},
		{"missing identification", func(p person.Payload) { delete(p, "identification") }, "Sistemas", "7", "identification is required"},
		{"missing password", func(p person.Payload) { delete(p, "password") }, "Sistemas", "7", "password is required"},
		{"missing career", func(p person.Payload) {}, "  ", "7", "career is required"},
		{"missing semester", func(p person.Payload) {}, "Sistemas", "", "semester is required"},
		{"semester out of range", func(p person.Payload) {}, "Sistemas", "11", "semester must be between 1 and 10"},
		{"semester gibberish", func(p person.Payload) {}, "Sistemas", "tercero", "semester must be between 1 and 10"},
		{"external email domain", func(p person.Payload) { p["email"] = "juan@gmail.com" }, "Sistemas", "7", "email must be institutional (@unl.edu.ec)"},
		{"short identification", func(p person.Payload) { p["identification"] = "110333" }, "Sistemas", "7", "identification must have exactly 10 digits"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := &fakeResolver{ref: "ext-1"}
			svc := newTestService(t, NewInMemoryStore(), res, &fakeSnapshots{}, &fakePusher{})

			persona := validVolunteerPersona()
			tc.mutate(persona)
			_, err := svc.Create(authedCtx(), persona, tc.career, tc.semester)
			assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
			assert.Equal(t, tc.message, dErrors.MessageOf(err))
			assert.Zero(t, res.calls)
		})
	}
}

func TestCreate(t *testing.T) {
	t.Run("registers with a normalized semester", func(t *testing.T) {
		store := NewInMemoryStore()
		res := &fakeResolver{ref: "ext-1"}
		snaps := &fakeSnapshots{data: map[domain.ExternalRef]person.Payload{
			"ext-1": {"first_name": "Juan"},
		}}
		recorder := audit.NewRecorder(audit.WithLogger(testLogger()))
		svc := newTestService(t, store, res, snaps, &fakePusher{}, WithAudit(recorder))

		view, err := svc.Create(authedCtx(), validVolunteerPersona(), " Ingenieria en Sistemas ", "7mo")
		require.NoError(t, err)

		assert.Equal(t, "ext-1", view.Record.ExternalRef)
		assert.Equal(t, "Ingenieria en Sistemas", view.Record.Career)
		assert.Equal(t, int16(7), view.Record.Semester)
		assert.True(t, view.Record.Active)
		assert.Equal(t, "Juan", view.Person.FirstName())
		assert.Equal(t, resolver.Strict, res.gotMode)

		select {
		case event := <-recorder.Inbox():
			assert.Equal(t, audit.ActionVolunteerRegistered, event.Action)
			assert.Equal(t, "estudiante_vinculacion", event.Role)
			assert.Equal(t, "*******445", event.NationalID)
		default:
			t.Fatal("expected an audit event")
		}
	})

	t.Run("requires a token", func(t *testing.T) {
		res := &fakeResolver{ref: "ext-1"}
		svc := newTestService(t, NewInMemoryStore(), res, &fakeSnapshots{}, &fakePusher{})

		_, err := svc.Create(context.Background(), validVolunteerPersona(), "Sistemas", "7")
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
		assert.Zero(t, res.calls)
	})

	t.Run("conflict when reference already held", func(t *testing.T) {
		store := NewInMemoryStore()
		svc := newTestService(t, store, &fakeResolver{ref: "ext-1"}, &fakeSnapshots{}, &fakePusher{})

		_, err := svc.Create(authedCtx(), validVolunteerPersona(), "Sistemas", "7")
		require.NoError(t, err)

		_, err = svc.Create(authedCtx(), validVolunteerPersona(), "Derecho", "3")
		assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
		assert.Equal(t, "a volunteer student with that external reference already exists", dErrors.MessageOf(err))
	})

	t.Run("resolver failure propagates", func(t *testing.T) {
		res := &fakeResolver{err: dErrors.New(dErrors.CodeUnavailable, "could not contact user module")}
		svc := newTestService(t, NewInMemoryStore(), res, &fakeSnapshots{}, &fakePusher{})

		_, err := svc.Create(authedCtx(), validVolunteerPersona(), "Sistemas", "7")
		assert.True(t, dErrors.Is(err, dErrors.CodeUnavailable))
	})
}

func TestUpdate(t *testing.T) {
	seed := func(t *testing.T, store Store) StudentVolunteer {
		t.Helper()
		created, err := store.Create(context.Background(), StudentVolunteer{
			ExternalRef: "ext-1", Career: "Sistemas", Semester: 5, Active: true,
		})
		require.NoError(t, err)
		return created
	}

	t.Run("not found", func(t *testing.T) {
		svc := newTestService(t, NewInMemoryStore(), &fakeResolver{}, &fakeSnapshots{}, &fakePusher{})
		_, err := svc.Update(authedCtx(), 9, nil, nil, nil)
		assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	})

	t.Run("retired volunteer reads as not found", func(t *testing.T) {
		store := NewInMemoryStore()
		rec := seed(t, store)
		require.NoError(t, store.SetActive(context.Background(), rec.ID, false))

		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, &fakePusher{})
		_, err := svc.Update(authedCtx(), rec.ID, nil, nil, nil)
		assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	})

	t.Run("placement only skips the upstream push", func(t *testing.T) {
		store := NewInMemoryStore()
		rec := seed(t, store)
		pusher := &fakePusher{}
		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, pusher)

		semester := "8vo"
		view, err := svc.Update(authedCtx(), rec.ID, nil, nil, &semester)
		require.NoError(t, err)

		assert.Equal(t, int16(8), view.Record.Semester)
		assert.Equal(t, "Sistemas", view.Record.Career)
		assert.Zero(t, pusher.pushCalls)
	})

	t.Run("rejects a bad semester before touching anything", func(t *testing.T) {
		store := NewInMemoryStore()
		rec := seed(t, store)
		pusher := &fakePusher{}
		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, pusher)

		semester := "12"
		_, err := svc.Update(authedCtx(), rec.ID, person.Payload{"first_name": "Juan"}, nil, &semester)
		assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
		assert.Zero(t, pusher.pushCalls)

		stored, err := store.GetByID(context.Background(), rec.ID)
		require.NoError(t, err)
		assert.Equal(t, int16(5), stored.Semester)
	})

	t.Run("push failure keeps local changes", func(t *testing.T) {
		store := NewInMemoryStore()
		rec := seed(t, store)
		pusher := &fakePusher{pushErr: dErrors.New(dErrors.CodeUnavailable, "could not contact user module")}
		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, pusher)

		career := "Derecho"
		view, err := svc.Update(authedCtx(), rec.ID, person.Payload{"first_name": "Juan"}, &career, nil)
		require.NoError(t, err)
		assert.Equal(t, "Derecho", view.Record.Career)
		assert.Equal(t, 1, pusher.pushCalls)
	})

	t.Run("adopts reassigned reference", func(t *testing.T) {
		store := NewInMemoryStore()
		rec := seed(t, store)
		pusher := &fakePusher{searchEnv: &person.Envelope{Body: map[string]any{
			"data": map[string]any{"external": "ext-2"},
		}}}
		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, pusher)

		view, err := svc.Update(authedCtx(), rec.ID, person.Payload{"identification": "1103334445"}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "ext-2", view.Record.ExternalRef)
	})

	t.Run("reassigned reference held by another volunteer", func(t *testing.T) {
		store := NewInMemoryStore()
		rec := seed(t, store)
		_, err := store.Create(context.Background(), StudentVolunteer{ExternalRef: "ext-2", Active: true})
		require.NoError(t, err)

		pusher := &fakePusher{searchEnv: &person.Envelope{Body: map[string]any{
			"data": map[string]any{"external": "ext-2"},
		}}}
		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, pusher)

		_, err = svc.Update(authedCtx(), rec.ID, person.Payload{"identification": "1103334445"}, nil, nil)
		assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
		assert.Equal(t, "the returned external reference is already in use by another volunteer student", dErrors.MessageOf(err))
	})
}

func TestSoftDelete(t *testing.T) {
	store := NewInMemoryStore()
	created, err := store.Create(context.Background(), StudentVolunteer{ExternalRef: "ext-1", Active: true})
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
		assert.Equal(t, audit.ActionVolunteerDeactivated, event.Action)
	default:
		t.Fatal("expected an audit event")
	}

	err = svc.SoftDelete(authedCtx(), 99)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestReactivate(t *testing.T) {
	t.Run("brings a retired volunteer back", func(t *testing.T) {
		store := NewInMemoryStore()
		created, err := store.Create(context.Background(), StudentVolunteer{ExternalRef: "ext-1", Active: false})
		require.NoError(t, err)

		recorder := audit.NewRecorder(audit.WithLogger(testLogger()))
		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, &fakePusher{}, WithAudit(recorder))

		view, err := svc.Reactivate(context.Background(), created.ID)
		require.NoError(t, err)
		assert.True(t, view.Record.Active)

		select {
		case event := <-recorder.Inbox():
			assert.Equal(t, audit.ActionVolunteerReactivated, event.Action)
		default:
			t.Fatal("expected an audit event")
		}
	})

	t.Run("conflict when already active", func(t *testing.T) {
		store := NewInMemoryStore()
		created, err := store.Create(context.Background(), StudentVolunteer{ExternalRef: "ext-1", Active: true})
		require.NoError(t, err)

		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, &fakePusher{})
		_, err = svc.Reactivate(context.Background(), created.ID)
		assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
		assert.Equal(t, "the volunteer student is already active", dErrors.MessageOf(err))
	})
}

func TestSearch(t *testing.T) {
	seed := func(t *testing.T) (*InMemoryStore, *fakeSnapshots) {
		t.Helper()
		store := NewInMemoryStore()
		_, err := store.Create(context.Background(), StudentVolunteer{ExternalRef: "ext-1", Career: "Ingenieria en Sistemas", Semester: 7, Active: true})
		require.NoError(t, err)
		_, err = store.Create(context.Background(), StudentVolunteer{ExternalRef: "ext-2", Career: "Derecho", Semester: 3, Active: true})
		require.NoError(t, err)

		snaps := &fakeSnapshots{data: map[domain.ExternalRef]person.Payload{
			"ext-1": {"first_name": "Juan", "last_name": "Perez"},
			"ext-2": {"first_name": "Maria", "last_name": "Castro"},
		}}
		return store, snaps
	}

	t.Run("rejects short terms", func(t *testing.T) {
		store, snaps := seed(t)
		svc := newTestService(t, store, &fakeResolver{}, snaps, &fakePusher{})

		_, err := svc.Search(authedCtx(), " a ")
		assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
		assert.Equal(t, "search term must have at least 2 characters", dErrors.MessageOf(err))
	})

	t.Run("matches snapshot fields", func(t *testing.T) {
		store, snaps := seed(t)
		svc := newTestService(t, store, &fakeResolver{}, snaps, &fakePusher{})

		views, err := svc.Search(authedCtx(), "castro")
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "ext-2", views[0].Record.ExternalRef)
	})

	t.Run("matches the career", func(t *testing.T) {
		store, snaps := seed(t)
		svc := newTestService(t, store, &fakeResolver{}, snaps, &fakePusher{})

		views, err := svc.Search(authedCtx(), "sistemas")
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "ext-1", views[0].Record.ExternalRef)
	})

	t.Run("career still matches with the user module down", func(t *testing.T) {
		store, _ := seed(t)
		svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, &fakePusher{})

		views, err := svc.Search(authedCtx(), "derecho")
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Nil(t, views[0].Person)
	})
}

func TestFilterByCareer(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.Create(context.Background(), StudentVolunteer{ExternalRef: "ext-1", Career: "Ingenieria en Sistemas", Active: true})
	require.NoError(t, err)
	_, err = store.Create(context.Background(), StudentVolunteer{ExternalRef: "ext-2", Career: "Derecho", Active: true})
	require.NoError(t, err)
	_, err = store.Create(context.Background(), StudentVolunteer{ExternalRef: "ext-3", Career: "Ingenieria Civil", Active: false})
	require.NoError(t, err)

	svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, &fakePusher{})

	views, err := svc.FilterByCareer(authedCtx(), "ingenieria")
	require.NoError(t, err)
	require.Len(t, views, 1, "retired rows stay out")
	assert.Equal(t, "ext-1", views[0].Record.ExternalRef)

	all, err := svc.FilterByCareer(authedCtx(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListPage(t *testing.T) {
	store := NewInMemoryStore()
	base := time.Unix(1000, 0)
	for i := 0; i < 25; i++ {
		_, err := store.Create(context.Background(), StudentVolunteer{
			ExternalRef:  domain.ExternalRef("ext-" + string(rune('a'+i))),
			Career:       "Sistemas",
			Active:       true,
			RegisteredAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	svc := newTestService(t, store, &fakeResolver{}, &fakeSnapshots{}, &fakePusher{})

	first, err := svc.ListPage(authedCtx(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, 10, first.PageSize)
	assert.Equal(t, 25, first.Total)
	assert.Equal(t, 3, first.TotalPages)
	require.Len(t, first.Items, 10)

	last, err := svc.ListPage(authedCtx(), 3, 10)
	require.NoError(t, err)
	assert.Len(t, last.Items, 5)

	beyond, err := svc.ListPage(authedCtx(), 9, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 25, beyond.Total)
}
