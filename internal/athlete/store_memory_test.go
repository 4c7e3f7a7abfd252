package athlete

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
)

func TestInMemoryStoreCreate(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	first, err := store.Create(ctx, Athlete{ExternalRef: "ext-1", NationalID: "1102223334", Active: true})
	require.NoError(t, err)
	assert.Equal(t, domain.AthleteID(1), first.ID)

	_, err = store.Create(ctx, Athlete{ExternalRef: "ext-1", NationalID: "1103334445", Active: true})
	assert.ErrorIs(t, err, sentinel.ErrConflict, "duplicate reference")

	_, err = store.Create(ctx, Athlete{ExternalRef: "ext-2", NationalID: "1102223334", Active: true})
	assert.ErrorIs(t, err, sentinel.ErrConflict, "duplicate cedula")

	second, err := store.Create(ctx, Athlete{ExternalRef: "ext-2", NationalID: "1103334445", Active: true})
	require.NoError(t, err)
	assert.Equal(t, domain.AthleteID(2), second.ID)
}

func TestInMemoryStoreUpdate(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, Athlete{ExternalRef: "ext-1", NationalID: "1102223334", Active: true})
	require.NoError(t, err)
	_, err = store.Create(ctx, Athlete{ExternalRef: "ext-2", NationalID: "1103334445", Active: true})
	require.NoError(t, err)

	created.BloodType = "A-"
	updated, err := store.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "A-", updated.BloodType)

	created.NationalID = "1103334445"
	_, err = store.Update(ctx, created)
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	_, err = store.Update(ctx, Athlete{ID: 99, ExternalRef: "ext-9", NationalID: "1109998887"})
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreLookups(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, Athlete{ExternalRef: "ext-1", NationalID: "1102223334", Active: true})
	require.NoError(t, err)

	byRef, err := store.GetByExternalRef(ctx, "ext-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byRef.ID)

	byCedula, err := store.GetByNationalID(ctx, "1102223334")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byCedula.ID)

	_, err = store.GetByExternalRef(ctx, "ext-9")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = store.GetByNationalID(ctx, "1109998887")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = store.GetByID(ctx, 42)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreActiveQueries(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	oldest, err := store.Create(ctx, Athlete{ExternalRef: "ext-1", NationalID: "1102223334", Active: true, RegisteredAt: time.Unix(100, 0)})
	require.NoError(t, err)
	newest, err := store.Create(ctx, Athlete{ExternalRef: "ext-2", NationalID: "1103334445", Active: true, RegisteredAt: time.Unix(200, 0)})
	require.NoError(t, err)
	retired, err := store.Create(ctx, Athlete{ExternalRef: "ext-3", NationalID: "1104445556", Active: false, RegisteredAt: time.Unix(300, 0)})
	require.NoError(t, err)

	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, newest.ID, active[0].ID, "newest first")
	assert.Equal(t, oldest.ID, active[1].ID)

	require.NoError(t, store.SetActive(ctx, retired.ID, true))
	active, err = store.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	assert.ErrorIs(t, store.SetActive(ctx, 99, false), sentinel.ErrNotFound)
}
