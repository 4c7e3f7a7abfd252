package enrollment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
)

func memRow(athleteID int64, createdAt time.Time) Enrollment {
	return Enrollment{
		AthleteID:  domain.AthleteID(athleteID),
		EnrolledOn: createdAt,
		Type:       "ORDINARIA",
		CreatedAt:  createdAt,
		Enabled:    true,
	}
}

func TestInMemoryStoreCreate(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	now := time.Unix(1700000000, 0)

	created, err := store.Create(ctx, memRow(1, now))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	t.Run("one enrollment per athlete", func(t *testing.T) {
		_, err := store.Create(ctx, memRow(1, now))
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("different athlete succeeds", func(t *testing.T) {
		other, err := store.Create(ctx, memRow(2, now))
		require.NoError(t, err)
		assert.NotEqual(t, created.ID, other.ID)
	})
}

func TestInMemoryStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	now := time.Unix(1700000000, 0)

	created, err := store.Create(ctx, memRow(1, now))
	require.NoError(t, err)

	t.Run("updates fields", func(t *testing.T) {
		created.Type = "MAYOR_EDAD"
		updated, err := store.Update(ctx, created)
		require.NoError(t, err)
		assert.Equal(t, "MAYOR_EDAD", updated.Type)
	})

	t.Run("missing row is not found", func(t *testing.T) {
		missing := memRow(3, now)
		missing.ID = 99
		_, err := store.Update(ctx, missing)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("reassigning to an enrolled athlete conflicts", func(t *testing.T) {
		other, err := store.Create(ctx, memRow(2, now))
		require.NoError(t, err)
		other.AthleteID = created.AthleteID
		_, err = store.Update(ctx, other)
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})
}

func TestInMemoryStoreLookups(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	now := time.Unix(1700000000, 0)

	created, err := store.Create(ctx, memRow(1, now))
	require.NoError(t, err)

	byID, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.AthleteID, byID.AthleteID)

	byAthlete, err := store.GetByAthleteID(ctx, created.AthleteID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byAthlete.ID)

	_, err = store.GetByID(ctx, 99)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = store.GetByAthleteID(ctx, 99)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreListAndToggle(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	base := time.Unix(1700000000, 0)

	older, err := store.Create(ctx, memRow(1, base))
	require.NoError(t, err)
	newer, err := store.Create(ctx, memRow(2, base.Add(time.Hour)))
	require.NoError(t, err)
	require.NoError(t, store.SetEnabled(ctx, older.ID, false))

	rows, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2, "disabled enrollments stay listed")
	assert.Equal(t, newer.ID, rows[0].ID, "newest first")
	assert.Equal(t, older.ID, rows[1].ID)
	assert.False(t, rows[1].Enabled)

	assert.ErrorIs(t, store.SetEnabled(ctx, 99, true), sentinel.ErrNotFound)
}
