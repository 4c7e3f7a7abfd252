package enrollment

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/tx"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db), mock
}

func enrollmentTestColumns() []string {
	return []string{"id", "atleta_id", "fecha_inscripcion", "tipo_inscripcion", "fecha_creacion", "habilitada"}
}

func enrollmentRowAt(id, athleteID int64, createdAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(enrollmentTestColumns()).
		AddRow(id, athleteID, createdAt, "ORDINARIA", createdAt, true)
}

func TestPostgresCreate(t *testing.T) {
	createdAt := time.Unix(1700000000, 0).UTC()
	rec := Enrollment{
		AthleteID:  3,
		EnrolledOn: createdAt,
		Type:       "ORDINARIA",
		CreatedAt:  createdAt,
		Enabled:    true,
	}

	t.Run("returns the inserted row", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO inscripcion")).
			WithArgs(int64(3), createdAt, "ORDINARIA", createdAt, true).
			WillReturnRows(enrollmentRowAt(1, 3, createdAt))

		created, err := store.Create(context.Background(), rec)
		require.NoError(t, err)
		assert.Equal(t, domain.EnrollmentID(1), created.ID)
		assert.Equal(t, domain.AthleteID(3), created.AthleteID)
		assert.True(t, created.Enabled)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps the one-per-athlete violation to conflict", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO inscripcion")).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "inscripcion_atleta_id_key"})

		_, err := store.Create(context.Background(), rec)
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("joins a transaction from context", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		store := NewPostgresStore(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO inscripcion")).
			WillReturnRows(enrollmentRowAt(1, 3, createdAt))
		mock.ExpectCommit()

		runner := tx.NewRunner(db)
		err = runner.InTx(context.Background(), func(ctx context.Context) error {
			_, createErr := store.Create(ctx, rec)
			return createErr
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUpdate(t *testing.T) {
	createdAt := time.Unix(1700000000, 0).UTC()

	t.Run("updates the row", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE inscripcion")).
			WithArgs(int64(1), createdAt, "MAYOR_EDAD", false).
			WillReturnRows(sqlmock.NewRows(enrollmentTestColumns()).
				AddRow(int64(1), int64(3), createdAt, "MAYOR_EDAD", createdAt, false))

		updated, err := store.Update(context.Background(), Enrollment{
			ID: 1, AthleteID: 3, EnrolledOn: createdAt, Type: "MAYOR_EDAD", CreatedAt: createdAt, Enabled: false,
		})
		require.NoError(t, err)
		assert.Equal(t, "MAYOR_EDAD", updated.Type)
		assert.False(t, updated.Enabled)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE inscripcion")).
			WillReturnError(sql.ErrNoRows)

		_, err := store.Update(context.Background(), Enrollment{ID: 99})
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestPostgresGets(t *testing.T) {
	createdAt := time.Unix(1700000000, 0).UTC()

	t.Run("by id", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
			WithArgs(int64(1)).
			WillReturnRows(enrollmentRowAt(1, 3, createdAt))

		rec, err := store.GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, domain.AthleteID(3), rec.AthleteID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("by athlete id", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE atleta_id = $1")).
			WithArgs(int64(3)).
			WillReturnRows(enrollmentRowAt(1, 3, createdAt))

		rec, err := store.GetByAthleteID(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, domain.EnrollmentID(1), rec.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing rows are not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE atleta_id = $1")).
			WillReturnError(sql.ErrNoRows)

		_, err := store.GetByID(context.Background(), 99)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		_, err = store.GetByAthleteID(context.Background(), 99)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestPostgresList(t *testing.T) {
	store, mock := newMockStore(t)
	createdAt := time.Unix(1700000000, 0).UTC()
	rows := sqlmock.NewRows(enrollmentTestColumns()).
		AddRow(int64(2), int64(4), createdAt.Add(time.Hour), "ORDINARIA", createdAt.Add(time.Hour), true).
		AddRow(int64(1), int64(3), createdAt, "ORDINARIA", createdAt, false)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY fecha_creacion DESC, id DESC")).
		WillReturnRows(rows)

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.EnrollmentID(2), records[0].ID)
	assert.False(t, records[1].Enabled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetEnabled(t *testing.T) {
	t.Run("updates habilitada", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE inscripcion SET habilitada")).
			WithArgs(int64(1), false).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.SetEnabled(context.Background(), 1, false))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE inscripcion SET habilitada")).
			WithArgs(int64(99), true).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, store.SetEnabled(context.Background(), 99, true), sentinel.ErrNotFound)
	})
}
