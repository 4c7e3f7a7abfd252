package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/tx"
)

const enrollmentColumns = `id, atleta_id, fecha_inscripcion, tipo_inscripcion, fecha_creacion, habilitada`

// PostgresStore persists enrollment rows in the inscripcion table, joining
// any transaction carried in ctx.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) runner(ctx context.Context) execer {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, rec Enrollment) (Enrollment, error) {
	query := `
		INSERT INTO inscripcion (atleta_id, fecha_inscripcion, tipo_inscripcion, fecha_creacion, habilitada)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + enrollmentColumns
	created, err := scanEnrollment(s.runner(ctx).QueryRowContext(ctx, query,
		int64(rec.AthleteID), rec.EnrolledOn, rec.Type, rec.CreatedAt, rec.Enabled,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return Enrollment{}, sentinel.ErrConflict
		}
		return Enrollment{}, fmt.Errorf("create enrollment: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) Update(ctx context.Context, rec Enrollment) (Enrollment, error) {
	query := `
		UPDATE inscripcion
		SET fecha_inscripcion = $2, tipo_inscripcion = $3, habilitada = $4
		WHERE id = $1
		RETURNING ` + enrollmentColumns
	updated, err := scanEnrollment(s.runner(ctx).QueryRowContext(ctx, query,
		int64(rec.ID), rec.EnrolledOn, rec.Type, rec.Enabled,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return Enrollment{}, sentinel.ErrNotFound
		}
		return Enrollment{}, fmt.Errorf("update enrollment: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.EnrollmentID) (Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM inscripcion WHERE id = $1`
	rec, err := scanEnrollment(s.runner(ctx).QueryRowContext(ctx, query, int64(id)))
	if err != nil {
		if err == sql.ErrNoRows {
			return Enrollment{}, sentinel.ErrNotFound
		}
		return Enrollment{}, fmt.Errorf("get enrollment: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) GetByAthleteID(ctx context.Context, athleteID domain.AthleteID) (Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM inscripcion WHERE atleta_id = $1`
	rec, err := scanEnrollment(s.runner(ctx).QueryRowContext(ctx, query, int64(athleteID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return Enrollment{}, sentinel.ErrNotFound
		}
		return Enrollment{}, fmt.Errorf("get enrollment by athlete: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM inscripcion ORDER BY fecha_creacion DESC, id DESC`
	rows, err := s.runner(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()
	var out []Enrollment
	for rows.Next() {
		rec, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollments: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SetEnabled(ctx context.Context, id domain.EnrollmentID, enabled bool) error {
	result, err := s.runner(ctx).ExecContext(ctx, `UPDATE inscripcion SET habilitada = $2 WHERE id = $1`, int64(id), enabled)
	if err != nil {
		return fmt.Errorf("set enrollment habilitada: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set enrollment habilitada rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type enrollmentRow interface {
	Scan(dest ...any) error
}

func scanEnrollment(row enrollmentRow) (Enrollment, error) {
	var rec Enrollment
	var id, athleteID int64
	if err := row.Scan(&id, &athleteID, &rec.EnrolledOn, &rec.Type, &rec.CreatedAt, &rec.Enabled); err != nil {
		return Enrollment{}, err
	}
	rec.ID = domain.EnrollmentID(id)
	rec.AthleteID = domain.AthleteID(athleteID)
	return rec, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505"
}
