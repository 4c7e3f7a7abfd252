package studentvol

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
)

// PostgresStore persists volunteer rows in the estudiante_vinculacion table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, rec StudentVolunteer) (StudentVolunteer, error) {
	query := `
		INSERT INTO estudiante_vinculacion (persona_external, carrera, semestre, fecha_registro, estado)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, persona_external, carrera, semestre, fecha_registro, estado
	`
	created, err := scanVolunteer(s.db.QueryRowContext(ctx, query,
		rec.ExternalRef.String(), rec.Career, rec.Semester, rec.RegisteredAt, rec.Active,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return StudentVolunteer{}, sentinel.ErrConflict
		}
		return StudentVolunteer{}, fmt.Errorf("create volunteer: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) Update(ctx context.Context, rec StudentVolunteer) (StudentVolunteer, error) {
	query := `
		UPDATE estudiante_vinculacion
		SET persona_external = $2, carrera = $3, semestre = $4, estado = $5
		WHERE id = $1
		RETURNING id, persona_external, carrera, semestre, fecha_registro, estado
	`
	updated, err := scanVolunteer(s.db.QueryRowContext(ctx, query,
		int64(rec.ID), rec.ExternalRef.String(), rec.Career, rec.Semester, rec.Active,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return StudentVolunteer{}, sentinel.ErrNotFound
		}
		if isUniqueViolation(err) {
			return StudentVolunteer{}, sentinel.ErrConflict
		}
		return StudentVolunteer{}, fmt.Errorf("update volunteer: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.StudentVolunteerID) (StudentVolunteer, error) {
	query := `
		SELECT id, persona_external, carrera, semestre, fecha_registro, estado
		FROM estudiante_vinculacion
		WHERE id = $1
	`
	rec, err := scanVolunteer(s.db.QueryRowContext(ctx, query, int64(id)))
	if err != nil {
		if err == sql.ErrNoRows {
			return StudentVolunteer{}, sentinel.ErrNotFound
		}
		return StudentVolunteer{}, fmt.Errorf("get volunteer: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) GetByExternalRef(ctx context.Context, ref domain.ExternalRef) (StudentVolunteer, error) {
	query := `
		SELECT id, persona_external, carrera, semestre, fecha_registro, estado
		FROM estudiante_vinculacion
		WHERE persona_external = $1
	`
	rec, err := scanVolunteer(s.db.QueryRowContext(ctx, query, ref.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return StudentVolunteer{}, sentinel.ErrNotFound
		}
		return StudentVolunteer{}, fmt.Errorf("get volunteer by ref: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) ExistsActiveByExternalRef(ctx context.Context, ref domain.ExternalRef, excludeID domain.StudentVolunteerID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM estudiante_vinculacion
			WHERE persona_external = $1 AND estado = TRUE AND id <> $2
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, ref.String(), int64(excludeID)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active volunteer: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]StudentVolunteer, error) {
	query := `
		SELECT id, persona_external, carrera, semestre, fecha_registro, estado
		FROM estudiante_vinculacion
		WHERE estado = TRUE
		ORDER BY fecha_registro DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list volunteers: %w", err)
	}
	return collectVolunteers(rows)
}

func (s *PostgresStore) ListActivePage(ctx context.Context, offset, limit int) ([]StudentVolunteer, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM estudiante_vinculacion WHERE estado = TRUE`,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count volunteers: %w", err)
	}

	query := `
		SELECT id, persona_external, carrera, semestre, fecha_registro, estado
		FROM estudiante_vinculacion
		WHERE estado = TRUE
		ORDER BY fecha_registro DESC, id DESC
		OFFSET $1 LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list volunteer page: %w", err)
	}
	out, err := collectVolunteers(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *PostgresStore) ListActiveByCareer(ctx context.Context, career string) ([]StudentVolunteer, error) {
	query := `
		SELECT id, persona_external, carrera, semestre, fecha_registro, estado
		FROM estudiante_vinculacion
		WHERE estado = TRUE AND carrera ILIKE '%' || $1 || '%'
		ORDER BY fecha_registro DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, career)
	if err != nil {
		return nil, fmt.Errorf("filter volunteers by career: %w", err)
	}
	return collectVolunteers(rows)
}

func (s *PostgresStore) SetActive(ctx context.Context, id domain.StudentVolunteerID, active bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE estudiante_vinculacion SET estado = $2 WHERE id = $1`, int64(id), active)
	if err != nil {
		return fmt.Errorf("set volunteer estado: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set volunteer estado rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type volunteerRow interface {
	Scan(dest ...any) error
}

func scanVolunteer(row volunteerRow) (StudentVolunteer, error) {
	var rec StudentVolunteer
	var id int64
	var ref string
	if err := row.Scan(&id, &ref, &rec.Career, &rec.Semester, &rec.RegisteredAt, &rec.Active); err != nil {
		return StudentVolunteer{}, err
	}
	rec.ID = domain.StudentVolunteerID(id)
	rec.ExternalRef = domain.ExternalRef(ref)
	return rec, nil
}

func collectVolunteers(rows *sql.Rows) ([]StudentVolunteer, error) {
	defer rows.Close()
	var out []StudentVolunteer
	for rows.Next() {
		rec, err := scanVolunteer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan volunteer: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate volunteers: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505"
}
