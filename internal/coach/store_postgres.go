package coach

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
)

// PostgresStore persists coach rows in the entrenador table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, rec Coach) (Coach, error) {
	query := `
		INSERT INTO entrenador (persona_external, especialidad, club_asignado, fecha_registro, estado)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, persona_external, especialidad, club_asignado, fecha_registro, estado
	`
	created, err := scanCoach(s.db.QueryRowContext(ctx, query,
		rec.ExternalRef.String(), rec.Specialty, rec.AssignedClub, rec.RegisteredAt, rec.Active,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return Coach{}, sentinel.ErrConflict
		}
		return Coach{}, fmt.Errorf("create coach: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) Update(ctx context.Context, rec Coach) (Coach, error) {
	query := `
		UPDATE entrenador
		SET persona_external = $2, especialidad = $3, club_asignado = $4, estado = $5
		WHERE id = $1
		RETURNING id, persona_external, especialidad, club_asignado, fecha_registro, estado
	`
	updated, err := scanCoach(s.db.QueryRowContext(ctx, query,
		int64(rec.ID), rec.ExternalRef.String(), rec.Specialty, rec.AssignedClub, rec.Active,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return Coach{}, sentinel.ErrNotFound
		}
		if isUniqueViolation(err) {
			return Coach{}, sentinel.ErrConflict
		}
		return Coach{}, fmt.Errorf("update coach: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.CoachID) (Coach, error) {
	query := `
		SELECT id, persona_external, especialidad, club_asignado, fecha_registro, estado
		FROM entrenador
		WHERE id = $1
	`
	rec, err := scanCoach(s.db.QueryRowContext(ctx, query, int64(id)))
	if err != nil {
		if err == sql.ErrNoRows {
			return Coach{}, sentinel.ErrNotFound
		}
		return Coach{}, fmt.Errorf("get coach: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) GetByExternalRef(ctx context.Context, ref domain.ExternalRef) (Coach, error) {
	query := `
		SELECT id, persona_external, especialidad, club_asignado, fecha_registro, estado
		FROM entrenador
		WHERE persona_external = $1
	`
	rec, err := scanCoach(s.db.QueryRowContext(ctx, query, ref.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return Coach{}, sentinel.ErrNotFound
		}
		return Coach{}, fmt.Errorf("get coach by ref: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) ExistsActiveByExternalRef(ctx context.Context, ref domain.ExternalRef, excludeID domain.CoachID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM entrenador
			WHERE persona_external = $1 AND estado = TRUE AND id <> $2
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, ref.String(), int64(excludeID)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active coach: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]Coach, error) {
	query := `
		SELECT id, persona_external, especialidad, club_asignado, fecha_registro, estado
		FROM entrenador
		WHERE estado = TRUE
		ORDER BY fecha_registro DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list coaches: %w", err)
	}
	defer rows.Close()

	var out []Coach
	for rows.Next() {
		rec, err := scanCoach(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coach: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coaches: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SetActive(ctx context.Context, id domain.CoachID, active bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE entrenador SET estado = $2 WHERE id = $1`, int64(id), active)
	if err != nil {
		return fmt.Errorf("set coach estado: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set coach estado rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type coachRow interface {
	Scan(dest ...any) error
}

func scanCoach(row coachRow) (Coach, error) {
	var rec Coach
	var id int64
	var ref string
	if err := row.Scan(&id, &ref, &rec.Specialty, &rec.AssignedClub, &rec.RegisteredAt, &rec.Active); err != nil {
		return Coach{}, err
	}
	rec.ID = domain.CoachID(id)
	rec.ExternalRef = domain.ExternalRef(ref)
	return rec, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505"
}
