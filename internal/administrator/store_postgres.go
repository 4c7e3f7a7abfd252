package administrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
)

// PostgresStore persists administrator rows in the administrador table.
// Pure I/O; uniqueness and liveness rules live in the schema and the service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, rec Administrator) (Administrator, error) {
	query := `
		INSERT INTO administrador (persona_external, cargo, fecha_registro, estado)
		VALUES ($1, $2, $3, $4)
		RETURNING id, persona_external, cargo, fecha_registro, estado
	`
	created, err := scanAdministrator(s.db.QueryRowContext(ctx, query,
		rec.ExternalRef.String(), rec.Position, rec.RegisteredAt, rec.Active,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return Administrator{}, sentinel.ErrConflict
		}
		return Administrator{}, fmt.Errorf("create administrator: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) Update(ctx context.Context, rec Administrator) (Administrator, error) {
	query := `
		UPDATE administrador
		SET persona_external = $2, cargo = $3, estado = $4
		WHERE id = $1
		RETURNING id, persona_external, cargo, fecha_registro, estado
	`
	updated, err := scanAdministrator(s.db.QueryRowContext(ctx, query,
		int64(rec.ID), rec.ExternalRef.String(), rec.Position, rec.Active,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return Administrator{}, sentinel.ErrNotFound
		}
		if isUniqueViolation(err) {
			return Administrator{}, sentinel.ErrConflict
		}
		return Administrator{}, fmt.Errorf("update administrator: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.AdministratorID) (Administrator, error) {
	query := `
		SELECT id, persona_external, cargo, fecha_registro, estado
		FROM administrador
		WHERE id = $1
	`
	rec, err := scanAdministrator(s.db.QueryRowContext(ctx, query, int64(id)))
	if err != nil {
		if err == sql.ErrNoRows {
			return Administrator{}, sentinel.ErrNotFound
		}
		return Administrator{}, fmt.Errorf("get administrator: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) GetByExternalRef(ctx context.Context, ref domain.ExternalRef) (Administrator, error) {
	query := `
		SELECT id, persona_external, cargo, fecha_registro, estado
		FROM administrador
		WHERE persona_external = $1
	`
	rec, err := scanAdministrator(s.db.QueryRowContext(ctx, query, ref.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return Administrator{}, sentinel.ErrNotFound
		}
		return Administrator{}, fmt.Errorf("get administrator by ref: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) ExistsActiveByExternalRef(ctx context.Context, ref domain.ExternalRef, excludeID domain.AdministratorID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM administrador
			WHERE persona_external = $1 AND estado = TRUE AND id <> $2
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, ref.String(), int64(excludeID)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active administrator: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]Administrator, error) {
	query := `
		SELECT id, persona_external, cargo, fecha_registro, estado
		FROM administrador
		WHERE estado = TRUE
		ORDER BY fecha_registro DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list administrators: %w", err)
	}
	defer rows.Close()

	var out []Administrator
	for rows.Next() {
		rec, err := scanAdministrator(rows)
		if err != nil {
			return nil, fmt.Errorf("scan administrator: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate administrators: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SetActive(ctx context.Context, id domain.AdministratorID, active bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE administrador SET estado = $2 WHERE id = $1`, int64(id), active)
	if err != nil {
		return fmt.Errorf("set administrator estado: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set administrator estado rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type administratorRow interface {
	Scan(dest ...any) error
}

func scanAdministrator(row administratorRow) (Administrator, error) {
	var rec Administrator
	var id int64
	var ref string
	if err := row.Scan(&id, &ref, &rec.Position, &rec.RegisteredAt, &rec.Active); err != nil {
		return Administrator{}, err
	}
	rec.ID = domain.AdministratorID(id)
	rec.ExternalRef = domain.ExternalRef(ref)
	return rec, nil
}

// isUniqueViolation recognizes the postgres unique_violation error class.
// The persona_external unique index is the hard guarantee behind the
// service-level duplicate checks.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505"
}
