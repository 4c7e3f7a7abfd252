package athlete

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

const athleteColumns = `id, persona_external, nombre, apellido, cedula, email, telefono, direccion,
	sexo, fecha_nacimiento, edad, tipo_sangre, alergias, enfermedades, medicamentos, lesiones,
	nombre_representante, cedula_representante, parentesco_representante, telefono_representante,
	correo_representante, direccion_representante, ocupacion_representante, fecha_registro, estado`

// PostgresStore persists athlete rows in the atleta table. All methods run
// on the transaction carried in ctx when one is present, so enrollment can
// commit the athlete and its enrollment as one unit.
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

func (s *PostgresStore) Create(ctx context.Context, rec Athlete) (Athlete, error) {
	query := `
		INSERT INTO atleta (persona_external, nombre, apellido, cedula, email, telefono, direccion,
			sexo, fecha_nacimiento, edad, tipo_sangre, alergias, enfermedades, medicamentos, lesiones,
			nombre_representante, cedula_representante, parentesco_representante, telefono_representante,
			correo_representante, direccion_representante, ocupacion_representante, fecha_registro, estado)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING ` + athleteColumns
	created, err := scanAthlete(s.runner(ctx).QueryRowContext(ctx, query, writeArgs(rec)...))
	if err != nil {
		if isUniqueViolation(err) {
			return Athlete{}, sentinel.ErrConflict
		}
		return Athlete{}, fmt.Errorf("create athlete: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) Update(ctx context.Context, rec Athlete) (Athlete, error) {
	query := `
		UPDATE atleta
		SET persona_external = $2, nombre = $3, apellido = $4, cedula = $5, email = $6, telefono = $7,
			direccion = $8, sexo = $9, fecha_nacimiento = $10, edad = $11, tipo_sangre = $12,
			alergias = $13, enfermedades = $14, medicamentos = $15, lesiones = $16,
			nombre_representante = $17, cedula_representante = $18, parentesco_representante = $19,
			telefono_representante = $20, correo_representante = $21, direccion_representante = $22,
			ocupacion_representante = $23, estado = $24
		WHERE id = $1
		RETURNING ` + athleteColumns
	args := append([]any{int64(rec.ID)}, updateArgs(rec)...)
	updated, err := scanAthlete(s.runner(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return Athlete{}, sentinel.ErrNotFound
		}
		if isUniqueViolation(err) {
			return Athlete{}, sentinel.ErrConflict
		}
		return Athlete{}, fmt.Errorf("update athlete: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.AthleteID) (Athlete, error) {
	query := `SELECT ` + athleteColumns + ` FROM atleta WHERE id = $1`
	rec, err := scanAthlete(s.runner(ctx).QueryRowContext(ctx, query, int64(id)))
	if err != nil {
		if err == sql.ErrNoRows {
			return Athlete{}, sentinel.ErrNotFound
		}
		return Athlete{}, fmt.Errorf("get athlete: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) GetByExternalRef(ctx context.Context, ref domain.ExternalRef) (Athlete, error) {
	query := `SELECT ` + athleteColumns + ` FROM atleta WHERE persona_external = $1`
	rec, err := scanAthlete(s.runner(ctx).QueryRowContext(ctx, query, ref.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return Athlete{}, sentinel.ErrNotFound
		}
		return Athlete{}, fmt.Errorf("get athlete by ref: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) GetByNationalID(ctx context.Context, nationalID domain.NationalID) (Athlete, error) {
	query := `SELECT ` + athleteColumns + ` FROM atleta WHERE cedula = $1`
	rec, err := scanAthlete(s.runner(ctx).QueryRowContext(ctx, query, string(nationalID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return Athlete{}, sentinel.ErrNotFound
		}
		return Athlete{}, fmt.Errorf("get athlete by cedula: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]Athlete, error) {
	query := `SELECT ` + athleteColumns + ` FROM atleta WHERE estado = TRUE ORDER BY fecha_registro DESC, id DESC`
	rows, err := s.runner(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list athletes: %w", err)
	}
	return collectAthletes(rows)
}

func (s *PostgresStore) SetActive(ctx context.Context, id domain.AthleteID, active bool) error {
	result, err := s.runner(ctx).ExecContext(ctx, `UPDATE atleta SET estado = $2 WHERE id = $1`, int64(id), active)
	if err != nil {
		return fmt.Errorf("set athlete estado: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set athlete estado rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func writeArgs(rec Athlete) []any {
	args := updateArgs(rec)
	// estado stays last; fecha_registro slots in before it.
	return append(args[:len(args)-1], rec.RegisteredAt, rec.Active)
}

// updateArgs orders the updatable columns; callers prepend the id or append
// the registration timestamp as their statement needs.
func updateArgs(rec Athlete) []any {
	return []any{
		rec.ExternalRef.String(), rec.FirstName, rec.LastName, string(rec.NationalID),
		rec.Email, rec.Phone, rec.Address, rec.Gender, rec.BirthDate, rec.Age,
		rec.BloodType, rec.Allergies, rec.Illnesses, rec.Medications, rec.Injuries,
		rec.GuardianName, rec.GuardianNationalID, rec.GuardianRelationship,
		rec.GuardianPhone, rec.GuardianEmail, rec.GuardianAddress, rec.GuardianOccupation,
		rec.Active,
	}
}

type athleteRow interface {
	Scan(dest ...any) error
}

func scanAthlete(row athleteRow) (Athlete, error) {
	var rec Athlete
	var id int64
	var ref, cedula string
	var birth sql.NullTime
	if err := row.Scan(
		&id, &ref, &rec.FirstName, &rec.LastName, &cedula,
		&rec.Email, &rec.Phone, &rec.Address, &rec.Gender, &birth, &rec.Age,
		&rec.BloodType, &rec.Allergies, &rec.Illnesses, &rec.Medications, &rec.Injuries,
		&rec.GuardianName, &rec.GuardianNationalID, &rec.GuardianRelationship,
		&rec.GuardianPhone, &rec.GuardianEmail, &rec.GuardianAddress, &rec.GuardianOccupation,
		&rec.RegisteredAt, &rec.Active,
	); err != nil {
		return Athlete{}, err
	}
	rec.ID = domain.AthleteID(id)
	rec.ExternalRef = domain.ExternalRef(ref)
	rec.NationalID = domain.NationalID(cedula)
	if birth.Valid {
		birthDate := birth.Time
		rec.BirthDate = &birthDate
	}
	return rec, nil
}

func collectAthletes(rows *sql.Rows) ([]Athlete, error) {
	defer rows.Close()
	var out []Athlete
	for rows.Next() {
		rec, err := scanAthlete(rows)
		if err != nil {
			return nil, fmt.Errorf("scan athlete: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate athletes: %w", err)
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
