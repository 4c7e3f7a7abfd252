// Package db carries the embedded SQL schema. The server applies it on
// startup when migrations are enabled; integration tests apply it to fresh
// containers.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var Schema string

// Apply executes the schema against the given database. Statements are
// written to be idempotent, so applying twice is safe.
func Apply(ctx context.Context, database *sql.DB) error {
	if _, err := database.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
