package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the storage table. The schema is one table with one row,
// so the DDL lives inline instead of in migration files.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS app_storage (
			id BIGINT PRIMARY KEY,
			data JSONB,
			updated_at TIMESTAMPTZ
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure app_storage: %w", err)
	}
	return nil
}
