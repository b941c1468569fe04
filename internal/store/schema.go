package store

import (
	"context"
	_ "embed"

	"laundry-workers/internal/common/errors"
)

//go:embed schema.sql
var schema string

// Migrate creates any missing tables and indexes. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.NewQueryExecutionFailedError("migrate", err)
	}
	return nil
}
