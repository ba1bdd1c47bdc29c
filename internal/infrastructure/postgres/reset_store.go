package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scottring/compliant-connect-sub001/internal/application/admin"
)

var _ admin.Store = (*ResetStore)(nil)

// ResetStore implements the destructive reset port. All deletes run inside
// one transaction: either every table is cleared or none is.
type ResetStore struct {
	pool *pgxpool.Pool
}

// NewResetStore builds the reset adapter.
func NewResetStore(pool *pgxpool.Pool) *ResetStore {
	return &ResetStore{pool: pool}
}

// Truncate removes all rows of the given tables, in order. DELETE instead of
// TRUNCATE keeps the statement valid under the restricted role the tool runs
// with; the caller passes tables child-first so no FK breaks mid-way.
func (s *ResetStore) Truncate(ctx context.Context, tables []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, table := range tables {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear table %s: %w", table, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
