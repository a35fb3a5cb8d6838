package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the production backend. All concerns share one pool so
// cascading deletes run in a single transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping reports backend health for readiness checks.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// deleteEngagementTx removes engagement rows for a set of targets inside
// an existing transaction.
func deleteEngagementTx(ctx context.Context, tx pgx.Tx, ts []Target) error {
	for _, t := range ts {
		if _, err := tx.Exec(ctx,
			`DELETE FROM engagements WHERE target_kind = $1 AND target_id = $2`,
			t.Kind, t.ID); err != nil {
			return err
		}
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
