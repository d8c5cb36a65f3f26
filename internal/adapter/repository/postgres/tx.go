package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/bizdesk/internal/infrastructure/postgres/generated"
)

type txBeginner interface {
	Begin(context.Context) (pgx.Tx, error)
}

// inTx runs fn with queries bound to a fresh transaction. The transaction
// commits when fn succeeds and rolls back otherwise.
func (r *RecordRepository) inTx(ctx context.Context, fn func(q *generated.Queries) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if err := fn(r.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
