package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/bizdesk/internal/domain"
	"github.com/iho/bizdesk/internal/infrastructure/postgres/generated"
)

func TestInTxCommitsOnSuccess(t *testing.T) {
	repo, pool := newTestRecordRepository(t)
	pool.ExpectBegin()
	pool.ExpectCommit()

	called := false
	err := repo.inTx(context.Background(), func(q *generated.Queries) error {
		called = q != nil
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("expected callback with tx-bound queries")
	}

	assertExpectations(t, pool)
}

func TestInTxRollsBackOnCallbackError(t *testing.T) {
	repo, pool := newTestRecordRepository(t)
	pool.ExpectBegin()
	pool.ExpectRollback()

	err := repo.inTx(context.Background(), func(*generated.Queries) error {
		return domain.ErrDuplicateID
	})
	if !errors.Is(err, domain.ErrDuplicateID) {
		t.Fatalf("expected callback error, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestInTxBeginError(t *testing.T) {
	repo, pool := newTestRecordRepository(t)
	beginErr := errors.New("begin failed")
	pool.ExpectBegin().WillReturnError(beginErr)

	err := repo.inTx(context.Background(), func(*generated.Queries) error {
		t.Fatalf("callback must not run without a transaction")
		return nil
	})
	if !errors.Is(err, beginErr) {
		t.Fatalf("expected begin error, got %v", err)
	}
}

func TestInTxCommitError(t *testing.T) {
	repo, pool := newTestRecordRepository(t)
	commitErr := errors.New("commit failed")
	pool.ExpectBegin()
	pool.ExpectCommit().WillReturnError(commitErr)

	err := repo.inTx(context.Background(), func(*generated.Queries) error { return nil })
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error, got %v", err)
	}
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}
