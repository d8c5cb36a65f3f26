package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bizdesk/internal/adapter/repository/postgres"
	"github.com/iho/bizdesk/internal/domain"
	infrapg "github.com/iho/bizdesk/internal/infrastructure/postgres"
	"github.com/iho/bizdesk/internal/usecase"
)

// newIntegrationRepository connects to the database named by
// BIZDESK_TEST_DATABASE_URL, migrates it and empties the records table.
func newIntegrationRepository(t *testing.T) *postgres.RecordRepository {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dbURL := os.Getenv("BIZDESK_TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("BIZDESK_TEST_DATABASE_URL not set")
	}

	require.NoError(t, infrapg.RunMigrations(dbURL, zerolog.Nop()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infrapg.NewPool(ctx, dbURL, 4, 1)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE TABLE records`)
	require.NoError(t, err)

	return postgres.NewRecordRepository(pool, postgres.NewRetrier(zerolog.Nop()))
}

func TestRecordRepositoryIntegration_RoundTrip(t *testing.T) {
	repo := newIntegrationRepository(t)
	ctx := context.Background()
	clock := usecase.ClockFunc(func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) })

	n, err := usecase.SeedSampleData(ctx, repo, clock)
	require.NoError(t, err)
	assert.Equal(t, 13, n)

	cash, err := repo.List(ctx, domain.KindCashFlow)
	require.NoError(t, err)
	require.Len(t, cash, 10)
	assert.Equal(t, "Salário", cash[0].Field(domain.FieldDescription))
	assert.Equal(t, "4900", domain.ComputeTotals(cash).Balance.String())

	updated := cash[1].Clone()
	updated.Amount = decimal.RequireFromString("1234.5678")
	require.NoError(t, repo.Update(ctx, domain.KindCashFlow, updated))

	require.NoError(t, repo.Delete(ctx, domain.KindCashFlow, cash[0].ID))

	cash, err = repo.List(ctx, domain.KindCashFlow)
	require.NoError(t, err)
	require.Len(t, cash, 9)
	assert.Equal(t, updated.ID, cash[0].ID, "display order must survive updates")
	assert.True(t, cash[0].Amount.Equal(updated.Amount), "amounts are stored exactly")

	err = repo.Insert(ctx, domain.KindCashFlow, updated)
	assert.True(t, errors.Is(err, domain.ErrDuplicateID))

	err = repo.Delete(ctx, domain.KindCashFlow, 999)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRecordRepositoryIntegration_KindsAreIsolated(t *testing.T) {
	repo := newIntegrationRepository(t)
	ctx := context.Background()

	rec := domain.Record{
		ID:     1,
		Fields: map[string]string{domain.FieldSeller: "Ana", domain.FieldDescription: "Venda"},
		Amount: decimal.NewFromInt(10),
		Date:   time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Insert(ctx, domain.KindCommissions, rec))

	cash, err := repo.List(ctx, domain.KindCashFlow)
	require.NoError(t, err)
	assert.Empty(t, cash)
}
