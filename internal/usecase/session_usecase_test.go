package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/bizdesk/internal/domain"
	"github.com/iho/bizdesk/internal/usecase"
	"github.com/iho/bizdesk/internal/usecase/mocks"
)

type sessionFixture struct {
	uc       *usecase.SessionUseCase
	repo     *mocks.MockRecordRepository
	idGen    *mocks.MockIDGenerator
	recorder *mocks.MockRecorder
	now      time.Time
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &sessionFixture{
		repo:     mocks.NewMockRecordRepository(ctrl),
		idGen:    mocks.NewMockIDGenerator(ctrl),
		recorder: mocks.NewMockRecorder(ctrl),
		now:      time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC),
	}
	f.idGen.EXPECT().Generate().Return("sess-1").AnyTimes()
	f.recorder.EXPECT().SetOpenSessions(gomock.Any()).AnyTimes()
	f.recorder.EXPECT().SetCollectionSize(gomock.Any(), gomock.Any()).AnyTimes()

	clock := usecase.ClockFunc(func() time.Time { return f.now })
	uc, err := usecase.NewSessionUseCase(f.repo, f.idGen, clock, f.recorder, zerolog.Nop(), 5)
	require.NoError(t, err)
	f.uc = uc

	return f
}

func (f *sessionFixture) open(t *testing.T, kind domain.Kind, records ...domain.Record) string {
	t.Helper()
	f.repo.EXPECT().List(gomock.Any(), kind).Return(records, nil)
	id, _, err := f.uc.OpenSession(context.Background(), kind)
	require.NoError(t, err)
	return id
}

func TestNewSessionUseCase_InvalidPageSize(t *testing.T) {
	_, err := usecase.NewSessionUseCase(nil, nil, nil, nil, zerolog.Nop(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestSessionUseCase_OpenSession(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	f.repo.EXPECT().List(gomock.Any(), domain.KindCashFlow).Return([]domain.Record{
		cashFlowRecord(1, "Venda", "150", domain.CategoryIncome),
		cashFlowRecord(2, "Aluguel", "200", domain.CategoryExpense),
	}, nil)

	id, view, err := f.uc.OpenSession(ctx, domain.KindCashFlow)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", id)
	assert.Equal(t, domain.KindCashFlow, view.Kind)
	assert.Len(t, view.Rows, 2)
	assert.Equal(t, 1, f.uc.OpenSessions())
}

func TestSessionUseCase_OpenSessionErrors(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, _, err := f.uc.OpenSession(ctx, domain.Kind("budgets"))
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	storeErr := errors.New("connection refused")
	f.repo.EXPECT().List(gomock.Any(), domain.KindCommissions).Return(nil, storeErr)
	_, _, err = f.uc.OpenSession(ctx, domain.KindCommissions)
	assert.ErrorIs(t, err, storeErr)

	f.repo.EXPECT().List(gomock.Any(), domain.KindCashFlow).Return([]domain.Record{
		cashFlowRecord(1, "a", "1", domain.CategoryIncome),
		cashFlowRecord(1, "b", "1", domain.CategoryIncome),
	}, nil)
	_, _, err = f.uc.OpenSession(ctx, domain.KindCashFlow)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)

	assert.Equal(t, 0, f.uc.OpenSessions())
}

func TestSessionUseCase_UnknownSession(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, err := f.uc.View(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, _, err = f.uc.Create(ctx, "missing", domain.Draft{})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.ErrorIs(t, f.uc.CloseSession(ctx, "missing"), domain.ErrSessionNotFound)
}

func TestSessionUseCase_CreatePersists(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	id := f.open(t, domain.KindCashFlow,
		cashFlowRecord(1, "Venda", "150", domain.CategoryIncome),
		cashFlowRecord(2, "Aluguel", "200", domain.CategoryExpense),
	)

	f.repo.EXPECT().Insert(gomock.Any(), domain.KindCashFlow, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Kind, rec domain.Record) error {
			assert.Equal(t, int64(3), rec.ID)
			assert.True(t, rec.Amount.Equal(decimal.NewFromInt(100)))
			return nil
		})
	f.recorder.EXPECT().ObserveMutation(domain.KindCashFlow, usecase.OpCreate, nil)

	rec, view, err := f.uc.Create(ctx, id, cashFlowDraft("Bonus", domain.AmountNumber(100), domain.CategoryIncome))
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.ID)
	assert.True(t, view.Totals.Balance.Equal(decimal.NewFromInt(50)), "balance %s", view.Totals.Balance)
}

func TestSessionUseCase_CreateValidationSkipsRepository(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	id := f.open(t, domain.KindCashFlow)

	f.recorder.EXPECT().ObserveMutation(domain.KindCashFlow, usecase.OpCreate, gomock.Not(gomock.Nil()))

	_, view, err := f.uc.Create(ctx, id, domain.Draft{})
	assert.ErrorIs(t, err, domain.ErrMissingField)
	assert.Empty(t, view.Rows)
}

func TestSessionUseCase_CreateRollsBackOnStoreError(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	id := f.open(t, domain.KindCashFlow, cashFlowRecord(1, "a", "1", domain.CategoryIncome))

	storeErr := errors.New("write failed")
	f.repo.EXPECT().Insert(gomock.Any(), domain.KindCashFlow, gomock.Any()).Return(storeErr)
	f.recorder.EXPECT().ObserveMutation(domain.KindCashFlow, usecase.OpCreate, gomock.Any())

	_, view, err := f.uc.Create(ctx, id, cashFlowDraft("b", domain.AmountNumber(5), domain.CategoryIncome))
	assert.ErrorIs(t, err, storeErr)
	assert.Len(t, view.Rows, 1)
	assert.Equal(t, 1, view.Totals.Count)
}

func TestSessionUseCase_UpdatePersists(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	id := f.open(t, domain.KindCashFlow, cashFlowRecord(1, "Salário", "5000", domain.CategoryIncome))

	f.repo.EXPECT().Update(gomock.Any(), domain.KindCashFlow, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Kind, rec domain.Record) error {
			assert.Equal(t, int64(1), rec.ID)
			assert.Equal(t, "Salário novo", rec.Field(domain.FieldDescription))
			return nil
		})
	f.recorder.EXPECT().ObserveMutation(domain.KindCashFlow, usecase.OpUpdate, nil)

	rec, _, err := f.uc.Update(ctx, id, 1, cashFlowDraft("Salário novo", domain.AmountText("5.500,00"), domain.CategoryIncome))
	require.NoError(t, err)
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(5500)))
}

func TestSessionUseCase_EditFlow(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	id := f.open(t, domain.KindCashFlow, cashFlowRecord(1, "Salário", "5000", domain.CategoryIncome))

	draft, view, err := f.uc.BeginEdit(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, usecase.PendingEdit, view.Pending.Kind)

	view, err = f.uc.CancelEdit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, usecase.PendingNone, view.Pending.Kind)

	_, _, err = f.uc.BeginEdit(ctx, id, 1)
	require.NoError(t, err)

	f.repo.EXPECT().Update(gomock.Any(), domain.KindCashFlow, gomock.Any()).Return(nil)
	f.recorder.EXPECT().ObserveMutation(domain.KindCashFlow, usecase.OpUpdate, nil)

	draft.Fields[domain.FieldDescription] = "Salário de outubro"
	rec, view, err := f.uc.ConfirmEdit(ctx, id, draft)
	require.NoError(t, err)
	assert.Equal(t, "Salário de outubro", rec.Field(domain.FieldDescription))
	assert.Equal(t, usecase.PendingNone, view.Pending.Kind)
}

func TestSessionUseCase_DeleteFlow(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	id := f.open(t, domain.KindCashFlow,
		cashFlowRecord(1, "a", "1", domain.CategoryIncome),
		cashFlowRecord(2, "b", "1", domain.CategoryIncome),
	)

	view, err := f.uc.BeginDelete(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, usecase.PendingDelete, view.Pending.Kind)
	assert.Equal(t, int64(2), view.Pending.Target.ID)

	view, err = f.uc.CancelDelete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, usecase.PendingNone, view.Pending.Kind)

	_, err = f.uc.BeginDelete(ctx, id, 2)
	require.NoError(t, err)

	f.repo.EXPECT().Delete(gomock.Any(), domain.KindCashFlow, int64(2)).Return(nil)
	f.recorder.EXPECT().ObserveMutation(domain.KindCashFlow, usecase.OpDelete, nil)

	removed, view, err := f.uc.ConfirmDelete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed.ID)
	assert.Len(t, view.Rows, 1)
}

func TestSessionUseCase_DeleteAbsent(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	id := f.open(t, domain.KindCashFlow, cashFlowRecord(1, "a", "1", domain.CategoryIncome))

	_, err := f.uc.BeginDelete(ctx, id, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.recorder.EXPECT().ObserveMutation(domain.KindCashFlow, usecase.OpDelete, gomock.Any())
	_, view, err := f.uc.ConfirmDelete(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, view.Rows, 1)
}

func TestSessionUseCase_DeleteRollsBackOnStoreError(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	id := f.open(t, domain.KindCashFlow, cashFlowRecord(1, "a", "1", domain.CategoryIncome))

	_, err := f.uc.BeginDelete(ctx, id, 1)
	require.NoError(t, err)

	storeErr := errors.New("delete failed")
	f.repo.EXPECT().Delete(gomock.Any(), domain.KindCashFlow, int64(1)).Return(storeErr)
	f.recorder.EXPECT().ObserveMutation(domain.KindCashFlow, usecase.OpDelete, gomock.Any())

	_, view, err := f.uc.ConfirmDelete(ctx, id)
	assert.ErrorIs(t, err, storeErr)
	assert.Len(t, view.Rows, 1)
	assert.Equal(t, usecase.PendingDelete, view.Pending.Kind)
}

func TestSessionUseCase_SearchAndPage(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	id := f.open(t, domain.KindCashFlow, manyRecords(12)...)

	view, err := f.uc.SetPage(ctx, id, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, view.CurrentPage)
	assert.Equal(t, []int64{11, 12}, rowIDs(view))

	view, err = f.uc.Search(ctx, id, "item 0")
	require.NoError(t, err)
	assert.Equal(t, 1, view.CurrentPage)
	assert.Equal(t, 9, view.Matched)

	got, err := f.uc.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, view.Search, got.Search)
}

func TestSessionUseCase_NewDraft(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	cashID := f.open(t, domain.KindCashFlow)
	draft, err := f.uc.NewDraft(ctx, cashID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), draft.Date)
	assert.Equal(t, domain.CategoryIncome, draft.Category)
	assert.Contains(t, draft.Fields, domain.FieldDescription)
}

func TestSessionUseCase_CloseAndSweep(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	id := f.open(t, domain.KindCommissions)

	require.NoError(t, f.uc.CloseSession(ctx, id))
	_, err := f.uc.View(ctx, id)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	id = f.open(t, domain.KindCommissions)
	assert.Equal(t, 0, f.uc.SweepIdle(f.now.Add(10*time.Minute), 30*time.Minute))
	assert.Equal(t, 1, f.uc.SweepIdle(f.now.Add(31*time.Minute), 30*time.Minute))
	assert.Equal(t, 0, f.uc.SweepIdle(f.now.Add(time.Hour), 0), "nothing left to evict")

	_, err = f.uc.View(ctx, id)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, 0, f.uc.OpenSessions())
}
