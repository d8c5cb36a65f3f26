package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/bizdesk/internal/domain"
	"github.com/iho/bizdesk/internal/infrastructure/postgres/generated"
)

type recordPool interface {
	generated.DBTX
	txBeginner
}

// RecordRepository implements usecase.RecordRepository on PostgreSQL.
type RecordRepository struct {
	queries *generated.Queries
	db      txBeginner
	retrier *Retrier
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(pool *pgxpool.Pool, retrier *Retrier) *RecordRepository {
	return newRecordRepositoryWithPool(pool, retrier)
}

func newRecordRepositoryWithPool(pool recordPool, retrier *Retrier) *RecordRepository {
	return &RecordRepository{
		queries: generated.New(pool),
		db:      pool,
		retrier: retrier,
	}
}

// List returns the records of kind in insertion order.
func (r *RecordRepository) List(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	var rows []generated.ListRecordsRow
	err := r.retrier.Retry(ctx, func() error {
		var err error
		rows, err = r.queries.ListRecords(ctx, string(kind))
		return err
	})
	if err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := rowToRecord(row)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", row.ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Insert stores a new record.
func (r *RecordRepository) Insert(ctx context.Context, kind domain.Kind, record domain.Record) error {
	params, err := insertParams(kind, record)
	if err != nil {
		return err
	}

	err = r.retrier.Retry(ctx, func() error {
		return r.queries.InsertRecord(ctx, params)
	})
	return mapInsertError(err, record.ID)
}

// InsertMany stores records in one transaction. A failing record rolls back
// the whole batch.
func (r *RecordRepository) InsertMany(ctx context.Context, kind domain.Kind, records []domain.Record) error {
	return r.retrier.Retry(ctx, func() error {
		return r.inTx(ctx, func(q *generated.Queries) error {
			for _, rec := range records {
				params, err := insertParams(kind, rec)
				if err != nil {
					return err
				}
				if err := q.InsertRecord(ctx, params); err != nil {
					return mapInsertError(err, rec.ID)
				}
			}
			return nil
		})
	})
}

// Update replaces the stored record with the same ID.
func (r *RecordRepository) Update(ctx context.Context, kind domain.Kind, record domain.Record) error {
	fields, err := json.Marshal(record.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	var affected int64
	err = r.retrier.Retry(ctx, func() error {
		var err error
		affected, err = r.queries.UpdateRecord(ctx, generated.UpdateRecordParams{
			Kind:     string(kind),
			ID:       record.ID,
			Fields:   fields,
			Amount:   record.Amount.String(),
			Date:     timeToPgDate(record),
			Category: string(record.Category),
		})
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrNotFound, record.ID)
	}
	return nil
}

// Delete removes the record with id.
func (r *RecordRepository) Delete(ctx context.Context, kind domain.Kind, id int64) error {
	var affected int64
	err := r.retrier.Retry(ctx, func() error {
		var err error
		affected, err = r.queries.DeleteRecord(ctx, generated.DeleteRecordParams{Kind: string(kind), ID: id})
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	return nil
}

func insertParams(kind domain.Kind, record domain.Record) (generated.InsertRecordParams, error) {
	fields, err := json.Marshal(record.Fields)
	if err != nil {
		return generated.InsertRecordParams{}, fmt.Errorf("encode fields: %w", err)
	}
	return generated.InsertRecordParams{
		Kind:     string(kind),
		ID:       record.ID,
		Fields:   fields,
		Amount:   record.Amount.String(),
		Date:     timeToPgDate(record),
		Category: string(record.Category),
	}, nil
}

func mapInsertError(err error, id int64) error {
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("%w: %d", domain.ErrDuplicateID, id)
	}
	return err
}

func rowToRecord(row generated.ListRecordsRow) (domain.Record, error) {
	fields := map[string]string{}
	if len(row.Fields) > 0 {
		if err := json.Unmarshal(row.Fields, &fields); err != nil {
			return domain.Record{}, fmt.Errorf("decode fields: %w", err)
		}
	}

	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return domain.Record{}, fmt.Errorf("decode amount: %w", err)
	}

	rec := domain.Record{
		ID:       row.ID,
		Fields:   fields,
		Amount:   amount,
		Category: domain.Category(row.Category),
	}
	if row.Date.Valid {
		rec.Date = row.Date.Time
	}
	return rec, nil
}

func timeToPgDate(record domain.Record) pgtype.Date {
	return pgtype.Date{Time: record.Date, Valid: !record.Date.IsZero()}
}
