package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/bizdesk/internal/domain"
)

const dateLayout = "2006-01-02"

// KEYS: hash, order zset, sequence counter. ARGV: id, payload.
var insertScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
local seq = redis.call('INCR', KEYS[3])
redis.call('ZADD', KEYS[2], seq, ARGV[1])
return 1
`)

// KEYS: hash. ARGV: id, payload.
var updateScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1
`)

type storedRecord struct {
	ID       int64             `json:"id"`
	Fields   map[string]string `json:"fields"`
	Amount   string            `json:"amount"`
	Date     string            `json:"date"`
	Category string            `json:"category,omitempty"`
}

// RecordRepository implements usecase.RecordRepository using Redis. Each kind
// keeps its records in a hash keyed by ID and its display order in a sorted
// set scored by an insertion counter.
type RecordRepository struct {
	client *redis.Client
	prefix string
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(client *redis.Client) *RecordRepository {
	return &RecordRepository{
		client: client,
		prefix: "bizdesk:records:",
	}
}

func (r *RecordRepository) hashKey(kind domain.Kind) string  { return r.prefix + string(kind) }
func (r *RecordRepository) orderKey(kind domain.Kind) string { return r.prefix + string(kind) + ":order" }
func (r *RecordRepository) seqKey(kind domain.Kind) string   { return r.prefix + string(kind) + ":seq" }

// List returns the records of kind in insertion order.
func (r *RecordRepository) List(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	ids, err := r.client.ZRange(ctx, r.orderKey(kind), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Record{}, nil
	}

	values, err := r.client.HMGet(ctx, r.hashKey(kind), ids...).Result()
	if err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(values))
	for i, v := range values {
		payload, ok := v.(string)
		if !ok {
			// Order entry without a payload; skip the dangling id.
			continue
		}
		rec, err := decodeRecord(payload)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", ids[i], err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Insert stores a new record, failing with domain.ErrDuplicateID when the ID is taken.
func (r *RecordRepository) Insert(ctx context.Context, kind domain.Kind, record domain.Record) error {
	payload, err := encodeRecord(record)
	if err != nil {
		return err
	}

	ok, err := insertScript.Run(ctx, r.client,
		[]string{r.hashKey(kind), r.orderKey(kind), r.seqKey(kind)},
		record.ID, payload,
	).Int()
	if err != nil {
		return err
	}
	if ok == 0 {
		return fmt.Errorf("%w: %d", domain.ErrDuplicateID, record.ID)
	}
	return nil
}

// InsertMany stores records in one MULTI/EXEC block after checking that none
// of the IDs is taken.
func (r *RecordRepository) InsertMany(ctx context.Context, kind domain.Kind, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, len(records))
	payloads := make([]string, len(records))
	seen := make(map[int64]bool, len(records))
	for i, rec := range records {
		if seen[rec.ID] {
			return fmt.Errorf("%w: %d", domain.ErrDuplicateID, rec.ID)
		}
		seen[rec.ID] = true

		payload, err := encodeRecord(rec)
		if err != nil {
			return err
		}
		ids[i] = strconv.FormatInt(rec.ID, 10)
		payloads[i] = payload
	}

	existing, err := r.client.HMGet(ctx, r.hashKey(kind), ids...).Result()
	if err != nil {
		return err
	}
	for i, v := range existing {
		if v != nil {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateID, ids[i])
		}
	}

	keys := []string{r.hashKey(kind), r.orderKey(kind), r.seqKey(kind)}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i := range records {
			insertScript.Eval(ctx, pipe, keys, ids[i], payloads[i])
		}
		return nil
	})
	return err
}

// Update replaces the stored record with the same ID.
func (r *RecordRepository) Update(ctx context.Context, kind domain.Kind, record domain.Record) error {
	payload, err := encodeRecord(record)
	if err != nil {
		return err
	}

	ok, err := updateScript.Run(ctx, r.client, []string{r.hashKey(kind)}, record.ID, payload).Int()
	if err != nil {
		return err
	}
	if ok == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrNotFound, record.ID)
	}
	return nil
}

// Delete removes the record with id.
func (r *RecordRepository) Delete(ctx context.Context, kind domain.Kind, id int64) error {
	member := strconv.FormatInt(id, 10)

	var removed *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, r.hashKey(kind), member)
		pipe.ZRem(ctx, r.orderKey(kind), member)
		return nil
	})
	if err != nil {
		return err
	}
	if removed.Val() == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	return nil
}

func encodeRecord(rec domain.Record) (string, error) {
	b, err := json.Marshal(storedRecord{
		ID:       rec.ID,
		Fields:   rec.Fields,
		Amount:   rec.Amount.String(),
		Date:     rec.Date.Format(dateLayout),
		Category: string(rec.Category),
	})
	if err != nil {
		return "", fmt.Errorf("encode record %d: %w", rec.ID, err)
	}
	return string(b), nil
}

func decodeRecord(payload string) (domain.Record, error) {
	var s storedRecord
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return domain.Record{}, err
	}

	amount, err := decimal.NewFromString(s.Amount)
	if err != nil {
		return domain.Record{}, fmt.Errorf("amount: %w", err)
	}
	date, err := time.Parse(dateLayout, s.Date)
	if err != nil {
		return domain.Record{}, fmt.Errorf("date: %w", err)
	}

	fields := s.Fields
	if fields == nil {
		fields = map[string]string{}
	}

	return domain.Record{
		ID:       s.ID,
		Fields:   fields,
		Amount:   amount,
		Date:     date,
		Category: domain.Category(s.Category),
	}, nil
}
