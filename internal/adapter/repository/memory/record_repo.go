package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/iho/bizdesk/internal/domain"
)

// RecordRepository implements usecase.RecordRepository in process memory.
type RecordRepository struct {
	mu      sync.RWMutex
	records map[domain.Kind][]domain.Record
}

// NewRecordRepository creates an empty RecordRepository.
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{
		records: make(map[domain.Kind][]domain.Record),
	}
}

// List returns copies of the records of kind in insertion order.
func (r *RecordRepository) List(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.CloneRecords(r.records[kind]), nil
}

// Insert appends record.
func (r *RecordRepository) Insert(ctx context.Context, kind domain.Kind, record domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(kind, record.ID) >= 0 {
		return fmt.Errorf("%w: %d", domain.ErrDuplicateID, record.ID)
	}
	r.records[kind] = append(r.records[kind], record.Clone())
	return nil
}

// InsertMany appends records, all or nothing.
func (r *RecordRepository) InsertMany(ctx context.Context, kind domain.Kind, records []domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[int64]bool, len(records))
	for _, rec := range records {
		if seen[rec.ID] || r.indexOf(kind, rec.ID) >= 0 {
			return fmt.Errorf("%w: %d", domain.ErrDuplicateID, rec.ID)
		}
		seen[rec.ID] = true
	}
	r.records[kind] = append(r.records[kind], domain.CloneRecords(records)...)
	return nil
}

// Update replaces the record with the same ID in place.
func (r *RecordRepository) Update(ctx context.Context, kind domain.Kind, record domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(kind, record.ID)
	if i < 0 {
		return fmt.Errorf("%w: id %d", domain.ErrNotFound, record.ID)
	}
	r.records[kind][i] = record.Clone()
	return nil
}

// Delete removes the record with id.
func (r *RecordRepository) Delete(ctx context.Context, kind domain.Kind, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(kind, id)
	if i < 0 {
		return fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	list := r.records[kind]
	r.records[kind] = append(list[:i:i], list[i+1:]...)
	return nil
}

func (r *RecordRepository) indexOf(kind domain.Kind, id int64) int {
	for i, rec := range r.records[kind] {
		if rec.ID == id {
			return i
		}
	}
	return -1
}
