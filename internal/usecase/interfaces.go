package usecase

import (
	"context"
	"time"

	"github.com/iho/bizdesk/internal/domain"
)

// RecordRepository defines durable storage for record collections. Records are
// returned in display (insertion) order.
type RecordRepository interface {
	List(ctx context.Context, kind domain.Kind) ([]domain.Record, error)
	Insert(ctx context.Context, kind domain.Kind, record domain.Record) error
	InsertMany(ctx context.Context, kind domain.Kind, records []domain.Record) error
	Update(ctx context.Context, kind domain.Kind, record domain.Record) error
	Delete(ctx context.Context, kind domain.Kind, id int64) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}

// Recorder receives domain metrics.
type Recorder interface {
	// ObserveMutation records the outcome of a create, update or delete.
	ObserveMutation(kind domain.Kind, operation string, err error)
	SetOpenSessions(n int)
	SetCollectionSize(kind domain.Kind, n int)
}

// IdempotencyPending is stored under a claimed idempotency key until the
// request that claimed it completes.
const IdempotencyPending = "processing"

// IsIdempotencyPending reports whether a stored value is the in-flight marker.
func IsIdempotencyPending(value []byte) bool {
	return string(value) == IdempotencyPending
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so a failed request can be retried.
	Release(ctx context.Context, key string) error
}

// NopRecorder discards all metrics.
type NopRecorder struct{}

func (NopRecorder) ObserveMutation(domain.Kind, string, error) {}
func (NopRecorder) SetOpenSessions(int)                        {}
func (NopRecorder) SetCollectionSize(domain.Kind, int)         {}
