package usecase

import "time"

const (
	// DefaultSessionIdleTTL is how long an untouched session survives before SweepIdle evicts it.
	DefaultSessionIdleTTL = 30 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Operation names reported to the Recorder.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)
