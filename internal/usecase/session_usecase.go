package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/bizdesk/internal/domain"
)

// SessionUseCase hosts one Controller per open table session and persists
// every mutation through a RecordRepository.
type SessionUseCase struct {
	repo     RecordRepository
	idGen    IDGenerator
	clock    Clock
	recorder Recorder
	logger   zerolog.Logger
	pageSize int

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu       sync.Mutex
	id       string
	ctrl     *Controller
	lastUsed time.Time
	closed   bool
}

// NewSessionUseCase creates a new SessionUseCase.
func NewSessionUseCase(
	repo RecordRepository,
	idGen IDGenerator,
	clock Clock,
	recorder Recorder,
	logger zerolog.Logger,
	pageSize int,
) (*SessionUseCase, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: page size must be positive, got %d", domain.ErrInvalidConfiguration, pageSize)
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}

	return &SessionUseCase{
		repo:     repo,
		idGen:    idGen,
		clock:    clock,
		recorder: recorder,
		logger:   logger,
		pageSize: pageSize,
		sessions: make(map[string]*session),
	}, nil
}

// OpenSession loads the kind's collection into a fresh controller.
func (uc *SessionUseCase) OpenSession(ctx context.Context, kind domain.Kind) (string, View, error) {
	schema, err := domain.SchemaFor(kind)
	if err != nil {
		return "", View{}, err
	}

	records, err := uc.repo.List(ctx, kind)
	if err != nil {
		return "", View{}, fmt.Errorf("load %s: %w", kind, err)
	}

	ctrl, err := NewController(schema, uc.pageSize, records)
	if err != nil {
		return "", View{}, err
	}

	s := &session{
		id:       uc.idGen.Generate(),
		ctrl:     ctrl,
		lastUsed: uc.clock.Now(),
	}

	uc.mu.Lock()
	uc.sessions[s.id] = s
	open := len(uc.sessions)
	uc.mu.Unlock()

	uc.recorder.SetOpenSessions(open)
	uc.recorder.SetCollectionSize(kind, len(records))
	uc.logger.Info().
		Str("session_id", s.id).
		Str("kind", string(kind)).
		Int("records", len(records)).
		Msg("session opened")

	return s.id, ctrl.View(), nil
}

// CloseSession discards a session.
func (uc *SessionUseCase) CloseSession(ctx context.Context, id string) error {
	uc.mu.Lock()
	s, ok := uc.sessions[id]
	if ok {
		delete(uc.sessions, id)
	}
	open := len(uc.sessions)
	uc.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	uc.recorder.SetOpenSessions(open)
	uc.logger.Info().Str("session_id", id).Msg("session closed")
	return nil
}

// OpenSessions returns the number of live sessions.
func (uc *SessionUseCase) OpenSessions() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.sessions)
}

// SweepIdle closes sessions unused for longer than ttl and returns how many
// were evicted. Sessions busy with an operation are skipped. A non-positive
// ttl falls back to DefaultSessionIdleTTL.
func (uc *SessionUseCase) SweepIdle(now time.Time, ttl time.Duration) int {
	if ttl <= 0 {
		ttl = DefaultSessionIdleTTL
	}

	uc.mu.Lock()
	evicted := 0
	for id, s := range uc.sessions {
		if !s.mu.TryLock() {
			continue
		}
		if now.Sub(s.lastUsed) > ttl {
			s.closed = true
			delete(uc.sessions, id)
			evicted++
		}
		s.mu.Unlock()
	}
	open := len(uc.sessions)
	uc.mu.Unlock()

	if evicted > 0 {
		uc.recorder.SetOpenSessions(open)
		uc.logger.Info().Int("evicted", evicted).Int("open", open).Msg("idle sessions swept")
	}
	return evicted
}

// View returns the session's current view.
func (uc *SessionUseCase) View(ctx context.Context, id string) (View, error) {
	var v View
	err := uc.withSession(id, func(s *session) error {
		v = s.ctrl.View()
		return nil
	})
	return v, err
}

// Search replaces the search text and returns to the first page.
func (uc *SessionUseCase) Search(ctx context.Context, id, text string) (View, error) {
	var v View
	err := uc.withSession(id, func(s *session) error {
		v = s.ctrl.SetSearch(text)
		return nil
	})
	return v, err
}

// SetPage moves to page n, clamped to the available pages.
func (uc *SessionUseCase) SetPage(ctx context.Context, id string, n int) (View, error) {
	var v View
	err := uc.withSession(id, func(s *session) error {
		v = s.ctrl.SetPage(n)
		return nil
	})
	return v, err
}

// NewDraft returns an empty form for the session's kind, dated today.
func (uc *SessionUseCase) NewDraft(ctx context.Context, id string) (domain.Draft, error) {
	var d domain.Draft
	err := uc.withSession(id, func(s *session) error {
		schema := s.ctrl.Schema()
		d = domain.Draft{
			Fields: make(map[string]string, len(schema.TextFields)),
			Date:   domain.TruncateToDay(uc.clock.Now()),
		}
		for _, f := range schema.TextFields {
			d.Fields[f] = ""
		}
		if schema.Categorized {
			d.Category = domain.CategoryIncome
		}
		return nil
	})
	return d, err
}

// Create validates and stores a new record.
func (uc *SessionUseCase) Create(ctx context.Context, id string, draft domain.Draft) (domain.Record, View, error) {
	var (
		rec domain.Record
		v   View
	)
	err := uc.withSession(id, func(s *session) error {
		var err error
		rec, err = uc.mutate(s, OpCreate,
			func() (domain.Record, error) { return s.ctrl.Create(draft) },
			func(r domain.Record) error { return uc.repo.Insert(ctx, s.ctrl.Schema().Kind, r) },
		)
		v = s.ctrl.View()
		return err
	})
	return rec, v, err
}

// Update replaces record recordID in one step.
func (uc *SessionUseCase) Update(ctx context.Context, id string, recordID int64, draft domain.Draft) (domain.Record, View, error) {
	var (
		rec domain.Record
		v   View
	)
	err := uc.withSession(id, func(s *session) error {
		var err error
		rec, err = uc.mutate(s, OpUpdate,
			func() (domain.Record, error) { return s.ctrl.Update(recordID, draft) },
			func(r domain.Record) error { return uc.repo.Update(ctx, s.ctrl.Schema().Kind, r) },
		)
		v = s.ctrl.View()
		return err
	})
	return rec, v, err
}

// BeginEdit opens the edit form for recordID.
func (uc *SessionUseCase) BeginEdit(ctx context.Context, id string, recordID int64) (domain.Draft, View, error) {
	var (
		d domain.Draft
		v View
	)
	err := uc.withSession(id, func(s *session) error {
		var err error
		d, err = s.ctrl.BeginEdit(recordID)
		v = s.ctrl.View()
		return err
	})
	return d, v, err
}

// ConfirmEdit saves the open edit form.
func (uc *SessionUseCase) ConfirmEdit(ctx context.Context, id string, draft domain.Draft) (domain.Record, View, error) {
	var (
		rec domain.Record
		v   View
	)
	err := uc.withSession(id, func(s *session) error {
		var err error
		rec, err = uc.mutate(s, OpUpdate,
			func() (domain.Record, error) { return s.ctrl.ConfirmEdit(draft) },
			func(r domain.Record) error { return uc.repo.Update(ctx, s.ctrl.Schema().Kind, r) },
		)
		v = s.ctrl.View()
		return err
	})
	return rec, v, err
}

// CancelEdit closes the edit form.
func (uc *SessionUseCase) CancelEdit(ctx context.Context, id string) (View, error) {
	var v View
	err := uc.withSession(id, func(s *session) error {
		v = s.ctrl.CancelEdit()
		return nil
	})
	return v, err
}

// BeginDelete asks for confirmation before deleting recordID.
func (uc *SessionUseCase) BeginDelete(ctx context.Context, id string, recordID int64) (View, error) {
	var v View
	err := uc.withSession(id, func(s *session) error {
		var err error
		v, err = s.ctrl.BeginDelete(recordID)
		return err
	})
	return v, err
}

// ConfirmDelete removes the record awaiting confirmation.
func (uc *SessionUseCase) ConfirmDelete(ctx context.Context, id string) (domain.Record, View, error) {
	var (
		rec domain.Record
		v   View
	)
	err := uc.withSession(id, func(s *session) error {
		var err error
		rec, err = uc.mutate(s, OpDelete,
			s.ctrl.ConfirmDelete,
			func(r domain.Record) error { return uc.repo.Delete(ctx, s.ctrl.Schema().Kind, r.ID) },
		)
		v = s.ctrl.View()
		return err
	})
	return rec, v, err
}

// CancelDelete dismisses the delete confirmation.
func (uc *SessionUseCase) CancelDelete(ctx context.Context, id string) (View, error) {
	var v View
	err := uc.withSession(id, func(s *session) error {
		v = s.ctrl.CancelDelete()
		return nil
	})
	return v, err
}

func (uc *SessionUseCase) withSession(id string, fn func(s *session) error) error {
	uc.mu.Lock()
	s, ok := uc.sessions[id]
	uc.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	s.lastUsed = uc.clock.Now()

	return fn(s)
}

// mutate runs apply on the controller and then persist. When persist fails the
// controller is rolled back to its state before apply.
func (uc *SessionUseCase) mutate(
	s *session,
	operation string,
	apply func() (domain.Record, error),
	persist func(domain.Record) error,
) (domain.Record, error) {
	kind := s.ctrl.Schema().Kind
	cp := s.ctrl.Checkpoint()

	rec, err := apply()
	if err != nil {
		uc.recorder.ObserveMutation(kind, operation, err)
		uc.logger.Debug().
			Err(err).
			Str("session_id", s.id).
			Str("operation", operation).
			Msg("mutation rejected")
		return domain.Record{}, err
	}

	if err := persist(rec); err != nil {
		s.ctrl.Restore(cp)
		uc.recorder.ObserveMutation(kind, operation, err)
		uc.logger.Error().
			Err(err).
			Str("session_id", s.id).
			Str("operation", operation).
			Int64("record_id", rec.ID).
			Msg("failed to persist mutation, rolled back")
		return domain.Record{}, fmt.Errorf("persist %s: %w", operation, err)
	}

	uc.recorder.ObserveMutation(kind, operation, nil)
	uc.recorder.SetCollectionSize(kind, s.ctrl.View().Totals.Count)
	uc.logger.Info().
		Str("session_id", s.id).
		Str("kind", string(kind)).
		Str("operation", operation).
		Int64("record_id", rec.ID).
		Msg("record mutated")

	return rec, nil
}
