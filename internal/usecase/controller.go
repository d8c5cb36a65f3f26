package usecase

import (
	"fmt"

	"github.com/iho/bizdesk/internal/domain"
)

// PendingKind tags the modal a controller is waiting on.
type PendingKind int

const (
	PendingNone PendingKind = iota
	PendingEdit
	PendingDelete
)

func (k PendingKind) String() string {
	switch k {
	case PendingEdit:
		return "edit"
	case PendingDelete:
		return "delete"
	default:
		return "none"
	}
}

// PendingAction is the single open modal, if any. Edit and delete share one
// slot so two dialogs can never be open at the same time.
type PendingAction struct {
	Kind   PendingKind
	Target domain.Record
}

// View is the derived, render-ready state of a controller.
type View struct {
	Kind        domain.Kind
	Search      string
	Rows        []domain.Record
	CurrentPage int
	TotalPages  int
	// Matched counts the records that pass the current search.
	Matched   int
	ShowPager bool
	Links     []domain.PageLink
	Totals    domain.Totals
	Pending   PendingAction
}

// Checkpoint captures a controller's full state so a failed operation can be undone.
type Checkpoint struct {
	records []domain.Record
	nextID  int64
	search  string
	page    int
	pending PendingAction
}

// Controller owns one collection and the interaction state around it:
// search text, current page and the pending edit/delete target. Every
// mutation recomputes the view. A Controller is not safe for concurrent use.
type Controller struct {
	schema   domain.Schema
	pageSize int

	records []domain.Record
	nextID  int64

	search  string
	page    int
	pending PendingAction

	view View
}

// NewController creates a controller over a copy of records. Identifiers in
// records must be unique and pageSize must be positive.
func NewController(schema domain.Schema, pageSize int, records []domain.Record) (*Controller, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: page size must be positive, got %d", domain.ErrInvalidConfiguration, pageSize)
	}

	seen := make(map[int64]bool, len(records))
	var maxID int64
	for _, r := range records {
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: %w: %d", domain.ErrInvalidConfiguration, domain.ErrDuplicateID, r.ID)
		}
		seen[r.ID] = true
		if r.ID > maxID {
			maxID = r.ID
		}
	}

	c := &Controller{
		schema:   schema,
		pageSize: pageSize,
		records:  domain.CloneRecords(records),
		nextID:   maxID + 1,
		page:     1,
	}
	c.recompute()

	return c, nil
}

// Schema returns the schema of the controlled collection.
func (c *Controller) Schema() domain.Schema {
	return c.schema
}

// View returns the current derived state.
func (c *Controller) View() View {
	return c.view
}

// Records returns a copy of the full collection in display order.
func (c *Controller) Records() []domain.Record {
	return domain.CloneRecords(c.records)
}

// SetSearch replaces the search text and goes back to the first page.
func (c *Controller) SetSearch(text string) View {
	c.search = text
	c.page = 1
	c.recompute()
	return c.view
}

// SetPage requests page n; out-of-range pages are clamped.
func (c *Controller) SetPage(n int) View {
	c.page = n
	c.recompute()
	return c.view
}

// Create validates draft and appends it with a fresh identifier.
func (c *Controller) Create(draft domain.Draft) (domain.Record, error) {
	rec, err := domain.ValidateDraft(c.schema, draft)
	if err != nil {
		return domain.Record{}, err
	}

	rec.ID = c.nextID
	c.nextID++
	c.records = append(c.records, rec)
	c.recompute()

	return rec.Clone(), nil
}

// BeginEdit opens the edit modal for id and returns the record as a draft.
func (c *Controller) BeginEdit(id int64) (domain.Draft, error) {
	i := c.indexOf(id)
	if i < 0 {
		return domain.Draft{}, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}

	c.pending = PendingAction{Kind: PendingEdit, Target: c.records[i].Clone()}
	c.recompute()

	return domain.DraftFromRecord(c.records[i]), nil
}

// ConfirmEdit validates draft and replaces the record being edited in place.
// The pending edit is cleared whether or not the record still exists; it is
// kept when validation fails so the form can be corrected and resubmitted.
func (c *Controller) ConfirmEdit(draft domain.Draft) (domain.Record, error) {
	if c.pending.Kind != PendingEdit {
		return domain.Record{}, fmt.Errorf("%w: no record is being edited", domain.ErrNotFound)
	}

	rec, err := domain.ValidateDraft(c.schema, draft)
	if err != nil {
		return domain.Record{}, err
	}

	id := c.pending.Target.ID
	c.pending = PendingAction{}

	i := c.indexOf(id)
	if i < 0 {
		c.recompute()
		return domain.Record{}, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}

	rec.ID = id
	c.records[i] = rec
	c.recompute()

	return rec.Clone(), nil
}

// CancelEdit closes the edit modal without touching the collection.
func (c *Controller) CancelEdit() View {
	if c.pending.Kind == PendingEdit {
		c.pending = PendingAction{}
		c.recompute()
	}
	return c.view
}

// Update edits record id in one step. Whatever edit or delete was pending
// before the call stays pending afterwards; a pending target that is the
// updated record sees the new values.
func (c *Controller) Update(id int64, draft domain.Draft) (domain.Record, error) {
	prior := c.pending
	defer c.recompute()

	if _, err := c.BeginEdit(id); err != nil {
		return domain.Record{}, err
	}

	rec, err := c.ConfirmEdit(draft)
	c.pending = prior
	if err != nil {
		return domain.Record{}, err
	}
	if prior.Kind != PendingNone && prior.Target.ID == rec.ID {
		c.pending.Target = rec.Clone()
	}
	return rec, nil
}

// BeginDelete opens the delete confirmation for id.
func (c *Controller) BeginDelete(id int64) (View, error) {
	i := c.indexOf(id)
	if i < 0 {
		return c.view, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}

	c.pending = PendingAction{Kind: PendingDelete, Target: c.records[i].Clone()}
	c.recompute()

	return c.view, nil
}

// ConfirmDelete removes the record pending deletion and returns it.
func (c *Controller) ConfirmDelete() (domain.Record, error) {
	if c.pending.Kind != PendingDelete {
		return domain.Record{}, fmt.Errorf("%w: no record is pending deletion", domain.ErrNotFound)
	}

	id := c.pending.Target.ID
	c.pending = PendingAction{}

	i := c.indexOf(id)
	if i < 0 {
		c.recompute()
		return domain.Record{}, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}

	removed := c.records[i]
	c.records = append(c.records[:i:i], c.records[i+1:]...)
	c.recompute()

	return removed, nil
}

// CancelDelete closes the delete confirmation without touching the collection.
func (c *Controller) CancelDelete() View {
	if c.pending.Kind == PendingDelete {
		c.pending = PendingAction{}
		c.recompute()
	}
	return c.view
}

// Checkpoint snapshots the controller state.
func (c *Controller) Checkpoint() Checkpoint {
	return Checkpoint{
		records: domain.CloneRecords(c.records),
		nextID:  c.nextID,
		search:  c.search,
		page:    c.page,
		pending: c.pending,
	}
}

// Restore rolls the controller back to cp. Identifiers issued after the
// checkpoint stay burned so they are never handed out twice.
func (c *Controller) Restore(cp Checkpoint) {
	c.records = domain.CloneRecords(cp.records)
	if cp.nextID > c.nextID {
		c.nextID = cp.nextID
	}
	c.search = cp.search
	c.page = cp.page
	c.pending = cp.pending
	c.recompute()
}

func (c *Controller) indexOf(id int64) int {
	for i, r := range c.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) recompute() {
	matched := domain.Filter(c.records, c.search, c.schema.SearchFields)

	// pageSize is validated by NewController, so Paginate cannot fail here.
	page, _ := domain.Paginate(matched, c.pageSize, c.page)
	c.page = page.CurrentPage

	c.view = View{
		Kind:        c.schema.Kind,
		Search:      c.search,
		Rows:        domain.CloneRecords(page.Items),
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		Matched:     len(matched),
		ShowPager:   len(matched) > c.pageSize,
		Links:       domain.PageLinks(page.CurrentPage, page.TotalPages),
		Totals:      domain.ComputeTotals(c.records),
		Pending:     PendingAction{Kind: c.pending.Kind, Target: c.pending.Target.Clone()},
	}
}
