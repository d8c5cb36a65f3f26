package dto

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iho/bizdesk/internal/domain"
	"github.com/iho/bizdesk/internal/usecase"
)

// RecordResponse represents a record in API responses.
type RecordResponse struct {
	ID       int64             `json:"id"`
	Fields   map[string]string `json:"fields"`
	Amount   decimal.Decimal   `json:"amount"`
	Date     string            `json:"date"`
	Category string            `json:"category,omitempty"`
}

// RecordFromDomain converts a domain record to response.
func RecordFromDomain(r domain.Record) RecordResponse {
	resp := RecordResponse{
		ID:       r.ID,
		Fields:   r.Clone().Fields,
		Amount:   r.Amount,
		Category: string(r.Category),
	}
	if !r.Date.IsZero() {
		resp.Date = r.Date.Format(DateLayout)
	}
	return resp
}

// RecordsFromDomain converts domain records to responses.
func RecordsFromDomain(records []domain.Record) []RecordResponse {
	result := make([]RecordResponse, len(records))
	for i, r := range records {
		result[i] = RecordFromDomain(r)
	}
	return result
}

// TotalsResponse represents the collection totals.
type TotalsResponse struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
	Sum     decimal.Decimal `json:"sum"`
	Count   int             `json:"count"`
}

// PageLinkResponse is one pager control.
type PageLinkResponse struct {
	Number   int  `json:"number,omitempty"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// PendingResponse describes the open modal.
type PendingResponse struct {
	Action string          `json:"action"`
	Target *RecordResponse `json:"target,omitempty"`
}

// ViewResponse is the render-ready table state.
type ViewResponse struct {
	Kind        string             `json:"kind"`
	Search      string             `json:"search"`
	Rows        []RecordResponse   `json:"rows"`
	CurrentPage int                `json:"current_page"`
	TotalPages  int                `json:"total_pages"`
	Matched     int                `json:"matched"`
	ShowPager   bool               `json:"show_pager"`
	Links       []PageLinkResponse `json:"links"`
	Totals      TotalsResponse     `json:"totals"`
	Pending     PendingResponse    `json:"pending"`
}

// ViewFromDomain converts a controller view to response.
func ViewFromDomain(v usecase.View) ViewResponse {
	links := make([]PageLinkResponse, len(v.Links))
	for i, l := range v.Links {
		links[i] = PageLinkResponse{Number: l.Number, Current: l.Current, Ellipsis: l.Ellipsis}
	}

	pending := PendingResponse{Action: v.Pending.Kind.String()}
	if v.Pending.Kind != usecase.PendingNone {
		target := RecordFromDomain(v.Pending.Target)
		pending.Target = &target
	}

	return ViewResponse{
		Kind:        string(v.Kind),
		Search:      v.Search,
		Rows:        RecordsFromDomain(v.Rows),
		CurrentPage: v.CurrentPage,
		TotalPages:  v.TotalPages,
		Matched:     v.Matched,
		ShowPager:   v.ShowPager,
		Links:       links,
		Totals: TotalsResponse{
			Income:  v.Totals.Income,
			Expense: v.Totals.Expense,
			Balance: v.Totals.Balance,
			Sum:     v.Totals.Sum,
			Count:   v.Totals.Count,
		},
		Pending: pending,
	}
}

// SessionResponse is returned when a session is opened.
type SessionResponse struct {
	SessionID string       `json:"session_id"`
	View      ViewResponse `json:"view"`
}

// DraftResponse represents a form prefilled by the server.
type DraftResponse struct {
	Fields   map[string]string `json:"fields"`
	Amount   Amount            `json:"amount"`
	Date     string            `json:"date,omitempty"`
	Category string            `json:"category,omitempty"`
}

// DraftFromDomain converts a domain draft to response.
func DraftFromDomain(d domain.Draft) DraftResponse {
	resp := DraftResponse{
		Fields:   d.Fields,
		Amount:   Amount{d.Amount},
		Category: string(d.Category),
	}
	if !d.Date.IsZero() {
		resp.Date = d.Date.Format(DateLayout)
	}
	return resp
}

// ToRequest turns a prefilled form back into a submittable request.
func (d DraftResponse) ToRequest() DraftRequest {
	return DraftRequest{
		Fields:   d.Fields,
		Amount:   d.Amount,
		Date:     d.Date,
		Category: d.Category,
	}
}

// EditResponse is returned when an edit form is opened.
type EditResponse struct {
	Draft DraftResponse `json:"draft"`
	View  ViewResponse  `json:"view"`
}

// MutationResponse is returned after a record was created, updated or deleted.
type MutationResponse struct {
	Record RecordResponse `json:"record"`
	View   ViewResponse   `json:"view"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string               `json:"error"`
	Message string               `json:"message,omitempty"`
	Fields  []FieldErrorResponse `json:"fields,omitempty"`
}

// FieldErrorResponse is one validation problem.
type FieldErrorResponse struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FieldErrorsFromDomain lists every field problem carried by err, in report
// order. It returns nil when err holds no validation errors.
func FieldErrorsFromDomain(err error) []FieldErrorResponse {
	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	result := make([]FieldErrorResponse, len(verrs))
	for i, fe := range verrs {
		result[i] = FieldErrorResponse{
			Field:   fe.Field,
			Code:    domain.ErrorCode(fe.Err),
			Message: fe.Err.Error(),
		}
	}
	return result
}
