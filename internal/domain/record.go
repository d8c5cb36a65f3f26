package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies a collection of records.
type Kind string

const (
	KindCommissions Kind = "commissions"
	KindCashFlow    Kind = "cashflow"
)

// Category classifies transaction-like records.
type Category string

const (
	CategoryIncome  Category = "income"
	CategoryExpense Category = "expense"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategoryIncome || c == CategoryExpense
}

// ParseCategory accepts the category names case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// Text field names used by the built-in schemas.
const (
	FieldSeller      = "seller"
	FieldDescription = "description"
)

// Schema describes the shape of the records held in one kind of collection.
type Schema struct {
	Kind           Kind
	TextFields     []string
	RequiredFields []string
	SearchFields   []string
	// Categorized collections carry an income/expense category per record.
	Categorized bool
}

var (
	CommissionSchema = Schema{
		Kind:           KindCommissions,
		TextFields:     []string{FieldSeller, FieldDescription},
		RequiredFields: []string{FieldSeller, FieldDescription},
		SearchFields:   []string{FieldSeller, FieldDescription},
	}

	CashFlowSchema = Schema{
		Kind:           KindCashFlow,
		TextFields:     []string{FieldDescription},
		RequiredFields: []string{FieldDescription},
		SearchFields:   []string{FieldDescription},
		Categorized:    true,
	}
)

// SchemaFor returns the schema registered for kind.
func SchemaFor(kind Kind) (Schema, error) {
	switch kind {
	case KindCommissions:
		return CommissionSchema, nil
	case KindCashFlow:
		return CashFlowSchema, nil
	default:
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Kinds lists every supported collection kind.
func Kinds() []Kind {
	return []Kind{KindCommissions, KindCashFlow}
}

// Record is one row of a collection, e.g. a commission or a cash-flow transaction.
type Record struct {
	ID       int64
	Fields   map[string]string
	Amount   decimal.Decimal
	Date     time.Time
	Category Category
}

// Field returns the named text field, or "" when the record does not carry it.
func (r Record) Field(name string) string {
	return r.Fields[name]
}

// Clone returns a copy that shares no mutable state with r.
func (r Record) Clone() Record {
	fields := make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	r.Fields = fields
	return r
}

// CloneRecords deep-copies a slice of records.
func CloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// AmountInput is a raw amount as entered by a user: either display text
// ("R$ 1.234,56") or an already numeric value.
type AmountInput struct {
	Text  string
	Value *float64
}

// AmountText wraps display-formatted amount text.
func AmountText(s string) AmountInput {
	return AmountInput{Text: s}
}

// AmountNumber wraps a numeric amount.
func AmountNumber(v float64) AmountInput {
	return AmountInput{Value: &v}
}

// Draft is an unvalidated record submitted by a create or edit form.
type Draft struct {
	Fields   map[string]string
	Amount   AmountInput
	Date     time.Time
	Category Category
}

// DraftFromRecord loads a record into an edit draft.
func DraftFromRecord(r Record) Draft {
	return Draft{
		Fields:   r.Clone().Fields,
		Amount:   AmountText(r.Amount.String()),
		Date:     r.Date,
		Category: r.Category,
	}
}
