package domain

import (
	"strings"
	"time"
)

// Draft field names used in validation reports for the non-text fields.
const (
	FieldAmount   = "amount"
	FieldDate     = "date"
	FieldCategory = "category"
)

// ValidateDraft checks a draft against schema and returns the normalized
// record. Every problem is reported, not just the first one: the returned
// error is a ValidationErrors holding one FieldError per offending field.
// The record ID is left zero; callers assign or preserve it.
func ValidateDraft(schema Schema, d Draft) (Record, error) {
	var problems ValidationErrors

	required := make(map[string]bool, len(schema.RequiredFields))
	for _, f := range schema.RequiredFields {
		required[f] = true
	}

	fields := make(map[string]string, len(schema.TextFields))
	for _, name := range schema.TextFields {
		value := strings.TrimSpace(d.Fields[name])
		if value == "" && required[name] {
			problems = append(problems, MissingField(name))
			continue
		}
		fields[name] = value
	}

	amount, err := ResolveAmount(d.Amount)
	if err != nil {
		problems = append(problems, &FieldError{Field: FieldAmount, Err: err})
	}

	if d.Date.IsZero() {
		problems = append(problems, &FieldError{Field: FieldDate, Err: ErrMissingDate})
	}

	var category Category
	if schema.Categorized {
		if d.Category.Valid() {
			category = d.Category
		} else {
			problems = append(problems, &FieldError{Field: FieldCategory, Err: ErrInvalidCategory})
		}
	}

	if len(problems) > 0 {
		return Record{}, problems
	}

	return Record{
		Fields:   fields,
		Amount:   amount,
		Date:     TruncateToDay(d.Date),
		Category: category,
	}, nil
}

// TruncateToDay drops the time of day, keeping the calendar date in t's location.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
