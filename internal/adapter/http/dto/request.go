package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iho/bizdesk/internal/domain"
)

// DateLayout is the wire format of record dates.
const DateLayout = "2006-01-02"

// OpenSessionRequest represents a request to open a table session.
type OpenSessionRequest struct {
	Kind string `json:"kind"`
}

// ToDomain returns the requested collection kind.
func (r *OpenSessionRequest) ToDomain() domain.Kind {
	return domain.Kind(strings.ToLower(strings.TrimSpace(r.Kind)))
}

// SearchRequest represents a change of the search text.
type SearchRequest struct {
	Text string `json:"text"`
}

// PageRequest represents a page navigation.
type PageRequest struct {
	Page int `json:"page"`
}

// Amount accepts either a JSON number or display text such as "R$ 1.234,56".
type Amount struct {
	domain.AmountInput
}

// AmountFromText wraps display text.
func AmountFromText(s string) Amount {
	return Amount{domain.AmountText(s)}
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		a.AmountInput = domain.AmountInput{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		a.AmountInput = domain.AmountText(s)
		return nil
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("amount must be a number or a string: %w", err)
		}
		a.AmountInput = domain.AmountNumber(v)
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Value != nil {
		return json.Marshal(*a.Value)
	}
	return json.Marshal(a.Text)
}

// DraftRequest carries the create or edit form.
type DraftRequest struct {
	Fields   map[string]string `json:"fields"`
	Amount   Amount            `json:"amount"`
	Date     string            `json:"date,omitempty"`
	Category string            `json:"category,omitempty"`
}

// ToDomain converts the form into a draft. An empty date becomes the zero
// time and is reported by validation; a malformed one is rejected here.
func (r *DraftRequest) ToDomain() (domain.Draft, error) {
	d := domain.Draft{
		Fields:   r.Fields,
		Amount:   r.Amount.AmountInput,
		Category: domain.Category(strings.ToLower(strings.TrimSpace(r.Category))),
	}
	if d.Fields == nil {
		d.Fields = map[string]string{}
	}

	if date := strings.TrimSpace(r.Date); date != "" {
		t, err := time.Parse(DateLayout, date)
		if err != nil {
			return domain.Draft{}, fmt.Errorf("date must use %s: %w", DateLayout, err)
		}
		d.Date = t
	}

	return d, nil
}
