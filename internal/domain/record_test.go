package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRecordCloneIsIndependent(t *testing.T) {
	t.Parallel()

	orig := Record{ID: 1, Fields: map[string]string{FieldDescription: "Salário"}}
	clone := orig.Clone()
	clone.Fields[FieldDescription] = "changed"

	if orig.Field(FieldDescription) != "Salário" {
		t.Fatalf("mutating a clone leaked into the original")
	}
}

func TestDraftFromRecordRoundTrips(t *testing.T) {
	t.Parallel()

	rec := Record{
		ID:       7,
		Fields:   map[string]string{FieldDescription: "Freelance"},
		Amount:   decimal.RequireFromString("800.50"),
		Date:     sampleDate,
		Category: CategoryIncome,
	}

	got, err := ValidateDraft(CashFlowSchema, DraftFromRecord(rec))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Amount.Equal(rec.Amount) || got.Field(FieldDescription) != "Freelance" || got.Category != CategoryIncome {
		t.Fatalf("expected draft to reproduce the record, got %+v", got)
	}
}
