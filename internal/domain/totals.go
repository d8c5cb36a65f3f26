package domain

import "github.com/shopspring/decimal"

// Totals aggregates the amounts of a whole collection.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	// Balance is Income minus Expense.
	Balance decimal.Decimal
	// Sum adds every amount regardless of category.
	Sum   decimal.Decimal
	Count int
}

// ComputeTotals aggregates records. Uncategorized records only count
// towards Sum and Count.
func ComputeTotals(records []Record) Totals {
	t := Totals{
		Income:  decimal.Zero,
		Expense: decimal.Zero,
		Sum:     decimal.Zero,
	}
	for _, r := range records {
		t.Sum = t.Sum.Add(r.Amount)
		t.Count++

		switch r.Category {
		case CategoryIncome:
			t.Income = t.Income.Add(r.Amount)
		case CategoryExpense:
			t.Expense = t.Expense.Add(r.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}
