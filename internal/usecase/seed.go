package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/bizdesk/internal/domain"
)

type sampleRow struct {
	fields   map[string]string
	amount   int64
	category domain.Category
}

var sampleData = map[domain.Kind][]sampleRow{
	domain.KindCommissions: {
		{fields: map[string]string{domain.FieldSeller: "João da Silva", domain.FieldDescription: "Venda 123"}, amount: 150},
		{fields: map[string]string{domain.FieldSeller: "Maria Souza", domain.FieldDescription: "Serviço 456"}, amount: 200},
		{fields: map[string]string{domain.FieldSeller: "João da Silva", domain.FieldDescription: "Venda 789"}, amount: 100},
	},
	domain.KindCashFlow: {
		{fields: map[string]string{domain.FieldDescription: "Salário"}, amount: 5000, category: domain.CategoryIncome},
		{fields: map[string]string{domain.FieldDescription: "Aluguel"}, amount: 1200, category: domain.CategoryExpense},
		{fields: map[string]string{domain.FieldDescription: "Supermercado"}, amount: 500, category: domain.CategoryExpense},
		{fields: map[string]string{domain.FieldDescription: "Freelance"}, amount: 800, category: domain.CategoryIncome},
		{fields: map[string]string{domain.FieldDescription: "Conta de Luz"}, amount: 150, category: domain.CategoryExpense},
		{fields: map[string]string{domain.FieldDescription: "Investimentos"}, amount: 1000, category: domain.CategoryIncome},
		{fields: map[string]string{domain.FieldDescription: "Transporte"}, amount: 100, category: domain.CategoryExpense},
		{fields: map[string]string{domain.FieldDescription: "Lazer"}, amount: 200, category: domain.CategoryExpense},
		{fields: map[string]string{domain.FieldDescription: "Venda de Produto"}, amount: 300, category: domain.CategoryIncome},
		{fields: map[string]string{domain.FieldDescription: "Telefone"}, amount: 50, category: domain.CategoryExpense},
	},
}

// SampleRecords returns the demo rows for kind, dated today.
func SampleRecords(kind domain.Kind, clock Clock) []domain.Record {
	rows := sampleData[kind]
	today := domain.TruncateToDay(clock.Now())

	out := make([]domain.Record, len(rows))
	for i, row := range rows {
		fields := make(map[string]string, len(row.fields))
		for k, v := range row.fields {
			fields[k] = v
		}
		out[i] = domain.Record{
			ID:       int64(i + 1),
			Fields:   fields,
			Amount:   decimal.NewFromInt(row.amount),
			Date:     today,
			Category: row.category,
		}
	}
	return out
}

// SeedSampleData fills every empty collection with the demo rows. Collections
// that already hold records are left alone. It returns the number of records
// inserted.
func SeedSampleData(ctx context.Context, repo RecordRepository, clock Clock) (int, error) {
	inserted := 0
	for _, kind := range domain.Kinds() {
		existing, err := repo.List(ctx, kind)
		if err != nil {
			return inserted, fmt.Errorf("list %s: %w", kind, err)
		}
		if len(existing) > 0 {
			continue
		}

		records := SampleRecords(kind, clock)
		if err := repo.InsertMany(ctx, kind, records); err != nil {
			return inserted, fmt.Errorf("seed %s: %w", kind, err)
		}
		inserted += len(records)
	}
	return inserted, nil
}
