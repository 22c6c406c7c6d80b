package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Relton66/budgetapp/internal/model"
	"github.com/Relton66/budgetapp/internal/sheets"
)

func TestExportBudget(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	f.post(t, f.safeway.ID, "40", false)
	f.post(t, f.shell.ID, "25", false)

	writer := sheets.NewMockWriter()
	require.NoError(t, f.engine.ExportBudget(ctx, f.budget.ID, writer))

	require.Equal(t, 1, writer.WriteCallCount)
	report := writer.LastReport
	require.NotNil(t, report)
	assert.Equal(t, "March 2024", report.Budget.Name)
	assert.Len(t, report.Allocations, 2)
	require.Len(t, report.Transactions, 2)

	// Every exported row carries the vendor's resolved category.
	byVendor := make(map[string]string, len(report.Transactions))
	for _, txn := range report.Transactions {
		byVendor[txn.VendorName] = txn.CategoryName
	}
	assert.Equal(t, "Groceries", byVendor["Safeway"])
	assert.Equal(t, "Gas", byVendor["Shell"])
}

func TestExportBudgetRetriesTransientFailures(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	attempts := 0
	writer := sheets.NewMockWriter()
	writer.WriteFunc = func(_ context.Context, _ *model.BudgetReport) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporarily unavailable")
		}
		return nil
	}

	require.NoError(t, f.engine.ExportBudget(ctx, f.budget.ID, writer))
	assert.Equal(t, 3, attempts)
}
