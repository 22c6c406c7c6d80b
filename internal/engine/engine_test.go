package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Relton66/budgetapp/internal/common"
	"github.com/Relton66/budgetapp/internal/model"
	"github.com/Relton66/budgetapp/internal/testutil"
)

type fixture struct {
	db        *testutil.TestDB
	engine    *ReconciliationEngine
	budget    *model.Budget
	groceries *model.Category
	gas       *model.Category
	safeway   *model.Vendor
	shell     *model.Vendor
}

// setupFixture builds a $1000 March budget with $500 Groceries and $200
// Gas allocations and one vendor in each category.
func setupFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	f := &fixture{
		db:     db,
		engine: New(db.Storage),
	}

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f.budget = db.SeedBudget("March 2024", "1000", start)
	f.groceries = db.SeedCategory("Groceries")
	f.gas = db.SeedCategory("Gas")
	db.SeedAllocation(f.budget.ID, f.groceries.ID, "500")
	db.SeedAllocation(f.budget.ID, f.gas.ID, "200")
	f.safeway = db.SeedVendor("Safeway", f.groceries.ID)
	f.shell = db.SeedVendor("Shell", f.gas.ID)

	return f
}

func (f *fixture) budgetBalance(t *testing.T) decimal.Decimal {
	t.Helper()
	budget, err := f.db.Storage.GetBudget(context.Background(), f.budget.ID)
	require.NoError(t, err)
	return budget.CurrentBalance
}

func (f *fixture) categoryBalance(t *testing.T, categoryID int) decimal.Decimal {
	t.Helper()
	cb, err := f.db.Storage.GetCategoryBudget(context.Background(), f.budget.ID, categoryID)
	require.NoError(t, err)
	return cb.CurrentBalance
}

func (f *fixture) assertBalances(t *testing.T, budget, groceries, gas string) {
	t.Helper()
	assert.True(t, f.budgetBalance(t).Equal(decimal.RequireFromString(budget)),
		"budget balance: got %s, want %s", f.budgetBalance(t), budget)
	assert.True(t, f.categoryBalance(t, f.groceries.ID).Equal(decimal.RequireFromString(groceries)),
		"groceries balance: got %s, want %s", f.categoryBalance(t, f.groceries.ID), groceries)
	assert.True(t, f.categoryBalance(t, f.gas.ID).Equal(decimal.RequireFromString(gas)),
		"gas balance: got %s, want %s", f.categoryBalance(t, f.gas.ID), gas)
}

func (f *fixture) post(t *testing.T, vendorID int, amount string, income bool) int {
	t.Helper()
	id, err := f.engine.PostTransaction(context.Background(), &model.Transaction{
		BudgetID: f.budget.ID,
		VendorID: vendorID,
		Amount:   decimal.RequireFromString(amount),
		Income:   income,
		Date:     f.budget.StartDate.AddDate(0, 0, 10),
	})
	require.NoError(t, err)
	return id
}

func TestPostExpenseMovesBothBalances(t *testing.T) {
	f := setupFixture(t)

	f.post(t, f.safeway.ID, "200", false)

	f.assertBalances(t, "800", "300", "200")
}

func TestPostIncomeMovesBothBalancesUp(t *testing.T) {
	f := setupFixture(t)

	f.post(t, f.safeway.ID, "150", true)

	f.assertBalances(t, "1150", "650", "200")
}

func TestPostAndDeleteRoundTrip(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	id := f.post(t, f.safeway.ID, "123.45", false)
	require.NoError(t, f.engine.DeleteTransaction(ctx, id))

	// Exact equality, not tolerance. Decimal arithmetic means the round
	// trip restores the balances bit for bit.
	f.assertBalances(t, "1000", "500", "200")

	_, err := f.db.Storage.GetTransaction(ctx, id)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPostUnknownVendorLeavesBalancesUntouched(t *testing.T) {
	f := setupFixture(t)

	_, err := f.engine.PostTransaction(context.Background(), &model.Transaction{
		BudgetID: f.budget.ID,
		VendorID: 9999,
		Amount:   decimal.RequireFromString("50"),
		Date:     f.budget.StartDate,
	})
	require.Error(t, err)

	f.assertBalances(t, "1000", "500", "200")

	transactions, err := f.db.Storage.GetTransactions(context.Background(), f.budget.ID)
	require.NoError(t, err)
	assert.Empty(t, transactions, "failed post must not leave a ledger row behind")
}

func TestPostMissingAllocationLeavesBalancesUntouched(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	travel := f.db.SeedCategory("Travel")
	delta := f.db.SeedVendor("Delta", travel.ID)

	_, err := f.engine.PostTransaction(ctx, &model.Transaction{
		BudgetID: f.budget.ID,
		VendorID: delta.ID,
		Amount:   decimal.RequireFromString("400"),
		Date:     f.budget.StartDate,
	})
	assert.ErrorIs(t, err, common.ErrNotFound)

	f.assertBalances(t, "1000", "500", "200")
}

func TestEditUnchangedEntryIsIdempotent(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	id := f.post(t, f.safeway.ID, "200", false)

	txn, err := f.db.Storage.GetTransaction(ctx, id)
	require.NoError(t, err)
	txn.Comments = "new note"
	require.NoError(t, f.engine.EditTransaction(ctx, txn))

	f.assertBalances(t, "800", "300", "200")

	got, err := f.db.Storage.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new note", got.Comments)
}

func TestEditAmountAndDirection(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	// A $200 expense corrected to $250 income: the budget swings by the
	// rollback plus the fresh apply, and so does the allocation.
	id := f.post(t, f.safeway.ID, "200", false)

	txn, err := f.db.Storage.GetTransaction(ctx, id)
	require.NoError(t, err)
	txn.Amount = decimal.RequireFromString("250")
	txn.Income = true
	require.NoError(t, f.engine.EditTransaction(ctx, txn))

	f.assertBalances(t, "1250", "750", "200")
}

func TestEditVendorAcrossCategories(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	// Same amount, different vendor in a different category: the $20
	// moves wholesale from Groceries to Gas.
	id := f.post(t, f.safeway.ID, "20", false)
	f.assertBalances(t, "980", "480", "200")

	txn, err := f.db.Storage.GetTransaction(ctx, id)
	require.NoError(t, err)
	txn.VendorID = f.shell.ID
	require.NoError(t, f.engine.EditTransaction(ctx, txn))

	f.assertBalances(t, "980", "500", "180")
}

func TestEditVendorWithinCategory(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	other := f.db.SeedVendor("Kroger", f.groceries.ID)
	id := f.post(t, f.safeway.ID, "30", false)

	txn, err := f.db.Storage.GetTransaction(ctx, id)
	require.NoError(t, err)
	txn.VendorID = other.ID
	require.NoError(t, f.engine.EditTransaction(ctx, txn))

	// Same category and unchanged amount: no balance moves at all.
	f.assertBalances(t, "970", "470", "200")
}

func TestPostAtDeactivatedVendorRejected(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.DeactivateVendor(ctx, f.safeway.ID))

	_, err := f.engine.PostTransaction(ctx, &model.Transaction{
		BudgetID: f.budget.ID,
		VendorID: f.safeway.ID,
		Amount:   decimal.RequireFromString("25"),
		Date:     f.budget.StartDate,
	})
	assert.ErrorIs(t, err, common.ErrVendorNotFound)

	f.assertBalances(t, "1000", "500", "200")

	transactions, err := f.db.Storage.GetTransactions(ctx, f.budget.ID)
	require.NoError(t, err)
	assert.Empty(t, transactions, "rejected post must not leave a ledger row behind")
}

func TestDeleteAfterAllocationRemoved(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	id := f.post(t, f.safeway.ID, "80", false)

	// Reshape the budget so the Groceries allocation is gone while the
	// entry stays on the ledger.
	edited := *f.budget
	_, err := f.engine.SaveBudget(ctx, &edited, []model.CategoryBudget{
		{CategoryID: f.gas.ID, StartBalance: decimal.RequireFromString("200")},
	}, 0)
	require.NoError(t, err)

	// The delete still rolls the budget delta back; the category level is
	// a no-op since there is no allocation left to credit.
	require.NoError(t, f.engine.DeleteTransaction(ctx, id))

	assert.True(t, f.budgetBalance(t).Equal(decimal.RequireFromString("1000")),
		"budget balance: got %s", f.budgetBalance(t))
	assert.True(t, f.categoryBalance(t, f.gas.ID).Equal(decimal.RequireFromString("200")))

	_, err = f.db.Storage.GetTransaction(ctx, id)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEditAfterAllocationRemoved(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	id := f.post(t, f.safeway.ID, "80", false)

	edited := *f.budget
	_, err := f.engine.SaveBudget(ctx, &edited, []model.CategoryBudget{
		{CategoryID: f.gas.ID, StartBalance: decimal.RequireFromString("200")},
	}, 0)
	require.NoError(t, err)

	txn, err := f.db.Storage.GetTransaction(ctx, id)
	require.NoError(t, err)
	txn.Amount = decimal.RequireFromString("50")
	require.NoError(t, f.engine.EditTransaction(ctx, txn))

	assert.True(t, f.budgetBalance(t).Equal(decimal.RequireFromString("950")),
		"budget re-reconciles to the new amount, got %s", f.budgetBalance(t))
	assert.True(t, f.categoryBalance(t, f.gas.ID).Equal(decimal.RequireFromString("200")))
}

func TestDeleteAfterVendorDeactivation(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	id := f.post(t, f.safeway.ID, "75", false)
	require.NoError(t, f.engine.DeactivateVendor(ctx, f.safeway.ID))

	require.NoError(t, f.engine.DeleteTransaction(ctx, id))
	f.assertBalances(t, "1000", "500", "200")
}

func TestDeltaPrecisionSurvivesManyOperations(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	var ids []int
	for i := 0; i < 100; i++ {
		ids = append(ids, f.post(t, f.safeway.ID, "0.10", false))
	}
	f.assertBalances(t, "990", "490", "200")

	for _, id := range ids {
		require.NoError(t, f.engine.DeleteTransaction(ctx, id))
	}
	f.assertBalances(t, "1000", "500", "200")
}
