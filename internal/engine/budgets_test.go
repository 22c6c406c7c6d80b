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

func newBudgetInput(name string, start time.Time, balance string) *model.Budget {
	return &model.Budget{
		Name:         name,
		StartDate:    start,
		EndDate:      start.AddDate(0, 1, 0),
		StartBalance: decimal.RequireFromString(balance),
	}
}

func TestSaveBudgetCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db.Storage)
	ctx := context.Background()

	groceries := db.SeedCategory("Groceries")
	gas := db.SeedCategory("Gas")

	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	id, err := e.SaveBudget(ctx, newBudgetInput("April 2024", start, "1200"), []model.CategoryBudget{
		{CategoryID: groceries.ID, StartBalance: decimal.RequireFromString("500")},
		{CategoryID: gas.ID, StartBalance: decimal.RequireFromString("250")},
	}, 0)
	require.NoError(t, err)

	budget, err := db.Storage.GetBudget(ctx, id)
	require.NoError(t, err)
	assert.True(t, budget.CurrentBalance.Equal(budget.StartBalance),
		"new budget opens with current equal to start")

	allocations, err := db.Storage.GetCategoryBudgets(ctx, id)
	require.NoError(t, err)
	require.Len(t, allocations, 2)
	for _, cb := range allocations {
		assert.True(t, cb.CurrentBalance.Equal(cb.StartBalance))
	}
}

func TestSaveBudgetCreatesCategoriesLazily(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db.Storage)
	ctx := context.Background()

	groceries := db.SeedCategory("Groceries")

	// One allocation references an existing category by name, the other
	// names a category nobody has created yet.
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	id, err := e.SaveBudget(ctx, newBudgetInput("April 2024", start, "1200"), []model.CategoryBudget{
		{CategoryName: "Groceries", StartBalance: decimal.RequireFromString("500")},
		{CategoryName: "Travel", StartBalance: decimal.RequireFromString("300")},
	}, 0)
	require.NoError(t, err)

	travel, err := db.Storage.FindCategoryByName(ctx, "Travel")
	require.NoError(t, err, "unknown category is created by the save")

	alloc, err := db.Storage.GetCategoryBudget(ctx, id, travel.ID)
	require.NoError(t, err)
	assert.True(t, alloc.CurrentBalance.Equal(decimal.RequireFromString("300")))

	existing, err := db.Storage.GetCategoryBudget(ctx, id, groceries.ID)
	require.NoError(t, err)
	assert.True(t, existing.StartBalance.Equal(decimal.RequireFromString("500")),
		"a known name resolves to the existing category instead of a duplicate")
}

func TestSaveBudgetGuards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db.Storage)
	ctx := context.Background()

	groceries := db.SeedCategory("Groceries")
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	t.Run("rejects empty allocations", func(t *testing.T) {
		_, err := e.SaveBudget(ctx, newBudgetInput("April 2024", start, "1200"), nil, 0)
		assert.ErrorIs(t, err, common.ErrEmptyAllocations)
	})

	t.Run("rejects allocations exceeding start balance", func(t *testing.T) {
		_, err := e.SaveBudget(ctx, newBudgetInput("April 2024", start, "1200"), []model.CategoryBudget{
			{CategoryID: groceries.ID, StartBalance: decimal.RequireFromString("1200.01")},
		}, 0)
		assert.ErrorIs(t, err, common.ErrAllocationsExceedBalance)
	})

	t.Run("allocations may equal start balance exactly", func(t *testing.T) {
		_, err := e.SaveBudget(ctx, newBudgetInput("Full April", start, "1200"), []model.CategoryBudget{
			{CategoryID: groceries.ID, StartBalance: decimal.RequireFromString("1200")},
		}, 0)
		assert.NoError(t, err)
	})
}

func TestSaveBudgetEdit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db.Storage)
	ctx := context.Background()

	groceries := db.SeedCategory("Groceries")
	gas := db.SeedCategory("Gas")
	travel := db.SeedCategory("Travel")

	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	id, err := e.SaveBudget(ctx, newBudgetInput("April 2024", start, "1200"), []model.CategoryBudget{
		{CategoryID: groceries.ID, StartBalance: decimal.RequireFromString("500")},
		{CategoryID: gas.ID, StartBalance: decimal.RequireFromString("250")},
	}, 0)
	require.NoError(t, err)

	// Record $80 of grocery spending, then reshape the budget: rename it,
	// grow Groceries, drop Gas, add Travel.
	safeway := db.SeedVendor("Safeway", groceries.ID)
	_, err = e.PostTransaction(ctx, &model.Transaction{
		BudgetID: id,
		VendorID: safeway.ID,
		Amount:   decimal.RequireFromString("80"),
		Date:     start.AddDate(0, 0, 3),
	})
	require.NoError(t, err)

	edited := newBudgetInput("April Revised", start, "1500")
	edited.ID = id
	_, err = e.SaveBudget(ctx, edited, []model.CategoryBudget{
		{CategoryID: groceries.ID, StartBalance: decimal.RequireFromString("700")},
		{CategoryID: travel.ID, StartBalance: decimal.RequireFromString("300")},
	}, 0)
	require.NoError(t, err)

	budget, err := db.Storage.GetBudget(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "April Revised", budget.Name)
	assert.True(t, budget.StartBalance.Equal(decimal.RequireFromString("1500")))
	assert.True(t, budget.CurrentBalance.Equal(decimal.RequireFromString("1120")),
		"editing the budget must not disturb posted spending, got %s", budget.CurrentBalance)

	grown, err := db.Storage.GetCategoryBudget(ctx, id, groceries.ID)
	require.NoError(t, err)
	assert.True(t, grown.StartBalance.Equal(decimal.RequireFromString("700")))
	assert.True(t, grown.CurrentBalance.Equal(decimal.RequireFromString("620")),
		"resize keeps the $80 spend, got %s", grown.CurrentBalance)

	added, err := db.Storage.GetCategoryBudget(ctx, id, travel.ID)
	require.NoError(t, err)
	assert.True(t, added.CurrentBalance.Equal(decimal.RequireFromString("300")))

	_, err = db.Storage.GetCategoryBudget(ctx, id, gas.ID)
	assert.ErrorIs(t, err, common.ErrNotFound, "removed allocation is dropped")
}

func TestSaveBudgetSeedsRecurring(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db.Storage)
	ctx := context.Background()

	groceries := db.SeedCategory("Groceries")
	rent := db.SeedCategory("Rent")
	safeway := db.SeedVendor("Safeway", groceries.ID)
	landlord := db.SeedVendor("Oak Street Properties", rent.ID)

	marchStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	marchID, err := e.SaveBudget(ctx, newBudgetInput("March 2024", marchStart, "2000"), []model.CategoryBudget{
		{CategoryID: groceries.ID, StartBalance: decimal.RequireFromString("500")},
		{CategoryID: rent.ID, StartBalance: decimal.RequireFromString("1200")},
	}, 0)
	require.NoError(t, err)

	rentDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = e.PostTransaction(ctx, &model.Transaction{
		BudgetID:  marchID,
		VendorID:  landlord.ID,
		Amount:    decimal.RequireFromString("1200"),
		Date:      rentDate,
		Recurring: true,
	})
	require.NoError(t, err)

	_, err = e.PostTransaction(ctx, &model.Transaction{
		BudgetID: marchID,
		VendorID: safeway.ID,
		Amount:   decimal.RequireFromString("60"),
		Date:     rentDate.AddDate(0, 0, 5),
	})
	require.NoError(t, err)

	aprilStart := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	aprilID, err := e.SaveBudget(ctx, newBudgetInput("April 2024", aprilStart, "2000"), []model.CategoryBudget{
		{CategoryID: groceries.ID, StartBalance: decimal.RequireFromString("500")},
		{CategoryID: rent.ID, StartBalance: decimal.RequireFromString("1200")},
	}, marchID)
	require.NoError(t, err)

	cloned, err := db.Storage.GetTransactions(ctx, aprilID)
	require.NoError(t, err)
	require.Len(t, cloned, 1, "only the recurring entry is cloned")
	assert.Equal(t, "Oak Street Properties", cloned[0].VendorName)
	assert.True(t, cloned[0].Recurring)
	assert.True(t, cloned[0].Date.Equal(rentDate.AddDate(0, 1, 0)),
		"cloned entry is dated one month later, got %s", cloned[0].Date)

	budget, err := db.Storage.GetBudget(ctx, aprilID)
	require.NoError(t, err)
	assert.True(t, budget.CurrentBalance.Equal(decimal.RequireFromString("800")),
		"cloned rent applies to the new budget, got %s", budget.CurrentBalance)

	rentAlloc, err := db.Storage.GetCategoryBudget(ctx, aprilID, rent.ID)
	require.NoError(t, err)
	assert.True(t, rentAlloc.CurrentBalance.Equal(decimal.Zero))

	// March is untouched by the seeding.
	march, err := db.Storage.GetBudget(ctx, marchID)
	require.NoError(t, err)
	assert.True(t, march.CurrentBalance.Equal(decimal.RequireFromString("740")))
}

func TestSaveBudgetSeedsRecurringWithoutAllocation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db.Storage)
	ctx := context.Background()

	groceries := db.SeedCategory("Groceries")
	rent := db.SeedCategory("Rent")
	landlord := db.SeedVendor("Oak Street Properties", rent.ID)

	marchStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	marchID, err := e.SaveBudget(ctx, newBudgetInput("March 2024", marchStart, "2000"), []model.CategoryBudget{
		{CategoryID: rent.ID, StartBalance: decimal.RequireFromString("1200")},
	}, 0)
	require.NoError(t, err)

	_, err = e.PostTransaction(ctx, &model.Transaction{
		BudgetID:  marchID,
		VendorID:  landlord.ID,
		Amount:    decimal.RequireFromString("1200"),
		Date:      marchStart,
		Recurring: true,
	})
	require.NoError(t, err)

	// April allocates only Groceries, so the cloned rent has nowhere to
	// land at the category level but still reduces the budget.
	aprilStart := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	aprilID, err := e.SaveBudget(ctx, newBudgetInput("April 2024", aprilStart, "2000"), []model.CategoryBudget{
		{CategoryID: groceries.ID, StartBalance: decimal.RequireFromString("500")},
	}, marchID)
	require.NoError(t, err)

	budget, err := db.Storage.GetBudget(ctx, aprilID)
	require.NoError(t, err)
	assert.True(t, budget.CurrentBalance.Equal(decimal.RequireFromString("800")))

	groceriesAlloc, err := db.Storage.GetCategoryBudget(ctx, aprilID, groceries.ID)
	require.NoError(t, err)
	assert.True(t, groceriesAlloc.CurrentBalance.Equal(decimal.RequireFromString("500")))
}

func TestSetCurrentBudgetMovesFlag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db.Storage)
	ctx := context.Background()

	march := db.SeedBudget("March 2024", "1000", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	april := db.SeedBudget("April 2024", "1000", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, e.SetCurrentBudget(ctx, march.ID))
	require.NoError(t, e.SetCurrentBudget(ctx, april.ID))

	current, err := db.Storage.GetCurrentBudget(ctx)
	require.NoError(t, err)
	assert.Equal(t, april.ID, current.ID)

	budgets, err := db.Storage.GetBudgets(ctx)
	require.NoError(t, err)
	count := 0
	for _, b := range budgets {
		if b.IsCurrent {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestDeleteBudget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db.Storage)
	ctx := context.Background()

	groceries := db.SeedCategory("Groceries")
	safeway := db.SeedVendor("Safeway", groceries.ID)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	id, err := e.SaveBudget(ctx, newBudgetInput("March 2024", start, "1000"), []model.CategoryBudget{
		{CategoryID: groceries.ID, StartBalance: decimal.RequireFromString("500")},
	}, 0)
	require.NoError(t, err)

	_, err = e.PostTransaction(ctx, &model.Transaction{
		BudgetID: id,
		VendorID: safeway.ID,
		Amount:   decimal.RequireFromString("40"),
		Date:     start,
	})
	require.NoError(t, err)

	require.NoError(t, e.DeleteBudget(ctx, id))

	_, err = db.Storage.GetBudget(ctx, id)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
