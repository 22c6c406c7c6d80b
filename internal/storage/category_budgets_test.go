package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Relton66/budgetapp/internal/common"
)

func TestCategoryBudgetLifecycle(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	budget := mustCreateBudget(t, store, "March 2024")
	groceries := mustCreateCategory(t, store, "Groceries")
	gas := mustCreateCategory(t, store, "Gas")
	mustCreateAllocation(t, store, budget.ID, groceries.ID, "300")
	mustCreateAllocation(t, store, budget.ID, gas.ID, "150")

	allocations, err := store.GetCategoryBudgets(ctx, budget.ID)
	require.NoError(t, err)
	require.Len(t, allocations, 2)
	assert.Equal(t, "Gas", allocations[0].CategoryName, "ordered by category name")
	assert.Equal(t, "Groceries", allocations[1].CategoryName)

	cb, err := store.GetCategoryBudget(ctx, budget.ID, groceries.ID)
	require.NoError(t, err)
	assert.True(t, cb.StartBalance.Equal(decimal.RequireFromString("300")))
	assert.True(t, cb.CurrentBalance.Equal(decimal.RequireFromString("300")))

	require.NoError(t, store.DeleteCategoryBudget(ctx, budget.ID, gas.ID))
	_, err = store.GetCategoryBudget(ctx, budget.ID, gas.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestApplyCategoryDelta(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	budget := mustCreateBudget(t, store, "March 2024")
	groceries := mustCreateCategory(t, store, "Groceries")
	mustCreateAllocation(t, store, budget.ID, groceries.ID, "300")

	require.NoError(t, store.ApplyCategoryDelta(ctx, budget.ID, groceries.ID, decimal.RequireFromString("-45.50")))

	cb, err := store.GetCategoryBudget(ctx, budget.ID, groceries.ID)
	require.NoError(t, err)
	assert.True(t, cb.CurrentBalance.Equal(decimal.RequireFromString("254.50")), "got %s", cb.CurrentBalance)
	assert.True(t, cb.StartBalance.Equal(decimal.RequireFromString("300")))
	assert.True(t, cb.Spent().Equal(decimal.RequireFromString("45.50")))
}

func TestApplyCategoryDeltaMissingAllocation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	budget := mustCreateBudget(t, store, "March 2024")
	groceries := mustCreateCategory(t, store, "Groceries")

	err := store.ApplyCategoryDelta(ctx, budget.ID, groceries.ID, decimal.RequireFromString("-10"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSetCategoryStartBalancePreservesSpend(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	budget := mustCreateBudget(t, store, "March 2024")
	groceries := mustCreateCategory(t, store, "Groceries")
	mustCreateAllocation(t, store, budget.ID, groceries.ID, "300")

	// Spend $80, then resize the allocation both directions.
	require.NoError(t, store.ApplyCategoryDelta(ctx, budget.ID, groceries.ID, decimal.RequireFromString("-80")))

	require.NoError(t, store.SetCategoryStartBalance(ctx, budget.ID, groceries.ID, decimal.RequireFromString("400")))
	cb, err := store.GetCategoryBudget(ctx, budget.ID, groceries.ID)
	require.NoError(t, err)
	assert.True(t, cb.CurrentBalance.Equal(decimal.RequireFromString("320")), "got %s", cb.CurrentBalance)
	assert.True(t, cb.Spent().Equal(decimal.RequireFromString("80")))

	require.NoError(t, store.SetCategoryStartBalance(ctx, budget.ID, groceries.ID, decimal.RequireFromString("100")))
	cb, err = store.GetCategoryBudget(ctx, budget.ID, groceries.ID)
	require.NoError(t, err)
	assert.True(t, cb.CurrentBalance.Equal(decimal.RequireFromString("20")), "got %s", cb.CurrentBalance)
	assert.True(t, cb.Spent().Equal(decimal.RequireFromString("80")))
}

func TestCreateCategoryBudgetDuplicate(t *testing.T) {
	store := createTestStorage(t)

	budget := mustCreateBudget(t, store, "March 2024")
	groceries := mustCreateCategory(t, store, "Groceries")
	mustCreateAllocation(t, store, budget.ID, groceries.ID, "300")

	cb, err := store.GetCategoryBudget(context.Background(), budget.ID, groceries.ID)
	require.NoError(t, err)

	err = store.CreateCategoryBudget(context.Background(), cb)
	assert.Error(t, err)
}
