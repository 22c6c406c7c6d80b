package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Relton66/budgetapp/internal/common"
	"github.com/Relton66/budgetapp/internal/model"
)

func TestCreateAndGetBudget(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	budget := mustCreateBudget(t, store, "March 2024")

	got, err := store.GetBudget(ctx, budget.ID)
	require.NoError(t, err)
	assert.Equal(t, "March 2024", got.Name)
	assert.True(t, got.StartBalance.Equal(decimal.RequireFromString("1000")))
	assert.True(t, got.CurrentBalance.Equal(decimal.RequireFromString("1000")))
	assert.False(t, got.IsCurrent)
}

func TestCreateBudgetDuplicateName(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	mustCreateBudget(t, store, "March 2024")

	_, err := store.CreateBudget(ctx, testBudget("march 2024"))
	assert.ErrorIs(t, err, common.ErrDuplicateName, "name uniqueness is case insensitive")
}

func TestCreateBudgetValidation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	t.Run("rejects bad name", func(t *testing.T) {
		budget := testBudget("March! 2024")
		_, err := store.CreateBudget(ctx, budget)
		assert.ErrorIs(t, err, common.ErrInvalidName)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		budget := testBudget("March 2024")
		budget.EndDate = budget.StartDate.AddDate(0, 0, -1)
		_, err := store.CreateBudget(ctx, budget)
		assert.ErrorIs(t, err, common.ErrEndBeforeStart)
	})
}

func TestFindBudgetByName(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	budget := mustCreateBudget(t, store, "March 2024")

	got, err := store.FindBudgetByName(ctx, "MARCH 2024")
	require.NoError(t, err)
	assert.Equal(t, budget.ID, got.ID)

	_, err = store.FindBudgetByName(ctx, "April 2024")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetBudgetNotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetBudget(context.Background(), 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestApplyBudgetDelta(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	budget := mustCreateBudget(t, store, "March 2024")

	require.NoError(t, store.ApplyBudgetDelta(ctx, budget.ID, decimal.RequireFromString("-200")))
	require.NoError(t, store.ApplyBudgetDelta(ctx, budget.ID, decimal.RequireFromString("50.25")))

	got, err := store.GetBudget(ctx, budget.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(decimal.RequireFromString("850.25")),
		"got %s", got.CurrentBalance)
	assert.True(t, got.StartBalance.Equal(decimal.RequireFromString("1000")),
		"start balance must not move")
}

func TestApplyBudgetDeltaExactCents(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	budget := mustCreateBudget(t, store, "March 2024")

	// 0.1 + 0.2 style drift would show up after a few hundred of these
	// with float math.
	delta := decimal.RequireFromString("-0.10")
	for i := 0; i < 300; i++ {
		require.NoError(t, store.ApplyBudgetDelta(ctx, budget.ID, delta))
	}

	got, err := store.GetBudget(ctx, budget.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(decimal.RequireFromString("970")),
		"got %s", got.CurrentBalance)
}

func TestCurrentBudgetFlag(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	first := mustCreateBudget(t, store, "March 2024")
	second := mustCreateBudget(t, store, "April 2024")

	_, err := store.GetCurrentBudget(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.SetCurrentBudget(ctx, first.ID))
	got, err := store.GetCurrentBudget(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	require.NoError(t, store.ClearCurrentBudget(ctx))
	require.NoError(t, store.SetCurrentBudget(ctx, second.ID))

	got, err = store.GetCurrentBudget(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	budgets, err := store.GetBudgets(ctx)
	require.NoError(t, err)
	currentCount := 0
	for _, b := range budgets {
		if b.IsCurrent {
			currentCount++
		}
	}
	assert.Equal(t, 1, currentCount)
}

func TestUpdateBudget(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	budget := mustCreateBudget(t, store, "March 2024")
	budget.Name = "March Revised"
	budget.StartBalance = decimal.RequireFromString("1200")

	require.NoError(t, store.UpdateBudget(ctx, budget))

	got, err := store.GetBudget(ctx, budget.ID)
	require.NoError(t, err)
	assert.Equal(t, "March Revised", got.Name)
	assert.True(t, got.StartBalance.Equal(decimal.RequireFromString("1200")))
}

func TestDeleteBudgetCascades(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	budget := mustCreateBudget(t, store, "March 2024")
	category := mustCreateCategory(t, store, "Groceries")
	mustCreateAllocation(t, store, budget.ID, category.ID, "300")
	vendor := mustCreateVendor(t, store, "Safeway", category.ID)

	txnID, err := store.CreateTransaction(ctx, &model.Transaction{
		BudgetID: budget.ID,
		VendorID: vendor.ID,
		Amount:   decimal.RequireFromString("20"),
		Date:     budget.StartDate,
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteBudget(ctx, budget.ID))

	_, err = store.GetBudget(ctx, budget.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = store.GetTransaction(ctx, txnID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	allocations, err := store.GetCategoryBudgets(ctx, budget.ID)
	require.NoError(t, err)
	assert.Empty(t, allocations)
}
