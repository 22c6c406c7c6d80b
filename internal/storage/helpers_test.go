package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Relton66/budgetapp/internal/model"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func testBudget(name string) *model.Budget {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &model.Budget{
		Name:           name,
		StartDate:      start,
		EndDate:        start.AddDate(0, 1, 0),
		StartBalance:   decimal.RequireFromString("1000"),
		CurrentBalance: decimal.RequireFromString("1000"),
	}
}

func mustCreateBudget(t *testing.T, store *SQLiteStorage, name string) *model.Budget {
	t.Helper()

	budget := testBudget(name)
	id, err := store.CreateBudget(context.Background(), budget)
	require.NoError(t, err)
	budget.ID = id
	return budget
}

func mustCreateCategory(t *testing.T, store *SQLiteStorage, name string) *model.Category {
	t.Helper()

	category := &model.Category{Name: name}
	id, err := store.CreateCategory(context.Background(), category)
	require.NoError(t, err)
	category.ID = id
	return category
}

func mustCreateVendor(t *testing.T, store *SQLiteStorage, name string, categoryID int) *model.Vendor {
	t.Helper()

	vendor := &model.Vendor{Name: name, CategoryID: categoryID, Active: true}
	id, err := store.CreateVendor(context.Background(), vendor)
	require.NoError(t, err)
	vendor.ID = id
	return vendor
}

func mustCreateVendorModel(name string, categoryID int) *model.Vendor {
	return &model.Vendor{Name: name, CategoryID: categoryID, Active: true}
}

func mustCreateAllocation(t *testing.T, store *SQLiteStorage, budgetID, categoryID int, balance string) {
	t.Helper()

	amount := decimal.RequireFromString(balance)
	require.NoError(t, store.CreateCategoryBudget(context.Background(), &model.CategoryBudget{
		BudgetID:       budgetID,
		CategoryID:     categoryID,
		StartBalance:   amount,
		CurrentBalance: amount,
	}))
}
