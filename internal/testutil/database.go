// Package testutil provides test fixtures for the budget application.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Relton66/budgetapp/internal/model"
	"github.com/Relton66/budgetapp/internal/service"
	"github.com/Relton66/budgetapp/internal/storage"
)

// TestDB wraps an in-memory store with helpers for seeding fixtures.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory database that is closed when the
// test finishes.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// SeedBudget creates a budget running one month from the given start date,
// with equal starting and current balances.
func (db *TestDB) SeedBudget(name, startBalance string, start time.Time) *model.Budget {
	db.t.Helper()

	balance := decimal.RequireFromString(startBalance)
	budget := &model.Budget{
		Name:           name,
		StartDate:      start,
		EndDate:        start.AddDate(0, 1, 0),
		StartBalance:   balance,
		CurrentBalance: balance,
	}

	id, err := db.Storage.CreateBudget(context.Background(), budget)
	if err != nil {
		db.t.Fatalf("failed to seed budget %q: %v", name, err)
	}
	budget.ID = id
	return budget
}

// SeedCategory creates a shared category.
func (db *TestDB) SeedCategory(name string) *model.Category {
	db.t.Helper()

	category := &model.Category{Name: name}
	id, err := db.Storage.CreateCategory(context.Background(), category)
	if err != nil {
		db.t.Fatalf("failed to seed category %q: %v", name, err)
	}
	category.ID = id
	return category
}

// SeedAllocation gives a budget a category allocation with equal starting
// and current balances.
func (db *TestDB) SeedAllocation(budgetID, categoryID int, startBalance string) *model.CategoryBudget {
	db.t.Helper()

	balance := decimal.RequireFromString(startBalance)
	cb := &model.CategoryBudget{
		BudgetID:       budgetID,
		CategoryID:     categoryID,
		StartBalance:   balance,
		CurrentBalance: balance,
	}

	if err := db.Storage.CreateCategoryBudget(context.Background(), cb); err != nil {
		db.t.Fatalf("failed to seed allocation: %v", err)
	}
	return cb
}

// SeedVendor creates an active vendor assigned to a category.
func (db *TestDB) SeedVendor(name string, categoryID int) *model.Vendor {
	db.t.Helper()

	vendor := &model.Vendor{Name: name, CategoryID: categoryID, Active: true}
	id, err := db.Storage.CreateVendor(context.Background(), vendor)
	if err != nil {
		db.t.Fatalf("failed to seed vendor %q: %v", name, err)
	}
	vendor.ID = id
	return vendor
}
