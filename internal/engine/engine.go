// Package engine implements balance reconciliation for budgets, category
// allocations, and ledger entries.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Relton66/budgetapp/internal/model"
	"github.com/Relton66/budgetapp/internal/service"
)

// ReconciliationEngine owns every mutation that moves a balance. Each
// operation runs inside a single database transaction, so the budget row,
// the category allocation, and the ledger entry always move together.
type ReconciliationEngine struct {
	storage service.Storage
}

// New creates a reconciliation engine backed by the given storage.
func New(storage service.Storage) *ReconciliationEngine {
	return &ReconciliationEngine{storage: storage}
}

// withTx runs fn in a transaction, committing on success and rolling back
// on any error.
func (e *ReconciliationEngine) withTx(ctx context.Context, fn func(tx service.Transaction) error) error {
	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SearchTransactions returns ledger entries matching the filter.
func (e *ReconciliationEngine) SearchTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	return e.storage.SearchTransactions(ctx, filter)
}

// GetBudgets returns all budgets.
func (e *ReconciliationEngine) GetBudgets(ctx context.Context) ([]model.Budget, error) {
	return e.storage.GetBudgets(ctx)
}

// GetCurrentBudget returns the budget marked current.
func (e *ReconciliationEngine) GetCurrentBudget(ctx context.Context) (*model.Budget, error) {
	return e.storage.GetCurrentBudget(ctx)
}

// GetCategoryBudgets returns a budget's category allocations.
func (e *ReconciliationEngine) GetCategoryBudgets(ctx context.Context, budgetID int) ([]model.CategoryBudget, error) {
	return e.storage.GetCategoryBudgets(ctx, budgetID)
}
