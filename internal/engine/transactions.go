package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Relton66/budgetapp/internal/common"
	"github.com/Relton66/budgetapp/internal/model"
	"github.com/Relton66/budgetapp/internal/service"
)

// PostTransaction records a ledger entry and applies its delta to the
// budget balance and the vendor's category allocation atomically. Only
// active vendors accept new entries; deactivated ones stay resolvable for
// edits and deletes of their history.
func (e *ReconciliationEngine) PostTransaction(ctx context.Context, txn *model.Transaction) (int, error) {
	if err := txn.Validate(); err != nil {
		return 0, err
	}

	var id int
	err := e.withTx(ctx, func(tx service.Transaction) error {
		vendor, err := tx.GetVendor(ctx, txn.VendorID)
		if err != nil {
			return err
		}
		if !vendor.Active {
			return fmt.Errorf("vendor %q is deactivated: %w", vendor.Name, common.ErrVendorNotFound)
		}

		createdID, err := tx.CreateTransaction(ctx, txn)
		if err != nil {
			return err
		}
		id = createdID

		return applyEntry(ctx, tx, txn)
	})
	if err != nil {
		return 0, err
	}

	slog.Info("Posted transaction",
		"id", id,
		"budget_id", txn.BudgetID,
		"amount", txn.Amount,
		"income", txn.Income)
	return id, nil
}

// DeleteTransaction rolls the entry's delta back out of both balances and
// removes the row. The category is resolved through the vendor's current
// assignment.
func (e *ReconciliationEngine) DeleteTransaction(ctx context.Context, id int) error {
	err := e.withTx(ctx, func(tx service.Transaction) error {
		txn, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}

		if err := rollbackEntry(ctx, tx, txn); err != nil {
			return err
		}

		return tx.DeleteTransaction(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.Info("Deleted transaction", "id", id)
	return nil
}

// EditTransaction reconciles an edited entry against the stored original.
// Balances move only where the edit actually changes them: an unchanged
// amount and direction leaves both untouched, while a vendor change that
// crosses categories always moves the full delta between the two
// allocations.
func (e *ReconciliationEngine) EditTransaction(ctx context.Context, updated *model.Transaction) error {
	if err := updated.Validate(); err != nil {
		return err
	}

	err := e.withTx(ctx, func(tx service.Transaction) error {
		original, err := tx.GetTransaction(ctx, updated.ID)
		if err != nil {
			return err
		}

		// An edit cannot move an entry between budgets.
		updated.BudgetID = original.BudgetID

		changed := !original.Amount.Equal(updated.Amount) || original.Income != updated.Income

		originalCategory, err := tx.FindCategoryByVendor(ctx, original.VendorID)
		if err != nil {
			return err
		}
		updatedCategory, err := tx.FindCategoryByVendor(ctx, updated.VendorID)
		if err != nil {
			return err
		}

		if changed {
			if err := tx.ApplyBudgetDelta(ctx, original.BudgetID, original.Delta().Neg()); err != nil {
				return err
			}
			if err := tx.ApplyBudgetDelta(ctx, original.BudgetID, updated.Delta()); err != nil {
				return err
			}
		}

		if originalCategory.ID == updatedCategory.ID {
			if changed {
				allocated, err := rollbackCategoryDelta(ctx, tx, original.BudgetID, originalCategory, original.Delta().Neg())
				if err != nil {
					return err
				}
				// No allocation to roll back means none to apply to
				// either; the edit stays budget-level only.
				if allocated {
					if err := tx.ApplyCategoryDelta(ctx, original.BudgetID, originalCategory.ID, updated.Delta()); err != nil {
						return fmt.Errorf("category %q: %w", originalCategory.Name, err)
					}
				}
			}
		} else {
			if _, err := rollbackCategoryDelta(ctx, tx, original.BudgetID, originalCategory, original.Delta().Neg()); err != nil {
				return err
			}
			if err := tx.ApplyCategoryDelta(ctx, original.BudgetID, updatedCategory.ID, updated.Delta()); err != nil {
				return fmt.Errorf("category %q: %w", updatedCategory.Name, err)
			}
		}

		return tx.UpdateTransaction(ctx, updated)
	})
	if err != nil {
		return err
	}

	slog.Info("Edited transaction", "id", updated.ID)
	return nil
}

// applyEntry moves an entry's delta into the budget balance and the
// vendor's category allocation.
func applyEntry(ctx context.Context, tx service.Transaction, txn *model.Transaction) error {
	if err := tx.ApplyBudgetDelta(ctx, txn.BudgetID, txn.Delta()); err != nil {
		return err
	}

	category, err := tx.FindCategoryByVendor(ctx, txn.VendorID)
	if err != nil {
		return err
	}

	if err := tx.ApplyCategoryDelta(ctx, txn.BudgetID, category.ID, txn.Delta()); err != nil {
		return fmt.Errorf("category %q: %w", category.Name, err)
	}
	return nil
}

// rollbackEntry removes an entry's delta from both balances.
func rollbackEntry(ctx context.Context, tx service.Transaction, txn *model.Transaction) error {
	if err := tx.ApplyBudgetDelta(ctx, txn.BudgetID, txn.Delta().Neg()); err != nil {
		return err
	}

	category, err := tx.FindCategoryByVendor(ctx, txn.VendorID)
	if err != nil {
		return err
	}

	_, err = rollbackCategoryDelta(ctx, tx, txn.BudgetID, category, txn.Delta().Neg())
	return err
}

// rollbackCategoryDelta backs a delta out of a category allocation. A
// budget edit can have dropped the allocation after the entry was posted;
// the entry still has to be editable and deletable, so a missing row
// skips the category move and reports allocated=false.
func rollbackCategoryDelta(ctx context.Context, tx service.Transaction, budgetID int, category *model.Category, delta decimal.Decimal) (allocated bool, err error) {
	err = tx.ApplyCategoryDelta(ctx, budgetID, category.ID, delta)
	if errors.Is(err, common.ErrNotFound) {
		slog.Warn("Category no longer allocated in budget, skipping category rollback",
			"category", category.Name,
			"budget_id", budgetID)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("category %q: %w", category.Name, err)
	}
	return true, nil
}
