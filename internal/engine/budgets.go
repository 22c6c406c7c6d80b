package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Relton66/budgetapp/internal/common"
	"github.com/Relton66/budgetapp/internal/model"
	"github.com/Relton66/budgetapp/internal/service"
)

// SaveBudget creates or edits a budget together with its category
// allocations in one transaction. A zero budget ID means create; on create,
// recurringSourceID can name a budget whose recurring entries are cloned
// into the new period, dated one month later. Allocations naming a
// category that does not exist yet create it as part of the save.
//
// On edit, the budget's running balance is left alone: entries already
// posted have moved it, and re-deriving it here would double count them.
// New allocations open with their full amount, resized allocations keep
// their recorded spending, and allocations left out of the list are
// dropped along with whatever spending they recorded.
func (e *ReconciliationEngine) SaveBudget(ctx context.Context, budget *model.Budget, allocations []model.CategoryBudget, recurringSourceID int) (int, error) {
	if err := budget.Validate(); err != nil {
		return 0, err
	}
	if len(allocations) == 0 {
		return 0, common.ErrEmptyAllocations
	}

	total := decimal.Zero
	for _, cb := range allocations {
		total = total.Add(cb.StartBalance)
	}
	if total.GreaterThan(budget.StartBalance) {
		return 0, common.ErrAllocationsExceedBalance
	}

	var id int
	err := e.withTx(ctx, func(tx service.Transaction) error {
		if err := resolveAllocationCategories(ctx, tx, allocations); err != nil {
			return err
		}

		if budget.ID == 0 {
			createdID, err := e.createBudget(ctx, tx, budget, allocations, recurringSourceID)
			if err != nil {
				return err
			}
			id = createdID
			return nil
		}

		id = budget.ID
		return e.editBudget(ctx, tx, budget, allocations)
	})
	if err != nil {
		return 0, err
	}

	slog.Info("Saved budget", "id", id, "name", budget.Name, "allocations", len(allocations))
	return id, nil
}

func (e *ReconciliationEngine) createBudget(ctx context.Context, tx service.Transaction, budget *model.Budget, allocations []model.CategoryBudget, recurringSourceID int) (int, error) {
	budget.CurrentBalance = budget.StartBalance

	id, err := tx.CreateBudget(ctx, budget)
	if err != nil {
		return 0, err
	}

	for i := range allocations {
		allocations[i].BudgetID = id
		allocations[i].CurrentBalance = allocations[i].StartBalance
		if err := tx.CreateCategoryBudget(ctx, &allocations[i]); err != nil {
			return 0, err
		}
	}

	if recurringSourceID > 0 {
		if err := e.seedRecurring(ctx, tx, recurringSourceID, id); err != nil {
			return 0, err
		}
	}

	return id, nil
}

// resolveAllocationCategories fills in the category ID for allocation rows
// that arrived with only a category name, creating unknown categories on
// the spot inside the budget save's transaction.
func resolveAllocationCategories(ctx context.Context, tx service.Transaction, allocations []model.CategoryBudget) error {
	for i := range allocations {
		cb := &allocations[i]
		if cb.CategoryID != 0 {
			continue
		}

		category, err := ensureCategory(ctx, tx, cb.CategoryName)
		if err != nil {
			return err
		}
		cb.CategoryID = category.ID
	}
	return nil
}

func (e *ReconciliationEngine) editBudget(ctx context.Context, tx service.Transaction, budget *model.Budget, allocations []model.CategoryBudget) error {
	existing, err := tx.GetBudget(ctx, budget.ID)
	if err != nil {
		return err
	}

	existing.Name = budget.Name
	existing.StartDate = budget.StartDate
	existing.EndDate = budget.EndDate
	existing.StartBalance = budget.StartBalance
	if err := tx.UpdateBudget(ctx, existing); err != nil {
		return err
	}

	current, err := tx.GetCategoryBudgets(ctx, budget.ID)
	if err != nil {
		return err
	}
	byCategory := make(map[int]model.CategoryBudget, len(current))
	for _, cb := range current {
		byCategory[cb.CategoryID] = cb
	}

	for i := range allocations {
		desired := &allocations[i]
		desired.BudgetID = budget.ID

		stored, ok := byCategory[desired.CategoryID]
		if !ok {
			desired.CurrentBalance = desired.StartBalance
			if err := tx.CreateCategoryBudget(ctx, desired); err != nil {
				return err
			}
			continue
		}
		delete(byCategory, desired.CategoryID)

		if !stored.StartBalance.Equal(desired.StartBalance) {
			if err := tx.SetCategoryStartBalance(ctx, budget.ID, desired.CategoryID, desired.StartBalance); err != nil {
				return err
			}
		}
	}

	for categoryID := range byCategory {
		if err := tx.DeleteCategoryBudget(ctx, budget.ID, categoryID); err != nil {
			return err
		}
	}

	return nil
}

// seedRecurring clones the source budget's recurring entries into the new
// budget, one month later, through the normal posting path. A cloned entry
// whose category has no allocation in the new budget still moves the
// budget balance; the category delta is skipped.
func (e *ReconciliationEngine) seedRecurring(ctx context.Context, tx service.Transaction, sourceID, targetID int) error {
	recurring, err := tx.GetRecurringTransactions(ctx, sourceID)
	if err != nil {
		return err
	}

	for _, src := range recurring {
		clone := src
		clone.ID = 0
		clone.BudgetID = targetID
		clone.Date = src.Date.AddDate(0, 1, 0)

		if _, err := tx.CreateTransaction(ctx, &clone); err != nil {
			return err
		}
		if err := tx.ApplyBudgetDelta(ctx, targetID, clone.Delta()); err != nil {
			return err
		}

		category, err := tx.FindCategoryByVendor(ctx, clone.VendorID)
		if err != nil {
			return err
		}
		if _, err := tx.GetCategoryBudget(ctx, targetID, category.ID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				slog.Warn("Recurring entry category not allocated in new budget",
					"category", category.Name,
					"vendor", clone.VendorName,
					"budget_id", targetID)
				continue
			}
			return err
		}
		if err := tx.ApplyCategoryDelta(ctx, targetID, category.ID, clone.Delta()); err != nil {
			return err
		}
	}

	if len(recurring) > 0 {
		slog.Info("Seeded recurring entries", "count", len(recurring), "budget_id", targetID)
	}
	return nil
}

// SetCurrentBudget moves the current flag to the given budget. The clear
// and the set happen in one transaction so the flag never rests on two
// budgets.
func (e *ReconciliationEngine) SetCurrentBudget(ctx context.Context, id int) error {
	return e.withTx(ctx, func(tx service.Transaction) error {
		if err := tx.ClearCurrentBudget(ctx); err != nil {
			return err
		}
		return tx.SetCurrentBudget(ctx, id)
	})
}

// DeleteBudget removes a budget with its ledger entries and allocations.
func (e *ReconciliationEngine) DeleteBudget(ctx context.Context, id int) error {
	return e.withTx(ctx, func(tx service.Transaction) error {
		return tx.DeleteBudget(ctx, id)
	})
}
