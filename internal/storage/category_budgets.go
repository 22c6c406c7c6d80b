package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Relton66/budgetapp/internal/common"
	"github.com/Relton66/budgetapp/internal/model"
)

// CreateCategoryBudget inserts a category allocation for one budget.
func (s *SQLiteStorage) CreateCategoryBudget(ctx context.Context, cb *model.CategoryBudget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.createCategoryBudgetTx(ctx, s.db, cb)
}

func (s *SQLiteStorage) createCategoryBudgetTx(ctx context.Context, q queryable, cb *model.CategoryBudget) error {
	if cb == nil {
		return fmt.Errorf("%w: categoryBudget", ErrNilParameter)
	}
	if err := validateID(cb.BudgetID, "cb.BudgetID"); err != nil {
		return err
	}
	if err := validateID(cb.CategoryID, "cb.CategoryID"); err != nil {
		return err
	}

	query := `
		INSERT INTO category_budgets (budget_id, category_id, start_balance, current_balance)
		VALUES (?, ?, ?, ?)`

	if _, err := q.ExecContext(ctx, query,
		cb.BudgetID, cb.CategoryID,
		cb.StartBalance.String(), cb.CurrentBalance.String(),
	); err != nil {
		return fmt.Errorf("failed to insert category allocation: %w", mapConstraintError(err))
	}

	slog.Debug("created category allocation",
		"budget_id", cb.BudgetID,
		"category_id", cb.CategoryID,
		"start_balance", cb.StartBalance)
	return nil
}

// GetCategoryBudget returns one budget's allocation for a category.
func (s *SQLiteStorage) GetCategoryBudget(ctx context.Context, budgetID, categoryID int) (*model.CategoryBudget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoryBudgetTx(ctx, s.db, budgetID, categoryID)
}

func (s *SQLiteStorage) getCategoryBudgetTx(ctx context.Context, q queryable, budgetID, categoryID int) (*model.CategoryBudget, error) {
	if err := validateID(budgetID, "budgetID"); err != nil {
		return nil, err
	}
	if err := validateID(categoryID, "categoryID"); err != nil {
		return nil, err
	}

	query := `
		SELECT cb.budget_id, cb.category_id, c.name, cb.start_balance, cb.current_balance
		FROM category_budgets cb
		JOIN categories c ON c.id = cb.category_id
		WHERE cb.budget_id = ? AND cb.category_id = ?`

	cb, err := scanCategoryBudget(q.QueryRowContext(ctx, query, budgetID, categoryID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("allocation for category %d in budget %d: %w", categoryID, budgetID, common.ErrNotFound)
	}
	return cb, err
}

// GetCategoryBudgets returns all of a budget's allocations ordered by
// category name.
func (s *SQLiteStorage) GetCategoryBudgets(ctx context.Context, budgetID int) ([]model.CategoryBudget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoryBudgetsTx(ctx, s.db, budgetID)
}

func (s *SQLiteStorage) getCategoryBudgetsTx(ctx context.Context, q queryable, budgetID int) ([]model.CategoryBudget, error) {
	if err := validateID(budgetID, "budgetID"); err != nil {
		return nil, err
	}

	query := `
		SELECT cb.budget_id, cb.category_id, c.name, cb.start_balance, cb.current_balance
		FROM category_budgets cb
		JOIN categories c ON c.id = cb.category_id
		WHERE cb.budget_id = ?
		ORDER BY c.name`

	rows, err := q.QueryContext(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category allocations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var allocations []model.CategoryBudget
	for rows.Next() {
		cb, scanErr := scanCategoryBudget(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		allocations = append(allocations, *cb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category allocations: %w", err)
	}

	return allocations, nil
}

// ApplyCategoryDelta adjusts an allocation's remaining balance by a signed
// amount.
func (s *SQLiteStorage) ApplyCategoryDelta(ctx context.Context, budgetID, categoryID int, delta decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.applyCategoryDeltaTx(ctx, s.db, budgetID, categoryID, delta)
}

func (s *SQLiteStorage) applyCategoryDeltaTx(ctx context.Context, q queryable, budgetID, categoryID int, delta decimal.Decimal) error {
	if err := validateID(budgetID, "budgetID"); err != nil {
		return err
	}
	if err := validateID(categoryID, "categoryID"); err != nil {
		return err
	}

	var raw string
	err := q.QueryRowContext(ctx,
		`SELECT current_balance FROM category_budgets WHERE budget_id = ? AND category_id = ?`,
		budgetID, categoryID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("allocation for category %d in budget %d: %w", categoryID, budgetID, common.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read allocation balance: %w", err)
	}

	current, err := parseStoredAmount(raw, "current_balance")
	if err != nil {
		return err
	}

	if _, err := q.ExecContext(ctx,
		`UPDATE category_budgets SET current_balance = ? WHERE budget_id = ? AND category_id = ?`,
		current.Add(delta).String(), budgetID, categoryID,
	); err != nil {
		return fmt.Errorf("failed to update allocation balance: %w", err)
	}

	return nil
}

// SetCategoryStartBalance resizes an allocation. The remaining balance moves
// by the same amount, so spending recorded against the old allocation is
// preserved.
func (s *SQLiteStorage) SetCategoryStartBalance(ctx context.Context, budgetID, categoryID int, start decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.setCategoryStartBalanceTx(ctx, s.db, budgetID, categoryID, start)
}

func (s *SQLiteStorage) setCategoryStartBalanceTx(ctx context.Context, q queryable, budgetID, categoryID int, start decimal.Decimal) error {
	if err := validateID(budgetID, "budgetID"); err != nil {
		return err
	}
	if err := validateID(categoryID, "categoryID"); err != nil {
		return err
	}

	cb, err := s.getCategoryBudgetTx(ctx, q, budgetID, categoryID)
	if err != nil {
		return err
	}

	delta := start.Sub(cb.StartBalance)

	if _, err := q.ExecContext(ctx,
		`UPDATE category_budgets SET start_balance = ?, current_balance = ? WHERE budget_id = ? AND category_id = ?`,
		start.String(), cb.CurrentBalance.Add(delta).String(), budgetID, categoryID,
	); err != nil {
		return fmt.Errorf("failed to resize allocation: %w", err)
	}

	return nil
}

// DeleteCategoryBudget removes an allocation from a budget.
func (s *SQLiteStorage) DeleteCategoryBudget(ctx context.Context, budgetID, categoryID int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.deleteCategoryBudgetTx(ctx, s.db, budgetID, categoryID)
}

func (s *SQLiteStorage) deleteCategoryBudgetTx(ctx context.Context, q queryable, budgetID, categoryID int) error {
	if err := validateID(budgetID, "budgetID"); err != nil {
		return err
	}
	if err := validateID(categoryID, "categoryID"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx,
		`DELETE FROM category_budgets WHERE budget_id = ? AND category_id = ?`,
		budgetID, categoryID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete allocation: %w", err)
	}
	return requireRowAffected(result, "allocation", categoryID)
}

func scanCategoryBudget(row rowScanner) (*model.CategoryBudget, error) {
	var cb model.CategoryBudget
	var startRaw, currentRaw string

	if err := row.Scan(&cb.BudgetID, &cb.CategoryID, &cb.CategoryName, &startRaw, &currentRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan category allocation: %w", err)
	}

	var err error
	if cb.StartBalance, err = parseStoredAmount(startRaw, "start_balance"); err != nil {
		return nil, err
	}
	if cb.CurrentBalance, err = parseStoredAmount(currentRaw, "current_balance"); err != nil {
		return nil, err
	}

	return &cb, nil
}
