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

// parseStoredAmount converts a TEXT column back to an exact decimal.
func parseStoredAmount(s, column string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt %s value %q: %w", column, s, err)
	}
	return d, nil
}

// CreateBudget inserts a new budget and returns its ID.
func (s *SQLiteStorage) CreateBudget(ctx context.Context, budget *model.Budget) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return s.createBudgetTx(ctx, s.db, budget)
}

func (s *SQLiteStorage) createBudgetTx(ctx context.Context, q queryable, budget *model.Budget) (int, error) {
	if budget == nil {
		return 0, fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if err := budget.Validate(); err != nil {
		return 0, err
	}

	query := `
		INSERT INTO budgets (name, start_date, end_date, start_balance, current_balance, is_current)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := q.ExecContext(ctx, query,
		budget.Name, budget.StartDate, budget.EndDate,
		budget.StartBalance.String(), budget.CurrentBalance.String(),
		boolToInt(budget.IsCurrent),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert budget: %w", mapConstraintError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get budget id: %w", err)
	}

	slog.Debug("created budget", "id", id, "name", budget.Name)
	return int(id), nil
}

// GetBudget returns a budget by its ID.
func (s *SQLiteStorage) GetBudget(ctx context.Context, id int) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getBudgetTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getBudgetTx(ctx context.Context, q queryable, id int) (*model.Budget, error) {
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, start_date, end_date, start_balance, current_balance, is_current
		FROM budgets
		WHERE id = ?`

	budget, err := scanBudget(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget %d: %w", id, common.ErrNotFound)
	}
	return budget, err
}

// FindBudgetByName returns the budget with the given name, matching
// case-insensitively.
func (s *SQLiteStorage) FindBudgetByName(ctx context.Context, name string) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.findBudgetByNameTx(ctx, s.db, name)
}

func (s *SQLiteStorage) findBudgetByNameTx(ctx context.Context, q queryable, name string) (*model.Budget, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, start_date, end_date, start_balance, current_balance, is_current
		FROM budgets
		WHERE name = ?`

	budget, err := scanBudget(q.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget %q: %w", name, common.ErrNotFound)
	}
	return budget, err
}

// GetBudgets returns all budgets, newest period first.
func (s *SQLiteStorage) GetBudgets(ctx context.Context) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getBudgetsTx(ctx, s.db)
}

func (s *SQLiteStorage) getBudgetsTx(ctx context.Context, q queryable) ([]model.Budget, error) {
	query := `
		SELECT id, name, start_date, end_date, start_balance, current_balance, is_current
		FROM budgets
		ORDER BY start_date DESC, name`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		budget, scanErr := scanBudgetRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		budgets = append(budgets, *budget)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}

	return budgets, nil
}

// GetCurrentBudget returns the budget marked current, or ErrNotFound when
// none is set.
func (s *SQLiteStorage) GetCurrentBudget(ctx context.Context) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCurrentBudgetTx(ctx, s.db)
}

func (s *SQLiteStorage) getCurrentBudgetTx(ctx context.Context, q queryable) (*model.Budget, error) {
	query := `
		SELECT id, name, start_date, end_date, start_balance, current_balance, is_current
		FROM budgets
		WHERE is_current = 1`

	budget, err := scanBudget(q.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("current budget: %w", common.ErrNotFound)
	}
	return budget, err
}

// UpdateBudget persists all mutable fields of a budget.
func (s *SQLiteStorage) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.updateBudgetTx(ctx, s.db, budget)
}

func (s *SQLiteStorage) updateBudgetTx(ctx context.Context, q queryable, budget *model.Budget) error {
	if budget == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if err := validateID(budget.ID, "budget.ID"); err != nil {
		return err
	}
	if err := budget.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE budgets
		SET name = ?, start_date = ?, end_date = ?, start_balance = ?, current_balance = ?
		WHERE id = ?`

	result, err := q.ExecContext(ctx, query,
		budget.Name, budget.StartDate, budget.EndDate,
		budget.StartBalance.String(), budget.CurrentBalance.String(),
		budget.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", mapConstraintError(err))
	}

	return requireRowAffected(result, "budget", budget.ID)
}

// ApplyBudgetDelta adjusts the budget's running balance by a signed amount.
// The read and write happen on the same connection, so callers running
// inside a transaction get an atomic adjustment.
func (s *SQLiteStorage) ApplyBudgetDelta(ctx context.Context, id int, delta decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.applyBudgetDeltaTx(ctx, s.db, id, delta)
}

func (s *SQLiteStorage) applyBudgetDeltaTx(ctx context.Context, q queryable, id int, delta decimal.Decimal) error {
	if err := validateID(id, "id"); err != nil {
		return err
	}

	var raw string
	err := q.QueryRowContext(ctx, `SELECT current_balance FROM budgets WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("budget %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read budget balance: %w", err)
	}

	current, err := parseStoredAmount(raw, "current_balance")
	if err != nil {
		return err
	}

	if _, err := q.ExecContext(ctx,
		`UPDATE budgets SET current_balance = ? WHERE id = ?`,
		current.Add(delta).String(), id,
	); err != nil {
		return fmt.Errorf("failed to update budget balance: %w", err)
	}

	return nil
}

// ClearCurrentBudget removes the current flag from every budget.
func (s *SQLiteStorage) ClearCurrentBudget(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.clearCurrentBudgetTx(ctx, s.db)
}

func (s *SQLiteStorage) clearCurrentBudgetTx(ctx context.Context, q queryable) error {
	if _, err := q.ExecContext(ctx, `UPDATE budgets SET is_current = 0 WHERE is_current = 1`); err != nil {
		return fmt.Errorf("failed to clear current budget: %w", err)
	}
	return nil
}

// SetCurrentBudget marks one budget as current. Callers clear the previous
// flag first so at most one budget carries it.
func (s *SQLiteStorage) SetCurrentBudget(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.setCurrentBudgetTx(ctx, s.db, id)
}

func (s *SQLiteStorage) setCurrentBudgetTx(ctx context.Context, q queryable, id int) error {
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `UPDATE budgets SET is_current = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to set current budget: %w", err)
	}
	return requireRowAffected(result, "budget", id)
}

// DeleteBudget removes a budget along with its ledger entries and
// category allocations.
func (s *SQLiteStorage) DeleteBudget(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.deleteBudgetTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteBudgetTx(ctx context.Context, q queryable, id int) error {
	if err := validateID(id, "id"); err != nil {
		return err
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE budget_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete budget transactions: %w", err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM category_budgets WHERE budget_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete budget allocations: %w", err)
	}

	result, err := q.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return requireRowAffected(result, "budget", id)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBudget(row *sql.Row) (*model.Budget, error) {
	return scanBudgetRow(row)
}

func scanBudgetRow(row rowScanner) (*model.Budget, error) {
	var budget model.Budget
	var startRaw, currentRaw string
	var isCurrent int

	if err := row.Scan(
		&budget.ID, &budget.Name, &budget.StartDate, &budget.EndDate,
		&startRaw, &currentRaw, &isCurrent,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan budget: %w", err)
	}

	var err error
	if budget.StartBalance, err = parseStoredAmount(startRaw, "start_balance"); err != nil {
		return nil, err
	}
	if budget.CurrentBalance, err = parseStoredAmount(currentRaw, "current_balance"); err != nil {
		return nil, err
	}
	budget.IsCurrent = isCurrent != 0

	return &budget, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// requireRowAffected turns a zero-row UPDATE or DELETE into ErrNotFound.
func requireRowAffected(result sql.Result, entity string, id int) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, common.ErrNotFound)
	}
	return nil
}
