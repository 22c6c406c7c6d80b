package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Relton66/budgetapp/internal/common"
	"github.com/Relton66/budgetapp/internal/model"
	"github.com/Relton66/budgetapp/internal/service"
)

const transactionColumns = `
	t.id, t.budget_id, t.vendor_id, t.method_id, t.amount, t.income,
	t.recurring, t.trans_date, t.comments, v.name, c.name, m.method_type`

const transactionJoins = `
	FROM transactions t
	JOIN vendors v ON v.id = t.vendor_id
	JOIN categories c ON c.id = v.category_id
	LEFT JOIN methods m ON m.id = t.method_id`

// CreateTransaction inserts a ledger entry and returns its ID. Balance
// reconciliation is the engine's job; this only records the row.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return s.createTransactionTx(ctx, s.db, txn)
}

func (s *SQLiteStorage) createTransactionTx(ctx context.Context, q queryable, txn *model.Transaction) (int, error) {
	if txn == nil {
		return 0, fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if err := txn.Validate(); err != nil {
		return 0, err
	}
	if err := validateID(txn.BudgetID, "txn.BudgetID"); err != nil {
		return 0, err
	}
	if err := validateID(txn.VendorID, "txn.VendorID"); err != nil {
		return 0, err
	}

	query := `
		INSERT INTO transactions (budget_id, vendor_id, method_id, amount, income, recurring, trans_date, comments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := q.ExecContext(ctx, query,
		txn.BudgetID, txn.VendorID, nullableID(txn.MethodID),
		txn.Amount.String(), boolToInt(txn.Income), boolToInt(txn.Recurring),
		txn.Date, txn.Comments,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction id: %w", err)
	}

	slog.Debug("created transaction",
		"id", id,
		"budget_id", txn.BudgetID,
		"vendor_id", txn.VendorID,
		"amount", txn.Amount,
		"income", txn.Income)
	return int(id), nil
}

// GetTransaction returns a ledger entry by its ID.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id int) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getTransactionTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getTransactionTx(ctx context.Context, q queryable, id int) (*model.Transaction, error) {
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	query := `SELECT` + transactionColumns + transactionJoins + ` WHERE t.id = ?`

	txn, err := scanTransaction(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}
	return txn, err
}

// GetTransactions returns all of a budget's ledger entries, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, budgetID int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getTransactionsTx(ctx, s.db, budgetID)
}

func (s *SQLiteStorage) getTransactionsTx(ctx context.Context, q queryable, budgetID int) ([]model.Transaction, error) {
	if err := validateID(budgetID, "budgetID"); err != nil {
		return nil, err
	}

	query := `SELECT` + transactionColumns + transactionJoins +
		` WHERE t.budget_id = ? ORDER BY t.trans_date DESC, t.id DESC`

	return s.queryTransactions(ctx, q, query, budgetID)
}

// GetRecurringTransactions returns a budget's entries flagged recurring.
func (s *SQLiteStorage) GetRecurringTransactions(ctx context.Context, budgetID int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getRecurringTransactionsTx(ctx, s.db, budgetID)
}

func (s *SQLiteStorage) getRecurringTransactionsTx(ctx context.Context, q queryable, budgetID int) ([]model.Transaction, error) {
	if err := validateID(budgetID, "budgetID"); err != nil {
		return nil, err
	}

	query := `SELECT` + transactionColumns + transactionJoins +
		` WHERE t.budget_id = ? AND t.recurring = 1 ORDER BY t.trans_date, t.id`

	return s.queryTransactions(ctx, q, query, budgetID)
}

// SearchTransactions returns a budget's entries matching every set filter
// field.
func (s *SQLiteStorage) SearchTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.searchTransactionsTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) searchTransactionsTx(ctx context.Context, q queryable, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateID(filter.BudgetID, "filter.BudgetID"); err != nil {
		return nil, err
	}

	var conditions []string
	var args []any

	conditions = append(conditions, "t.budget_id = ?")
	args = append(args, filter.BudgetID)

	if filter.VendorID != nil {
		conditions = append(conditions, "t.vendor_id = ?")
		args = append(args, *filter.VendorID)
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, "v.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.MethodID != nil {
		conditions = append(conditions, "t.method_id = ?")
		args = append(args, *filter.MethodID)
	}
	if filter.Income != nil {
		conditions = append(conditions, "t.income = ?")
		args = append(args, boolToInt(*filter.Income))
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, "t.trans_date >= ?")
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "t.trans_date <= ?")
		args = append(args, *filter.DateTo)
	}

	query := `SELECT` + transactionColumns + transactionJoins +
		` WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY t.trans_date DESC, t.id DESC`

	return s.queryTransactions(ctx, q, query, args...)
}

// UpdateTransaction persists a ledger entry's mutable fields.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.updateTransactionTx(ctx, s.db, txn)
}

func (s *SQLiteStorage) updateTransactionTx(ctx context.Context, q queryable, txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if err := validateID(txn.ID, "txn.ID"); err != nil {
		return err
	}
	if err := txn.Validate(); err != nil {
		return err
	}
	if err := validateID(txn.VendorID, "txn.VendorID"); err != nil {
		return err
	}

	query := `
		UPDATE transactions
		SET vendor_id = ?, method_id = ?, amount = ?, income = ?, recurring = ?, trans_date = ?, comments = ?
		WHERE id = ?`

	result, err := q.ExecContext(ctx, query,
		txn.VendorID, nullableID(txn.MethodID),
		txn.Amount.String(), boolToInt(txn.Income), boolToInt(txn.Recurring),
		txn.Date, txn.Comments, txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return requireRowAffected(result, "transaction", txn.ID)
}

// DeleteTransaction removes a ledger entry row.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.deleteTransactionTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteTransactionTx(ctx context.Context, q queryable, id int) error {
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireRowAffected(result, "transaction", id)
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, q queryable, query string, args ...any) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	var methodID sql.NullInt64
	var methodType sql.NullString
	var amountRaw string
	var income, recurring int

	if err := row.Scan(
		&txn.ID, &txn.BudgetID, &txn.VendorID, &methodID, &amountRaw,
		&income, &recurring, &txn.Date, &txn.Comments,
		&txn.VendorName, &txn.CategoryName, &methodType,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	var err error
	if txn.Amount, err = parseStoredAmount(amountRaw, "amount"); err != nil {
		return nil, err
	}
	if methodID.Valid {
		txn.MethodID = int(methodID.Int64)
	}
	if methodType.Valid {
		txn.MethodType = methodType.String
	}
	txn.Income = income != 0
	txn.Recurring = recurring != 0

	return &txn, nil
}

// nullableID stores zero as NULL for optional foreign keys.
func nullableID(id int) any {
	if id <= 0 {
		return nil
	}
	return id
}
