package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Relton66/budgetapp/internal/common"
	"github.com/Relton66/budgetapp/internal/model"
)

// CreateMethod inserts a new payment method and returns its ID.
func (s *SQLiteStorage) CreateMethod(ctx context.Context, method *model.Method) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return s.createMethodTx(ctx, s.db, method)
}

func (s *SQLiteStorage) createMethodTx(ctx context.Context, q queryable, method *model.Method) (int, error) {
	if method == nil {
		return 0, fmt.Errorf("%w: method", ErrNilParameter)
	}
	if err := method.Validate(); err != nil {
		return 0, err
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO methods (method_type, active) VALUES (?, ?)`,
		method.Type, boolToInt(method.Active),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert method: %w", mapConstraintError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get method id: %w", err)
	}

	slog.Debug("created payment method", "id", id, "type", method.Type)
	return int(id), nil
}

// GetMethod returns a payment method by its ID.
func (s *SQLiteStorage) GetMethod(ctx context.Context, id int) (*model.Method, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getMethodTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getMethodTx(ctx context.Context, q queryable, id int) (*model.Method, error) {
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	var method model.Method
	var active int
	err := q.QueryRowContext(ctx,
		`SELECT id, method_type, active FROM methods WHERE id = ?`, id,
	).Scan(&method.ID, &method.Type, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("method %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query method: %w", err)
	}

	method.Active = active != 0
	return &method, nil
}

// FindMethodByType returns a payment method by its type name, matching
// case-insensitively.
func (s *SQLiteStorage) FindMethodByType(ctx context.Context, methodType string) (*model.Method, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(methodType, "methodType"); err != nil {
		return nil, err
	}
	return s.findMethodByTypeTx(ctx, s.db, methodType)
}

func (s *SQLiteStorage) findMethodByTypeTx(ctx context.Context, q queryable, methodType string) (*model.Method, error) {
	var method model.Method
	var active int
	err := q.QueryRowContext(ctx,
		`SELECT id, method_type, active FROM methods WHERE method_type = ?`, methodType,
	).Scan(&method.ID, &method.Type, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("method %q: %w", methodType, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query method: %w", err)
	}

	method.Active = active != 0
	return &method, nil
}

// GetMethods returns payment methods ordered by type, optionally only
// active ones.
func (s *SQLiteStorage) GetMethods(ctx context.Context, activeOnly bool) ([]model.Method, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getMethodsTx(ctx, s.db, activeOnly)
}

func (s *SQLiteStorage) getMethodsTx(ctx context.Context, q queryable, activeOnly bool) ([]model.Method, error) {
	query := `SELECT id, method_type, active FROM methods`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY method_type`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query methods: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var methods []model.Method
	for rows.Next() {
		var method model.Method
		var active int
		if err := rows.Scan(&method.ID, &method.Type, &active); err != nil {
			return nil, fmt.Errorf("failed to scan method: %w", err)
		}
		method.Active = active != 0
		methods = append(methods, method)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating methods: %w", err)
	}

	return methods, nil
}

// SetMethodActive toggles a payment method's active flag.
func (s *SQLiteStorage) SetMethodActive(ctx context.Context, id int, active bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.setMethodActiveTx(ctx, s.db, id, active)
}

func (s *SQLiteStorage) setMethodActiveTx(ctx context.Context, q queryable, id int, active bool) error {
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx,
		`UPDATE methods SET active = ? WHERE id = ?`, boolToInt(active), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update method active flag: %w", err)
	}

	slog.Debug("updated payment method", "id", id, "active", active)
	return requireRowAffected(result, "method", id)
}
