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

// CreateCategory inserts a new shared category and returns its ID.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return s.createCategoryTx(ctx, s.db, category)
}

func (s *SQLiteStorage) createCategoryTx(ctx context.Context, q queryable, category *model.Category) (int, error) {
	if category == nil {
		return 0, fmt.Errorf("%w: category", ErrNilParameter)
	}
	if err := category.Validate(); err != nil {
		return 0, err
	}

	result, err := q.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, category.Name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert category: %w", mapConstraintError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get category id: %w", err)
	}

	slog.Debug("created category", "id", id, "name", category.Name)
	return int(id), nil
}

// GetCategory returns a category by its ID.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id int) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoryTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getCategoryTx(ctx context.Context, q queryable, id int) (*model.Category, error) {
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	var cat model.Category
	err := q.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = ?`, id).
		Scan(&cat.ID, &cat.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

// FindCategoryByName returns a category by name, matching case-insensitively.
func (s *SQLiteStorage) FindCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.findCategoryByNameTx(ctx, s.db, name)
}

func (s *SQLiteStorage) findCategoryByNameTx(ctx context.Context, q queryable, name string) (*model.Category, error) {
	var cat model.Category
	err := q.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE name = ?`, name).
		Scan(&cat.ID, &cat.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %q: %w", name, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

// GetCategories returns all categories ordered by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoriesTx(ctx, s.db)
}

func (s *SQLiteStorage) getCategoriesTx(ctx context.Context, q queryable) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}
