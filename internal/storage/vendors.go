package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Relton66/budgetapp/internal/common"
	"github.com/Relton66/budgetapp/internal/model"
)

const vendorCacheTTL = 5 * time.Minute

// CreateVendor inserts a new vendor and returns its ID.
func (s *SQLiteStorage) CreateVendor(ctx context.Context, vendor *model.Vendor) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	id, err := s.createVendorTx(ctx, s.db, vendor)
	if err == nil {
		s.invalidateVendorCache()
	}
	return id, err
}

func (s *SQLiteStorage) createVendorTx(ctx context.Context, q queryable, vendor *model.Vendor) (int, error) {
	if vendor == nil {
		return 0, fmt.Errorf("%w: vendor", ErrNilParameter)
	}
	if err := vendor.Validate(); err != nil {
		return 0, err
	}
	if err := validateID(vendor.CategoryID, "vendor.CategoryID"); err != nil {
		return 0, err
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO vendors (name, category_id, active) VALUES (?, ?, ?)`,
		vendor.Name, vendor.CategoryID, boolToInt(vendor.Active),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert vendor: %w", mapConstraintError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get vendor id: %w", err)
	}

	slog.Debug("created vendor", "id", id, "name", vendor.Name, "category_id", vendor.CategoryID)
	return int(id), nil
}

// GetVendor returns a vendor by its ID.
func (s *SQLiteStorage) GetVendor(ctx context.Context, id int) (*model.Vendor, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getVendorTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getVendorTx(ctx context.Context, q queryable, id int) (*model.Vendor, error) {
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	var vendor model.Vendor
	var active int
	err := q.QueryRowContext(ctx,
		`SELECT id, name, category_id, active FROM vendors WHERE id = ?`, id,
	).Scan(&vendor.ID, &vendor.Name, &vendor.CategoryID, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vendor %d: %w", id, common.ErrVendorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vendor: %w", err)
	}

	vendor.Active = active != 0
	return &vendor, nil
}

// FindVendorByName returns a vendor by name, matching case-insensitively.
// Lookups outside a transaction are served from a short-lived cache since
// every ledger entry resolves its vendor this way.
func (s *SQLiteStorage) FindVendorByName(ctx context.Context, name string) (*model.Vendor, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	key := strings.ToLower(name)

	s.cacheMutex.RLock()
	if cached, ok := s.vendorCache[key]; ok && time.Now().Before(s.cacheExpiry) {
		s.cacheMutex.RUnlock()
		copied := *cached
		return &copied, nil
	}
	s.cacheMutex.RUnlock()

	vendor, err := s.findVendorByNameTx(ctx, s.db, name)
	if err != nil {
		return nil, err
	}

	s.cacheMutex.Lock()
	if time.Now().After(s.cacheExpiry) {
		s.vendorCache = make(map[string]*model.Vendor)
		s.cacheExpiry = time.Now().Add(vendorCacheTTL)
	}
	s.vendorCache[key] = vendor
	s.cacheMutex.Unlock()

	copied := *vendor
	return &copied, nil
}

func (s *SQLiteStorage) findVendorByNameTx(ctx context.Context, q queryable, name string) (*model.Vendor, error) {
	var vendor model.Vendor
	var active int
	err := q.QueryRowContext(ctx,
		`SELECT id, name, category_id, active FROM vendors WHERE name = ?`, name,
	).Scan(&vendor.ID, &vendor.Name, &vendor.CategoryID, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vendor %q: %w", name, common.ErrVendorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vendor: %w", err)
	}

	vendor.Active = active != 0
	return &vendor, nil
}

// GetVendors returns vendors ordered by name, optionally only active ones.
func (s *SQLiteStorage) GetVendors(ctx context.Context, activeOnly bool) ([]model.Vendor, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getVendorsTx(ctx, s.db, activeOnly)
}

func (s *SQLiteStorage) getVendorsTx(ctx context.Context, q queryable, activeOnly bool) ([]model.Vendor, error) {
	query := `SELECT id, name, category_id, active FROM vendors`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var vendors []model.Vendor
	for rows.Next() {
		var vendor model.Vendor
		var active int
		if err := rows.Scan(&vendor.ID, &vendor.Name, &vendor.CategoryID, &active); err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendor.Active = active != 0
		vendors = append(vendors, vendor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vendors: %w", err)
	}

	return vendors, nil
}

// UpdateVendor persists a vendor's name and category assignment.
func (s *SQLiteStorage) UpdateVendor(ctx context.Context, vendor *model.Vendor) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	err := s.updateVendorTx(ctx, s.db, vendor)
	if err == nil {
		s.invalidateVendorCache()
	}
	return err
}

func (s *SQLiteStorage) updateVendorTx(ctx context.Context, q queryable, vendor *model.Vendor) error {
	if vendor == nil {
		return fmt.Errorf("%w: vendor", ErrNilParameter)
	}
	if err := validateID(vendor.ID, "vendor.ID"); err != nil {
		return err
	}
	if err := vendor.Validate(); err != nil {
		return err
	}
	if err := validateID(vendor.CategoryID, "vendor.CategoryID"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx,
		`UPDATE vendors SET name = ?, category_id = ? WHERE id = ?`,
		vendor.Name, vendor.CategoryID, vendor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update vendor: %w", mapConstraintError(err))
	}
	return requireRowAffected(result, "vendor", vendor.ID)
}

// SetVendorActive toggles a vendor's active flag. Deactivation is the
// logical delete, history stays intact.
func (s *SQLiteStorage) SetVendorActive(ctx context.Context, id int, active bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	err := s.setVendorActiveTx(ctx, s.db, id, active)
	if err == nil {
		s.invalidateVendorCache()
	}
	return err
}

func (s *SQLiteStorage) setVendorActiveTx(ctx context.Context, q queryable, id int, active bool) error {
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx,
		`UPDATE vendors SET active = ? WHERE id = ?`, boolToInt(active), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update vendor active flag: %w", err)
	}
	return requireRowAffected(result, "vendor", id)
}

// FindCategoryByVendor resolves the category a vendor's entries count
// against. Active status is ignored so old entries still reconcile.
func (s *SQLiteStorage) FindCategoryByVendor(ctx context.Context, vendorID int) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.findCategoryByVendorTx(ctx, s.db, vendorID)
}

func (s *SQLiteStorage) findCategoryByVendorTx(ctx context.Context, q queryable, vendorID int) (*model.Category, error) {
	if err := validateID(vendorID, "vendorID"); err != nil {
		return nil, err
	}

	query := `
		SELECT c.id, c.name
		FROM categories c
		JOIN vendors v ON v.category_id = c.id
		WHERE v.id = ?`

	var cat model.Category
	err := q.QueryRowContext(ctx, query, vendorID).Scan(&cat.ID, &cat.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vendor %d: %w", vendorID, common.ErrVendorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vendor category: %w", err)
	}

	return &cat, nil
}

func (s *SQLiteStorage) invalidateVendorCache() {
	s.cacheMutex.Lock()
	s.vendorCache = make(map[string]*model.Vendor)
	s.cacheExpiry = time.Time{}
	s.cacheMutex.Unlock()
}
