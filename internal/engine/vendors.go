package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Relton66/budgetapp/internal/common"
	"github.com/Relton66/budgetapp/internal/model"
	"github.com/Relton66/budgetapp/internal/service"
)

// AddCategory creates a shared category available to every budget.
func (e *ReconciliationEngine) AddCategory(ctx context.Context, name string) (int, error) {
	category := &model.Category{Name: name}
	id, err := e.storage.CreateCategory(ctx, category)
	if err != nil {
		return 0, err
	}

	slog.Info("Added category", "id", id, "name", name)
	return id, nil
}

// ensureCategory resolves a category by name, creating it when it does not
// exist yet. Runs inside the caller's transaction, so a failed enclosing
// operation never leaves a stray category behind.
func ensureCategory(ctx context.Context, tx service.Transaction, name string) (*model.Category, error) {
	category, err := tx.FindCategoryByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	created := &model.Category{Name: name}
	id, err := tx.CreateCategory(ctx, created)
	if err != nil {
		return nil, err
	}
	created.ID = id

	slog.Info("Created category", "id", id, "name", name)
	return created, nil
}

// AddVendor creates an active vendor assigned to a category, creating the
// category when the name is new.
func (e *ReconciliationEngine) AddVendor(ctx context.Context, name, categoryName string) (int, error) {
	var id int
	err := e.withTx(ctx, func(tx service.Transaction) error {
		category, err := ensureCategory(ctx, tx, categoryName)
		if err != nil {
			return err
		}

		vendor := &model.Vendor{Name: name, CategoryID: category.ID, Active: true}
		vendorID, err := tx.CreateVendor(ctx, vendor)
		if err != nil {
			return err
		}
		id = vendorID
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("Added vendor", "id", id, "name", name, "category", categoryName)
	return id, nil
}

// RenameVendor changes a vendor's display name. Past entries pick up the
// new name since they reference the vendor by ID.
func (e *ReconciliationEngine) RenameVendor(ctx context.Context, id int, newName string) error {
	vendor, err := e.storage.GetVendor(ctx, id)
	if err != nil {
		return err
	}

	vendor.Name = newName
	if err := e.storage.UpdateVendor(ctx, vendor); err != nil {
		return err
	}

	slog.Info("Renamed vendor", "id", id, "name", newName)
	return nil
}

// SetVendorCategory reassigns a vendor to a different category, creating
// the category when the name is new. Existing entries are not reconciled;
// from here on the vendor's entries count against the new category.
func (e *ReconciliationEngine) SetVendorCategory(ctx context.Context, id int, categoryName string) error {
	err := e.withTx(ctx, func(tx service.Transaction) error {
		vendor, err := tx.GetVendor(ctx, id)
		if err != nil {
			return err
		}

		category, err := ensureCategory(ctx, tx, categoryName)
		if err != nil {
			return err
		}

		vendor.CategoryID = category.ID
		return tx.UpdateVendor(ctx, vendor)
	})
	if err != nil {
		return err
	}

	slog.Info("Reassigned vendor category", "id", id, "category", categoryName)
	return nil
}

// DeactivateVendor hides a vendor from entry forms without touching its
// history.
func (e *ReconciliationEngine) DeactivateVendor(ctx context.Context, id int) error {
	if err := e.storage.SetVendorActive(ctx, id, false); err != nil {
		return err
	}

	slog.Info("Deactivated vendor", "id", id)
	return nil
}

// AddMethod creates an active payment method.
func (e *ReconciliationEngine) AddMethod(ctx context.Context, methodType string) (int, error) {
	method := &model.Method{Type: methodType, Active: true}
	id, err := e.storage.CreateMethod(ctx, method)
	if err != nil {
		return 0, err
	}

	slog.Info("Added payment method", "id", id, "type", methodType)
	return id, nil
}

// SetMethodActive toggles whether a payment method appears on entry forms.
func (e *ReconciliationEngine) SetMethodActive(ctx context.Context, id int, active bool) error {
	return e.storage.SetMethodActive(ctx, id, active)
}
