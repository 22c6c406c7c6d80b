// Package service defines the core interfaces between storage and the
// reconciliation engine.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Relton66/budgetapp/internal/model"
)

// TransactionFilter narrows a ledger search. Nil fields are ignored;
// CategoryID matches through the vendor's category assignment.
type TransactionFilter struct {
	BudgetID   int
	VendorID   *int
	CategoryID *int
	MethodID   *int
	Income     *bool
	DateFrom   *time.Time
	DateTo     *time.Time
}

// Storage defines the interface for all persistence operations.
type Storage interface {
	// Budget operations
	CreateBudget(ctx context.Context, budget *model.Budget) (int, error)
	GetBudget(ctx context.Context, id int) (*model.Budget, error)
	FindBudgetByName(ctx context.Context, name string) (*model.Budget, error)
	GetBudgets(ctx context.Context) ([]model.Budget, error)
	GetCurrentBudget(ctx context.Context) (*model.Budget, error)
	UpdateBudget(ctx context.Context, budget *model.Budget) error
	ApplyBudgetDelta(ctx context.Context, id int, delta decimal.Decimal) error
	ClearCurrentBudget(ctx context.Context) error
	SetCurrentBudget(ctx context.Context, id int) error
	DeleteBudget(ctx context.Context, id int) error

	// Category operations
	CreateCategory(ctx context.Context, category *model.Category) (int, error)
	GetCategory(ctx context.Context, id int) (*model.Category, error)
	FindCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetCategories(ctx context.Context) ([]model.Category, error)

	// Category allocation operations
	CreateCategoryBudget(ctx context.Context, cb *model.CategoryBudget) error
	GetCategoryBudget(ctx context.Context, budgetID, categoryID int) (*model.CategoryBudget, error)
	GetCategoryBudgets(ctx context.Context, budgetID int) ([]model.CategoryBudget, error)
	ApplyCategoryDelta(ctx context.Context, budgetID, categoryID int, delta decimal.Decimal) error
	SetCategoryStartBalance(ctx context.Context, budgetID, categoryID int, start decimal.Decimal) error
	DeleteCategoryBudget(ctx context.Context, budgetID, categoryID int) error

	// Vendor operations
	CreateVendor(ctx context.Context, vendor *model.Vendor) (int, error)
	GetVendor(ctx context.Context, id int) (*model.Vendor, error)
	FindVendorByName(ctx context.Context, name string) (*model.Vendor, error)
	GetVendors(ctx context.Context, activeOnly bool) ([]model.Vendor, error)
	UpdateVendor(ctx context.Context, vendor *model.Vendor) error
	SetVendorActive(ctx context.Context, id int, active bool) error
	FindCategoryByVendor(ctx context.Context, vendorID int) (*model.Category, error)

	// Payment method operations
	CreateMethod(ctx context.Context, method *model.Method) (int, error)
	GetMethod(ctx context.Context, id int) (*model.Method, error)
	FindMethodByType(ctx context.Context, methodType string) (*model.Method, error)
	GetMethods(ctx context.Context, activeOnly bool) ([]model.Method, error)
	SetMethodActive(ctx context.Context, id int, active bool) error

	// Ledger operations
	CreateTransaction(ctx context.Context, txn *model.Transaction) (int, error)
	GetTransaction(ctx context.Context, id int) (*model.Transaction, error)
	GetTransactions(ctx context.Context, budgetID int) ([]model.Transaction, error)
	GetRecurringTransactions(ctx context.Context, budgetID int) ([]model.Transaction, error)
	SearchTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id int) error

	// Transaction support
	BeginTx(ctx context.Context) (Transaction, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// ReportWriter exports a reconciled budget snapshot to an external sink.
type ReportWriter interface {
	WriteBudgetReport(ctx context.Context, report *model.BudgetReport) error
}

// Transaction represents a database transaction. Every reconciliation
// operation runs inside exactly one of these, so a failure anywhere
// leaves all three balances untouched.
type Transaction interface {
	Storage
	Commit() error
	Rollback() error
}
