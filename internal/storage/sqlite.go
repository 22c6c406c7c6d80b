package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Relton66/budgetapp/internal/model"
	"github.com/Relton66/budgetapp/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// queryable is an interface satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	cacheExpiry time.Time
	db          *sql.DB
	vendorCache map[string]*model.Vendor
	dbPath      string
	cacheMutex  sync.RWMutex
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections, and a single
	// connection keeps balance updates serialized.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:          db,
		dbPath:      dbPath,
		vendorCache: make(map[string]*model.Vendor),
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Transaction methods delegate to the main storage with the transaction.

func (t *sqliteTransaction) CreateBudget(ctx context.Context, budget *model.Budget) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return t.storage.createBudgetTx(ctx, t.tx, budget)
}

func (t *sqliteTransaction) GetBudget(ctx context.Context, id int) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getBudgetTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) FindBudgetByName(ctx context.Context, name string) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.findBudgetByNameTx(ctx, t.tx, name)
}

func (t *sqliteTransaction) GetBudgets(ctx context.Context) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getBudgetsTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetCurrentBudget(ctx context.Context) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCurrentBudgetTx(ctx, t.tx)
}

func (t *sqliteTransaction) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.updateBudgetTx(ctx, t.tx, budget)
}

func (t *sqliteTransaction) ApplyBudgetDelta(ctx context.Context, id int, delta decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.applyBudgetDeltaTx(ctx, t.tx, id, delta)
}

func (t *sqliteTransaction) ClearCurrentBudget(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.clearCurrentBudgetTx(ctx, t.tx)
}

func (t *sqliteTransaction) SetCurrentBudget(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.setCurrentBudgetTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) DeleteBudget(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.deleteBudgetTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) CreateCategory(ctx context.Context, category *model.Category) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return t.storage.createCategoryTx(ctx, t.tx, category)
}

func (t *sqliteTransaction) GetCategory(ctx context.Context, id int) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCategoryTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) FindCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return t.storage.findCategoryByNameTx(ctx, t.tx, name)
}

func (t *sqliteTransaction) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCategoriesTx(ctx, t.tx)
}

func (t *sqliteTransaction) CreateCategoryBudget(ctx context.Context, cb *model.CategoryBudget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.createCategoryBudgetTx(ctx, t.tx, cb)
}

func (t *sqliteTransaction) GetCategoryBudget(ctx context.Context, budgetID, categoryID int) (*model.CategoryBudget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCategoryBudgetTx(ctx, t.tx, budgetID, categoryID)
}

func (t *sqliteTransaction) GetCategoryBudgets(ctx context.Context, budgetID int) ([]model.CategoryBudget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCategoryBudgetsTx(ctx, t.tx, budgetID)
}

func (t *sqliteTransaction) ApplyCategoryDelta(ctx context.Context, budgetID, categoryID int, delta decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.applyCategoryDeltaTx(ctx, t.tx, budgetID, categoryID, delta)
}

func (t *sqliteTransaction) SetCategoryStartBalance(ctx context.Context, budgetID, categoryID int, start decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.setCategoryStartBalanceTx(ctx, t.tx, budgetID, categoryID, start)
}

func (t *sqliteTransaction) DeleteCategoryBudget(ctx context.Context, budgetID, categoryID int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.deleteCategoryBudgetTx(ctx, t.tx, budgetID, categoryID)
}

func (t *sqliteTransaction) CreateVendor(ctx context.Context, vendor *model.Vendor) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	id, err := t.storage.createVendorTx(ctx, t.tx, vendor)
	if err == nil {
		t.storage.invalidateVendorCache()
	}
	return id, err
}

func (t *sqliteTransaction) GetVendor(ctx context.Context, id int) (*model.Vendor, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getVendorTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) FindVendorByName(ctx context.Context, name string) (*model.Vendor, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return t.storage.findVendorByNameTx(ctx, t.tx, name)
}

func (t *sqliteTransaction) GetVendors(ctx context.Context, activeOnly bool) ([]model.Vendor, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getVendorsTx(ctx, t.tx, activeOnly)
}

func (t *sqliteTransaction) UpdateVendor(ctx context.Context, vendor *model.Vendor) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	err := t.storage.updateVendorTx(ctx, t.tx, vendor)
	if err == nil {
		t.storage.invalidateVendorCache()
	}
	return err
}

func (t *sqliteTransaction) SetVendorActive(ctx context.Context, id int, active bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	err := t.storage.setVendorActiveTx(ctx, t.tx, id, active)
	if err == nil {
		t.storage.invalidateVendorCache()
	}
	return err
}

func (t *sqliteTransaction) FindCategoryByVendor(ctx context.Context, vendorID int) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.findCategoryByVendorTx(ctx, t.tx, vendorID)
}

func (t *sqliteTransaction) CreateMethod(ctx context.Context, method *model.Method) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return t.storage.createMethodTx(ctx, t.tx, method)
}

func (t *sqliteTransaction) GetMethod(ctx context.Context, id int) (*model.Method, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getMethodTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) FindMethodByType(ctx context.Context, methodType string) (*model.Method, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(methodType, "methodType"); err != nil {
		return nil, err
	}
	return t.storage.findMethodByTypeTx(ctx, t.tx, methodType)
}

func (t *sqliteTransaction) GetMethods(ctx context.Context, activeOnly bool) ([]model.Method, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getMethodsTx(ctx, t.tx, activeOnly)
}

func (t *sqliteTransaction) SetMethodActive(ctx context.Context, id int, active bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.setMethodActiveTx(ctx, t.tx, id, active)
}

func (t *sqliteTransaction) CreateTransaction(ctx context.Context, txn *model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return t.storage.createTransactionTx(ctx, t.tx, txn)
}

func (t *sqliteTransaction) GetTransaction(ctx context.Context, id int) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getTransactionTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetTransactions(ctx context.Context, budgetID int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getTransactionsTx(ctx, t.tx, budgetID)
}

func (t *sqliteTransaction) GetRecurringTransactions(ctx context.Context, budgetID int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getRecurringTransactionsTx(ctx, t.tx, budgetID)
}

func (t *sqliteTransaction) SearchTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.searchTransactionsTx(ctx, t.tx, filter)
}

func (t *sqliteTransaction) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.updateTransactionTx(ctx, t.tx, txn)
}

func (t *sqliteTransaction) DeleteTransaction(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.deleteTransactionTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	return fmt.Errorf("migrations cannot run inside a transaction")
}

func (t *sqliteTransaction) Close() error {
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
