package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			// Monetary columns are TEXT holding exact decimal strings.
			// REAL would silently corrupt cents.
			queries := []string{
				`CREATE TABLE IF NOT EXISTS budgets (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE COLLATE NOCASE,
					start_date DATETIME NOT NULL,
					end_date DATETIME NOT NULL,
					start_balance TEXT NOT NULL,
					current_balance TEXT NOT NULL,
					is_current INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_budgets_is_current ON budgets(is_current)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE COLLATE NOCASE,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS category_budgets (
					budget_id INTEGER NOT NULL,
					category_id INTEGER NOT NULL,
					start_balance TEXT NOT NULL,
					current_balance TEXT NOT NULL,
					PRIMARY KEY (budget_id, category_id),
					FOREIGN KEY (budget_id) REFERENCES budgets(id),
					FOREIGN KEY (category_id) REFERENCES categories(id)
				)`,

				`CREATE TABLE IF NOT EXISTS vendors (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE COLLATE NOCASE,
					category_id INTEGER NOT NULL,
					active INTEGER NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (category_id) REFERENCES categories(id)
				)`,
				`CREATE INDEX idx_vendors_category ON vendors(category_id)`,

				`CREATE TABLE IF NOT EXISTS methods (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					method_type TEXT NOT NULL UNIQUE COLLATE NOCASE,
					active INTEGER NOT NULL DEFAULT 1
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					budget_id INTEGER NOT NULL,
					vendor_id INTEGER NOT NULL,
					method_id INTEGER,
					amount TEXT NOT NULL,
					income INTEGER NOT NULL DEFAULT 0,
					recurring INTEGER NOT NULL DEFAULT 0,
					trans_date DATETIME NOT NULL,
					comments TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (budget_id) REFERENCES budgets(id),
					FOREIGN KEY (vendor_id) REFERENCES vendors(id),
					FOREIGN KEY (method_id) REFERENCES methods(id)
				)`,
				`CREATE INDEX idx_transactions_budget ON transactions(budget_id)`,
				`CREATE INDEX idx_transactions_vendor ON transactions(vendor_id)`,
				`CREATE INDEX idx_transactions_date ON transactions(trans_date)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Seed default payment methods",
		Up: func(tx *sql.Tx) error {
			for _, methodType := range []string{"Cash", "Check", "Credit", "Debit"} {
				if _, err := tx.Exec(
					`INSERT OR IGNORE INTO methods (method_type, active) VALUES (?, 1)`,
					methodType,
				); err != nil {
					return fmt.Errorf("failed to seed method %s: %w", methodType, err)
				}
			}
			return nil
		},
	},
}

// Migrate applies any pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
