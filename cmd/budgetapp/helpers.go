package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/Relton66/budgetapp/internal/config"
	"github.com/Relton66/budgetapp/internal/engine"
	"github.com/Relton66/budgetapp/internal/model"
	"github.com/Relton66/budgetapp/internal/service"
	"github.com/Relton66/budgetapp/internal/storage"
)

const dateLayout = "2006-01-02"

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/budgetapp/budgetapp.db"
	}

	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine builds a reconciliation engine on top of initialized storage.
// The caller owns closing the returned storage.
func initEngine(ctx context.Context) (*engine.ReconciliationEngine, service.Storage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	return engine.New(store), store, nil
}

// resolveBudget finds a budget by name, or returns the current budget when
// name is empty.
func resolveBudget(ctx context.Context, store service.Storage, name string) (*model.Budget, error) {
	if name == "" {
		budget, err := store.GetCurrentBudget(ctx)
		if err != nil {
			return nil, fmt.Errorf("no budget named and no current budget set: %w", err)
		}
		return budget, nil
	}
	return store.FindBudgetByName(ctx, name)
}

func parseDate(value, flagName string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q, expected YYYY-MM-DD", flagName, value)
	}
	return t, nil
}

func parseEntryID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry id %q", arg)
	}
	return id, nil
}
