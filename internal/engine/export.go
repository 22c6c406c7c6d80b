package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Relton66/budgetapp/internal/common"
	"github.com/Relton66/budgetapp/internal/model"
	"github.com/Relton66/budgetapp/internal/service"
)

// BuildReport assembles an export snapshot of one budget.
func (e *ReconciliationEngine) BuildReport(ctx context.Context, budgetID int) (*model.BudgetReport, error) {
	budget, err := e.storage.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	allocations, err := e.storage.GetCategoryBudgets(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	transactions, err := e.storage.GetTransactions(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	return &model.BudgetReport{
		Budget:       *budget,
		Allocations:  allocations,
		Transactions: transactions,
	}, nil
}

// ExportBudget writes a budget snapshot through the given writer, retrying
// transient failures. The snapshot is read once up front, so retries never
// see a half-updated budget.
func (e *ReconciliationEngine) ExportBudget(ctx context.Context, budgetID int, writer service.ReportWriter) error {
	report, err := e.BuildReport(ctx, budgetID)
	if err != nil {
		return err
	}

	err = common.WithRetry(ctx, func() error {
		return writer.WriteBudgetReport(ctx, report)
	}, common.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("failed to export budget %q: %w", report.Budget.Name, err)
	}

	slog.Info("Exported budget",
		"budget", report.Budget.Name,
		"transactions", len(report.Transactions))
	return nil
}
