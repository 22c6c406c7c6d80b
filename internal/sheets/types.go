package sheets

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Relton66/budgetapp/internal/model"
)

// AllocationRow represents a single row in the Allocations tab.
type AllocationRow struct {
	Category       string
	StartBalance   decimal.Decimal
	CurrentBalance decimal.Decimal
	Spent          decimal.Decimal
}

// TransactionRow represents a single row in the Transactions tab. The
// category is the vendor's current assignment, resolved when the report
// was built.
type TransactionRow struct {
	Date      time.Time
	Vendor    string
	Category  string
	Method    string
	Amount    decimal.Decimal
	Income    bool
	Recurring bool
	Comments  string
}

func allocationRows(report *model.BudgetReport) []AllocationRow {
	rows := make([]AllocationRow, 0, len(report.Allocations))
	for _, cb := range report.Allocations {
		rows = append(rows, AllocationRow{
			Category:       cb.CategoryName,
			StartBalance:   cb.StartBalance,
			CurrentBalance: cb.CurrentBalance,
			Spent:          cb.Spent(),
		})
	}
	return rows
}

func transactionRows(report *model.BudgetReport) []TransactionRow {
	rows := make([]TransactionRow, 0, len(report.Transactions))
	for _, txn := range report.Transactions {
		rows = append(rows, TransactionRow{
			Date:      txn.Date,
			Vendor:    txn.VendorName,
			Category:  txn.CategoryName,
			Method:    txn.MethodType,
			Amount:    txn.Amount,
			Income:    txn.Income,
			Recurring: txn.Recurring,
			Comments:  txn.Comments,
		})
	}
	return rows
}
