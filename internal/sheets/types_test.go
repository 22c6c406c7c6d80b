package sheets

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Relton66/budgetapp/internal/model"
)

func TestTransactionRowsCarryResolvedCategory(t *testing.T) {
	report := &model.BudgetReport{
		Transactions: []model.Transaction{
			{
				Date:         time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
				VendorName:   "Safeway",
				CategoryName: "Groceries",
				MethodType:   "Credit",
				Amount:       decimal.RequireFromString("45.50"),
			},
		},
	}

	rows := transactionRows(report)
	require.Len(t, rows, 1)
	assert.Equal(t, "Safeway", rows[0].Vendor)
	assert.Equal(t, "Groceries", rows[0].Category)
	assert.Equal(t, "Credit", rows[0].Method)
}
