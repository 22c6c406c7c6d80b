package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Relton66/budgetapp/internal/common"
)

// Transaction is a single ledger entry against a budget. The amount is
// always stored positive; Income decides which direction it moves the
// balances. The category is never stored on the entry, it is resolved
// through the vendor at apply and rollback time.
type Transaction struct {
	Date         time.Time
	Comments     string
	Amount       decimal.Decimal
	ID           int
	BudgetID     int
	VendorID     int
	MethodID     int
	Income       bool
	Recurring    bool
	VendorName   string
	CategoryName string
	MethodType   string
}

// Validate ensures the Transaction has valid data.
func (t *Transaction) Validate() error {
	if t.Amount.IsNegative() || t.Amount.IsZero() {
		return common.ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return common.ErrMissingDate
	}
	return ValidateComment(t.Comments)
}

// Delta is the signed effect this entry has on a balance when applied.
// Income adds, expense subtracts.
func (t *Transaction) Delta() decimal.Decimal {
	if t.Income {
		return t.Amount
	}
	return t.Amount.Neg()
}
