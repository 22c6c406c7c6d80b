package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Relton66/budgetapp/internal/common"
)

// Budget represents a budgeting period with an overall balance.
// StartBalance is the amount the period opened with; CurrentBalance moves
// as ledger entries are applied and rolled back.
type Budget struct {
	StartDate      time.Time
	EndDate        time.Time
	Name           string
	StartBalance   decimal.Decimal
	CurrentBalance decimal.Decimal
	ID             int
	IsCurrent      bool
}

// Validate ensures the Budget has valid data.
func (b *Budget) Validate() error {
	if err := ValidateName(b.Name); err != nil {
		return err
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return common.ErrMissingDate
	}
	if !b.EndDate.After(b.StartDate) {
		return common.ErrEndBeforeStart
	}
	return nil
}
