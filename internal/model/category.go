package model

import "github.com/shopspring/decimal"

// Category is a spending category shared by every budget. Per-budget
// amounts live on CategoryBudget, never here.
type Category struct {
	Name string
	ID   int
}

// Validate ensures the Category has valid data.
func (c *Category) Validate() error {
	return ValidateName(c.Name)
}

// CategoryBudget is the allocation of a category within one budget.
// StartBalance is what was set aside; CurrentBalance tracks what remains
// as entries in that category are applied and rolled back.
type CategoryBudget struct {
	CategoryName   string
	StartBalance   decimal.Decimal
	CurrentBalance decimal.Decimal
	BudgetID       int
	CategoryID     int
}

// Spent reports how much of the allocation has been consumed.
func (cb *CategoryBudget) Spent() decimal.Decimal {
	return cb.StartBalance.Sub(cb.CurrentBalance)
}
