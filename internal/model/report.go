package model

// BudgetReport is a point-in-time snapshot of one budget, assembled for
// export.
type BudgetReport struct {
	Budget       Budget
	Allocations  []CategoryBudget
	Transactions []Transaction
}
