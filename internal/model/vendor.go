package model

// Vendor maps a payee to the category its purchases count against.
// Deactivated vendors stop appearing in pickers but keep their history,
// so rolling back an old entry still resolves the right category.
type Vendor struct {
	Name       string
	ID         int
	CategoryID int
	Active     bool
}

// Validate ensures the Vendor has valid data.
func (v *Vendor) Validate() error {
	return ValidateName(v.Name)
}
