package model

// Method is a payment method (cash, credit, and so on) attached to
// ledger entries for reporting. Inactive methods are hidden from entry
// forms but remain on past transactions.
type Method struct {
	Type   string
	ID     int
	Active bool
}

// Validate ensures the Method has valid data.
func (m *Method) Validate() error {
	return ValidateName(m.Type)
}
