package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Relton66/budgetapp/internal/common"
)

// amountPattern accepts plain dollar amounts with optional thousands
// separators and up to two fraction digits. Scientific notation, multiple
// signs, and stray characters are rejected.
var amountPattern = regexp.MustCompile(`^(([1-9]\d{0,2}(,\d{3})*)|(([1-9]\d*)?\d))(\.\d{1,2})?$`)

// ParseAmount parses a user-entered dollar amount into an exact decimal.
// A leading "$" and a single "+" or "-" sign are accepted, in either order
// ("-$5.00" and "$-5.00" both parse). Whitespace around the value is ignored.
func ParseAmount(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, common.ErrInvalidAmount
	}

	negative := false
	signed := false
	switch {
	case strings.HasPrefix(trimmed, "-"):
		negative = true
		signed = true
		trimmed = trimmed[1:]
	case strings.HasPrefix(trimmed, "+"):
		signed = true
		trimmed = trimmed[1:]
	}
	trimmed = strings.TrimPrefix(trimmed, "$")
	switch {
	case strings.HasPrefix(trimmed, "-"):
		if signed {
			return decimal.Zero, common.ErrInvalidAmount
		}
		negative = true
		trimmed = trimmed[1:]
	case strings.HasPrefix(trimmed, "+"):
		if signed {
			return decimal.Zero, common.ErrInvalidAmount
		}
		trimmed = trimmed[1:]
	}

	if !amountPattern.MatchString(trimmed) {
		return decimal.Zero, common.ErrInvalidAmount
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(trimmed, ",", ""))
	if err != nil {
		return decimal.Zero, common.ErrInvalidAmount
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// FormatAmount renders an amount as "$X.XX", with the sign ahead of the
// dollar symbol for negative values.
func FormatAmount(d decimal.Decimal) string {
	if d.IsNegative() {
		return fmt.Sprintf("-$%s", d.Abs().StringFixed(2))
	}
	return fmt.Sprintf("$%s", d.StringFixed(2))
}
