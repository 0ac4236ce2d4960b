package payment

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var amountReplacer = strings.NewReplacer(" ", "", ",", ".")

// ParseAmount accepts user-typed amounts such as "1 234,50" and returns the
// value in major currency units. Amounts stay float64 end to end, so values
// that are not exactly representable carry binary rounding error.
func ParseAmount(raw string) (float64, error) {
	cleaned := amountReplacer.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0, fmt.Errorf("empty amount")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}

	f, _ := d.Float64()
	return f, nil
}

// MinorUnits renders amount*100 truncated to an integer. The multiplication
// runs on the shortest decimal form of the float, so 19.99 yields "1999".
func MinorUnits(amount float64) string {
	return decimal.NewFromFloat(amount).Shift(2).Truncate(0).String()
}

// FormatAmount renders the amount the way it is posted to the gateway.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}
