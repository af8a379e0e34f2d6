package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Money is an amount in cents. Prices arrive from the backend as decimal
// numbers; keeping them as integer cents makes unit × participants exact.
type Money int64

// FromAmount converts a decimal amount (e.g. 40 or 12.5) to cents.
func FromAmount(amount float64) Money {
	return Money(math.Round(amount * 100))
}

// Amount returns the decimal amount.
func (m Money) Amount() float64 { return float64(m) / 100 }

// Times multiplies by a count.
func (m Money) Times(n int) Money { return m * Money(n) }

// String formats the amount with two decimals.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON writes the decimal amount, matching the backend's number fields.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.Amount(), 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*m = FromAmount(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	if s == "" {
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = FromAmount(f)
	return nil
}
