package domain

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Money is an amount in minor currency units (cents).
type Money int64

// MaxPrice is the largest price the items table holds (NUMERIC(10,2)).
const MaxPrice Money = 99_999_999_99

// maxAmount bounds decoded amounts, in major units, so the conversion to minor
// units is exact and cannot overflow.
const maxAmount = 1e13

// ErrAmountOutOfRange reports a decoded amount that is not finite or too large.
var ErrAmountOutOfRange = errors.New("money amount out of range")

// MoneyFromFloat converts a decimal amount to minor units, rounding to the nearest cent.
func MoneyFromFloat(v float64) (Money, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxAmount {
		return 0, fmt.Errorf("%w: %v", ErrAmountOutOfRange, v)
	}
	return Money(math.Round(v * 100)), nil
}

// Float returns the amount in major units.
func (m Money) Float() float64 {
	return float64(m) / 100
}

// String formats the amount as "X.XX".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON renders the amount as a two-decimal JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number (or a numeric string) in major units.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := bytes.Trim(data, `"`)
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return fmt.Errorf("%w: %s", ErrAmountOutOfRange, data)
		}
		return fmt.Errorf("invalid money amount %q: %w", data, err)
	}
	amount, err := MoneyFromFloat(v)
	if err != nil {
		return err
	}
	*m = amount
	return nil
}
