package dto

import (
	"fmt"
	"math"
	"strconv"
)

// CoinValue is the face value of an inserted coin. Any JSON number without a
// fractional part decodes, so 5 and 5.0 are the same coin.
type CoinValue int64

// NotWholeCoinError reports a coin value with a fractional part.
type NotWholeCoinError struct {
	Raw string
}

func (e *NotWholeCoinError) Error() string {
	return fmt.Sprintf("coin value %s is not a whole number", e.Raw)
}

// UnmarshalJSON accepts integral JSON numbers only. Strings are rejected.
func (c *CoinValue) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("coin value %s is not a number", data)
	}
	if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
		return &NotWholeCoinError{Raw: string(data)}
	}
	*c = CoinValue(v)
	return nil
}
