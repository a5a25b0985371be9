package domain

import (
	"errors"
	"strconv"
)

// ErrInexactChange is returned when an amount cannot be paid out in accepted coins.
var ErrInexactChange = errors.New("amount is not representable in accepted coins")

// Change maps each denomination to the number of coins returned.
type Change map[Coin]int

// NewChange returns a Change with every denomination present at zero.
func NewChange() Change {
	c := make(Change, len(Denominations))
	for _, d := range Denominations {
		c[d] = 0
	}
	return c
}

// Total returns the value of all coins in c.
func (c Change) Total() Money {
	var total Money
	for coin, n := range c {
		total += coin.Value() * Money(n)
	}
	return total
}

// MarshalJSON keys denominations by their decimal value, e.g. {"100":1,"50":0}.
func (c Change) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 64)
	buf = append(buf, '{')
	for i, d := range Denominations {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '"')
		buf = strconv.AppendInt(buf, int64(d), 10)
		buf = append(buf, '"', ':')
		buf = strconv.AppendInt(buf, int64(c[d]), 10)
	}
	buf = append(buf, '}')
	return buf, nil
}

// MakeChange splits amount greedily over Denominations. The coin set is
// canonical, so the greedy split is also the minimal one. A remainder that
// no coin can cover yields ErrInexactChange.
func MakeChange(amount Money) (Change, error) {
	change := NewChange()
	if amount < 0 {
		return nil, ErrInexactChange
	}

	remaining := amount
	for _, d := range Denominations {
		if remaining == 0 {
			break
		}
		n := remaining / d.Value()
		change[d] = int(n)
		remaining -= n * d.Value()
	}

	if remaining != 0 {
		return nil, ErrInexactChange
	}
	return change, nil
}
