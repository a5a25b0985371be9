package domain

import "strconv"

// Coin is an accepted denomination in minor units.
type Coin int64

const (
	Coin5   Coin = 5
	Coin10  Coin = 10
	Coin20  Coin = 20
	Coin50  Coin = 50
	Coin100 Coin = 100
)

// Denominations lists accepted coins, largest first.
var Denominations = []Coin{Coin100, Coin50, Coin20, Coin10, Coin5}

// Valid reports whether c is an accepted denomination.
func (c Coin) Valid() bool {
	switch c {
	case Coin5, Coin10, Coin20, Coin50, Coin100:
		return true
	}
	return false
}

// Value returns the coin's worth as Money.
func (c Coin) Value() Money {
	return Money(c)
}

func (c Coin) String() string {
	return strconv.FormatInt(int64(c), 10)
}
