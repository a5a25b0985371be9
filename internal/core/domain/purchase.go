package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// PurchaseLine requests a quantity of one product.
type PurchaseLine struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// Order is processed line by line in the given order.
type Order []PurchaseLine

// Fingerprint identifies the order by its lines, in order. Two orders share a
// fingerprint only when every line matches.
func (o Order) Fingerprint() string {
	h := sha256.New()
	for _, line := range o {
		h.Write([]byte(line.ProductID))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatInt(line.Quantity, 10)))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Receipt is the result of a completed purchase.
type Receipt struct {
	Items  []PurchaseLine `json:"items"`
	Change Change         `json:"change"`
}

// Purchase outcomes, used as metric labels and log fields.
const (
	OutcomeSuccess           = "success"
	OutcomeInsufficientFunds = "insufficient_funds"
	OutcomeProductNotFound   = "product_not_found"
	OutcomeInexactChange     = "inexact_change"
	OutcomeInvalid           = "invalid"
	OutcomeError             = "error"
	OutcomeReplayed          = "replayed"
)
