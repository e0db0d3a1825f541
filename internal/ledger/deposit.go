package ledger

import "errors"

// Deposit tiering: projects priced at or under the threshold owe half
// upfront, anything above owes a quarter. The threshold boundary belongs to
// the 50% tier. All amounts are integers in the smallest currency unit.
const (
	TierThreshold = 15000

	lowTierBasisPoints  = 5000
	highTierBasisPoints = 2500
)

var ErrNegativePrice = errors.New("price must not be negative")

// Split is the financial snapshot taken once at project creation. It is
// never recomputed, even if the referenced package price changes later.
type Split struct {
	Percent float64 `json:"percent"`
	Deposit int64   `json:"deposit"`
	Balance int64   `json:"balance"`
}

// ComputeSplit derives the deposit split for a price. Deterministic and
// side-effect free. Rounding is half-up, done in integer basis points so no
// float ever touches the money math. Deposit + Balance always equals price.
func ComputeSplit(price int64) (Split, error) {
	if price < 0 {
		return Split{}, ErrNegativePrice
	}

	bp := int64(highTierBasisPoints)
	if price <= TierThreshold {
		bp = lowTierBasisPoints
	}

	deposit := (price*bp + 5000) / 10000

	return Split{
		Percent: float64(bp) / 10000,
		Deposit: deposit,
		Balance: price - deposit,
	}, nil
}
