package asset

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// OracleDecimals is the fixed-point scale used by the price oracle.
// Chainlink USD feeds report 8 decimal places.
const OracleDecimals = 8

// ErrNonPositivePrice is returned when constructing a price from a
// non-positive value.
var ErrNonPositivePrice = errors.New("asset: price must be positive")

// Price is an immutable fixed-point price at the oracle's scale
// (quote units per one base unit, scaled by 10^OracleDecimals).
type Price struct {
	raw *big.Int
}

// NewPrice creates a Price from a raw fixed-point value.
func NewPrice(raw *big.Int) (Price, error) {
	if raw == nil || raw.Sign() <= 0 {
		return Price{}, ErrNonPositivePrice
	}
	return Price{raw: new(big.Int).Set(raw)}, nil
}

// PriceFromDecimal normalizes a human-readable price (e.g. "3000.50") into
// the oracle's fixed-point scale, truncating excess precision.
func PriceFromDecimal(d decimal.Decimal) (Price, error) {
	if !d.IsPositive() {
		return Price{}, ErrNonPositivePrice
	}
	return Price{raw: d.Shift(OracleDecimals).Truncate(0).BigInt()}, nil
}

// ParseDecimalPrice parses a human-readable price string and normalizes it
// into the oracle's fixed-point scale.
func ParseDecimalPrice(value string) (Price, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Price{}, err
	}
	return PriceFromDecimal(d)
}

// ZeroPrice is the unset sentinel: a user with a zero target has no order.
func ZeroPrice() Price {
	return Price{}
}

// Raw returns a copy of the raw fixed-point value (nil-safe).
func (p Price) Raw() *big.Int {
	if p.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(p.raw)
}

// IsSet returns true when the price carries a value.
func (p Price) IsSet() bool {
	return p.raw != nil && p.raw.Sign() > 0
}

// GreaterThan reports whether p is strictly greater than other.
func (p Price) GreaterThan(other Price) bool {
	return p.Raw().Cmp(other.Raw()) > 0
}

// Equals reports fixed-point equality.
func (p Price) Equals(other Price) bool {
	return p.Raw().Cmp(other.Raw()) == 0
}

// ToDecimal converts back to a human-readable price.
func (p Price) ToDecimal() decimal.Decimal {
	if p.raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(p.raw, 0).Shift(-OracleDecimals)
}

// String returns the human-readable price.
func (p Price) String() string {
	return p.ToDecimal().String()
}
