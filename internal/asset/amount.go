package asset

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNilRaw          = errors.New("asset: nil raw value")
	ErrNegativeAmount  = errors.New("asset: negative amount")
	ErrAssetMismatch   = errors.New("asset: cannot operate on different assets")
	ErrNegativeResult  = errors.New("asset: operation would result in negative amount")
	ErrTooManyDecimals = errors.New("asset: too many decimal places for asset")
)

// Amount is an immutable value object representing a non-negative quantity of
// an asset. The raw value is always in the smallest unit.
type Amount struct {
	raw   *big.Int
	asset Asset
}

// NewAmount creates an Amount from a raw big.Int value in the smallest unit.
func NewAmount(a Asset, raw *big.Int) Amount {
	if raw == nil {
		panic(ErrNilRaw)
	}
	if raw.Sign() < 0 {
		panic(ErrNegativeAmount)
	}
	return Amount{
		raw:   new(big.Int).Set(raw), // defensive copy
		asset: a,
	}
}

// Zero creates a zero Amount for the given asset.
func Zero(a Asset) Amount {
	return NewAmount(a, big.NewInt(0))
}

// NewAmountFromInt64 creates an Amount from an int64 raw value.
func NewAmountFromInt64(a Asset, raw int64) Amount {
	if raw < 0 {
		panic(ErrNegativeAmount)
	}
	return NewAmount(a, big.NewInt(raw))
}

// ParseDecimal converts a human-readable decimal quantity (e.g. "0.01") into
// an Amount in the asset's smallest unit.
func ParseDecimal(a Asset, value string) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, err
	}
	return FromDecimal(a, d)
}

// FromDecimal converts a decimal quantity into an Amount.
func FromDecimal(a Asset, d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	scaled := d.Shift(int32(a.decimals))
	if !scaled.IsInteger() {
		return Amount{}, ErrTooManyDecimals
	}
	return NewAmount(a, scaled.BigInt()), nil
}

// Raw returns a copy of the raw big.Int value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.raw)
}

// Asset returns the asset this amount is denominated in.
func (a Amount) Asset() Asset {
	return a.asset
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a.raw != nil && a.raw.Sign() > 0
}

// Add adds two amounts of the same asset.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.checkSameAsset(b); err != nil {
		return Amount{}, err
	}
	return NewAmount(a.asset, new(big.Int).Add(a.raw, b.raw)), nil
}

// MustAdd adds two amounts, panics on error.
func (a Amount) MustAdd(b Amount) Amount {
	result, err := a.Add(b)
	if err != nil {
		panic(err)
	}
	return result
}

// Sub subtracts b from a (same asset only).
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.checkSameAsset(b); err != nil {
		return Amount{}, err
	}
	if a.raw.Cmp(b.raw) < 0 {
		return Amount{}, ErrNegativeResult
	}
	return NewAmount(a.asset, new(big.Int).Sub(a.raw, b.raw)), nil
}

// PercentOf returns pct percent of the amount, truncating toward zero.
// pct must be in [0,100].
func (a Amount) PercentOf(pct uint8) Amount {
	if pct > 100 {
		panic("asset: percentage out of range")
	}
	result := new(big.Int).Mul(a.raw, big.NewInt(int64(pct)))
	result.Div(result, big.NewInt(100))
	return NewAmount(a.asset, result)
}

// Cmp compares two amounts of the same asset.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func (a Amount) Cmp(b Amount) (int, error) {
	if err := a.checkSameAsset(b); err != nil {
		return 0, err
	}
	return a.raw.Cmp(b.raw), nil
}

// Equals returns true if both amounts are equal (same asset and value).
func (a Amount) Equals(b Amount) bool {
	return a.asset.Equals(b.asset) && a.Raw().Cmp(b.Raw()) == 0
}

// GreaterThan returns true if a > b.
func (a Amount) GreaterThan(b Amount) (bool, error) {
	cmp, err := a.Cmp(b)
	if err != nil {
		return false, err
	}
	return cmp > 0, nil
}

// ToDecimal converts the amount to a human-readable decimal quantity.
func (a Amount) ToDecimal() decimal.Decimal {
	if a.raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, 0).Shift(-int32(a.asset.decimals))
}

// String returns e.g. "0.4 ETH".
func (a Amount) String() string {
	return a.ToDecimal().String() + " " + a.asset.symbol
}

func (a Amount) checkSameAsset(b Amount) error {
	if !a.asset.Equals(b.asset) {
		return ErrAssetMismatch
	}
	return nil
}
