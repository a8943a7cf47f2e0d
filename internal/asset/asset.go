// Package asset provides type-safe value objects for the monitored base asset
// and the stable asset produced by conversions. Raw values are big.Int in the
// smallest unit (wei, smallest stable unit); decimal.Decimal is only used at
// boundaries (config, display, parsing).
package asset

// Asset describes a currency the monitor accounts in.
type Asset struct {
	symbol   string
	decimals uint8
}

// New creates an Asset with the given symbol and decimal places.
func New(symbol string, decimals uint8) Asset {
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if decimals > 30 {
		panic("asset: suspicious decimals (>30)")
	}
	return Asset{symbol: symbol, decimals: decimals}
}

// Well-known assets used throughout the monitor. The base asset is the native
// coin whose reward growth is observed; the stable asset is what conversions
// produce.
var (
	ETH = New("ETH", 18)
	DAI = New("DAI", 18)
)

// Symbol returns the ticker symbol (e.g., "ETH", "DAI").
func (a Asset) Symbol() string {
	return a.symbol
}

// Decimals returns the number of decimal places.
func (a Asset) Decimals() uint8 {
	return a.decimals
}

// Equals compares two assets by symbol and precision.
func (a Asset) Equals(other Asset) bool {
	return a.symbol == other.symbol && a.decimals == other.decimals
}

// String returns a human-readable representation.
func (a Asset) String() string {
	return a.symbol
}
