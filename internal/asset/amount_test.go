package asset

import (
	"math/big"
	"testing"
)

func TestAmountPercentOf(t *testing.T) {
	tests := []struct {
		name string
		raw  int64
		pct  uint8
		want int64
	}{
		{name: "forty_percent_of_one_eth", raw: 1_000_000_000_000_000_000, pct: 40, want: 400_000_000_000_000_000},
		{name: "zero_percent", raw: 1_000_000_000_000_000_000, pct: 0, want: 0},
		{name: "hundred_percent", raw: 12345, pct: 100, want: 12345},
		{name: "truncates_toward_zero", raw: 3, pct: 50, want: 1},
		{name: "zero_amount", raw: 0, pct: 40, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewAmountFromInt64(ETH, tt.raw).PercentOf(tt.pct)
			if got.Raw().Int64() != tt.want {
				t.Errorf("PercentOf(%d) = %s, want %d", tt.pct, got.Raw(), tt.want)
			}
		})
	}
}

func TestAmountSub(t *testing.T) {
	a := NewAmountFromInt64(ETH, 100)
	b := NewAmountFromInt64(ETH, 30)

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub() error = %v", err)
	}
	if diff.Raw().Int64() != 70 {
		t.Errorf("Sub() = %s, want 70", diff.Raw())
	}

	if _, err := b.Sub(a); err != ErrNegativeResult {
		t.Errorf("Sub() underflow error = %v, want ErrNegativeResult", err)
	}

	if _, err := a.Sub(NewAmountFromInt64(DAI, 1)); err != ErrAssetMismatch {
		t.Errorf("Sub() mismatch error = %v, want ErrAssetMismatch", err)
	}
}

func TestParseDecimal(t *testing.T) {
	amt, err := ParseDecimal(ETH, "0.01")
	if err != nil {
		t.Fatalf("ParseDecimal() error = %v", err)
	}
	want := big.NewInt(10_000_000_000_000_000)
	if amt.Raw().Cmp(want) != 0 {
		t.Errorf("ParseDecimal(0.01) = %s, want %s", amt.Raw(), want)
	}

	if _, err := ParseDecimal(ETH, "-1"); err == nil {
		t.Error("ParseDecimal(-1) expected error")
	}
}

func TestPriceFromDecimalNormalizesToOracleScale(t *testing.T) {
	p, err := ParseDecimalPrice("3000")
	if err != nil {
		t.Fatalf("price parse error = %v", err)
	}
	want := big.NewInt(300_000_000_000) // 3000 * 1e8
	if p.Raw().Cmp(want) != 0 {
		t.Errorf("PriceFromDecimal(3000) = %s, want %s", p.Raw(), want)
	}
}

func TestPriceGreaterThanIsStrict(t *testing.T) {
	a, _ := NewPrice(big.NewInt(100))
	b, _ := NewPrice(big.NewInt(100))
	c, _ := NewPrice(big.NewInt(101))

	if a.GreaterThan(b) {
		t.Error("equal prices must not compare greater")
	}
	if !c.GreaterThan(a) {
		t.Error("101 should be greater than 100")
	}
	if !a.GreaterThan(ZeroPrice()) {
		t.Error("any set price should exceed the unset sentinel")
	}
}
