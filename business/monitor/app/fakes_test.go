package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/staking-monitor/business/monitor/domain"
	"github.com/fd1az/staking-monitor/internal/asset"
	"github.com/fd1az/staking-monitor/internal/logger"
)

// Deterministic in-memory ports so engine tests exercise exact semantics
// without any network.

type fakeOracle struct {
	price asset.Price
	err   error
}

func (f *fakeOracle) LatestPrice(_ context.Context) (asset.Price, error) {
	if f.err != nil {
		return asset.ZeroPrice(), f.err
	}
	return f.price, nil
}

type fakeBalances struct {
	balances map[domain.UserID]asset.Amount
	failing  map[domain.UserID]error
	calls    int
}

func (f *fakeBalances) BalanceOf(_ context.Context, user domain.UserID) (asset.Amount, error) {
	f.calls++
	if err, ok := f.failing[user]; ok {
		return asset.Amount{}, err
	}
	bal, ok := f.balances[user]
	if !ok {
		return asset.Zero(asset.ETH), nil
	}
	return bal, nil
}

func (f *fakeBalances) set(user domain.UserID, bal asset.Amount) {
	f.balances[user] = bal
}

// fakeRouter converts at a fixed integer rate of stable units per base unit.
type fakeRouter struct {
	rate  int64
	err   error
	calls int
}

func (f *fakeRouter) Convert(_ context.Context, amountIn asset.Amount) (asset.Amount, error) {
	f.calls++
	if f.err != nil {
		return asset.Amount{}, f.err
	}
	out := amountIn.ToDecimal().Mul(decimal.NewFromInt(f.rate))
	converted, err := asset.FromDecimal(asset.DAI, out)
	if err != nil {
		return asset.Amount{}, err
	}
	return converted, nil
}

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func newBalances() *fakeBalances {
	return &fakeBalances{
		balances: make(map[domain.UserID]asset.Amount),
		failing:  make(map[domain.UserID]error),
	}
}

func mustWei(t *testing.T, v string) asset.Amount {
	t.Helper()
	amt, err := asset.ParseDecimal(asset.ETH, v)
	if err != nil {
		t.Fatalf("parse %q: %v", v, err)
	}
	return amt
}

func mustDai(t *testing.T, v string) asset.Amount {
	t.Helper()
	amt, err := asset.ParseDecimal(asset.DAI, v)
	if err != nil {
		t.Fatalf("parse %q: %v", v, err)
	}
	return amt
}

func mustPrice(t *testing.T, v string) asset.Price {
	t.Helper()
	p, err := asset.ParseDecimalPrice(v)
	if err != nil {
		t.Fatalf("parse price %q: %v", v, err)
	}
	return p
}

func addr(b byte) domain.UserID {
	return common.BytesToAddress([]byte{b})
}

var errUpstream = errors.New("upstream unavailable")
