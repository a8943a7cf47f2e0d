package app

import (
	"context"
	"testing"

	"github.com/fd1az/staking-monitor/business/monitor/domain"
	"github.com/fd1az/staking-monitor/internal/asset"
)

func TestCheckUpkeepStrictThreshold(t *testing.T) {
	tests := []struct {
		name   string
		target string
		price  string
		want   bool
	}{
		{"price above target", "3000", "3000.00000001", true},
		{"price equal to target", "3000", "3000", false},
		{"price below target", "3000", "2999.99", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances := newBalances()
			ledger := newLedgerWithUser(t, balances, addr(1), "1", "10", tt.target, 40)
			oracle := &fakeOracle{price: mustPrice(t, tt.price)}
			engine := NewConversionEngine(ledger, oracle, &fakeRouter{rate: 3000}, nil, testLogger())

			needed, eligible, err := engine.CheckUpkeep(context.Background())
			if err != nil {
				t.Fatalf("CheckUpkeep() error = %v", err)
			}
			if needed != tt.want {
				t.Errorf("needed = %v, want %v", needed, tt.want)
			}
			if tt.want && (len(eligible) != 1 || eligible[0] != addr(1)) {
				t.Errorf("eligible = %v, want [user 1]", eligible)
			}
		})
	}
}

func TestCheckUpkeepIgnoresUsersWithoutOrder(t *testing.T) {
	balances := newBalances()
	ledger := newLedgerWithUser(t, balances, addr(1), "1", "10", "", 0)
	oracle := &fakeOracle{price: mustPrice(t, "9999")}
	engine := NewConversionEngine(ledger, oracle, &fakeRouter{rate: 3000}, nil, testLogger())

	needed, _, err := engine.CheckUpkeep(context.Background())
	if err != nil {
		t.Fatalf("CheckUpkeep() error = %v", err)
	}
	if needed {
		t.Error("user without an order must not trigger upkeep")
	}
}

func TestCheckUpkeepOracleFailure(t *testing.T) {
	balances := newBalances()
	ledger := newLedgerWithUser(t, balances, addr(1), "1", "10", "3000", 40)
	oracle := &fakeOracle{err: errUpstream}
	engine := NewConversionEngine(ledger, oracle, &fakeRouter{rate: 3000}, nil, testLogger())

	needed, _, err := engine.CheckUpkeep(context.Background())
	if err == nil {
		t.Fatal("CheckUpkeep() should fail when the oracle is down")
	}
	if needed {
		t.Error("needed must be false on oracle failure")
	}
}

func TestPerformUpkeepConvertsPendingAndSettles(t *testing.T) {
	balances := newBalances()
	ledger := newLedgerWithUser(t, balances, addr(1), "0.01", "99.99", "3000", 40)
	accrual := NewAccrualEngine(ledger, balances, testLogger())
	oracle := &fakeOracle{price: mustPrice(t, "3100")}
	router := &fakeRouter{rate: 3100}
	engine := NewConversionEngine(ledger, oracle, router, nil, testLogger())

	balances.set(addr(1), mustWei(t, "100.99"))
	accrual.RunAccrual(context.Background())

	result, err := engine.PerformUpkeep(context.Background())
	if err != nil {
		t.Fatalf("PerformUpkeep() error = %v", err)
	}
	if len(result.Conversions) != 1 {
		t.Fatalf("Conversions = %d, want 1", len(result.Conversions))
	}

	conv := result.Conversions[0]
	if !conv.AmountIn.Equals(mustWei(t, "0.4")) {
		t.Errorf("AmountIn = %s, want 0.4 ETH", conv.AmountIn)
	}
	if !conv.AmountOut.Equals(mustDai(t, "1240")) {
		t.Errorf("AmountOut = %s, want 1240 DAI", conv.AmountOut)
	}

	acct, _ := ledger.Account(addr(1))
	if !acct.PendingToConvert.IsZero() {
		t.Errorf("PendingToConvert = %s, want zero after settle", acct.PendingToConvert)
	}
	if !acct.ConvertedBalance.Equals(mustDai(t, "1240")) {
		t.Errorf("ConvertedBalance = %s, want 1240 DAI", acct.ConvertedBalance)
	}
	// the order survives for future accruals
	if !acct.TargetPrice.Equals(mustPrice(t, "3000")) || acct.ConversionPercent != 40 {
		t.Error("target and percent must be untouched by the pass")
	}
}

func TestPerformUpkeepRerunWithoutAccrualIsNoOp(t *testing.T) {
	balances := newBalances()
	ledger := newLedgerWithUser(t, balances, addr(1), "0.01", "99.99", "3000", 40)
	accrual := NewAccrualEngine(ledger, balances, testLogger())
	oracle := &fakeOracle{price: mustPrice(t, "3100")}
	router := &fakeRouter{rate: 3100}
	engine := NewConversionEngine(ledger, oracle, router, nil, testLogger())

	balances.set(addr(1), mustWei(t, "100.99"))
	accrual.RunAccrual(context.Background())

	if _, err := engine.PerformUpkeep(context.Background()); err != nil {
		t.Fatal(err)
	}
	before, _ := ledger.Account(addr(1))

	result, err := engine.PerformUpkeep(context.Background())
	if err != nil {
		t.Fatalf("PerformUpkeep() error = %v", err)
	}
	if len(result.Conversions) != 0 || len(result.Failures) != 0 {
		t.Errorf("rerun result = %+v, want clean no-op", result)
	}
	if router.calls != 1 {
		t.Errorf("router calls = %d, want 1 (no second swap)", router.calls)
	}

	after, _ := ledger.Account(addr(1))
	if !after.ConvertedBalance.Equals(before.ConvertedBalance) || !after.PendingToConvert.Equals(before.PendingToConvert) {
		t.Error("rerun must leave the account byte-identical")
	}
}

func TestPerformUpkeepSkipsZeroPending(t *testing.T) {
	balances := newBalances()
	ledger := newLedgerWithUser(t, balances, addr(1), "1", "10", "3000", 40)
	oracle := &fakeOracle{price: mustPrice(t, "3100")}
	router := &fakeRouter{rate: 3100}
	engine := NewConversionEngine(ledger, oracle, router, nil, testLogger())

	// price is above target but nothing has accrued yet
	result, err := engine.PerformUpkeep(context.Background())
	if err != nil {
		t.Fatalf("PerformUpkeep() error = %v", err)
	}
	if router.calls != 0 {
		t.Errorf("router calls = %d, want 0", router.calls)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}
}

func TestPerformUpkeepRouterFailureLeavesPendingIntact(t *testing.T) {
	balances := newBalances()
	ledger := domain.NewLedger(asset.ETH, asset.DAI)

	// two eligible users; the router fails on the first call only
	for i, obs := range []string{"10", "20"} {
		user := addr(byte(i + 1))
		balances.set(user, mustWei(t, obs))
		if _, err := ledger.Deposit(user, mustWei(t, "1"), mustWei(t, obs)); err != nil {
			t.Fatal(err)
		}
		if err := ledger.ConfigureOrder(user, mustPrice(t, "3000"), 50); err != nil {
			t.Fatal(err)
		}
	}
	accrual := NewAccrualEngine(ledger, balances, testLogger())
	balances.set(addr(1), mustWei(t, "12"))
	balances.set(addr(2), mustWei(t, "24"))
	accrual.RunAccrual(context.Background())

	oracle := &fakeOracle{price: mustPrice(t, "3100")}
	router := &failOnceRouter{inner: &fakeRouter{rate: 3100}}
	engine := NewConversionEngine(ledger, oracle, router, nil, testLogger())

	result, err := engine.PerformUpkeep(context.Background())
	if err != nil {
		t.Fatalf("PerformUpkeep() error = %v", err)
	}
	if len(result.Failures) != 1 || result.Failures[0].User != addr(1) {
		t.Fatalf("Failures = %+v, want exactly user 1", result.Failures)
	}
	if len(result.Conversions) != 1 || result.Conversions[0].User != addr(2) {
		t.Fatalf("Conversions = %+v, want exactly user 2", result.Conversions)
	}

	// failed user keeps their pending amount for the next pass
	first, _ := ledger.Account(addr(1))
	if !first.PendingToConvert.Equals(mustWei(t, "1")) {
		t.Errorf("user1 pending = %s, want 1 ETH intact", first.PendingToConvert)
	}
	second, _ := ledger.Account(addr(2))
	if !second.PendingToConvert.IsZero() {
		t.Errorf("user2 pending = %s, want zero", second.PendingToConvert)
	}
}

// failOnceRouter fails the first Convert call and delegates afterwards.
type failOnceRouter struct {
	inner *fakeRouter
	calls int
}

func (r *failOnceRouter) Convert(ctx context.Context, amountIn asset.Amount) (asset.Amount, error) {
	r.calls++
	if r.calls == 1 {
		return asset.Amount{}, errUpstream
	}
	return r.inner.Convert(ctx, amountIn)
}
