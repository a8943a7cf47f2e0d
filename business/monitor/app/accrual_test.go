package app

import (
	"context"
	"testing"

	"github.com/fd1az/staking-monitor/business/monitor/domain"
	"github.com/fd1az/staking-monitor/internal/asset"
)

func newLedgerWithUser(t *testing.T, balances *fakeBalances, user domain.UserID, deposit, observed, target string, percent uint8) *domain.Ledger {
	t.Helper()
	l := domain.NewLedger(asset.ETH, asset.DAI)
	balances.set(user, mustWei(t, observed))
	if _, err := l.Deposit(user, mustWei(t, deposit), mustWei(t, observed)); err != nil {
		t.Fatalf("Deposit() error = %v", err)
	}
	if target != "" {
		if err := l.ConfigureOrder(user, mustPrice(t, target), percent); err != nil {
			t.Fatalf("ConfigureOrder() error = %v", err)
		}
	}
	return l
}

func TestRunAccrualAccruesShareOfGrowth(t *testing.T) {
	balances := newBalances()
	ledger := newLedgerWithUser(t, balances, addr(1), "0.01", "99.99", "3000", 40)
	engine := NewAccrualEngine(ledger, balances, testLogger())

	balances.set(addr(1), mustWei(t, "100.99"))
	result := engine.RunAccrual(context.Background())

	if result.Processed != 1 || len(result.Failures) != 0 {
		t.Fatalf("result = %+v, want 1 processed, no failures", result)
	}
	if !result.TotalAccrued.Equals(mustWei(t, "0.4")) {
		t.Errorf("TotalAccrued = %s, want 0.4 ETH", result.TotalAccrued)
	}

	acct, _ := ledger.Account(addr(1))
	if !acct.PendingToConvert.Equals(mustWei(t, "0.4")) {
		t.Errorf("PendingToConvert = %s, want 0.4 ETH", acct.PendingToConvert)
	}
	if !acct.LastObservedBalance.Equals(mustWei(t, "100.99")) {
		t.Errorf("LastObservedBalance = %s, want 100.99 ETH", acct.LastObservedBalance)
	}
}

func TestRunAccrualIsIdempotentWithoutGrowth(t *testing.T) {
	balances := newBalances()
	ledger := newLedgerWithUser(t, balances, addr(1), "0.01", "50", "3000", 40)
	engine := NewAccrualEngine(ledger, balances, testLogger())

	for i := 0; i < 3; i++ {
		result := engine.RunAccrual(context.Background())
		if !result.TotalAccrued.IsZero() {
			t.Errorf("pass %d accrued %s, want zero", i, result.TotalAccrued)
		}
	}

	acct, _ := ledger.Account(addr(1))
	if !acct.PendingToConvert.IsZero() {
		t.Errorf("PendingToConvert = %s, want zero", acct.PendingToConvert)
	}
}

func TestRunAccrualContinuesPastFailedBalanceRead(t *testing.T) {
	balances := newBalances()
	ledger := domain.NewLedger(asset.ETH, asset.DAI)
	engine := NewAccrualEngine(ledger, balances, testLogger())

	// three users in watchlist order; the middle one's balance read fails
	for i, obs := range []string{"10", "20", "30"} {
		user := addr(byte(i + 1))
		balances.set(user, mustWei(t, obs))
		if _, err := ledger.Deposit(user, mustWei(t, "1"), mustWei(t, obs)); err != nil {
			t.Fatal(err)
		}
		if err := ledger.ConfigureOrder(user, mustPrice(t, "3000"), 50); err != nil {
			t.Fatal(err)
		}
	}
	balances.set(addr(1), mustWei(t, "12"))
	balances.failing[addr(2)] = errUpstream
	balances.set(addr(3), mustWei(t, "34"))

	result := engine.RunAccrual(context.Background())

	if result.Processed != 2 {
		t.Errorf("Processed = %d, want 2", result.Processed)
	}
	if len(result.Failures) != 1 || result.Failures[0].User != addr(2) {
		t.Fatalf("Failures = %+v, want exactly user 2", result.Failures)
	}
	if result.Err() == nil {
		t.Error("Err() should be non-nil when a user failed")
	}

	// earlier and later users both got their share; the failed one is untouched
	first, _ := ledger.Account(addr(1))
	if !first.PendingToConvert.Equals(mustWei(t, "1")) {
		t.Errorf("user1 pending = %s, want 1 ETH", first.PendingToConvert)
	}
	second, _ := ledger.Account(addr(2))
	if !second.PendingToConvert.IsZero() || !second.LastObservedBalance.Equals(mustWei(t, "20")) {
		t.Errorf("user2 must be untouched, got pending %s snapshot %s",
			second.PendingToConvert, second.LastObservedBalance)
	}
	third, _ := ledger.Account(addr(3))
	if !third.PendingToConvert.Equals(mustWei(t, "2")) {
		t.Errorf("user3 pending = %s, want 2 ETH", third.PendingToConvert)
	}
}

func TestRunAccrualStopsBetweenUsersOnCancel(t *testing.T) {
	balances := newBalances()
	ledger := newLedgerWithUser(t, balances, addr(1), "1", "10", "3000", 50)
	engine := NewAccrualEngine(ledger, balances, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := engine.RunAccrual(ctx)
	if result.Processed != 0 || balances.calls != 0 {
		t.Errorf("cancelled pass processed %d users with %d reads, want none",
			result.Processed, balances.calls)
	}
}
