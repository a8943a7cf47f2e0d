package domain

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/staking-monitor/internal/apperror"
	"github.com/fd1az/staking-monitor/internal/asset"
)

func wei(t *testing.T, v string) asset.Amount {
	t.Helper()
	amt, err := asset.ParseDecimal(asset.ETH, v)
	if err != nil {
		t.Fatalf("parse %q: %v", v, err)
	}
	return amt
}

func dai(t *testing.T, v string) asset.Amount {
	t.Helper()
	amt, err := asset.ParseDecimal(asset.DAI, v)
	if err != nil {
		t.Fatalf("parse %q: %v", v, err)
	}
	return amt
}

func price(t *testing.T, v string) asset.Price {
	t.Helper()
	p, err := asset.ParseDecimalPrice(v)
	if err != nil {
		t.Fatalf("parse price %q: %v", v, err)
	}
	return p
}

func user(b byte) UserID {
	return common.BytesToAddress([]byte{b})
}

func TestDepositCreatesAccountAndWatchlistEntry(t *testing.T) {
	l := NewLedger(asset.ETH, asset.DAI)

	created, err := l.Deposit(user(1), wei(t, "0.01"), wei(t, "99.99"))
	if err != nil {
		t.Fatalf("Deposit() error = %v", err)
	}
	if !created {
		t.Error("first deposit should create the account")
	}

	acct, ok := l.Account(user(1))
	if !ok {
		t.Fatal("account not found after deposit")
	}
	if !acct.DepositTotal.Equals(wei(t, "0.01")) {
		t.Errorf("DepositTotal = %s, want 0.01 ETH", acct.DepositTotal)
	}
	if !acct.LastObservedBalance.Equals(wei(t, "99.99")) {
		t.Errorf("LastObservedBalance = %s, want 99.99 ETH", acct.LastObservedBalance)
	}
	if got, _ := l.WatchlistEntry(0); got != user(1) {
		t.Errorf("watchlist[0] = %s, want %s", got.Hex(), user(1).Hex())
	}
}

func TestDepositIsAdditiveAndWatchlistIsIdempotent(t *testing.T) {
	l := NewLedger(asset.ETH, asset.DAI)

	if _, err := l.Deposit(user(1), wei(t, "0.01"), wei(t, "10")); err != nil {
		t.Fatalf("Deposit() error = %v", err)
	}
	created, err := l.Deposit(user(1), wei(t, "0.03"), wei(t, "11"))
	if err != nil {
		t.Fatalf("Deposit() error = %v", err)
	}
	if created {
		t.Error("second deposit must not recreate the account")
	}

	acct, _ := l.Account(user(1))
	if !acct.DepositTotal.Equals(wei(t, "0.04")) {
		t.Errorf("DepositTotal = %s, want 0.04 ETH", acct.DepositTotal)
	}
	// second deposit must not move the accrual snapshot
	if !acct.LastObservedBalance.Equals(wei(t, "10")) {
		t.Errorf("LastObservedBalance = %s, want 10 ETH", acct.LastObservedBalance)
	}
	if l.WatchlistLen() != 1 {
		t.Errorf("WatchlistLen() = %d, want 1", l.WatchlistLen())
	}
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	l := NewLedger(asset.ETH, asset.DAI)

	_, err := l.Deposit(user(1), asset.Zero(asset.ETH), wei(t, "10"))
	if apperror.GetCode(err) != apperror.CodeInvalidAmount {
		t.Errorf("Deposit(0) code = %s, want %s", apperror.GetCode(err), apperror.CodeInvalidAmount)
	}
	if _, ok := l.Account(user(1)); ok {
		t.Error("rejected deposit must not create an account")
	}
}

func TestConfigureOrderRequiresDeposit(t *testing.T) {
	l := NewLedger(asset.ETH, asset.DAI)

	err := l.ConfigureOrder(user(1), price(t, "3000"), 40)
	if apperror.GetCode(err) != apperror.CodeNoDeposit {
		t.Errorf("ConfigureOrder() code = %s, want %s", apperror.GetCode(err), apperror.CodeNoDeposit)
	}
	if _, ok := l.Account(user(1)); ok {
		t.Error("failed configure must not create state")
	}
}

func TestConfigureOrderStoresNormalizedTargetAndOverwrites(t *testing.T) {
	l := NewLedger(asset.ETH, asset.DAI)
	if _, err := l.Deposit(user(1), wei(t, "0.01"), wei(t, "10")); err != nil {
		t.Fatal(err)
	}

	if err := l.ConfigureOrder(user(1), price(t, "3000"), 40); err != nil {
		t.Fatalf("ConfigureOrder() error = %v", err)
	}
	acct, _ := l.Account(user(1))
	if acct.TargetPrice.Raw().Int64() != 300_000_000_000 { // 3000 * 1e8
		t.Errorf("TargetPrice raw = %s, want 300000000000", acct.TargetPrice.Raw())
	}
	if acct.ConversionPercent != 40 {
		t.Errorf("ConversionPercent = %d, want 40", acct.ConversionPercent)
	}

	// a later call replaces the order, it does not stack
	if err := l.ConfigureOrder(user(1), price(t, "2500"), 10); err != nil {
		t.Fatalf("ConfigureOrder() error = %v", err)
	}
	acct, _ = l.Account(user(1))
	if !acct.TargetPrice.Equals(price(t, "2500")) || acct.ConversionPercent != 10 {
		t.Errorf("order not overwritten: target %s percent %d", acct.TargetPrice, acct.ConversionPercent)
	}
}

func TestConfigureOrderValidatesPercentage(t *testing.T) {
	l := NewLedger(asset.ETH, asset.DAI)
	if _, err := l.Deposit(user(1), wei(t, "1"), wei(t, "10")); err != nil {
		t.Fatal(err)
	}

	err := l.ConfigureOrder(user(1), price(t, "3000"), 101)
	if apperror.GetCode(err) != apperror.CodeInvalidPercentage {
		t.Errorf("ConfigureOrder(101%%) code = %s, want %s", apperror.GetCode(err), apperror.CodeInvalidPercentage)
	}
}

func TestApplyAccrualAccruesPercentageOfDelta(t *testing.T) {
	l := NewLedger(asset.ETH, asset.DAI)
	if _, err := l.Deposit(user(1), wei(t, "0.01"), wei(t, "99.99")); err != nil {
		t.Fatal(err)
	}
	if err := l.ConfigureOrder(user(1), price(t, "3000"), 40); err != nil {
		t.Fatal(err)
	}

	// balance grew by 1 ETH
	accrued, err := l.ApplyAccrual(user(1), wei(t, "100.99"))
	if err != nil {
		t.Fatalf("ApplyAccrual() error = %v", err)
	}
	if !accrued.Equals(wei(t, "0.4")) {
		t.Errorf("accrued = %s, want 0.4 ETH", accrued)
	}

	acct, _ := l.Account(user(1))
	if !acct.PendingToConvert.Equals(wei(t, "0.4")) {
		t.Errorf("PendingToConvert = %s, want 0.4 ETH", acct.PendingToConvert)
	}
	if !acct.LastObservedBalance.Equals(wei(t, "100.99")) {
		t.Errorf("LastObservedBalance = %s, want 100.99 ETH", acct.LastObservedBalance)
	}
}

func TestApplyAccrualIsAdditiveAcrossPasses(t *testing.T) {
	l := NewLedger(asset.ETH, asset.DAI)
	if _, err := l.Deposit(user(1), wei(t, "0.01"), wei(t, "99.99")); err != nil {
		t.Fatal(err)
	}
	if err := l.ConfigureOrder(user(1), price(t, "3000"), 40); err != nil {
		t.Fatal(err)
	}

	if _, err := l.ApplyAccrual(user(1), wei(t, "100.99")); err != nil {
		t.Fatal(err)
	}
	if _, err := l.ApplyAccrual(user(1), wei(t, "101.99")); err != nil {
		t.Fatal(err)
	}

	acct, _ := l.Account(user(1))
	if !acct.PendingToConvert.Equals(wei(t, "0.8")) {
		t.Errorf("PendingToConvert = %s, want 0.8 ETH", acct.PendingToConvert)
	}
}

func TestApplyAccrualNoGrowthIsIdempotent(t *testing.T) {
	l := NewLedger(asset.ETH, asset.DAI)
	if _, err := l.Deposit(user(1), wei(t, "0.01"), wei(t, "50")); err != nil {
		t.Fatal(err)
	}
	if err := l.ConfigureOrder(user(1), price(t, "3000"), 40); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		accrued, err := l.ApplyAccrual(user(1), wei(t, "50"))
		if err != nil {
			t.Fatalf("ApplyAccrual() error = %v", err)
		}
		if !accrued.IsZero() {
			t.Errorf("pass %d accrued %s, want zero", i, accrued)
		}
	}

	acct, _ := l.Account(user(1))
	if !acct.PendingToConvert.IsZero() {
		t.Errorf("PendingToConvert = %s, want zero", acct.PendingToConvert)
	}
}

func TestApplyAccrualNegativeDeltaAdvancesSnapshotOnly(t *testing.T) {
	l := NewLedger(asset.ETH, asset.DAI)
	if _, err := l.Deposit(user(1), wei(t, "0.01"), wei(t, "50")); err != nil {
		t.Fatal(err)
	}
	if err := l.ConfigureOrder(user(1), price(t, "3000"), 40); err != nil {
		t.Fatal(err)
	}

	accrued, err := l.ApplyAccrual(user(1), wei(t, "49"))
	if err != nil {
		t.Fatalf("ApplyAccrual() error = %v", err)
	}
	if !accrued.IsZero() {
		t.Errorf("accrued = %s, want zero for shrinking balance", accrued)
	}

	acct, _ := l.Account(user(1))
	if !acct.LastObservedBalance.Equals(wei(t, "49")) {
		t.Errorf("LastObservedBalance = %s, want 49 ETH", acct.LastObservedBalance)
	}
	if !acct.PendingToConvert.IsZero() {
		t.Errorf("PendingToConvert = %s, want zero", acct.PendingToConvert)
	}
}

func TestSettleConversionZeroesPendingAndCreditsOutput(t *testing.T) {
	l := NewLedger(asset.ETH, asset.DAI)
	if _, err := l.Deposit(user(1), wei(t, "0.01"), wei(t, "99.99")); err != nil {
		t.Fatal(err)
	}
	if err := l.ConfigureOrder(user(1), price(t, "3000"), 40); err != nil {
		t.Fatal(err)
	}
	if _, err := l.ApplyAccrual(user(1), wei(t, "100.99")); err != nil {
		t.Fatal(err)
	}

	if err := l.SettleConversion(user(1), wei(t, "0.4"), dai(t, "1200")); err != nil {
		t.Fatalf("SettleConversion() error = %v", err)
	}

	acct, _ := l.Account(user(1))
	if !acct.PendingToConvert.IsZero() {
		t.Errorf("PendingToConvert = %s, want zero", acct.PendingToConvert)
	}
	if !acct.ConvertedBalance.Equals(dai(t, "1200")) {
		t.Errorf("ConvertedBalance = %s, want 1200 DAI", acct.ConvertedBalance)
	}
	// the order survives the conversion
	if !acct.TargetPrice.Equals(price(t, "3000")) || acct.ConversionPercent != 40 {
		t.Error("target price / percent must be unchanged by settlement")
	}
}

func TestSettleConversionRefusesMismatchedAmount(t *testing.T) {
	l := NewLedger(asset.ETH, asset.DAI)
	if _, err := l.Deposit(user(1), wei(t, "0.01"), wei(t, "99.99")); err != nil {
		t.Fatal(err)
	}
	if err := l.ConfigureOrder(user(1), price(t, "3000"), 40); err != nil {
		t.Fatal(err)
	}
	if _, err := l.ApplyAccrual(user(1), wei(t, "100.99")); err != nil {
		t.Fatal(err)
	}

	err := l.SettleConversion(user(1), wei(t, "0.3"), dai(t, "900"))
	if apperror.GetCode(err) != apperror.CodeInvalidState {
		t.Errorf("SettleConversion() code = %s, want %s", apperror.GetCode(err), apperror.CodeInvalidState)
	}

	acct, _ := l.Account(user(1))
	if !acct.PendingToConvert.Equals(wei(t, "0.4")) {
		t.Errorf("PendingToConvert = %s, want 0.4 ETH untouched", acct.PendingToConvert)
	}
}

func TestApplyAccrualUnknownUser(t *testing.T) {
	l := NewLedger(asset.ETH, asset.DAI)
	_, err := l.ApplyAccrual(user(9), wei(t, "1"))
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperror.CodeUserNotWatched {
		t.Errorf("ApplyAccrual(unknown) = %v, want %s", err, apperror.CodeUserNotWatched)
	}
}
