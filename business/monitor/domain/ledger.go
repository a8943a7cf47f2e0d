package domain

import (
	"fmt"
	"sync"

	"github.com/fd1az/staking-monitor/internal/apperror"
	"github.com/fd1az/staking-monitor/internal/asset"
)

// Ledger owns all per-user accounts and the watchlist. It is an explicit,
// injected store rather than ambient state, and every public method is one
// atomic step: no caller ever observes a partially-applied mutation.
//
// The ledger performs no IO. Callers read external balances and prices and
// feed them in.
type Ledger struct {
	base     asset.Asset
	stable   asset.Asset
	accounts map[UserID]*Account
	watch    *Watchlist
	mu       sync.RWMutex
}

// NewLedger creates an empty ledger accounting in the given assets.
func NewLedger(base, stable asset.Asset) *Ledger {
	return &Ledger{
		base:     base,
		stable:   stable,
		accounts: make(map[UserID]*Account),
		watch:    NewWatchlist(),
	}
}

// BaseAsset returns the monitored base asset.
func (l *Ledger) BaseAsset() asset.Asset {
	return l.base
}

// StableAsset returns the asset conversions are credited in.
func (l *Ledger) StableAsset() asset.Asset {
	return l.stable
}

// Deposit credits amount to the user's deposit total. On first deposit the
// account is created, the user joins the watchlist exactly once, and
// observedBalance becomes the initial accrual snapshot.
func (l *Ledger) Deposit(user UserID, amount, observedBalance asset.Amount) (created bool, err error) {
	if !amount.IsPositive() {
		return false, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithContext(fmt.Sprintf("deposit of %s", amount)))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[user]
	if !ok {
		l.accounts[user] = &Account{
			DepositTotal:        amount,
			LastObservedBalance: observedBalance,
			PendingToConvert:    asset.Zero(l.base),
			ConvertedBalance:    asset.Zero(l.stable),
		}
		l.watch.Append(user)
		return true, nil
	}

	acct.DepositTotal = acct.DepositTotal.MustAdd(amount)
	return false, nil
}

// ConfigureOrder sets the user's target price and conversion percentage.
// Requires a prior deposit; a later call replaces the order, it does not
// stack.
func (l *Ledger) ConfigureOrder(user UserID, target asset.Price, percent uint8) error {
	if percent > 100 {
		return apperror.New(apperror.CodeInvalidPercentage,
			apperror.WithContext(fmt.Sprintf("percentage %d", percent)))
	}
	if !target.IsSet() {
		return apperror.New(apperror.CodeInvalidPrice,
			apperror.WithContext("target price must be positive"))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[user]
	if !ok || !acct.DepositTotal.IsPositive() {
		return apperror.New(apperror.CodeNoDeposit,
			apperror.WithContext(user.Hex()))
	}

	acct.TargetPrice = target
	acct.ConversionPercent = percent
	return nil
}

// ApplyAccrual advances the user's balance snapshot to currentBalance and
// accrues the configured percentage of the positive delta into
// PendingToConvert (truncating integer division). A flat or shrinking
// balance contributes nothing but still advances the snapshot.
//
// Only the accrual pass may call this.
func (l *Ledger) ApplyAccrual(user UserID, currentBalance asset.Amount) (accrued asset.Amount, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[user]
	if !ok {
		return asset.Amount{}, apperror.New(apperror.CodeUserNotWatched,
			apperror.WithContext(user.Hex()))
	}

	accrued = asset.Zero(l.base)
	if delta, derr := currentBalance.Sub(acct.LastObservedBalance); derr == nil {
		accrued = delta.PercentOf(acct.ConversionPercent)
		acct.PendingToConvert = acct.PendingToConvert.MustAdd(accrued)
	}
	acct.LastObservedBalance = currentBalance
	return accrued, nil
}

// SettleConversion zeroes the user's pending amount and credits amountOut to
// their converted balance. amountIn must match the pending amount the caller
// swapped; a mismatch means the settle raced something and is refused.
//
// Only the conversion pass may call this.
func (l *Ledger) SettleConversion(user UserID, amountIn, amountOut asset.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[user]
	if !ok {
		return apperror.New(apperror.CodeUserNotWatched,
			apperror.WithContext(user.Hex()))
	}
	if !acct.PendingToConvert.Equals(amountIn) {
		return apperror.New(apperror.CodeInvalidState,
			apperror.WithContext(fmt.Sprintf("pending %s does not match swapped %s",
				acct.PendingToConvert, amountIn)))
	}

	acct.PendingToConvert = asset.Zero(l.base)
	acct.ConvertedBalance = acct.ConvertedBalance.MustAdd(amountOut)
	return nil
}

// Account returns a copy of the user's account.
func (l *Ledger) Account(user UserID) (Account, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, ok := l.accounts[user]
	if !ok {
		return Account{}, false
	}
	return acct.clone(), true
}

// WatchlistEntry returns the watchlist entry at index i.
func (l *Ledger) WatchlistEntry(i int) (UserID, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.watch.At(i)
}

// WatchlistLen returns the number of watched users.
func (l *Ledger) WatchlistLen() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.watch.Len()
}

// Watched returns all watched users in insertion order.
func (l *Ledger) Watched() []UserID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.watch.All()
}
