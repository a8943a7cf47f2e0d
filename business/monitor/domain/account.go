// Package domain contains the core domain types for the monitor context:
// per-user accounts, the watchlist, and the ledger that owns both.
package domain

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/staking-monitor/internal/asset"
)

// UserID identifies a monitored user by their on-chain address.
type UserID = common.Address

// Account is the per-user bookkeeping record.
//
// Field ownership is strict: DepositTotal, TargetPrice and ConversionPercent
// are written by user-initiated calls only; LastObservedBalance and accrual
// into PendingToConvert belong to the accrual pass; zeroing PendingToConvert
// and crediting ConvertedBalance belong to the conversion pass.
type Account struct {
	// DepositTotal is the cumulative base-asset amount deposited into
	// custody. Never decreased; there is no withdrawal path.
	DepositTotal asset.Amount

	// LastObservedBalance is the monitored balance as of the last accrual
	// pass. Initialized at deposit time, advanced on every pass.
	LastObservedBalance asset.Amount

	// PendingToConvert accumulates the base-asset amount awaiting
	// conversion. Grows only via accrual, resets to zero only on a
	// successful conversion.
	PendingToConvert asset.Amount

	// TargetPrice is the user's threshold in the oracle's fixed-point
	// scale. The zero sentinel means no order is configured.
	TargetPrice asset.Price

	// ConversionPercent is the share of each accrual delta routed to
	// PendingToConvert, in [0,100].
	ConversionPercent uint8

	// ConvertedBalance is the cumulative stable-asset amount credited by
	// successful conversions.
	ConvertedBalance asset.Amount
}

// HasOrder reports whether the user has configured a target price.
func (a *Account) HasOrder() bool {
	return a.TargetPrice.IsSet()
}

// clone returns a defensive copy safe to hand to readers.
func (a *Account) clone() Account {
	return Account{
		DepositTotal:        a.DepositTotal,
		LastObservedBalance: a.LastObservedBalance,
		PendingToConvert:    a.PendingToConvert,
		TargetPrice:         a.TargetPrice,
		ConversionPercent:   a.ConversionPercent,
		ConvertedBalance:    a.ConvertedBalance,
	}
}

// Conversion records one executed conversion for reporting.
type Conversion struct {
	User      UserID
	AmountIn  asset.Amount // base asset consumed
	AmountOut asset.Amount // stable asset credited
	Price     asset.Price  // oracle price at execution
}
