// Package app contains application services and port definitions for the monitor context.
package app

import (
	"context"

	"github.com/fd1az/staking-monitor/business/monitor/domain"
	"github.com/fd1az/staking-monitor/internal/asset"
)

// PriceOracle reports the current base/stable price in the oracle's
// fixed-point scale. Every call reflects a fresh observation; stale data is
// an error, not a silent fallback.
type PriceOracle interface {
	LatestPrice(ctx context.Context) (asset.Price, error)
}

// SwapRouter converts a base-asset amount into the stable asset. It fails
// rather than degrades: a returned amount means the conversion happened.
type SwapRouter interface {
	Convert(ctx context.Context, amountIn asset.Amount) (asset.Amount, error)
}

// BalanceSource reads the monitored reward-bearing balance of a user.
type BalanceSource interface {
	BalanceOf(ctx context.Context, user domain.UserID) (asset.Amount, error)
}

// WatchedAccount pairs a watchlist entry with a copy of its account, in
// watchlist order. Handed to reporters and the TUI.
type WatchedAccount struct {
	User    domain.UserID
	Account domain.Account
}

// Reporter receives monitor events for display or logging.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// ReportConversion announces one settled conversion.
	ReportConversion(conv *domain.Conversion)

	// UpdatePrice updates the current oracle price display.
	UpdatePrice(price asset.Price)

	// UpdateWatchlist refreshes the per-user account display.
	UpdateWatchlist(accounts []WatchedAccount)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
