// Package infra contains infrastructure adapters for the monitor context.
package infra

import (
	"context"

	"github.com/fd1az/staking-monitor/business/monitor/app"
	"github.com/fd1az/staking-monitor/business/monitor/domain"
	"github.com/fd1az/staking-monitor/internal/asset"
	"github.com/fd1az/staking-monitor/pkg/ui"
)

// Ensure TUIReporter implements the app port.
var _ app.Reporter = (*TUIReporter)(nil)

// TUIReporter implements Reporter by forwarding events to the Bubble Tea
// program as messages. The program itself is owned by main.
type TUIReporter struct{}

// NewTUIReporter creates a new TUIReporter.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{}
}

// Start marks the oracle startup step as in progress.
func (r *TUIReporter) Start(ctx context.Context) error {
	ui.Send(ui.StartupMsg{Step: "oracle", Status: "connecting"})
	return nil
}

// ReportConversion sends a settled conversion to the TUI.
func (r *TUIReporter) ReportConversion(conv *domain.Conversion) {
	ui.Send(ui.ConversionMsg{Conversion: conv})
}

// UpdatePrice sends the current oracle price to the TUI.
func (r *TUIReporter) UpdatePrice(price asset.Price) {
	ui.Send(ui.PriceUpdateMsg{Price: price})
}

// UpdateWatchlist sends the watched accounts to the TUI.
func (r *TUIReporter) UpdateWatchlist(accounts []app.WatchedAccount) {
	ui.Send(ui.WatchlistMsg{Accounts: accounts})
}

// Stop is a no-op; the Bubble Tea program shuts down with main.
func (r *TUIReporter) Stop() error {
	return nil
}
