// Package ui provides the Bubble Tea TUI for the staking monitor.
package ui

import (
	"github.com/fd1az/staking-monitor/business/monitor/app"
	"github.com/fd1az/staking-monitor/business/monitor/domain"
	"github.com/fd1az/staking-monitor/internal/asset"
)

// Message types for TUI updates

// ConversionMsg is sent when a conversion settles.
type ConversionMsg struct {
	Conversion *domain.Conversion
}

// PriceUpdateMsg is sent when the oracle price is refreshed.
type PriceUpdateMsg struct {
	Price asset.Price
}

// WatchlistMsg is sent when the watched accounts change.
type WatchlistMsg struct {
	Accounts []app.WatchedAccount
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // Current step name
	Status  string // "connecting", "connected", "failed"
	Message string // Optional message
}
