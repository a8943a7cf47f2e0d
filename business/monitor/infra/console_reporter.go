// Package infra contains infrastructure adapters for the monitor context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fd1az/staking-monitor/business/monitor/app"
	"github.com/fd1az/staking-monitor/business/monitor/domain"
	"github.com/fd1az/staking-monitor/internal/asset"
)

// Ensure ConsoleReporter implements the app port.
var _ app.Reporter = (*ConsoleReporter)(nil)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer

	mu        sync.Mutex
	lastPrice asset.Price
}

// NewConsoleReporter creates a new ConsoleReporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{
		out: os.Stdout,
	}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Staking Monitor Started")
	fmt.Fprintln(r.out, "=======================")
	return nil
}

// ReportConversion outputs a settled conversion to the console.
func (r *ConsoleReporter) ReportConversion(conv *domain.Conversion) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintln(r.out, "CONVERSION SETTLED")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "Timestamp:      %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(r.out, "User:           %s\n", conv.User.Hex())
	fmt.Fprintf(r.out, "Converted:      %s\n", conv.AmountIn)
	fmt.Fprintf(r.out, "Credited:       %s\n", conv.AmountOut)
	fmt.Fprintf(r.out, "Oracle Price:   $%s\n", conv.Price.ToDecimal().StringFixed(2))
	fmt.Fprintln(r.out, "================================================================================")
}

// UpdatePrice outputs price changes. Repeated observations of the same price
// stay quiet so the upkeep poll does not flood the console.
func (r *ConsoleReporter) UpdatePrice(price asset.Price) {
	r.mu.Lock()
	changed := !price.Equals(r.lastPrice)
	r.lastPrice = price
	r.mu.Unlock()

	if changed {
		fmt.Fprintf(r.out, "[%s] oracle price: $%s\n",
			time.Now().Format("15:04:05"), price.ToDecimal().StringFixed(2))
	}
}

// UpdateWatchlist is a no-op for the console; accounts are visible through
// conversion output and logs.
func (r *ConsoleReporter) UpdateWatchlist(accounts []app.WatchedAccount) {
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Staking Monitor Stopped")
	return nil
}
