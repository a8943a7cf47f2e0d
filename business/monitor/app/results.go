package app

import (
	"errors"
	"fmt"

	"github.com/fd1az/staking-monitor/business/monitor/domain"
	"github.com/fd1az/staking-monitor/internal/asset"
)

// UserFailure records one user whose entry in a batch pass failed. The pass
// continues past it; earlier mutations stay applied.
type UserFailure struct {
	User domain.UserID
	Err  error
}

func (f UserFailure) Error() string {
	return fmt.Sprintf("user %s: %v", f.User.Hex(), f.Err)
}

func (f UserFailure) Unwrap() error {
	return f.Err
}

// AccrualResult summarizes one accrual pass.
type AccrualResult struct {
	Processed    int          // users whose snapshot advanced
	TotalAccrued asset.Amount // base-asset amount newly pending across all users
	Failures     []UserFailure
}

// Err joins the per-user failures, nil when the pass was clean.
func (r *AccrualResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// ConversionResult summarizes one conversion pass. A pass that converted
// nothing and failed nothing is a clean no-op, not an error.
type ConversionResult struct {
	Processed   int // watchlist entries inspected
	Skipped     int // entries whose conditions did not hold
	Conversions []domain.Conversion
	Failures    []UserFailure
}

// Err joins the per-user failures, nil when the pass was clean.
func (r *ConversionResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}
