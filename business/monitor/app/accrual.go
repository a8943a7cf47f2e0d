package app

import (
	"context"

	"github.com/fd1az/staking-monitor/business/monitor/domain"
	"github.com/fd1az/staking-monitor/internal/asset"
	"github.com/fd1az/staking-monitor/internal/logger"
)

// AccrualEngine runs the periodic accrual pass. It is the only writer of
// balance snapshots and the only code that grows pending amounts.
type AccrualEngine struct {
	ledger   *domain.Ledger
	balances BalanceSource
	log      logger.LoggerInterface
}

// NewAccrualEngine creates an AccrualEngine over the given ledger and
// balance source.
func NewAccrualEngine(ledger *domain.Ledger, balances BalanceSource, log logger.LoggerInterface) *AccrualEngine {
	return &AccrualEngine{
		ledger:   ledger,
		balances: balances,
		log:      log,
	}
}

// RunAccrual walks the watchlist in insertion order and accrues each user's
// share of their balance growth. A failed balance read skips that user and
// the pass continues; users already processed keep their updates. Context
// cancellation stops the pass between users, never mid-user.
func (e *AccrualEngine) RunAccrual(ctx context.Context) *AccrualResult {
	result := &AccrualResult{TotalAccrued: asset.Zero(e.ledger.BaseAsset())}

	for _, user := range e.ledger.Watched() {
		if ctx.Err() != nil {
			break
		}

		current, err := e.balances.BalanceOf(ctx, user)
		if err != nil {
			result.Failures = append(result.Failures, UserFailure{User: user, Err: err})
			e.log.Warn(ctx, "accrual skipped user, balance read failed",
				"user", user.Hex(), "error", err)
			continue
		}

		accrued, err := e.ledger.ApplyAccrual(user, current)
		if err != nil {
			result.Failures = append(result.Failures, UserFailure{User: user, Err: err})
			continue
		}

		result.Processed++
		result.TotalAccrued = result.TotalAccrued.MustAdd(accrued)
		if accrued.IsPositive() {
			e.log.Debug(ctx, "accrued pending conversion amount",
				"user", user.Hex(), "accrued", accrued.String())
		}
	}

	e.log.Info(ctx, "accrual pass finished",
		"processed", result.Processed,
		"accrued", result.TotalAccrued.String(),
		"failures", len(result.Failures),
	)
	return result
}
