package app

import (
	"context"

	"github.com/fd1az/staking-monitor/business/monitor/domain"
	"github.com/fd1az/staking-monitor/internal/apperror"
	"github.com/fd1az/staking-monitor/internal/asset"
	"github.com/fd1az/staking-monitor/internal/logger"
)

// ConversionEngine implements the two-phase automation contract: a cheap
// read-only eligibility check, and the pass that actually converts. It is
// the only code that zeroes pending amounts and credits converted balances.
type ConversionEngine struct {
	ledger   *domain.Ledger
	oracle   PriceOracle
	router   SwapRouter
	reporter Reporter
	log      logger.LoggerInterface
}

// NewConversionEngine creates a ConversionEngine over the given ledger and
// ports. reporter may be nil.
func NewConversionEngine(
	ledger *domain.Ledger,
	oracle PriceOracle,
	router SwapRouter,
	reporter Reporter,
	log logger.LoggerInterface,
) *ConversionEngine {
	return &ConversionEngine{
		ledger:   ledger,
		oracle:   oracle,
		router:   router,
		reporter: reporter,
		log:      log,
	}
}

// CheckUpkeep reports whether a conversion pass would do work: true iff some
// watched user has a configured target and the oracle price is strictly
// above it. Equal price does not trigger. Read-only and cheap, meant to be
// polled by a scheduler.
func (e *ConversionEngine) CheckUpkeep(ctx context.Context) (bool, []domain.UserID, error) {
	price, err := e.oracle.LatestPrice(ctx)
	if err != nil {
		return false, nil, apperror.Wrap(err, apperror.CodeOracleUnavailable)
	}

	var eligible []domain.UserID
	for _, user := range e.ledger.Watched() {
		acct, ok := e.ledger.Account(user)
		if !ok {
			continue
		}
		if acct.HasOrder() && price.GreaterThan(acct.TargetPrice) {
			eligible = append(eligible, user)
		}
	}
	return len(eligible) > 0, eligible, nil
}

// PerformUpkeep runs one conversion pass over the whole watchlist. For each
// user with a configured target, oracle price strictly above it and a
// positive pending amount, the pending amount is swapped and the proceeds
// credited. A router failure leaves that user's pending intact and the pass
// continues. Users whose conditions do not hold are untouched, so re-running
// with no intervening accrual is a no-op.
func (e *ConversionEngine) PerformUpkeep(ctx context.Context) (*ConversionResult, error) {
	price, err := e.oracle.LatestPrice(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeOracleUnavailable)
	}
	if e.reporter != nil {
		e.reporter.UpdatePrice(price)
	}

	result := &ConversionResult{}
	for _, user := range e.ledger.Watched() {
		if ctx.Err() != nil {
			break
		}
		result.Processed++

		acct, ok := e.ledger.Account(user)
		if !ok {
			continue
		}
		if !acct.HasOrder() || !price.GreaterThan(acct.TargetPrice) || !acct.PendingToConvert.IsPositive() {
			result.Skipped++
			continue
		}

		conv, err := e.convert(ctx, user, acct.PendingToConvert, price)
		if err != nil {
			result.Failures = append(result.Failures, UserFailure{User: user, Err: err})
			e.log.Warn(ctx, "conversion failed, pending amount left intact",
				"user", user.Hex(), "error", err)
			continue
		}

		result.Conversions = append(result.Conversions, *conv)
		if e.reporter != nil {
			e.reporter.ReportConversion(conv)
		}
	}

	e.log.Info(ctx, "conversion pass finished",
		"processed", result.Processed,
		"converted", len(result.Conversions),
		"skipped", result.Skipped,
		"failures", len(result.Failures),
	)
	return result, nil
}

func (e *ConversionEngine) convert(ctx context.Context, user domain.UserID, amountIn asset.Amount, price asset.Price) (*domain.Conversion, error) {
	amountOut, err := e.router.Convert(ctx, amountIn)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeSwapFailed,
			apperror.WithContext(user.Hex()))
	}

	if err := e.ledger.SettleConversion(user, amountIn, amountOut); err != nil {
		return nil, err
	}

	e.log.Info(ctx, "conversion settled",
		"user", user.Hex(),
		"amount_in", amountIn.String(),
		"amount_out", amountOut.String(),
		"price", price.String(),
	)
	return &domain.Conversion{
		User:      user,
		AmountIn:  amountIn,
		AmountOut: amountOut,
		Price:     price,
	}, nil
}
