package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/staking-monitor/internal/apperror"
	"github.com/fd1az/staking-monitor/internal/asset"
	"github.com/fd1az/staking-monitor/internal/logger"
)

// RouterServiceConfig holds the swap route and its safety bound.
type RouterServiceConfig struct {
	TokenIn        common.Address // wrapped base asset
	TokenOut       common.Address // stable asset
	MaxSlippageBps decimal.Decimal
}

// RouterService converts base-asset amounts into the stable asset at the
// venue's quoted rate. Settlement against custody is the integrator's
// concern; the service accounts the conversion at the quoted output net of
// the slippage allowance, and fails outright when the venue cannot price
// the swap.
type RouterService struct {
	quoter Quoter
	config RouterServiceConfig
	base   asset.Asset
	stable asset.Asset
	log    logger.LoggerInterface
}

// NewRouterService creates a RouterService converting base into stable.
func NewRouterService(quoter Quoter, cfg RouterServiceConfig, base, stable asset.Asset, log logger.LoggerInterface) *RouterService {
	return &RouterService{
		quoter: quoter,
		config: cfg,
		base:   base,
		stable: stable,
		log:    log,
	}
}

// Convert swaps amountIn of the base asset for the stable asset.
func (s *RouterService) Convert(ctx context.Context, amountIn asset.Amount) (asset.Amount, error) {
	if !amountIn.IsPositive() {
		return asset.Amount{}, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithContext("conversion amount must be positive"))
	}

	quote, err := s.quoter.QuoteExactInput(ctx, s.config.TokenIn, s.config.TokenOut, amountIn.Raw())
	if err != nil {
		return asset.Amount{}, apperror.Wrap(err, apperror.CodeSwapFailed)
	}
	if quote.AmountOut == nil || quote.AmountOut.Sign() <= 0 {
		return asset.Amount{}, apperror.New(apperror.CodeInsufficientLiquidity,
			apperror.WithContext("venue quoted zero output"))
	}

	amountOut := applySlippage(quote.AmountOut, s.config.MaxSlippageBps)

	s.log.Info(ctx, "conversion priced",
		"amount_in", amountIn.String(),
		"quoted_out", quote.AmountOut.String(),
		"credited_out", amountOut.String(),
		"fee_tier", quote.FeeTier,
	)
	return asset.NewAmount(s.stable, amountOut), nil
}

// applySlippage reduces a quoted output by the slippage allowance in basis
// points, truncating toward zero.
func applySlippage(amountOut *big.Int, bps decimal.Decimal) *big.Int {
	if !bps.IsPositive() {
		return new(big.Int).Set(amountOut)
	}
	factor := decimal.NewFromInt(10_000).Sub(bps) // e.g. 9950 for 50 bps
	out := decimal.NewFromBigInt(amountOut, 0).Mul(factor).Div(decimal.NewFromInt(10_000))
	return out.Truncate(0).BigInt()
}
