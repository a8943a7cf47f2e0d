// Package app contains application services and port definitions for the exchange context.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Quote is one priced swap: amountOut the pool would return for amountIn.
type Quote struct {
	AmountIn    *big.Int
	AmountOut   *big.Int
	FeeTier     int
	GasEstimate uint64
}

// Quoter prices a swap on the venue. Implemented by the Uniswap V3 adapter;
// tests use a fixed-rate quoter.
type Quoter interface {
	// QuoteExactInput prices swapping amountIn of tokenIn into tokenOut.
	QuoteExactInput(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) (*Quote, error)
}
