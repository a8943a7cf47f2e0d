package app

import (
	"context"
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/staking-monitor/internal/apperror"
	"github.com/fd1az/staking-monitor/internal/asset"
	"github.com/fd1az/staking-monitor/internal/logger"
)

type stubQuoter struct {
	quote *Quote
	err   error
}

func (s *stubQuoter) QuoteExactInput(_ context.Context, _, _ common.Address, amountIn *big.Int) (*Quote, error) {
	if s.err != nil {
		return nil, s.err
	}
	q := *s.quote
	q.AmountIn = amountIn
	return &q, nil
}

func newRouter(q Quoter, slippageBps int64) *RouterService {
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	return NewRouterService(q, RouterServiceConfig{
		TokenIn:        common.HexToAddress("0x1"),
		TokenOut:       common.HexToAddress("0x2"),
		MaxSlippageBps: decimal.NewFromInt(slippageBps),
	}, asset.ETH, asset.DAI, log)
}

func TestConvertCreditsQuotedOutputNetOfSlippage(t *testing.T) {
	quoted, _ := new(big.Int).SetString("1240000000000000000000", 10) // 1240 DAI
	router := newRouter(&stubQuoter{quote: &Quote{AmountOut: quoted, FeeTier: 3000}}, 50)

	amountIn, err := asset.ParseDecimal(asset.ETH, "0.4")
	if err != nil {
		t.Fatal(err)
	}

	out, err := router.Convert(context.Background(), amountIn)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	// 1240 DAI minus 50 bps = 1233.8 DAI
	want, _ := asset.ParseDecimal(asset.DAI, "1233.8")
	if !out.Equals(want) {
		t.Errorf("out = %s, want 1233.8 DAI", out)
	}
}

func TestConvertZeroSlippagePassesQuoteThrough(t *testing.T) {
	quoted := big.NewInt(1_000_000)
	router := newRouter(&stubQuoter{quote: &Quote{AmountOut: quoted}}, 0)

	out, err := router.Convert(context.Background(), asset.NewAmountFromInt64(asset.ETH, 500))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out.Raw().Int64() != 1_000_000 {
		t.Errorf("out raw = %s, want 1000000", out.Raw())
	}
}

func TestConvertRejectsNonPositiveInput(t *testing.T) {
	router := newRouter(&stubQuoter{quote: &Quote{AmountOut: big.NewInt(1)}}, 0)

	_, err := router.Convert(context.Background(), asset.Zero(asset.ETH))
	if apperror.GetCode(err) != apperror.CodeInvalidAmount {
		t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeInvalidAmount)
	}
}

func TestConvertQuoterFailure(t *testing.T) {
	router := newRouter(&stubQuoter{err: errors.New("no pool")}, 0)

	_, err := router.Convert(context.Background(), asset.NewAmountFromInt64(asset.ETH, 1))
	if apperror.GetCode(err) != apperror.CodeSwapFailed {
		t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeSwapFailed)
	}
}

func TestConvertZeroQuoteIsInsufficientLiquidity(t *testing.T) {
	router := newRouter(&stubQuoter{quote: &Quote{AmountOut: big.NewInt(0)}}, 0)

	_, err := router.Convert(context.Background(), asset.NewAmountFromInt64(asset.ETH, 1))
	if apperror.GetCode(err) != apperror.CodeInsufficientLiquidity {
		t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeInsufficientLiquidity)
	}
}
