// Package ethereum implements the BalanceReader interface over go-ethereum.
package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/staking-monitor/business/chain/app"
	"github.com/fd1az/staking-monitor/business/chain/domain"
	"github.com/fd1az/staking-monitor/internal/apperror"
	"github.com/fd1az/staking-monitor/internal/asset"
	"github.com/fd1az/staking-monitor/internal/cache"
	"github.com/fd1az/staking-monitor/internal/circuitbreaker"
	"github.com/fd1az/staking-monitor/internal/logger"
)

const (
	tracerName = "chain"
	meterName  = "chain"
)

// Ensure BalanceReader implements the app port.
var _ app.BalanceReader = (*BalanceReader)(nil)

// BalanceReaderConfig holds configuration for the balance reader.
type BalanceReaderConfig struct {
	CacheTTL       time.Duration // how long one reading answers repeat reads
	RequestTimeout time.Duration // per-RPC timeout
}

// DefaultBalanceReaderConfig returns sensible defaults.
func DefaultBalanceReaderConfig() BalanceReaderConfig {
	return BalanceReaderConfig{
		CacheTTL:       12 * time.Second, // ~1 block
		RequestTimeout: 10 * time.Second,
	}
}

// readerMetrics holds OTEL metric instruments.
type readerMetrics struct {
	fetchesTotal metric.Int64Counter
	fetchErrors  metric.Int64Counter
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
}

// BalanceReader reads account balances from an Ethereum node with a short
// TTL cache in front and a circuit breaker around the RPC.
type BalanceReader struct {
	client *ethclient.Client
	config BalanceReaderConfig
	logger logger.LoggerInterface

	snapshots *cache.Cache[common.Address, *domain.BalanceSnapshot]
	cb        *circuitbreaker.CircuitBreaker[*big.Int]

	tracer  trace.Tracer
	metrics *readerMetrics
}

// NewBalanceReader creates a BalanceReader over the given client.
func NewBalanceReader(client *ethclient.Client, cfg BalanceReaderConfig, log logger.LoggerInterface) (*BalanceReader, error) {
	r := &BalanceReader{
		client:    client,
		config:    cfg,
		logger:    log,
		snapshots: cache.New[common.Address, *domain.BalanceSnapshot](5 * time.Minute),
		cb:        circuitbreaker.New[*big.Int](circuitbreaker.DefaultConfig("balance-reader")),
		tracer:    otel.Tracer(tracerName),
	}

	if err := r.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return r, nil
}

func (r *BalanceReader) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	r.metrics = &readerMetrics{}

	r.metrics.fetchesTotal, err = meter.Int64Counter(
		"balance_fetches_total",
		metric.WithDescription("Total balance fetch attempts"),
	)
	if err != nil {
		return err
	}

	r.metrics.fetchErrors, err = meter.Int64Counter(
		"balance_fetch_errors_total",
		metric.WithDescription("Total balance fetch errors"),
	)
	if err != nil {
		return err
	}

	r.metrics.cacheHits, err = meter.Int64Counter(
		"balance_cache_hits_total",
		metric.WithDescription("Balance cache hits"),
	)
	if err != nil {
		return err
	}

	r.metrics.cacheMisses, err = meter.Int64Counter(
		"balance_cache_misses_total",
		metric.WithDescription("Balance cache misses"),
	)
	if err != nil {
		return err
	}

	return nil
}

// ReadBalance returns the address's current balance, served from the cache
// inside one block window.
func (r *BalanceReader) ReadBalance(ctx context.Context, addr common.Address) (*domain.BalanceSnapshot, error) {
	ctx, span := r.tracer.Start(ctx, "chain.read_balance",
		trace.WithAttributes(attribute.String("address", addr.Hex())),
	)
	defer span.End()

	if snap, found := r.snapshots.Get(ctx, addr); found {
		r.metrics.cacheHits.Add(ctx, 1)
		span.AddEvent("cache_hit")
		return snap, nil
	}

	r.metrics.cacheMisses.Add(ctx, 1)
	r.metrics.fetchesTotal.Add(ctx, 1)

	callCtx := ctx
	if r.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.config.RequestTimeout)
		defer cancel()
	}

	wei, err := r.cb.Execute(func() (*big.Int, error) {
		return r.client.BalanceAt(callCtx, addr, nil)
	})
	if err != nil {
		r.metrics.fetchErrors.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, apperror.New(apperror.CodeBalanceFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext(addr.Hex()))
	}

	snap := domain.NewBalanceSnapshot(addr, asset.NewAmount(asset.ETH, wei))
	r.snapshots.Set(ctx, addr, snap, r.config.CacheTTL)

	span.SetAttributes(attribute.String("balance", snap.Amount.String()))
	span.SetStatus(codes.Ok, "fetched")
	r.logger.Debug(ctx, "balance read",
		"address", addr.Hex(), "balance", snap.Amount.String())

	return snap, nil
}

// Close releases the reader's cache resources. The shared eth client is
// owned by the monolith and closed there.
func (r *BalanceReader) Close() error {
	r.snapshots.Close()
	return nil
}
