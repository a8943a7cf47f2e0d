// Package chainlink implements the FeedSource interface over a Chainlink
// AggregatorV3 on-chain price feed.
package chainlink

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/staking-monitor/business/pricing/app"
	"github.com/fd1az/staking-monitor/business/pricing/domain"
	"github.com/fd1az/staking-monitor/internal/apperror"
	"github.com/fd1az/staking-monitor/internal/asset"
	"github.com/fd1az/staking-monitor/internal/circuitbreaker"
	"github.com/fd1az/staking-monitor/internal/logger"
)

const (
	tracerName = "chainlink"
	meterName  = "chainlink"

	sourceName = "chainlink"
)

// Ensure Feed implements FeedSource.
var _ app.FeedSource = (*Feed)(nil)

// FeedConfig holds configuration for the aggregator feed.
type FeedConfig struct {
	FeedAddress common.Address // AggregatorV3 contract
}

// feedMetrics holds OTEL metric instruments.
type feedMetrics struct {
	readsTotal  metric.Int64Counter
	readErrors  metric.Int64Counter
	answerGauge metric.Float64Gauge
}

// Feed reads latestRoundData from an AggregatorV3 contract and normalizes
// the answer into the service-wide oracle scale.
type Feed struct {
	client  *ethclient.Client
	config  FeedConfig
	abi     abi.ABI
	logger  logger.LoggerInterface
	cb      *circuitbreaker.CircuitBreaker[[]byte]
	tracer  trace.Tracer
	metrics *feedMetrics

	// feed decimals, fetched once on first read
	decimals   uint8
	decimalsOK bool
	decimalsMu sync.Mutex
}

// NewFeed creates a Feed over the given client.
func NewFeed(client *ethclient.Client, cfg FeedConfig, log logger.LoggerInterface) (*Feed, error) {
	parsedABI, err := abi.JSON(strings.NewReader(AggregatorV3ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse aggregator ABI: %w", err)
	}

	f := &Feed{
		client: client,
		config: cfg,
		abi:    parsedABI,
		logger: log,
		cb:     circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("chainlink-feed")),
		tracer: otel.Tracer(tracerName),
	}

	if err := f.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return f, nil
}

func (f *Feed) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	f.metrics = &feedMetrics{}

	f.metrics.readsTotal, err = meter.Int64Counter(
		"chainlink_feed_reads_total",
		metric.WithDescription("Total aggregator read attempts"),
	)
	if err != nil {
		return err
	}

	f.metrics.readErrors, err = meter.Int64Counter(
		"chainlink_feed_read_errors_total",
		metric.WithDescription("Total aggregator read errors"),
	)
	if err != nil {
		return err
	}

	f.metrics.answerGauge, err = meter.Float64Gauge(
		"chainlink_feed_answer",
		metric.WithDescription("Latest aggregator answer in quote units"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Name identifies the feed in logs and observations.
func (f *Feed) Name() string {
	return sourceName
}

// Observe reads latestRoundData and returns the answer at oracle scale with
// the round's update time.
func (f *Feed) Observe(ctx context.Context) (domain.Observation, error) {
	ctx, span := f.tracer.Start(ctx, "chainlink.observe",
		trace.WithAttributes(attribute.String("feed", f.config.FeedAddress.Hex())),
	)
	defer span.End()

	f.metrics.readsTotal.Add(ctx, 1)

	feedDecimals, err := f.feedDecimals(ctx)
	if err != nil {
		f.metrics.readErrors.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "decimals read failed")
		return domain.Observation{}, err
	}

	answer, updatedAt, err := f.latestRoundData(ctx)
	if err != nil {
		f.metrics.readErrors.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "round read failed")
		return domain.Observation{}, err
	}

	if answer.Sign() <= 0 {
		f.metrics.readErrors.Add(ctx, 1)
		err := apperror.New(apperror.CodeFeedCallFailed,
			apperror.WithContext(fmt.Sprintf("non-positive answer %s", answer)))
		span.RecordError(err)
		return domain.Observation{}, err
	}

	price, err := normalizeAnswer(answer, feedDecimals)
	if err != nil {
		f.metrics.readErrors.Add(ctx, 1)
		span.RecordError(err)
		return domain.Observation{}, err
	}

	f.metrics.answerGauge.Record(ctx, price.ToDecimal().InexactFloat64())
	span.SetAttributes(
		attribute.String("price", price.String()),
		attribute.Int64("updated_at", updatedAt.Unix()),
	)
	span.SetStatus(codes.Ok, "observed")

	return domain.NewObservation(price, sourceName, updatedAt), nil
}

func (f *Feed) latestRoundData(ctx context.Context) (*big.Int, time.Time, error) {
	callData, err := f.abi.Pack("latestRoundData")
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to encode call: %w", err)
	}

	result, err := f.cb.Execute(func() ([]byte, error) {
		return f.client.CallContract(ctx, ethereum.CallMsg{
			To:   &f.config.FeedAddress,
			Data: callData,
		}, nil)
	})
	if err != nil {
		return nil, time.Time{}, apperror.New(apperror.CodeFeedCallFailed,
			apperror.WithCause(err),
			apperror.WithContext("latestRoundData call failed"))
	}

	outputs, err := f.abi.Unpack("latestRoundData", result)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode result: %w", err)
	}
	if len(outputs) < 5 {
		return nil, time.Time{}, fmt.Errorf("unexpected output length: %d", len(outputs))
	}

	answer := outputs[1].(*big.Int)
	updatedAt := time.Unix(outputs[3].(*big.Int).Int64(), 0)
	return answer, updatedAt, nil
}

// feedDecimals reads the feed's decimals once and caches it for the
// adapter's lifetime; feeds never change their scale.
func (f *Feed) feedDecimals(ctx context.Context) (uint8, error) {
	f.decimalsMu.Lock()
	defer f.decimalsMu.Unlock()

	if f.decimalsOK {
		return f.decimals, nil
	}

	callData, err := f.abi.Pack("decimals")
	if err != nil {
		return 0, fmt.Errorf("failed to encode call: %w", err)
	}

	result, err := f.cb.Execute(func() ([]byte, error) {
		return f.client.CallContract(ctx, ethereum.CallMsg{
			To:   &f.config.FeedAddress,
			Data: callData,
		}, nil)
	})
	if err != nil {
		return 0, apperror.New(apperror.CodeFeedCallFailed,
			apperror.WithCause(err),
			apperror.WithContext("decimals call failed"))
	}

	outputs, err := f.abi.Unpack("decimals", result)
	if err != nil {
		return 0, fmt.Errorf("failed to decode result: %w", err)
	}
	if len(outputs) < 1 {
		return 0, fmt.Errorf("unexpected output length: %d", len(outputs))
	}

	f.decimals = outputs[0].(uint8)
	f.decimalsOK = true
	f.logger.Debug(ctx, "feed decimals resolved",
		"feed", f.config.FeedAddress.Hex(), "decimals", f.decimals)
	return f.decimals, nil
}

// normalizeAnswer rescales a feed answer to the oracle's fixed-point scale.
func normalizeAnswer(answer *big.Int, feedDecimals uint8) (asset.Price, error) {
	scaled := new(big.Int).Set(answer)
	switch {
	case feedDecimals < asset.OracleDecimals:
		shift := int64(asset.OracleDecimals - feedDecimals)
		scaled.Mul(scaled, new(big.Int).Exp(big.NewInt(10), big.NewInt(shift), nil))
	case feedDecimals > asset.OracleDecimals:
		shift := int64(feedDecimals - asset.OracleDecimals)
		scaled.Div(scaled, new(big.Int).Exp(big.NewInt(10), big.NewInt(shift), nil))
	}
	return asset.NewPrice(scaled)
}
