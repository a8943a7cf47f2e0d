// Package binance implements FeedSource adapters over the Binance spot API:
// a REST ticker used as the oracle fallback, and an optional WebSocket
// stream that keeps the latest ticker in memory.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/staking-monitor/business/pricing/app"
	"github.com/fd1az/staking-monitor/business/pricing/domain"
	"github.com/fd1az/staking-monitor/internal/apperror"
	"github.com/fd1az/staking-monitor/internal/asset"
	"github.com/fd1az/staking-monitor/internal/httpclient"
	"github.com/fd1az/staking-monitor/internal/logger"
)

const (
	tracerName = "binance"
	meterName  = "binance"

	// Binance REST API endpoints
	BaseAPIURL   = "https://api.binance.com"
	BaseAPIURLUS = "https://api.binance.us"

	tickerEndpoint = "/api/v3/ticker/price"

	httpTimeout = 10 * time.Second

	restSourceName = "binance-rest"
)

// Ensure Ticker implements FeedSource.
var _ app.FeedSource = (*Ticker)(nil)

// TickerConfig holds configuration for the REST ticker source.
type TickerConfig struct {
	BaseURL string        // API base URL (empty = default)
	Symbol  string        // e.g. "ETHUSDT"
	Timeout time.Duration // Request timeout
}

// DefaultTickerConfig returns sensible defaults for a symbol.
func DefaultTickerConfig(symbol string) TickerConfig {
	return TickerConfig{
		BaseURL: BaseAPIURL,
		Symbol:  symbol,
		Timeout: httpTimeout,
	}
}

// Ticker fetches the spot price for one symbol via the REST API. Used as the
// oracle fallback when the on-chain feed is unusable.
type Ticker struct {
	client httpclient.Client
	config TickerConfig
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewTicker creates a REST ticker source.
func NewTicker(cfg TickerConfig, log logger.LoggerInterface) (*Ticker, error) {
	if cfg.Symbol == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("ticker symbol required"))
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseAPIURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("binance"),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Ticker{
		client: client,
		config: cfg,
		logger: log,
		tracer: tracer,
	}, nil
}

// TickerResponse is the REST API response for a symbol price.
type TickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// Name identifies the source in logs and observations.
func (t *Ticker) Name() string {
	return restSourceName
}

// Observe fetches the current spot price for the configured symbol.
func (t *Ticker) Observe(ctx context.Context) (domain.Observation, error) {
	ctx, span := t.tracer.Start(ctx, "binance.http.get_ticker",
		trace.WithAttributes(attribute.String("symbol", t.config.Symbol)),
	)
	defer span.End()

	var result TickerResponse
	resp, err := t.client.NewRequestWithOptions(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "ticker"),
			httpclient.NewLabel("symbol", t.config.Symbol),
		),
		httpclient.WithResponseErrorHandler(binanceErrorHandler),
	).
		SetQueryParam("symbol", t.config.Symbol).
		SetResult(&result).
		Get(ctx, tickerEndpoint)

	if err != nil {
		span.RecordError(err)
		return domain.Observation{}, apperror.New(apperror.CodeBinanceConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch ticker from REST API"))
	}

	if resp.IsError() {
		return domain.Observation{}, apperror.New(apperror.CodeBinanceAPIError,
			apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	price, err := parseTickerPrice(result.Price)
	if err != nil {
		span.RecordError(err)
		return domain.Observation{}, err
	}

	span.SetAttributes(attribute.String("price", price.String()))
	t.logger.Debug(ctx, "fetched ticker via HTTP",
		"symbol", t.config.Symbol, "price", price.String())

	return domain.NewObservation(price, restSourceName, time.Now()), nil
}

// parseTickerPrice converts a Binance price string to the oracle scale.
func parseTickerPrice(value string) (asset.Price, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return asset.ZeroPrice(), apperror.New(apperror.CodeTickerParseFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("price %q", value)))
	}
	price, err := asset.PriceFromDecimal(d)
	if err != nil {
		return asset.ZeroPrice(), apperror.New(apperror.CodeTickerParseFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("price %q", value)))
	}
	return price, nil
}

// BinanceAPIError represents an error response from the Binance API.
type BinanceAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *BinanceAPIError) Error() string {
	return fmt.Sprintf("binance API error %d: %s", e.Code, e.Message)
}

// binanceErrorHandler parses Binance API error responses.
func binanceErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr BinanceAPIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}
