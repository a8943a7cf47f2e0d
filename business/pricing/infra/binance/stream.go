package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/staking-monitor/business/pricing/app"
	"github.com/fd1az/staking-monitor/business/pricing/domain"
	"github.com/fd1az/staking-monitor/internal/apperror"
	"github.com/fd1az/staking-monitor/internal/logger"
	"github.com/fd1az/staking-monitor/internal/wsconn"
)

const (
	// Binance WebSocket endpoints
	BaseWSURL     = "wss://stream.binance.com:9443"
	DataStreamURL = "wss://data-stream.binance.vision"

	streamSourceName = "binance-stream"
)

// Ensure Stream implements FeedSource.
var _ app.FeedSource = (*Stream)(nil)

// StreamConfig holds configuration for the WebSocket ticker stream.
type StreamConfig struct {
	BaseURL      string        // WebSocket base URL (empty = default)
	Symbol       string        // e.g. "ETHUSDT"
	StaleTimeout time.Duration // reject observations older than this
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultStreamConfig returns sensible defaults for a symbol.
func DefaultStreamConfig(symbol string) StreamConfig {
	return StreamConfig{
		BaseURL:      BaseWSURL,
		Symbol:       symbol,
		StaleTimeout: 30 * time.Second,
		ReadTimeout:  90 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// streamMetrics holds OTEL metric instruments.
type streamMetrics struct {
	messagesReceived metric.Int64Counter
	parseErrors      metric.Int64Counter
}

// Stream subscribes to the symbol's miniTicker stream and keeps the most
// recent price in memory. Observe answers from that snapshot, so it is a
// zero-latency source while the stream is healthy.
type Stream struct {
	config StreamConfig
	logger logger.LoggerInterface

	conn   *wsconn.Client
	connMu sync.RWMutex

	latest   domain.Observation
	latestOK bool
	latestMu sync.RWMutex

	tracer  trace.Tracer
	metrics *streamMetrics
}

// NewStream creates a ticker stream source. Connect must be called before
// Observe returns data.
func NewStream(cfg StreamConfig, log logger.LoggerInterface) (*Stream, error) {
	if cfg.Symbol == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("stream symbol required"))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseWSURL
	}

	s := &Stream{
		config: cfg,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}
	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return s, nil
}

func (s *Stream) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &streamMetrics{}

	s.metrics.messagesReceived, err = meter.Int64Counter(
		"binance_stream_messages_total",
		metric.WithDescription("Total stream messages received"),
	)
	if err != nil {
		return err
	}

	s.metrics.parseErrors, err = meter.Int64Counter(
		"binance_stream_parse_errors_total",
		metric.WithDescription("Stream message parse errors"),
	)
	if err != nil {
		return err
	}

	return nil
}

// miniTickerEvent is the payload of a <symbol>@miniTicker stream message.
type miniTickerEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"` // milliseconds
	Symbol    string `json:"s"`
	Close     string `json:"c"`
}

// streamEnvelope wraps combined-stream messages.
type streamEnvelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// Connect dials the stream and starts consuming ticker updates.
func (s *Stream) Connect(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "binance.stream.connect",
		trace.WithAttributes(attribute.String("symbol", s.config.Symbol)),
	)
	defer span.End()

	wsURL, err := s.buildStreamURL()
	if err != nil {
		return err
	}

	wsCfg := wsconn.DefaultConfig(wsURL, "binance")
	wsCfg.ReadTimeout = s.config.ReadTimeout
	wsCfg.WriteTimeout = s.config.WriteTimeout

	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return apperror.New(apperror.CodeBinanceConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to create wsconn"))
	}
	conn.OnMessage(s.handleMessage)

	if err := conn.ConnectWithRetry(ctx); err != nil {
		return apperror.New(apperror.CodeBinanceConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to connect ticker stream"))
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	s.logger.Info(ctx, "binance ticker stream connected",
		"url", wsURL, "symbol", s.config.Symbol)
	return nil
}

func (s *Stream) buildStreamURL() (string, error) {
	u, err := url.Parse(s.config.BaseURL)
	if err != nil {
		return "", err
	}
	u.Path = "/ws/" + strings.ToLower(s.config.Symbol) + "@miniTicker"
	return u.String(), nil
}

func (s *Stream) handleMessage(ctx context.Context, data []byte) {
	s.metrics.messagesReceived.Add(ctx, 1)

	payload := data
	var envelope streamEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Data) > 0 {
		payload = envelope.Data
	}

	var event miniTickerEvent
	if err := json.Unmarshal(payload, &event); err != nil || event.Close == "" {
		s.metrics.parseErrors.Add(ctx, 1)
		return
	}

	price, err := parseTickerPrice(event.Close)
	if err != nil {
		s.metrics.parseErrors.Add(ctx, 1)
		s.logger.Warn(ctx, "unparseable ticker price", "error", err)
		return
	}

	observedAt := time.UnixMilli(event.EventTime)
	if event.EventTime == 0 {
		observedAt = time.Now()
	}

	s.latestMu.Lock()
	s.latest = domain.NewObservation(price, streamSourceName, observedAt)
	s.latestOK = true
	s.latestMu.Unlock()
}

// Name identifies the source in logs and observations.
func (s *Stream) Name() string {
	return streamSourceName
}

// Observe returns the most recent streamed price. It fails when nothing has
// arrived yet or the snapshot is older than StaleTimeout.
func (s *Stream) Observe(_ context.Context) (domain.Observation, error) {
	s.latestMu.RLock()
	obs, ok := s.latest, s.latestOK
	s.latestMu.RUnlock()

	if !ok {
		return domain.Observation{}, apperror.New(apperror.CodeOracleUnavailable,
			apperror.WithContext("no ticker received yet"))
	}
	if obs.IsStale(time.Now(), s.config.StaleTimeout) {
		return domain.Observation{}, apperror.New(apperror.CodeOracleStalePrice,
			apperror.WithContext(streamSourceName))
	}
	return obs, nil
}

// IsConnected reports whether the stream connection is live.
func (s *Stream) IsConnected() bool {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return s.conn != nil && s.conn.IsConnected()
}

// Close shuts the stream down.
func (s *Stream) Close() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
