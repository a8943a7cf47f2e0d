package binance

import (
	"context"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/fd1az/staking-monitor/internal/logger"
)

func TestParseTickerPrice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantRaw int64
		wantErr bool
	}{
		{"whole number", "3000", 300_000_000_000, false},
		{"with decimals", "3000.12345678", 300_012_345_678, false},
		{"excess precision truncated", "1.0000000009", 100_000_000, false},
		{"garbage", "not-a-price", 0, true},
		{"zero", "0", 0, true},
		{"negative", "-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := parseTickerPrice(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTickerPrice(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if price.Raw().Int64() != tt.wantRaw {
				t.Errorf("raw = %s, want %d", price.Raw(), tt.wantRaw)
			}
		})
	}
}

func TestStreamObserveLifecycle(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	s, err := NewStream(DefaultStreamConfig("ETHUSDT"), log)
	if err != nil {
		t.Fatalf("NewStream() error = %v", err)
	}

	// nothing received yet
	if _, err := s.Observe(context.Background()); err == nil {
		t.Fatal("Observe() before any ticker should fail")
	}

	// raw /ws message
	s.handleMessage(context.Background(),
		[]byte(`{"e":"24hrMiniTicker","E":`+millisNow()+`,"s":"ETHUSDT","c":"3000.50"}`))

	obs, err := s.Observe(context.Background())
	if err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	if obs.Price.Raw().Int64() != 300_050_000_000 {
		t.Errorf("raw price = %s, want 300050000000", obs.Price.Raw())
	}
	if obs.Source != streamSourceName {
		t.Errorf("source = %s, want %s", obs.Source, streamSourceName)
	}

	// combined-stream envelope also parses
	s.handleMessage(context.Background(),
		[]byte(`{"stream":"ethusdt@miniTicker","data":{"e":"24hrMiniTicker","E":`+millisNow()+`,"s":"ETHUSDT","c":"3001"}}`))
	obs, err = s.Observe(context.Background())
	if err != nil {
		t.Fatalf("Observe() after envelope error = %v", err)
	}
	if obs.Price.Raw().Int64() != 300_100_000_000 {
		t.Errorf("raw price = %s, want 300100000000", obs.Price.Raw())
	}
}

func TestStreamObserveRejectsStaleSnapshot(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	cfg := DefaultStreamConfig("ETHUSDT")
	cfg.StaleTimeout = time.Second
	s, err := NewStream(cfg, log)
	if err != nil {
		t.Fatalf("NewStream() error = %v", err)
	}

	stale := time.Now().Add(-time.Minute).UnixMilli()
	s.handleMessage(context.Background(),
		[]byte(`{"e":"24hrMiniTicker","E":`+formatMillis(stale)+`,"s":"ETHUSDT","c":"3000"}`))

	if _, err := s.Observe(context.Background()); err == nil {
		t.Fatal("Observe() should reject a stale snapshot")
	}
}

func millisNow() string {
	return formatMillis(time.Now().UnixMilli())
}

func formatMillis(ms int64) string {
	return strconv.FormatInt(ms, 10)
}
