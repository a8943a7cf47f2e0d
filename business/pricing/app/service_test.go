package app

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/fd1az/staking-monitor/business/pricing/domain"
	"github.com/fd1az/staking-monitor/internal/apperror"
	"github.com/fd1az/staking-monitor/internal/asset"
	"github.com/fd1az/staking-monitor/internal/logger"
)

type stubFeed struct {
	name  string
	obs   domain.Observation
	err   error
	calls int
}

func (s *stubFeed) Name() string { return s.name }

func (s *stubFeed) Observe(_ context.Context) (domain.Observation, error) {
	s.calls++
	if s.err != nil {
		return domain.Observation{}, s.err
	}
	return s.obs, nil
}

func obsAt(t *testing.T, price string, at time.Time) domain.Observation {
	t.Helper()
	p, err := asset.ParseDecimalPrice(price)
	if err != nil {
		t.Fatalf("parse price %q: %v", price, err)
	}
	return domain.NewObservation(p, "stub", at)
}

func newService(primary FeedSource, fallbacks []FeedSource, staleAfter, cacheTTL time.Duration) *PricingService {
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	return NewPricingService(primary, fallbacks, PricingServiceConfig{
		StaleAfter: staleAfter,
		CacheTTL:   cacheTTL,
	}, log)
}

func TestLatestObservationPrefersFreshPrimary(t *testing.T) {
	now := time.Now()
	primary := &stubFeed{name: "chainlink", obs: obsAt(t, "3000", now)}
	fallback := &stubFeed{name: "binance", obs: obsAt(t, "3001", now)}
	svc := newService(primary, []FeedSource{fallback}, time.Hour, 0)
	defer svc.Close()

	obs, err := svc.LatestObservation(context.Background())
	if err != nil {
		t.Fatalf("LatestObservation() error = %v", err)
	}
	if !obs.Price.Equals(primary.obs.Price) {
		t.Errorf("price = %s, want primary's 3000", obs.Price)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestLatestObservationFallsBackOnPrimaryError(t *testing.T) {
	now := time.Now()
	primary := &stubFeed{name: "chainlink", err: errors.New("rpc down")}
	fallback := &stubFeed{name: "binance", obs: obsAt(t, "3001", now)}
	svc := newService(primary, []FeedSource{fallback}, time.Hour, 0)
	defer svc.Close()

	obs, err := svc.LatestObservation(context.Background())
	if err != nil {
		t.Fatalf("LatestObservation() error = %v", err)
	}
	if !obs.Price.Equals(fallback.obs.Price) {
		t.Errorf("price = %s, want fallback's 3001", obs.Price)
	}
}

func TestLatestObservationFallsBackOnStalePrimary(t *testing.T) {
	now := time.Now()
	primary := &stubFeed{name: "chainlink", obs: obsAt(t, "3000", now.Add(-2*time.Hour))}
	fallback := &stubFeed{name: "binance", obs: obsAt(t, "3001", now)}
	svc := newService(primary, []FeedSource{fallback}, time.Hour, 0)
	defer svc.Close()

	obs, err := svc.LatestObservation(context.Background())
	if err != nil {
		t.Fatalf("LatestObservation() error = %v", err)
	}
	if obs.Source != "stub" || !obs.Price.Equals(fallback.obs.Price) {
		t.Errorf("obs = %+v, want fallback's reading", obs)
	}
}

func TestLatestObservationBothFeedsDown(t *testing.T) {
	primary := &stubFeed{name: "chainlink", err: errors.New("rpc down")}
	fallback := &stubFeed{name: "binance", err: errors.New("http 503")}
	svc := newService(primary, []FeedSource{fallback}, time.Hour, 0)
	defer svc.Close()

	_, err := svc.LatestObservation(context.Background())
	if apperror.GetCode(err) != apperror.CodeOracleUnavailable {
		t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeOracleUnavailable)
	}
}

func TestLatestObservationNoFallbackSurfacesPrimaryError(t *testing.T) {
	primary := &stubFeed{name: "chainlink", err: errors.New("rpc down")}
	svc := newService(primary, nil, time.Hour, 0)
	defer svc.Close()

	if _, err := svc.LatestObservation(context.Background()); err == nil {
		t.Fatal("expected primary error to surface without a fallback")
	}
}

func TestLatestObservationTriesFallbacksInOrder(t *testing.T) {
	now := time.Now()
	primary := &stubFeed{name: "chainlink", err: errors.New("rpc down")}
	stream := &stubFeed{name: "stream", err: errors.New("no ticker yet")}
	rest := &stubFeed{name: "rest", obs: obsAt(t, "3002", now)}
	svc := newService(primary, []FeedSource{stream, rest}, time.Hour, 0)
	defer svc.Close()

	obs, err := svc.LatestObservation(context.Background())
	if err != nil {
		t.Fatalf("LatestObservation() error = %v", err)
	}
	if !obs.Price.Equals(rest.obs.Price) {
		t.Errorf("price = %s, want 3002 from the second fallback", obs.Price)
	}
	if stream.calls != 1 {
		t.Errorf("stream fallback called %d times, want 1", stream.calls)
	}
}

func TestLatestObservationServesFromCache(t *testing.T) {
	now := time.Now()
	primary := &stubFeed{name: "chainlink", obs: obsAt(t, "3000", now)}
	svc := newService(primary, nil, time.Hour, time.Minute)
	defer svc.Close()

	for i := 0; i < 3; i++ {
		if _, err := svc.LatestObservation(context.Background()); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
	}
	if primary.calls != 1 {
		t.Errorf("primary called %d times, want 1 (cached)", primary.calls)
	}
}
