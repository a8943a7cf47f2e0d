package app

import (
	"context"
	"time"

	"github.com/fd1az/staking-monitor/business/pricing/domain"
	"github.com/fd1az/staking-monitor/internal/apperror"
	"github.com/fd1az/staking-monitor/internal/asset"
	"github.com/fd1az/staking-monitor/internal/cache"
	"github.com/fd1az/staking-monitor/internal/logger"
)

const cacheKey = "latest"

// PricingServiceConfig holds freshness settings for the pricing service.
type PricingServiceConfig struct {
	// StaleAfter rejects primary observations older than this. Zero disables.
	StaleAfter time.Duration

	// CacheTTL bounds how long one observation answers repeated reads.
	CacheTTL time.Duration
}

// PricingService serves the latest price from a primary feed with ordered
// fallbacks behind it. A fresh primary reading wins; a stale or failing
// primary flips to the fallbacks for that read only. A short TTL cache keeps
// tight polling loops from hammering the feeds.
type PricingService struct {
	primary   FeedSource
	fallbacks []FeedSource
	config    PricingServiceConfig
	cache     *cache.Cache[string, domain.Observation]
	log       logger.LoggerInterface
	now       func() time.Time
}

// NewPricingService creates a PricingService. fallbacks are tried in order
// and may be empty.
func NewPricingService(primary FeedSource, fallbacks []FeedSource, cfg PricingServiceConfig, log logger.LoggerInterface) *PricingService {
	return &PricingService{
		primary:   primary,
		fallbacks: fallbacks,
		config:    cfg,
		cache:     cache.New[string, domain.Observation](time.Minute),
		log:       log,
		now:       time.Now,
	}
}

// LatestPrice returns the current price in the oracle's fixed-point scale.
func (s *PricingService) LatestPrice(ctx context.Context) (asset.Price, error) {
	obs, err := s.LatestObservation(ctx)
	if err != nil {
		return asset.ZeroPrice(), err
	}
	return obs.Price, nil
}

// LatestObservation returns the current price with its source and timestamp.
func (s *PricingService) LatestObservation(ctx context.Context) (domain.Observation, error) {
	if obs, found := s.cache.Get(ctx, cacheKey); found {
		return obs, nil
	}

	obs, primaryErr := s.observePrimary(ctx)
	if primaryErr == nil {
		s.cache.Set(ctx, cacheKey, obs, s.config.CacheTTL)
		return obs, nil
	}

	if len(s.fallbacks) == 0 {
		return domain.Observation{}, primaryErr
	}

	s.log.Warn(ctx, "primary feed unusable, trying fallbacks",
		"primary", s.primary.Name(),
		"error", primaryErr,
	)

	for _, fb := range s.fallbacks {
		obs, err := fb.Observe(ctx)
		if err != nil {
			s.log.Warn(ctx, "fallback feed failed",
				"fallback", fb.Name(), "error", err)
			continue
		}
		s.cache.Set(ctx, cacheKey, obs, s.config.CacheTTL)
		return obs, nil
	}

	return domain.Observation{}, apperror.New(apperror.CodeOracleUnavailable,
		apperror.WithCause(primaryErr),
		apperror.WithContext("primary and all fallbacks failed"))
}

func (s *PricingService) observePrimary(ctx context.Context) (domain.Observation, error) {
	obs, err := s.primary.Observe(ctx)
	if err != nil {
		return domain.Observation{}, err
	}
	if obs.IsStale(s.now(), s.config.StaleAfter) {
		return domain.Observation{}, apperror.New(apperror.CodeOracleStalePrice,
			apperror.WithContext(obs.Source))
	}
	return obs, nil
}

// Close releases the service's cache resources.
func (s *PricingService) Close() {
	s.cache.Close()
}
