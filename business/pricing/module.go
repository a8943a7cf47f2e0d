// Package pricing implements the pricing bounded context: the on-chain feed
// primary with exchange fallbacks behind one price service.
package pricing

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/staking-monitor/business/pricing/app"
	pricingDI "github.com/fd1az/staking-monitor/business/pricing/di"
	"github.com/fd1az/staking-monitor/business/pricing/infra/binance"
	"github.com/fd1az/staking-monitor/business/pricing/infra/chainlink"
	"github.com/fd1az/staking-monitor/internal/config"
	"github.com/fd1az/staking-monitor/internal/di"
	"github.com/fd1az/staking-monitor/internal/logger"
	"github.com/fd1az/staking-monitor/internal/monolith"
)

// Module implements the pricing bounded context.
type Module struct{}

// RegisterServices registers all pricing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register primary feed (Chainlink aggregator) - private dependency
	di.RegisterToken(c, pricingDI.PrimaryFeed, func(sr di.ServiceRegistry) app.FeedSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		ethClient := sr.Get("ethClient").(*ethclient.Client)

		feed, err := chainlink.NewFeed(ethClient, chainlink.FeedConfig{
			FeedAddress: cfg.Oracle.FeedAddressHex(),
		}, log)
		if err != nil {
			panic("failed to create chainlink feed: " + err.Error())
		}
		return feed
	})

	// Register fallback feeds (stream first when enabled, then REST) - private
	di.RegisterToken(c, pricingDI.FallbackFeeds, func(sr di.ServiceRegistry) []app.FeedSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		var fallbacks []app.FeedSource

		if cfg.Oracle.StreamEnabled {
			streamCfg := binance.DefaultStreamConfig(cfg.Oracle.FallbackSymbol)
			if cfg.Oracle.StreamURL != "" {
				streamCfg.BaseURL = cfg.Oracle.StreamURL
			}
			stream, err := binance.NewStream(streamCfg, log)
			if err != nil {
				panic("failed to create binance stream: " + err.Error())
			}
			fallbacks = append(fallbacks, stream)
		}

		tickerCfg := binance.DefaultTickerConfig(cfg.Oracle.FallbackSymbol)
		if cfg.Oracle.FallbackURL != "" {
			tickerCfg.BaseURL = cfg.Oracle.FallbackURL
		}
		ticker, err := binance.NewTicker(tickerCfg, log)
		if err != nil {
			panic("failed to create binance ticker: " + err.Error())
		}
		fallbacks = append(fallbacks, ticker)

		return fallbacks
	})

	// Register PricingService (public - exposed to other modules)
	di.RegisterToken(c, pricingDI.PricingService, func(sr di.ServiceRegistry) *app.PricingService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		primary := pricingDI.GetPrimaryFeed(sr)
		fallbacks := pricingDI.GetFallbackFeeds(sr)

		return app.NewPricingService(primary, fallbacks, app.PricingServiceConfig{
			StaleAfter: cfg.Oracle.StaleAfter,
			CacheTTL:   cfg.Oracle.CacheTTL,
		}, log)
	})

	return nil
}

// Startup initializes the pricing module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	// Connect the ticker stream when enabled; a failed connect retries in
	// the background so startup never blocks on the exchange.
	for _, fb := range pricingDI.GetFallbackFeeds(mono.Services()) {
		connector, ok := fb.(interface{ Connect(context.Context) error })
		if !ok {
			continue
		}

		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := connector.Connect(connectCtx)
		cancel()
		if err == nil {
			continue
		}

		log.Warn(ctx, "feed connection failed, will retry in background",
			"feed", fb.Name(), "error", err)
		go func(name string) {
			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(5 * time.Second):
					if err := connector.Connect(ctx); err != nil {
						log.Warn(ctx, "feed retry failed", "feed", name, "error", err)
					} else {
						log.Info(ctx, "feed connected", "feed", name)
						return
					}
				}
			}
		}(fb.Name())
	}

	log.Info(ctx, "pricing module started")
	return nil
}
