// Package di contains dependency injection tokens for the pricing context.
package di

import (
	"github.com/fd1az/staking-monitor/business/pricing/app"
	"github.com/fd1az/staking-monitor/internal/di"
)

// Public service tokens - exposed to other modules
var (
	PricingService = di.NewToken[*app.PricingService]("pricing.PricingService")
)

// Private dependency tokens - internal to pricing module
var (
	PrimaryFeed   = di.NewToken[app.FeedSource]("pricing:primaryFeed")
	FallbackFeeds = di.NewToken[[]app.FeedSource]("pricing:fallbackFeeds")
)

// Helper functions for type-safe access
func GetPricingService(c di.ServiceRegistry) *app.PricingService {
	return di.GetToken(c, PricingService)
}

func GetPrimaryFeed(c di.ServiceRegistry) app.FeedSource {
	return di.GetToken(c, PrimaryFeed)
}

func GetFallbackFeeds(c di.ServiceRegistry) []app.FeedSource {
	return di.GetToken(c, FallbackFeeds)
}
