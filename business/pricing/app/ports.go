// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"

	"github.com/fd1az/staking-monitor/business/pricing/domain"
)

// FeedSource is one price feed: the on-chain aggregator, the exchange REST
// API, or the exchange stream. Observe returns the feed's latest reading or
// an error; it never serves a guess.
type FeedSource interface {
	// Name identifies the source in logs and observations.
	Name() string

	// Observe returns the feed's current price reading.
	Observe(ctx context.Context) (domain.Observation, error)
}
