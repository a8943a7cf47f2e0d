// Package domain contains the pricing context's domain types.
package domain

import (
	"time"

	"github.com/fd1az/staking-monitor/internal/asset"
)

// Observation is one price reading from a feed: the price in the oracle's
// fixed-point scale, where it came from, and when the feed says it was set.
type Observation struct {
	Price      asset.Price
	Source     string
	ObservedAt time.Time
}

// NewObservation creates an Observation.
func NewObservation(price asset.Price, source string, observedAt time.Time) Observation {
	return Observation{Price: price, Source: source, ObservedAt: observedAt}
}

// IsStale reports whether the observation is older than maxAge at now.
// A zero maxAge disables staleness checking.
func (o Observation) IsStale(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	return now.Sub(o.ObservedAt) > maxAge
}
