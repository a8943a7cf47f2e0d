// Package di defines the dependency injection tokens for the exchange module.
package di

import (
	exchangeApp "github.com/fd1az/staking-monitor/business/exchange/app"
	"github.com/fd1az/staking-monitor/internal/di"
)

// Public tokens - services exposed to other modules
var (
	// RouterService provides base-to-stable conversion at venue rates
	RouterService = di.NewToken[*exchangeApp.RouterService]("exchange.router_service")
)

// Private tokens - internal to the exchange module
var (
	// Quoter provides the venue quote adapter
	Quoter = di.NewToken[exchangeApp.Quoter]("exchange.quoter")
)

// GetRouterService retrieves the RouterService from the registry.
func GetRouterService(sr di.ServiceRegistry) *exchangeApp.RouterService {
	return di.GetToken(sr, RouterService)
}

// GetQuoter retrieves the quoter from the registry (internal use).
func GetQuoter(sr di.ServiceRegistry) exchangeApp.Quoter {
	return di.GetToken(sr, Quoter)
}
