// Package di contains dependency injection tokens for the chain context.
package di

import (
	"github.com/fd1az/staking-monitor/business/chain/app"
	"github.com/fd1az/staking-monitor/internal/di"
)

// Public service tokens - exposed to other modules
var (
	BalanceService = di.NewToken[*app.BalanceService]("chain.BalanceService")
)

// Private dependency tokens - internal to chain module
var (
	BalanceReader = di.NewToken[app.BalanceReader]("chain:balanceReader")
)

// Helper functions for type-safe access
func GetBalanceService(c di.ServiceRegistry) *app.BalanceService {
	return di.GetToken(c, BalanceService)
}

func GetBalanceReader(c di.ServiceRegistry) app.BalanceReader {
	return di.GetToken(c, BalanceReader)
}
