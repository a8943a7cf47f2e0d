// Package chain implements the chain bounded context: reading the monitored
// on-chain balances that accrual passes diff against.
package chain

import (
	"context"

	ethclientlib "github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/staking-monitor/business/chain/app"
	chainDI "github.com/fd1az/staking-monitor/business/chain/di"
	"github.com/fd1az/staking-monitor/business/chain/infra/ethereum"
	"github.com/fd1az/staking-monitor/internal/config"
	"github.com/fd1az/staking-monitor/internal/di"
	"github.com/fd1az/staking-monitor/internal/logger"
	"github.com/fd1az/staking-monitor/internal/monolith"
)

// Module implements the chain bounded context.
type Module struct{}

// RegisterServices registers all chain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register BalanceReader (Ethereum node) - private dependency
	di.RegisterToken(c, chainDI.BalanceReader, func(sr di.ServiceRegistry) app.BalanceReader {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		ethClient := sr.Get("ethClient").(*ethclientlib.Client)

		readerCfg := ethereum.DefaultBalanceReaderConfig()
		if cfg.Ethereum.BalanceTTL > 0 {
			readerCfg.CacheTTL = cfg.Ethereum.BalanceTTL
		}
		if cfg.Ethereum.RequestTimeout > 0 {
			readerCfg.RequestTimeout = cfg.Ethereum.RequestTimeout
		}

		reader, err := ethereum.NewBalanceReader(ethClient, readerCfg, log)
		if err != nil {
			panic("failed to create balance reader: " + err.Error())
		}
		return reader
	})

	// Register BalanceService (public - exposed to other modules)
	di.RegisterToken(c, chainDI.BalanceService, func(sr di.ServiceRegistry) *app.BalanceService {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewBalanceService(chainDI.GetBalanceReader(sr), log)
	})

	return nil
}

// Startup initializes the chain module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "chain module started")
	return nil
}
