// Package monitor implements the monitor bounded context: the per-user
// ledger, the accrual pass, and the threshold-triggered conversion engine
// driven by the keeper.
package monitor

import (
	"context"

	chainDI "github.com/fd1az/staking-monitor/business/chain/di"
	exchangeDI "github.com/fd1az/staking-monitor/business/exchange/di"
	"github.com/fd1az/staking-monitor/business/monitor/app"
	monitorDI "github.com/fd1az/staking-monitor/business/monitor/di"
	"github.com/fd1az/staking-monitor/business/monitor/domain"
	"github.com/fd1az/staking-monitor/business/monitor/infra"
	pricingDI "github.com/fd1az/staking-monitor/business/pricing/di"
	"github.com/fd1az/staking-monitor/internal/asset"
	"github.com/fd1az/staking-monitor/internal/config"
	"github.com/fd1az/staking-monitor/internal/di"
	"github.com/fd1az/staking-monitor/internal/logger"
	"github.com/fd1az/staking-monitor/internal/monolith"
)

// Module implements the monitor bounded context.
type Module struct{}

// RegisterServices registers all monitor services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register ledger - private, single instance owning all account state
	di.RegisterToken(c, monitorDI.Ledger, func(sr di.ServiceRegistry) *domain.Ledger {
		return domain.NewLedger(asset.ETH, asset.DAI)
	})

	// Register reporter (TUI or console based on run mode) - private
	di.RegisterToken(c, monitorDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)
		if cfg.Monitor.TUIMode {
			return infra.NewTUIReporter()
		}
		return infra.NewConsoleReporter()
	})

	// Register MonitorService (public - user-facing operations)
	di.RegisterToken(c, monitorDI.MonitorService, func(sr di.ServiceRegistry) *app.MonitorService {
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewMonitorService(
			monitorDI.GetLedger(sr),
			pricingDI.GetPricingService(sr),
			chainDI.GetBalanceService(sr),
			log,
		)
	})

	// Register accrual engine - private
	di.RegisterToken(c, monitorDI.AccrualEngine, func(sr di.ServiceRegistry) *app.AccrualEngine {
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewAccrualEngine(
			monitorDI.GetLedger(sr),
			chainDI.GetBalanceService(sr),
			log,
		)
	})

	// Register conversion engine - private
	di.RegisterToken(c, monitorDI.ConversionEngine, func(sr di.ServiceRegistry) *app.ConversionEngine {
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewConversionEngine(
			monitorDI.GetLedger(sr),
			pricingDI.GetPricingService(sr),
			exchangeDI.GetRouterService(sr),
			monitorDI.GetReporter(sr),
			log,
		)
	})

	// Register Keeper (public - started from main)
	di.RegisterToken(c, monitorDI.Keeper, func(sr di.ServiceRegistry) *app.Keeper {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewKeeper(
			monitorDI.GetAccrualEngine(sr),
			monitorDI.GetConversionEngine(sr),
			monitorDI.GetMonitorService(sr),
			monitorDI.GetReporter(sr),
			app.KeeperConfig{
				AccrualCron:      cfg.Monitor.AccrualCron,
				UpkeepPollPerMin: cfg.Monitor.UpkeepPollPerMin,
			},
			log,
		)
	})

	return nil
}

// Startup initializes the monitor module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	if err := monitorDI.GetReporter(mono.Services()).Start(ctx); err != nil {
		return err
	}

	log.Info(ctx, "monitor module started",
		"accrual_cron", mono.Config().Monitor.AccrualCron,
		"upkeep_poll_per_min", mono.Config().Monitor.UpkeepPollPerMin,
	)
	return nil
}
