// Package di contains dependency injection tokens for the monitor context.
package di

import (
	"github.com/fd1az/staking-monitor/business/monitor/app"
	"github.com/fd1az/staking-monitor/business/monitor/domain"
	"github.com/fd1az/staking-monitor/internal/di"
)

// Public service tokens - exposed to other modules
var (
	MonitorService = di.NewToken[*app.MonitorService]("monitor.MonitorService")
	Keeper         = di.NewToken[*app.Keeper]("monitor.Keeper")
)

// Private dependency tokens - internal to the monitor module
var (
	Ledger           = di.NewToken[*domain.Ledger]("monitor:ledger")
	AccrualEngine    = di.NewToken[*app.AccrualEngine]("monitor:accrualEngine")
	ConversionEngine = di.NewToken[*app.ConversionEngine]("monitor:conversionEngine")
	Reporter         = di.NewToken[app.Reporter]("monitor:reporter")
)

// Helper functions for type-safe access
func GetMonitorService(c di.ServiceRegistry) *app.MonitorService {
	return di.GetToken(c, MonitorService)
}

func GetKeeper(c di.ServiceRegistry) *app.Keeper {
	return di.GetToken(c, Keeper)
}

func GetLedger(c di.ServiceRegistry) *domain.Ledger {
	return di.GetToken(c, Ledger)
}

func GetAccrualEngine(c di.ServiceRegistry) *app.AccrualEngine {
	return di.GetToken(c, AccrualEngine)
}

func GetConversionEngine(c di.ServiceRegistry) *app.ConversionEngine {
	return di.GetToken(c, ConversionEngine)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}
