// Package exchange implements the exchange bounded context: conversion of
// the base asset into the stable asset at the venue's quoted rate.
package exchange

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/staking-monitor/business/exchange/app"
	exchangeDI "github.com/fd1az/staking-monitor/business/exchange/di"
	"github.com/fd1az/staking-monitor/business/exchange/infra/uniswap"
	"github.com/fd1az/staking-monitor/internal/asset"
	"github.com/fd1az/staking-monitor/internal/config"
	"github.com/fd1az/staking-monitor/internal/di"
	"github.com/fd1az/staking-monitor/internal/logger"
	"github.com/fd1az/staking-monitor/internal/monolith"
)

// Module implements the exchange bounded context.
type Module struct{}

// RegisterServices registers all exchange services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register quoter (Uniswap V3 QuoterV2) - private dependency
	di.RegisterToken(c, exchangeDI.Quoter, func(sr di.ServiceRegistry) app.Quoter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		ethClient := sr.Get("ethClient").(*ethclient.Client)

		quoter, err := uniswap.NewQuoter(ethClient, uniswap.QuoterConfig{
			QuoterAddress:  cfg.Router.QuoterAddressHex(),
			DefaultFeeTier: cfg.Router.FeeTier,
		}, log)
		if err != nil {
			panic("failed to create uniswap quoter: " + err.Error())
		}
		return quoter
	})

	// Register RouterService (public - exposed to other modules)
	di.RegisterToken(c, exchangeDI.RouterService, func(sr di.ServiceRegistry) *app.RouterService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewRouterService(exchangeDI.GetQuoter(sr), app.RouterServiceConfig{
			TokenIn:        cfg.Router.TokenInHex(),
			TokenOut:       cfg.Router.TokenOutHex(),
			MaxSlippageBps: cfg.Router.MaxSlippageBpsDecimal(),
		}, asset.ETH, asset.DAI, log)
	})

	return nil
}

// Startup initializes the exchange module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "exchange module started",
		"quoter", mono.Config().Router.QuoterAddress,
		"token_in", mono.Config().Router.TokenIn,
		"token_out", mono.Config().Router.TokenOut,
	)
	return nil
}
