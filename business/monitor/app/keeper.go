package app

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/fd1az/staking-monitor/internal/logger"
	"github.com/fd1az/staking-monitor/internal/ratelimit"
)

// KeeperConfig holds scheduling configuration for the keeper.
type KeeperConfig struct {
	// AccrualCron is a 6-field cron spec (with seconds) for accrual passes.
	AccrualCron string

	// UpkeepPollPerMin caps how often the upkeep check runs.
	UpkeepPollPerMin int
}

// Keeper is the in-process scheduler driving the two-phase automation
// contract: cron-scheduled accrual passes, and a rate-limited poll loop that
// checks eligibility and performs conversions when the check says so. The
// engines stay usable by any external scheduler; the keeper is just one
// consumer of their contract.
type Keeper struct {
	accrual    *AccrualEngine
	conversion *ConversionEngine
	service    *MonitorService
	reporter   Reporter
	cron       *cron.Cron
	limiter    *ratelimit.Limiter
	config     KeeperConfig
	log        logger.LoggerInterface
	done       chan struct{}
}

// NewKeeper creates a Keeper. reporter may be nil.
func NewKeeper(
	accrual *AccrualEngine,
	conversion *ConversionEngine,
	service *MonitorService,
	reporter Reporter,
	config KeeperConfig,
	log logger.LoggerInterface,
) *Keeper {
	return &Keeper{
		accrual:    accrual,
		conversion: conversion,
		service:    service,
		reporter:   reporter,
		cron:       cron.New(cron.WithSeconds()),
		limiter:    ratelimit.New(config.UpkeepPollPerMin),
		config:     config,
		log:        log,
		done:       make(chan struct{}),
	}
}

// Start schedules the accrual cron and launches the upkeep poll loop.
func (k *Keeper) Start(ctx context.Context) error {
	_, err := k.cron.AddFunc(k.config.AccrualCron, func() {
		k.runAccrual(ctx)
	})
	if err != nil {
		return err
	}
	k.cron.Start()

	go k.pollUpkeep(ctx)

	k.log.Info(ctx, "keeper started",
		"accrual_cron", k.config.AccrualCron,
		"upkeep_poll_per_min", k.config.UpkeepPollPerMin,
	)
	return nil
}

// Stop halts the cron scheduler and waits for the poll loop to exit.
// The context passed to Start must be cancelled first.
func (k *Keeper) Stop() {
	k.cron.Stop()
	<-k.done
}

func (k *Keeper) runAccrual(ctx context.Context) {
	result := k.accrual.RunAccrual(ctx)
	if err := result.Err(); err != nil {
		k.log.Warn(ctx, "accrual pass had failures", "error", err)
	}
	k.refreshReporter()
}

func (k *Keeper) pollUpkeep(ctx context.Context) {
	defer close(k.done)

	for {
		if err := k.limiter.Wait(ctx); err != nil {
			k.log.Info(ctx, "upkeep poll stopping", "reason", ctx.Err())
			return
		}

		needed, eligible, err := k.conversion.CheckUpkeep(ctx)
		if err != nil {
			k.log.Warn(ctx, "upkeep check failed", "error", err)
			continue
		}
		if k.reporter != nil {
			if price, perr := k.service.CurrentPrice(ctx); perr == nil {
				k.reporter.UpdatePrice(price)
			}
		}
		if !needed {
			continue
		}

		k.log.Info(ctx, "upkeep needed", "eligible", len(eligible))
		result, err := k.conversion.PerformUpkeep(ctx)
		if err != nil {
			k.log.Error(ctx, "upkeep pass aborted", "error", err)
			continue
		}
		if err := result.Err(); err != nil {
			k.log.Warn(ctx, "upkeep pass had failures", "error", err)
		}
		k.refreshReporter()
	}
}

func (k *Keeper) refreshReporter() {
	if k.reporter == nil {
		return
	}
	k.reporter.UpdateWatchlist(k.service.Snapshot())
}
