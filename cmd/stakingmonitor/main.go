// Package main is the entry point for the Staking Monitor.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/fd1az/staking-monitor/business/chain"
	"github.com/fd1az/staking-monitor/business/exchange"
	"github.com/fd1az/staking-monitor/business/monitor"
	monitorApp "github.com/fd1az/staking-monitor/business/monitor/app"
	monitorDI "github.com/fd1az/staking-monitor/business/monitor/di"
	"github.com/fd1az/staking-monitor/business/pricing"
	pricingDI "github.com/fd1az/staking-monitor/business/pricing/di"
	"github.com/fd1az/staking-monitor/internal/apm"
	"github.com/fd1az/staking-monitor/internal/asset"
	"github.com/fd1az/staking-monitor/internal/config"
	"github.com/fd1az/staking-monitor/internal/health"
	"github.com/fd1az/staking-monitor/internal/logger"
	"github.com/fd1az/staking-monitor/internal/metrics"
	"github.com/fd1az/staking-monitor/internal/monolith"
	"github.com/fd1az/staking-monitor/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// watchEntry is one user seeded from the -watch flag.
type watchEntry struct {
	user    common.Address
	deposit asset.Amount
	target  decimal.Decimal
	percent uint8
	order   bool
}

// watchFlags collects repeated -watch values of the form
// "address:deposit[:target:percent]", e.g.
// "0xabc...:1.5:3000:40" deposits 1.5 ETH and converts 40% of growth above $3000.
type watchFlags []watchEntry

func (w *watchFlags) String() string {
	return fmt.Sprintf("%d entries", len(*w))
}

func (w *watchFlags) Set(value string) error {
	parts := strings.Split(value, ":")
	if len(parts) != 2 && len(parts) != 4 {
		return fmt.Errorf("expected address:deposit[:target:percent], got %q", value)
	}
	if !common.IsHexAddress(parts[0]) {
		return fmt.Errorf("invalid address %q", parts[0])
	}

	entry := watchEntry{user: common.HexToAddress(parts[0])}

	deposit, err := asset.ParseDecimal(asset.ETH, parts[1])
	if err != nil {
		return fmt.Errorf("invalid deposit %q: %w", parts[1], err)
	}
	entry.deposit = deposit

	if len(parts) == 4 {
		target, err := decimal.NewFromString(parts[2])
		if err != nil {
			return fmt.Errorf("invalid target price %q: %w", parts[2], err)
		}
		percent, err := strconv.ParseUint(parts[3], 10, 8)
		if err != nil || percent > 100 {
			return fmt.Errorf("invalid percent %q (0-100)", parts[3])
		}
		entry.target = target
		entry.percent = uint8(percent)
		entry.order = true
	}

	*w = append(*w, entry)
	return nil
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	var watch watchFlags
	flag.Var(&watch, "watch", "Seed a watched user: address:deposit[:target:percent] (repeatable)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("staking-monitor %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging
	tuiMode := !*cliMode

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	// Run application
	if err := run(ctx, *configPath, tuiMode, watch); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool, watch watchFlags) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set TUI mode in config so modules know
	cfg.Monitor.TUIMode = tuiMode

	// Setup logger (only log to stderr in CLI mode)
	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if tuiMode {
		// In TUI mode, suppress logs (discard output)
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting Staking Monitor",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		// Set service name env var for OTEL
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		// Initialize tracing with Zipkin (local dev friendly)
		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		// Initialize metrics with Prometheus
		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		// Start Prometheus metrics server in background
		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Start health check server
	healthPort := cfg.Telemetry.HealthPort
	if healthPort == 0 {
		healthPort = 8081
	}
	healthServer := health.NewServer(healthPort, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", healthPort)
	}
	defer healthServer.Stop(ctx)

	// Create monolith (application container)
	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&pricing.Module{},  // Price oracle: Chainlink primary, Binance fallback
		&chain.Module{},    // Monitored balance source
		&exchange.Module{}, // Swap router over the venue quoter
		&monitor.Module{},  // Ledger, accrual, conversion, keeper
	}

	// Register all module services
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	// Health checks against the live services
	healthServer.RegisterCheck("oracle", func(checkCtx context.Context) (bool, string) {
		if _, err := pricingDI.GetPricingService(mono.Services()).LatestPrice(checkCtx); err != nil {
			return false, err.Error()
		}
		return true, ""
	})
	healthServer.RegisterCheck("ethereum", func(checkCtx context.Context) (bool, string) {
		if _, err := mono.EthClient().BlockNumber(checkCtx); err != nil {
			return false, err.Error()
		}
		return true, ""
	})

	if tuiMode {
		// TUI mode: Start modules in background so TUI shows immediately
		startFunc := func() error {
			ui.Send(ui.StartupMsg{Step: "config", Status: "done"})
			ui.Send(ui.StartupMsg{Step: "ethereum", Status: "connecting"})
			if err := mono.StartModules(ctx, modules...); err != nil {
				return fmt.Errorf("failed to start modules: %w", err)
			}
			ui.Send(ui.StartupMsg{Step: "ethereum", Status: "connected"})
			ui.Send(ui.StartupMsg{Step: "router", Status: "done"})

			if err := seedWatchlist(ctx, mono, watch); err != nil {
				return err
			}

			keeper := monitorDI.GetKeeper(mono.Services())
			return keeper.Start(ctx)
		}
		stopFunc := func() {
			monitorDI.GetKeeper(mono.Services()).Stop()
		}
		return runTUI(ctx, startFunc, stopFunc)
	}

	// CLI mode: Start modules synchronously
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	if err := seedWatchlist(ctx, mono, watch); err != nil {
		return err
	}

	return runCLI(ctx, monitorDI.GetKeeper(mono.Services()), log)
}

// seedWatchlist deposits and configures orders for users given on the
// command line, so the monitor has accounts to work with from the start.
func seedWatchlist(ctx context.Context, mono monolith.Monolith, watch watchFlags) error {
	if len(watch) == 0 {
		return nil
	}

	service := monitorDI.GetMonitorService(mono.Services())
	for _, entry := range watch {
		if err := service.Deposit(ctx, entry.user, entry.deposit); err != nil {
			return fmt.Errorf("failed to seed deposit for %s: %w", entry.user.Hex(), err)
		}
		if entry.order {
			if err := service.ConfigureOrder(ctx, entry.user, entry.target, entry.percent); err != nil {
				return fmt.Errorf("failed to configure order for %s: %w", entry.user.Hex(), err)
			}
		}
	}
	return nil
}

func runCLI(ctx context.Context, keeper *monitorApp.Keeper, log *logger.Logger) error {
	log.Info(ctx, "all modules started, beginning monitoring")

	// Start the keeper
	if err := keeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start keeper: %w", err)
	}

	// Wait for shutdown
	<-ctx.Done()

	log.Info(ctx, "shutting down")

	// Stop keeper gracefully
	keeper.Stop()

	return nil
}

func runTUI(ctx context.Context, startFunc func() error, stopFunc func()) error {
	// Channel to receive StartModulesMsg signal
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	// Create and start the TUI program IMMEDIATELY (shows welcome screen)
	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	// Run monitor logic in background (non-blocking)
	errCh := make(chan error, 1)
	go func() {
		// Wait for welcome screen to complete (StartModulesMsg signal)
		select {
		case <-startSignal:
			// Welcome complete, start modules
		case <-ctx.Done():
			errCh <- nil
			return
		}

		// Start modules and keeper (connections happen here, TUI shows progress)
		if err := startFunc(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		// Wait for context cancellation
		<-ctx.Done()

		// Stop keeper
		stopFunc()
		errCh <- nil
	}()

	// Run TUI (blocking) - shows immediately with welcome screen
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Check for monitor errors
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
