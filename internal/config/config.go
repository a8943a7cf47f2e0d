// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Ethereum  EthereumConfig  `mapstructure:"ethereum"`
	Oracle    OracleConfig    `mapstructure:"oracle"`
	Router    RouterConfig    `mapstructure:"router"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// EthereumConfig holds Ethereum node configuration.
type EthereumConfig struct {
	HTTPURL        string        `mapstructure:"http_url"`
	ChainID        uint64        `mapstructure:"chain_id"`
	BalanceTTL     time.Duration `mapstructure:"balance_ttl"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// OracleConfig holds price feed configuration.
type OracleConfig struct {
	FeedAddress    string        `mapstructure:"feed_address"`    // Chainlink aggregator
	StaleAfter     time.Duration `mapstructure:"stale_after"`     // max acceptable feed age
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`       // in-process price cache
	FallbackSymbol string        `mapstructure:"fallback_symbol"` // Binance ticker symbol
	FallbackURL    string        `mapstructure:"fallback_url"`    // REST base URL (empty = default)
	StreamEnabled  bool          `mapstructure:"stream_enabled"`  // live ticker stream for cheap upkeep checks
	StreamURL      string        `mapstructure:"stream_url"`      // WebSocket base URL (empty = default)
}

// FeedAddressHex returns the feed address as common.Address.
func (c *OracleConfig) FeedAddressHex() common.Address {
	return common.HexToAddress(c.FeedAddress)
}

// RouterConfig holds exchange router configuration.
type RouterConfig struct {
	QuoterAddress  string  `mapstructure:"quoter_address"`
	TokenIn        string  `mapstructure:"token_in"`  // wrapped base asset
	TokenOut       string  `mapstructure:"token_out"` // stable asset
	FeeTier        int     `mapstructure:"fee_tier"`
	MaxSlippageBps float64 `mapstructure:"max_slippage_bps"`
}

// QuoterAddressHex returns the quoter address as common.Address.
func (c *RouterConfig) QuoterAddressHex() common.Address {
	return common.HexToAddress(c.QuoterAddress)
}

// TokenInHex returns the input token address as common.Address.
func (c *RouterConfig) TokenInHex() common.Address {
	return common.HexToAddress(c.TokenIn)
}

// TokenOutHex returns the output token address as common.Address.
func (c *RouterConfig) TokenOutHex() common.Address {
	return common.HexToAddress(c.TokenOut)
}

// MaxSlippageBpsDecimal returns max slippage bps as decimal.Decimal.
func (c *RouterConfig) MaxSlippageBpsDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxSlippageBps)
}

// MonitorConfig holds accrual and upkeep scheduling configuration.
type MonitorConfig struct {
	AccrualCron      string `mapstructure:"accrual_cron"`        // cron spec for RunAccrual
	UpkeepPollPerMin int    `mapstructure:"upkeep_poll_per_min"` // CheckUpkeep polls per minute
	TUIMode          bool   `mapstructure:"-"`                   // Set at runtime, not from config file
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
	HealthPort     int    `mapstructure:"health_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("MONITOR")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "MONITOR_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "MONITOR_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "MONITOR_LOG_LEVEL", "LOG_LEVEL")

	// Ethereum
	v.BindEnv("ethereum.http_url", "MONITOR_ETH_HTTP_URL", "ETH_HTTP_URL")
	v.BindEnv("ethereum.chain_id", "MONITOR_ETH_CHAIN_ID", "ETH_CHAIN_ID")

	// Oracle
	v.BindEnv("oracle.feed_address", "MONITOR_ORACLE_FEED", "ORACLE_FEED")
	v.BindEnv("oracle.fallback_symbol", "MONITOR_ORACLE_FALLBACK_SYMBOL")
	v.BindEnv("oracle.fallback_url", "MONITOR_ORACLE_FALLBACK_URL")

	// Router
	v.BindEnv("router.quoter_address", "MONITOR_ROUTER_QUOTER", "ROUTER_QUOTER")
	v.BindEnv("router.token_in", "MONITOR_ROUTER_TOKEN_IN")
	v.BindEnv("router.token_out", "MONITOR_ROUTER_TOKEN_OUT")

	// Monitor
	v.BindEnv("monitor.accrual_cron", "MONITOR_ACCRUAL_CRON")
	v.BindEnv("monitor.upkeep_poll_per_min", "MONITOR_UPKEEP_POLL_PER_MIN")

	// Telemetry
	v.BindEnv("telemetry.enabled", "MONITOR_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "MONITOR_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "MONITOR_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "staking-monitor")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Ethereum defaults
	v.SetDefault("ethereum.chain_id", 1)
	v.SetDefault("ethereum.balance_ttl", "12s") // ~1 block
	v.SetDefault("ethereum.request_timeout", "10s")

	// Oracle defaults (ETH/USD mainnet feed)
	v.SetDefault("oracle.feed_address", "0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419")
	v.SetDefault("oracle.stale_after", "1h")
	v.SetDefault("oracle.cache_ttl", "5s")
	v.SetDefault("oracle.fallback_symbol", "ETHUSDC")
	v.SetDefault("oracle.stream_enabled", false)

	// Router defaults (Uniswap V3 mainnet, WETH -> DAI)
	v.SetDefault("router.quoter_address", "0x61fFE014bA17989E743c5F6cB21bF9697530B21e")
	v.SetDefault("router.token_in", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	v.SetDefault("router.token_out", "0x6B175474E89094C44Da98b954EedeAC495271d0F")
	v.SetDefault("router.fee_tier", 3000) // 0.3%
	v.SetDefault("router.max_slippage_bps", 50)

	// Monitor defaults: accrue every 3 minutes, poll upkeep up to 12/min
	v.SetDefault("monitor.accrual_cron", "0 */3 * * * *")
	v.SetDefault("monitor.upkeep_poll_per_min", 12)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "staking-monitor")
	v.SetDefault("telemetry.prometheus_port", 9090)
	v.SetDefault("telemetry.health_port", 8081)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Ethereum.HTTPURL == "" {
		return fmt.Errorf("ethereum.http_url is required")
	}
	if !common.IsHexAddress(c.Oracle.FeedAddress) {
		return fmt.Errorf("invalid oracle.feed_address: %s", c.Oracle.FeedAddress)
	}
	if !common.IsHexAddress(c.Router.QuoterAddress) {
		return fmt.Errorf("invalid router.quoter_address: %s", c.Router.QuoterAddress)
	}
	if !common.IsHexAddress(c.Router.TokenIn) || !common.IsHexAddress(c.Router.TokenOut) {
		return fmt.Errorf("invalid router token addresses")
	}
	if c.Monitor.UpkeepPollPerMin <= 0 {
		return fmt.Errorf("monitor.upkeep_poll_per_min must be positive")
	}
	if c.Monitor.AccrualCron == "" {
		return fmt.Errorf("monitor.accrual_cron is required")
	}
	return nil
}
