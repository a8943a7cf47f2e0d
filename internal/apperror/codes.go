package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Monitor-specific error codes
const (
	// Ledger precondition / parameter errors
	CodeNoDeposit         Code = "NO_DEPOSIT"
	CodeInvalidAmount     Code = "INVALID_AMOUNT"
	CodeInvalidPercentage Code = "INVALID_PERCENTAGE"
	CodeInvalidPrice      Code = "INVALID_PRICE"
	CodeUserNotWatched    Code = "USER_NOT_WATCHED"

	// Price oracle errors
	CodeOracleUnavailable Code = "ORACLE_UNAVAILABLE"
	CodeOracleStalePrice  Code = "ORACLE_STALE_PRICE"
	CodeFeedCallFailed    Code = "FEED_CALL_FAILED"

	// Exchange router errors
	CodeSwapFailed            Code = "SWAP_FAILED"
	CodeInsufficientLiquidity Code = "INSUFFICIENT_LIQUIDITY"
	CodeQuoteFailed           Code = "QUOTE_FAILED"
	CodeContractCallFailed    Code = "CONTRACT_CALL_FAILED"

	// Chain / balance source errors
	CodeEthereumConnectionFailed Code = "ETHEREUM_CONNECTION_FAILED"
	CodeEthereumRPCError         Code = "ETHEREUM_RPC_ERROR"
	CodeBalanceFetchFailed       Code = "BALANCE_FETCH_FAILED"

	// Market data fallback errors
	CodeBinanceConnectionFailed Code = "BINANCE_CONNECTION_FAILED"
	CodeBinanceAPIError         Code = "BINANCE_API_ERROR"
	CodeTickerParseFailed       Code = "TICKER_PARSE_FAILED"

	// WebSocket errors
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"

	// Cache errors
	CodeCacheMiss    Code = "CACHE_MISS"
	CodeCacheExpired Code = "CACHE_EXPIRED"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
