package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Ledger errors
	CodeNoDeposit:         "User has no deposit",
	CodeInvalidAmount:     "Amount must be positive",
	CodeInvalidPercentage: "Percentage must be between 0 and 100",
	CodeInvalidPrice:      "Price must be positive",
	CodeUserNotWatched:    "User is not on the watchlist",

	// Price oracle errors
	CodeOracleUnavailable: "Price oracle unavailable",
	CodeOracleStalePrice:  "Oracle price is stale",
	CodeFeedCallFailed:    "Price feed call failed",

	// Exchange router errors
	CodeSwapFailed:            "Swap execution failed",
	CodeInsufficientLiquidity: "Insufficient liquidity for swap",
	CodeQuoteFailed:           "Failed to get swap quote",
	CodeContractCallFailed:    "Smart contract call failed",

	// Chain / balance source errors
	CodeEthereumConnectionFailed: "Failed to connect to Ethereum node",
	CodeEthereumRPCError:         "Ethereum RPC call failed",
	CodeBalanceFetchFailed:       "Failed to fetch monitored balance",

	// Market data fallback errors
	CodeBinanceConnectionFailed: "Failed to connect to Binance API",
	CodeBinanceAPIError:         "Binance API error",
	CodeTickerParseFailed:       "Failed to parse ticker price",

	// WebSocket errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketClosed:          "WebSocket connection closed",

	// Cache errors
	CodeCacheMiss:    "Cache miss",
	CodeCacheExpired: "Cache entry expired",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}
