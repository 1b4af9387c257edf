package constants

import "time"

const (
	UsernameMinLength = 3
	UsernameMaxLength = 32
	PasswordMinLength = 8
	PasswordMaxLength = 72
	EmailMaxLength    = 254

	OpaqueIDSaltMinLength   = 16
	DefaultOpaqueIDMinLen   = 8
	DefaultOpaqueIDAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"
	OpaqueIDMinAlphabetSize = 16

	MaxSearchQueryLength  = 100
	MaxSearchResultsLimit = 100
	DefaultSearchLimit    = 20
	DefaultMaxRequestSize = 1 << 20

	BcryptCost = 12

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort       = "8080"
	DefaultRequestTimeout = 5 * time.Second

	RateLimitCleanupInterval           = 1 * time.Minute
	RateLimitRegisterRequestsPerSecond = 1.0
	RateLimitRegisterBurst             = 5
	RateLimitGeneralRequestsPerSecond  = 20.0
	RateLimitGeneralBurst              = 40

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
