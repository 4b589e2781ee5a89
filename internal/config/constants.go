package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 30 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Login throttling window
const LoginWindow = time.Minute

// Password rules shared by setup and seeding. bcrypt hashes at most 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordBytes  = 72
)

const MaxRequestBodySize = 1 << 20 // 1MB
