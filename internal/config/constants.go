package config

import "time"

// Service identity
const (
	ServiceName = "feedback-service"

	// ConfigFileEnv names the environment variable holding the YAML config path
	ConfigFileEnv     = "FEEDBACK_CONFIG_FILE"
	DefaultConfigFile = "config.yaml"
	DefaultServerPort = "8080"
)

// Timeout constants
const (
	// HTTP timeouts
	DefaultHTTPTimeout    = 30 * time.Second
	ServerShutdownTimeout = 30 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 30 * time.Second

	// Database timeouts
	DatabaseConnMaxLifetime = 5 * time.Minute

	// Session and token lifetimes
	SessionMaxAge   = 7 * 24 * time.Hour // 7 days
	DefaultTokenTTL = 24 * time.Hour
)

// Session configuration constants
const (
	SessionPath     = "/"
	SessionHTTPOnly = true
	SessionSecure   = false // Set to true in production with HTTPS

	SessionName = "feedback-session"
)

// Security configuration constants
const (
	// Content Security Policy
	DefaultCSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self'; img-src 'self' data:;"
)
