package config

import "os"

// Default configuration values.
const (
	DefaultPort = "3000"
)

// Config holds process configuration.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string

	// AllowedOrigin restricts websocket upgrades to one Origin header
	// value. Empty means any origin is accepted.
	AllowedOrigin string
}

// Load reads configuration from environment variables, falling back
// to defaults.
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = DefaultPort
	}

	return &Config{
		Port:          port,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
	}
}
