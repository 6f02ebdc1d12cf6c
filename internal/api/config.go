package api

import (
	"net"
	"os"
	"strconv"
	"time"
)

// Config holds HTTP server configuration.
type Config struct {
	// Host is the bind address; it is also recorded as the source of the startup entry.
	Host string
	// Port is the TCP port to listen on.
	Port string
	// SeedKeys is a comma-separated list of keys loaded at start.
	SeedKeys string
	// SeedKeysFile points to a YAML seed file; it takes precedence over SeedKeys.
	SeedKeysFile string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is json or text.
	LogFormat string
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
	// ReadHeaderTimeout bounds reading request headers.
	ReadHeaderTimeout time.Duration
	// TrustProxyHeaders enables X-Forwarded-For / X-Real-IP for caller addresses.
	TrustProxyHeaders bool
	// DefaultLogLimit is used by /api/logs when no valid limit is given.
	DefaultLogLimit int
	// PDFChromiumPath overrides the Chromium binary used for PDF export.
	PDFChromiumPath string
	// PDFTimeout bounds a single PDF export.
	PDFTimeout time.Duration
	// Version is reported by /health; the build version is used when empty.
	Version string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() Config {
	return Config{
		Host:              getenv("HOST", "0.0.0.0"),
		Port:              getenv("PORT", "3000"),
		SeedKeys:          getenv("SEED_KEYS", ""),
		SeedKeysFile:      getenv("SEED_KEYS_FILE", ""),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFormat:         getenv("LOG_FORMAT", "json"),
		ShutdownTimeout:   getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		ReadHeaderTimeout: getDuration("READ_HEADER_TIMEOUT", 5*time.Second),
		TrustProxyHeaders: getBool("TRUST_PROXY_HEADERS", true),
		DefaultLogLimit:   getInt("DEFAULT_LOG_LIMIT", 20),
		PDFChromiumPath:   getenv("PDF_CHROMIUM_PATH", ""),
		PDFTimeout:        getDuration("PDF_TIMEOUT", 15*time.Second),
		Version:           getenv("APP_VERSION", ""),
	}
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
