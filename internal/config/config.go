package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// MaxPageSize is the hard ceiling for list endpoints.
const MaxPageSize = 100

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline (ex: 15s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	ReferenceFile  string        // optional YAML override of the embedded reference data
	ReloadInterval time.Duration // interval to reload the reference data (0 = never)
	PageSize       int           // default page size for list endpoints (<= MaxPageSize)
	PostalCacheTTL time.Duration // ttl of postal codes and municipalities pushed to redis

	// Redis (optional, empty address = in-process cache only)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password when RedisAddr is set
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers
	RateBurst    int      // token bucket size per caller, 0 disables limiting
	RatePerMin   int      // refill rate per caller
}

// RedisEnabled reports whether the second cache tier is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("CATALOG_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("CATALOG_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("CATALOG_REQUEST_TIMEOUT", 15*time.Second),

		// Logging
		LogLevel:  getenv("CATALOG_LOG_LEVEL", "info"),
		PrettyLog: mustBool("CATALOG_PRETTY_LOG", false),

		// Catalog
		ReferenceFile:  getenv("CATALOG_REFERENCE_FILE", ""),
		ReloadInterval: mustDuration("CATALOG_RELOAD_INTERVAL", 12*time.Hour),
		PageSize:       pageSize(getenvInt("CATALOG_PAGE_SIZE", MaxPageSize)),
		PostalCacheTTL: mustDuration("CATALOG_POSTAL_CACHE_TTL", 24*time.Hour),

		// Redis settings
		RedisAddr:             getenv("CATALOG_REDIS_ADDR", ""),
		RedisUser:             getenv("CATALOG_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("CATALOG_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("CATALOG_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("CATALOG_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("CATALOG_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("CATALOG_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("CATALOG_TRUST_PROXY", false),
		RateBurst:    getenvInt("CATALOG_RATE_BURST", 60),
		RatePerMin:   getenvInt("CATALOG_RATE_PER_MIN", 600),
	}

	if cfg.RedisEnabled() && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: CATALOG_REDIS_PASSWORD is required when CATALOG_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	out := *c
	if out.RedisPassword != "" {
		out.RedisPassword = "***REDACTED***"
	}
	if out.RedisUser != "" {
		out.RedisUser = "***REDACTED***"
	}
	return out
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func pageSize(n int) int {
	if n <= 0 || n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
