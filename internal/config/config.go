package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

var defaultCORSOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

// DefaultCORSOrigins returns the local frontend dev origins.
func DefaultCORSOrigins() []string {
	return append([]string(nil), defaultCORSOrigins...)
}

type Config struct {
	Provider           string
	FMPAPIKey          string
	AlphaVantageAPIKey string
	ProviderBaseURL    string
	ProviderTimeout    time.Duration
	ProviderPerMinute  int

	CacheBackend string
	RedisURL     string
	DatabaseURL  string

	HTTPAddr    string
	CORSOrigins []string

	WarmPollSecs int
	SessionTTL   time.Duration

	TracingEnabled bool
	OTLPEndpoint   string
}

// APIKey returns the key for the selected provider family.
func (c *Config) APIKey() string {
	if c.Provider == "alphavantage" {
		return c.AlphaVantageAPIKey
	}
	return c.FMPAPIKey
}

func Load() *Config {
	cfg := &Config{
		FMPAPIKey:          os.Getenv("FMP_API_KEY"),
		AlphaVantageAPIKey: os.Getenv("ALPHA_VANTAGE_API_KEY"),
		ProviderBaseURL:    strings.TrimSpace(os.Getenv("PROVIDER_BASE_URL")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           strings.TrimSpace(os.Getenv("REDIS_URL")),
		OTLPEndpoint:       strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(os.Getenv("PROVIDER")))
	switch cfg.Provider {
	case "", "fmp":
		cfg.Provider = "fmp"
	case "alphavantage", "alpha_vantage", "av":
		cfg.Provider = "alphavantage"
	default:
		log.Printf("Warning: unsupported PROVIDER=%q, defaulting to fmp", cfg.Provider)
		cfg.Provider = "fmp"
	}
	if cfg.APIKey() == "" {
		log.Printf("Warning: no API key set for provider %s", cfg.Provider)
	}

	cfg.ProviderTimeout = time.Duration(positiveInt("PROVIDER_TIMEOUT_SECS", 10)) * time.Second
	cfg.ProviderPerMinute = nonNegativeInt("PROVIDER_REQUESTS_PER_MIN", 0)

	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = CacheMemory
	}
	if cfg.CacheBackend != CacheMemory && cfg.CacheBackend != CacheRedis {
		log.Printf("Warning: unsupported CACHE_BACKEND=%q, defaulting to memory", cfg.CacheBackend)
		cfg.CacheBackend = CacheMemory
	}
	if cfg.CacheBackend == CacheRedis && cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, user and watchlist routes disabled")
	}

	cfg.HTTPAddr = strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8000"
	}

	cfg.CORSOrigins = DefaultCORSOrigins()
	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.CORSOrigins = origins
		}
	}

	cfg.WarmPollSecs = nonNegativeInt("WARM_POLL_SECS", 0)
	cfg.SessionTTL = time.Duration(positiveInt("SESSION_TTL_HOURS", 24)) * time.Hour

	cfg.TracingEnabled = !strings.EqualFold(strings.TrimSpace(os.Getenv("TRACING_ENABLED")), "false")
	if cfg.OTLPEndpoint == "" {
		cfg.OTLPEndpoint = "localhost:4317"
	}

	return cfg
}

func positiveInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %d", key, v, def)
	}
	return def
}

func nonNegativeInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %d", key, v, def)
	}
	return def
}
