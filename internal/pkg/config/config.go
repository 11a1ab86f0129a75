package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

type AuthConfig struct {
	JWTSecret    string
	ProviderURL  string
	AnonKey      string
	CookieName   string
	CookieSecure bool
	HTTPTimeout  time.Duration
	// OAuthProviders are the identity providers /auth/signin/:provider accepts.
	OAuthProviders []string
}

type SearchConfig struct {
	APIKey          string
	BaseURL         string
	RadiusMeters    int
	Limit           int
	HTTPTimeout     time.Duration
	GeocodeCacheTTL time.Duration
	RateLimit       float64
	RateBurst       int
}

type LogConfig struct {
	Level    string
	Encoding string
}

type Config struct {
	Repositories RepositoriesConfig
	Auth         AuthConfig
	Search       SearchConfig
	Log          LogConfig
	ServerPort   string
	GinMode      string
	MetricsAddr  string
	PprofAddr    string
	SiteURL      string
	ServiceName  string
	OTLPEndpoint string
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5454"),
				DB:       getEnvOrDefault("POSTGRES_DB", "tripboard"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: int32(getEnvInt("POSTGRES_MAX_CONNS", 30)),
				MinConns: int32(getEnvInt("POSTGRES_MIN_CONNS", 5)),
			},
		},
		Auth: AuthConfig{
			JWTSecret:      getEnvOrDefault("AUTH_JWT_SECRET", ""),
			ProviderURL:    getEnvOrDefault("AUTH_URL", ""),
			AnonKey:        getEnvOrDefault("AUTH_ANON_KEY", ""),
			CookieName:     getEnvOrDefault("AUTH_COOKIE_NAME", "access_token"),
			CookieSecure:   getEnvBool("AUTH_COOKIE_SECURE", false),
			HTTPTimeout:    getEnvDuration("AUTH_HTTP_TIMEOUT", 10*time.Second),
			OAuthProviders: getEnvList("AUTH_OAUTH_PROVIDERS", []string{"google"}),
		},
		Search: SearchConfig{
			// An empty key is allowed at boot; the search endpoint answers 500 until it is set.
			APIKey:          getEnvOrDefault("GEOAPIFY_SERVER_KEY", ""),
			BaseURL:         getEnvOrDefault("GEOAPIFY_BASE_URL", "https://api.geoapify.com"),
			RadiusMeters:    getEnvInt("SEARCH_RADIUS_METERS", 10000),
			Limit:           getEnvInt("SEARCH_LIMIT", 30),
			HTTPTimeout:     getEnvDuration("SEARCH_HTTP_TIMEOUT", 10*time.Second),
			GeocodeCacheTTL: getEnvDuration("SEARCH_GEOCODE_CACHE_TTL", 15*time.Minute),
			RateLimit:       getEnvFloat("SEARCH_RATE_LIMIT", 2),
			RateBurst:       getEnvInt("SEARCH_RATE_BURST", 5),
		},
		Log: LogConfig{
			Level:    getEnvOrDefault("LOG_LEVEL", "info"),
			Encoding: getEnvOrDefault("LOG_ENCODING", "json"),
		},
		ServerPort:  getEnvOrDefault("SERVER_PORT", "8091"),
		GinMode:     getEnvOrDefault("GIN_MODE", "release"),
		MetricsAddr: getEnvOrDefault("METRICS_ADDR", ":9092"),
		PprofAddr:   getEnvOrDefault("PPROF_ADDR", "localhost:6060"),
		SiteURL:     getEnvOrDefault("SITE_URL", "http://localhost:8091"),
		ServiceName: getEnvOrDefault("OTEL_SERVICE_NAME", "tripboard"),
		// host:port of an OTLP/HTTP collector; traces stay in-process when empty.
		OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET environment variable is required")
	}
	if cfg.Search.RadiusMeters <= 0 {
		return nil, fmt.Errorf("SEARCH_RADIUS_METERS must be positive, got %d", cfg.Search.RadiusMeters)
	}
	if cfg.Search.Limit <= 0 {
		return nil, fmt.Errorf("SEARCH_LIMIT must be positive, got %d", cfg.Search.Limit)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
