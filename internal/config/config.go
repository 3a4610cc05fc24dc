package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Scraper  ScraperConfig
	Search   SearchConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Port           int
	TimeoutSeconds int
}

type ScraperConfig struct {
	FetchTimeoutSeconds int
	MinPriceThreshold   float64
	MaxImages           int
	BrowserEnabled      bool
	BrowserHeadless     bool
	CacheSize           int
	CacheTTLSeconds     int
	MetricsEnabled      bool
}

type SearchConfig struct {
	MaxAttempts       int
	DefaultRegion     string
	RequestsPerSecond float64
}

type DatabaseConfig struct {
	Enabled       bool
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	MaxConns      int32
	RetentionDays int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("PORT", 8090),
			TimeoutSeconds: getEnvInt("SERVER_TIMEOUT", 120),
		},
		Scraper: ScraperConfig{
			FetchTimeoutSeconds: getEnvInt("SCRAPER_FETCH_TIMEOUT", 30),
			MinPriceThreshold:   getEnvFloat("SCRAPER_MIN_PRICE", 50),
			MaxImages:           getEnvInt("SCRAPER_MAX_IMAGES", 5),
			BrowserEnabled:      getEnvBool("SCRAPER_BROWSER_ENABLED", false),
			BrowserHeadless:     getEnvBool("SCRAPER_BROWSER_HEADLESS", true),
			CacheSize:           getEnvInt("SCRAPER_CACHE_SIZE", 256),
			CacheTTLSeconds:     getEnvInt("SCRAPER_CACHE_TTL", 300),
			MetricsEnabled:      getEnvBool("METRICS_ENABLED", true),
		},
		Search: SearchConfig{
			MaxAttempts:       getEnvInt("SEARCH_MAX_ATTEMPTS", 15),
			DefaultRegion:     getEnv("SEARCH_DEFAULT_REGION", "com"),
			RequestsPerSecond: getEnvFloat("SEARCH_RATE_LIMIT", 1),
		},
		Database: DatabaseConfig{
			Enabled:       getEnvBool("DB_ENABLED", false),
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnvInt("DB_PORT", 5432),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", ""),
			Name:          getEnv("DB_NAME", "linkbazar"),
			MaxConns:      int32(getEnvInt("DB_MAX_CONNS", 10)),
			RetentionDays: getEnvInt("DB_RETENTION_DAYS", 30),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Stream:   getEnv("REDIS_STREAM", "stream:scraped_products"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Scraper.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}

	if c.Scraper.MaxImages <= 0 {
		return fmt.Errorf("max images must be positive")
	}

	if c.Search.MaxAttempts <= 0 {
		return fmt.Errorf("at least 1 search attempt is required")
	}

	if c.Database.Enabled && c.Database.Host == "" {
		return fmt.Errorf("database host is required when persistence is enabled")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
