package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string // Empty = in-memory store seeded from SeedFile
	TablePrefix string
	CORSOrigins string
	// Admin authentication
	JWKSURL     string
	NonceSecret string
	NonceTTL    time.Duration
	// Network
	Multisite  bool  // Content events drop the cache lazily instead of rebuilding it
	MainSiteID int64 // Site used when a request names none
	SeedFile   string
	LogDir     string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: getEnv("TABLE_PREFIX", "wp_"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		JWKSURL:     getEnv("JWKS_URL", ""),
		NonceSecret: getEnv("NONCE_SECRET", ""),
		NonceTTL:    getDuration("NONCE_TTL", 12*time.Hour),
		Multisite:   getEnv("MULTISITE", "false") == "true",
		MainSiteID:  getInt64("MAIN_SITE_ID", 1),
		SeedFile:    getEnv("SEED_FILE", ""),
		LogDir:      getEnv("LOG_DIR", ""),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.Environment, validation.Required, validation.In("dev", "test", "prod")),
		validation.Field(&c.TablePrefix, validation.Required),
		validation.Field(&c.NonceSecret,
			validation.When(c.Environment == "prod", validation.Required, validation.Length(32, 0)),
		),
		validation.Field(&c.JWKSURL, validation.When(c.Environment == "prod", validation.Required)),
		validation.Field(&c.MainSiteID, validation.Min(int64(1))),
		validation.Field(&c.NonceTTL, validation.Min(time.Minute)),
	)
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: invalid %s=%q, using %d\n", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: invalid %s=%q, using %s\n", key, value, defaultValue)
		return defaultValue
	}
	return d
}
