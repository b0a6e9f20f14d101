package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr     string
	LogLevel string

	JWTSecret string
	TokenTTL  time.Duration

	StoreDriver string
	DatabaseURL string
	MongoURI    string
	MongoDB     string

	FirebaseProjectID       string
	FirebaseCredentialsFile string

	CORSOrigins       string
	AllowBulkProducts bool
}

// Load reads configuration from environment variables. Callers are expected
// to have loaded any .env file beforehand.
func Load() (Config, error) {
	cfg := Config{
		Addr:                    ":" + getenv("PORT", "5000"),
		LogLevel:                strings.ToLower(getenv("LOG_LEVEL", "info")),
		JWTSecret:               os.Getenv("JWT_SECRET"),
		StoreDriver:             strings.ToLower(getenv("STORE_DRIVER", DriverPostgres)),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		MongoURI:                getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:                 getenv("MONGO_DB", "jusa"),
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		CORSOrigins:             getenv("CORS_ORIGINS", "*"),
		AllowBulkProducts:       os.Getenv("ALLOW_BULK_PRODUCTS") == "1",
	}

	ttl, err := time.ParseDuration(getenv("TOKEN_TTL", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TOKEN_TTL: %w", err)
	}
	if ttl <= 0 {
		return Config{}, errors.New("TOKEN_TTL must be positive")
	}
	cfg.TokenTTL = ttl

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required for the postgres store")
		}
	case DriverMongo, DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// FirebaseEnabled reports whether external sign-in can be served.
func (c Config) FirebaseEnabled() bool {
	return c.FirebaseProjectID != "" || c.FirebaseCredentialsFile != ""
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
