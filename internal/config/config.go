// Package config reads storefront settings from the environment, after an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissing = errors.New("required setting is missing")

type Config struct {
	Port           string
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string

	PostgresURL   string
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	KafkaBrokers  []string
	OrdersTopic   string

	JWTSecret   string
	TokenTTL    time.Duration
	SessionTTL  time.Duration
	AdminEmail  string
	SeedCatalog bool
}

// LoadDotEnv loads files (".env" when none are given) into the process
// environment. Missing files are ignored and real environment variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func Load() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		ServiceName:    getEnv("OTEL_SERVICE_NAME", "storefront"),
		ServiceVersion: getEnv("SERVICE_VERSION", "0.1.0"),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		PostgresURL:    getEnv("POSTGRES_URL", ""),
		MongoURI:       getEnv("MONGO_URI", ""),
		MongoDatabase:  getEnv("MONGO_DATABASE", "storefront"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		KafkaBrokers:   getList("KAFKA_BROKERS"),
		OrdersTopic:    getEnv("ORDERS_TOPIC", "order.placed"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AdminEmail:     strings.ToLower(getEnv("ADMIN_EMAIL", "admin@example.com")),
	}

	var errs []error
	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.SeedCatalog, err = getBool("SEED_CATALOG", false); err != nil {
		errs = append(errs, err)
	}

	if cfg.PostgresURL == "" {
		errs = append(errs, fmt.Errorf("%w: POSTGRES_URL", ErrMissing))
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("%w: JWT_SECRET", ErrMissing))
	}

	return cfg, errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultValue, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: invalid boolean %q", key, raw)
	}
	return b, nil
}
