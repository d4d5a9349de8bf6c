// Package config loads application configuration from environment
// variables. Configuration is resolved once at startup and injected
// explicitly into the components that need it; there are no ambient
// globals.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration. Strings for identifiers and
// secrets, ints for durations and costs.
type Config struct {
	Env           string // "dev", "test" or "prod"
	Port          string // HTTP port to listen on
	DBUser        string
	DBPass        string // optional
	DBHost        string
	DBPort        string
	DBName        string
	JWTSecret     string // secret used to sign session tokens
	SessionTTLMin int    // session token time-to-live in minutes
	BcryptCost    int    // bcrypt cost for password hashing
}

// Prod reports whether the deployment mode is production. It toggles
// cookie Secure/SameSite attributes and error verbosity.
func (c Config) Prod() bool { return c.Env == "prod" }

// Load reads configuration from environment variables. Missing required
// variables abort startup with a fatal log; misconfiguration is a
// deployment problem, never a per-request error.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"),
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		JWTSecret:     must("JWT_SECRET"),
		SessionTTLMin: mustInt("SESSION_TTL_MIN"),
		BcryptCost:    mustInt("BCRYPT_COST"),
	}
}

func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
