package config // package config loads application configuration from environment variables

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env            string // APP_ENV (dev, test, prod)
	Port           string // APP_PORT
	DBUser         string // DB_USER
	DBPass         string // DB_PASS (optional)
	DBHost         string // DB_HOST
	DBPort         string // DB_PORT
	DBName         string // DB_NAME
	JWTSecret      string // JWT_SECRET
	AccessTTLMin   int    // ACCESS_TOKEN_TTL_MIN
	RefreshTTLDays int    // REFRESH_TOKEN_TTL_DAYS
	BcryptCost     int    // BCRYPT_COST

	Events EventsConfig
	Admin  AdminConfig
}

// EventsConfig controls reservation event publishing and the audit
// consumer.  An empty AMQPURL disables both.
type EventsConfig struct {
	AMQPURL         string // AMQP_URL
	ConsumerEnabled bool   // AUDIT_CONSUMER_ENABLED
	AuditLogPath    string // AUDIT_LOG_PATH
}

// AdminConfig describes the administrator account created at startup
// when no user with Email exists yet.  An empty Email disables it.
type AdminConfig struct {
	Name     string // BOOTSTRAP_ADMIN_NAME
	Email    string // BOOTSTRAP_ADMIN_EMAIL
	Password string // BOOTSTRAP_ADMIN_PASSWORD
}

// Load reads an optional .env file and then the environment.  Required
// variables that are missing or malformed are reported together in the
// returned error.
func Load() (Config, error) {
	_ = godotenv.Load()

	var missing []string
	must := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	var bad []string
	intOr := func(key string, def int) int {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			bad = append(bad, fmt.Sprintf("%s=%q", key, v))
			return def
		}
		return n
	}

	cfg := Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "8080"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   intOr("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: intOr("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:     intOr("BCRYPT_COST", 10),
		Events: EventsConfig{
			AMQPURL:         os.Getenv("AMQP_URL"),
			ConsumerEnabled: envBool("AUDIT_CONSUMER_ENABLED", true),
			AuditLogPath:    envStr("AUDIT_LOG_PATH", "logs/reservations.log"),
		},
		Admin: AdminConfig{
			Name:     envStr("BOOTSTRAP_ADMIN_NAME", "Administrator"),
			Email:    strings.ToLower(strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_EMAIL"))),
			Password: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		},
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if len(bad) > 0 {
		return Config{}, fmt.Errorf("invalid int env vars: %s", strings.Join(bad, ", "))
	}
	if cfg.Admin.Email != "" && cfg.Admin.Password == "" {
		return Config{}, fmt.Errorf("BOOTSTRAP_ADMIN_PASSWORD is required when BOOTSTRAP_ADMIN_EMAIL is set")
	}
	return cfg, nil
}
