package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "domainfactor/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr     string
	LogLevel string
	Admin    AdminConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Audit    AuditConfig
	Seed     FactorSeed
}

// AdminConfig configures bearer tokens for settings endpoints. An empty
// signing key disables the admin endpoints.
type AdminConfig struct {
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
}

// RedisConfig configures the settings store. An empty URL selects the
// in-memory store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig configures the user factor record store. An empty URL
// selects the in-memory store.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// AuditConfig configures the audit sink. No brokers selects the in-memory store.
type AuditConfig struct {
	Brokers []string
	Topic   string
}

// FactorSeed is written to the settings store at startup when it is empty.
type FactorSeed struct {
	Enabled        string
	Weight         string
	AllowedDomains string
}

// IsZero reports whether no seed value was provided.
func (s FactorSeed) IsZero() bool {
	return s.Enabled == "" && s.Weight == "" && s.AllowedDomains == ""
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:     getEnv("DOMAIN_FACTOR_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Admin: AdminConfig{
			JWTSigningKey: os.Getenv("ADMIN_JWT_SIGNING_KEY"),
			JWTIssuer:     getEnv("ADMIN_JWT_ISSUER", "domain-factor"),
			JWTAudience:   getEnv("ADMIN_JWT_AUDIENCE", "domain-factor-admin"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: getEnvInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Audit: AuditConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("AUDIT_TOPIC", "factor-domain-audit"),
		},
		Seed: FactorSeed{
			Enabled:        os.Getenv("FACTOR_DOMAIN_ENABLED"),
			Weight:         os.Getenv("FACTOR_DOMAIN_WEIGHT"),
			AllowedDomains: strings.Join(splitList(os.Getenv("FACTOR_DOMAIN_ALLOWED_DOMAINS")), "\n"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// splitList accepts comma or newline separated values.
func splitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return nil
	}
	return pstrings.DedupeAndTrimLower(fields)
}
