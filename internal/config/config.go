package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     string
	DBDriver string // sqlite | pgx
	DBDSN    string
	LogFile  string
	LogLevel string

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	RequestTimeout     time.Duration
	RateLimitPerMin    int // 0 disables the global limiter
	LendingMaxAttempts int
	LendingBaseDelay   time.Duration

	KafkaBrokers   []string
	KafkaTopic     string
	OutboxInterval time.Duration
}

func Load() Config {
	cfg := Config{
		Port:     getenv("PORT", "8080"),
		DBDriver: getenv("DB_DRIVER", "sqlite"),
		DBDSN:    getenv("DB_DSN", "libris.db"), // sqlite file in project root
		LogFile:  os.Getenv("LOG_FILE"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		JWTSecret:  getenv("JWT_SECRET", "local_dev_secret_change_me_please"),
		JWTTTL:     duration("JWT_TTL", 24*time.Hour),
		BcryptCost: integer("BCRYPT_COST", 10),

		RequestTimeout:     duration("REQUEST_TIMEOUT", 10*time.Second),
		RateLimitPerMin:    nonNegative("RATE_LIMIT_PER_MIN", 120),
		LendingMaxAttempts: integer("LENDING_MAX_ATTEMPTS", 5),
		LendingBaseDelay:   duration("LENDING_BASE_DELAY", 10*time.Millisecond),

		KafkaTopic:     getenv("KAFKA_TOPIC", "libris.lending"),
		OutboxInterval: duration("OUTBOX_INTERVAL", 2*time.Second),
	}
	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

// Fields is the loggable view of the config; secrets are left out.
func (c Config) Fields() map[string]any {
	return map[string]any{
		"port":                 c.Port,
		"db_driver":            c.DBDriver,
		"log_file":             c.LogFile,
		"log_level":            c.LogLevel,
		"jwt_ttl":              c.JWTTTL.String(),
		"request_timeout":      c.RequestTimeout.String(),
		"rate_limit_per_min":   c.RateLimitPerMin,
		"lending_max_attempts": c.LendingMaxAttempts,
		"kafka_brokers":        c.KafkaBrokers,
		"kafka_topic":          c.KafkaTopic,
		"outbox_interval":      c.OutboxInterval.String(),
	}
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func duration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}

func integer(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func nonNegative(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
