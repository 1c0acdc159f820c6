package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppURL                 string
	DatabaseDriver         string
	DatabaseDSN            string
	RateLimit              int
	RedisAddr              string
	UserCacheTTL           time.Duration
	NatsURL                string
	NatsSubjectPrefix      string
	EventWorkers           int
	EventQueueSize         int
	ReminderSweepInterval  time.Duration
	ReminderSweepBatch     int
	JWTSecret              string
	JWTTTL                 time.Duration
	AuthRequired           bool
	ShutdownTimeoutSeconds int
}

func Load() Config {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	redisHost := getEnv("REDIS_HOST", "")
	redisPort := getEnv("REDIS_PORT", "6379")

	cfg := Config{
		AppURL:                 fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDriver:         getEnv("DATABASE_DRIVER", DriverSQLite),
		DatabaseDSN:            getEnv("DATABASE_DSN", "tasks.db"),
		RateLimit:              getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		UserCacheTTL:           time.Duration(getEnvAsInt("USER_CACHE_TTL_SECONDS", 300)) * time.Second,
		NatsURL:                getEnv("NATS_URL", ""),
		NatsSubjectPrefix:      getEnv("NATS_SUBJECT_PREFIX", "tasks"),
		EventWorkers:           getEnvAsInt("EVENT_WORKERS", 2),
		EventQueueSize:         getEnvAsInt("EVENT_QUEUE_SIZE", 256),
		ReminderSweepInterval:  time.Duration(getEnvAsInt("REMINDER_SWEEP_SECONDS", 900)) * time.Second,
		ReminderSweepBatch:     getEnvAsInt("REMINDER_SWEEP_BATCH", 100),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		JWTTTL:                 time.Duration(getEnvAsInt("JWT_TTL_MINUTES", 720)) * time.Minute,
		AuthRequired:           getEnvAsBool("AUTH_REQUIRED", false),
		ShutdownTimeoutSeconds: getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20),
	}
	if redisHost != "" {
		cfg.RedisAddr = fmt.Sprintf("%s:%s", redisHost, redisPort)
	}

	if err := Validate(cfg); err != nil {
		log.Fatal(err)
	}
	return cfg
}

func Validate(cfg Config) error {
	if cfg.AppURL == "" {
		return fmt.Errorf("APP_HOST/APP_PORT must not be empty (e.g. 127.0.0.1:8080)")
	}
	if cfg.DatabaseDriver != DriverSQLite && cfg.DatabaseDriver != DriverPostgres {
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q", DriverSQLite, DriverPostgres)
	}
	if cfg.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN must not be empty")
	}
	if cfg.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.EventWorkers <= 0 {
		return fmt.Errorf("EVENT_WORKERS must be greater than 0")
	}
	if cfg.EventQueueSize <= 0 {
		return fmt.Errorf("EVENT_QUEUE_SIZE must be greater than 0")
	}
	if cfg.ReminderSweepInterval <= 0 {
		return fmt.Errorf("REMINDER_SWEEP_SECONDS must be greater than 0")
	}
	if cfg.ReminderSweepBatch <= 0 {
		return fmt.Errorf("REMINDER_SWEEP_BATCH must be greater than 0")
	}
	if cfg.AuthRequired && cfg.JWTSecret == "" {
		return fmt.Errorf("AUTH_REQUIRED needs JWT_SECRET to be set")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid integer value for %s", key)
		}
		return i
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Fatalf("invalid boolean value for %s", key)
		}
		return b
	}
	return defaultVal
}
