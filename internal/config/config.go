package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Triage   TriageConfig
	SLA      SLAConfig
	Chatbot  ChatbotConfig
	Monitor  MonitorConfig
	Events   EventsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines service-token parameters for the ingest endpoints.
type AuthConfig struct {
	JWTSecret       string
	TokenTTLMinutes int
}

// TriageConfig tunes the keyword classifier. The rule weights themselves live
// in the triage package; these are the knobs the spec leaves to deployment.
type TriageConfig struct {
	// MinScore is the raw rule score below which classification falls back
	// to other/medium.
	MinScore float64
	// ConfidenceFloor is reported instead of 0.0 on fallback when set.
	ConfidenceFloor float64
}

// SLAConfig defines response-time targets and scan behavior.
type SLAConfig struct {
	// ResponseTargets maps priority to the base response duration. All four
	// priorities must be present; validated at startup.
	CriticalResponse time.Duration
	HighResponse     time.Duration
	MediumResponse   time.Duration
	LowResponse      time.Duration
	// SystemDownMultiplier tightens deadlines for system_down tickets.
	SystemDownMultiplier float64
	ScanInterval         time.Duration
	StoreTimeout         time.Duration
}

// ChatbotConfig tunes chat escalation.
type ChatbotConfig struct {
	// EscalationThreshold is the confidence below which a chat turn is
	// handed to a human via a ticket.
	EscalationThreshold float64
}

// MetricThreshold holds warning/critical boundaries for one metric key.
type MetricThreshold struct {
	Warning  float64
	Critical float64
}

// MonitorConfig tunes the threshold monitor.
type MonitorConfig struct {
	Thresholds map[string]MetricThreshold
	// RaiseAfter and ClearAfter are the consecutive-sample requirements for
	// hysteresis in each direction.
	RaiseAfter int
	ClearAfter int
	// MinValue/MaxValue bound acceptable sample values; samples outside the
	// range are treated as malformed and ignored.
	MinValue float64
	MaxValue float64
}

// EventsConfig tunes the broadcaster.
type EventsConfig struct {
	// SubscriberBuffer is the per-subscriber queue size. On overflow the
	// oldest queued event is dropped.
	SubscriberBuffer int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "triage-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("AUTH_JWT_SECRET", "dev-secret"),
			TokenTTLMinutes: getEnvAsInt("AUTH_TOKEN_TTL_MINUTES", 60),
		},
		Triage: TriageConfig{
			MinScore:        getEnvAsFloat("TRIAGE_MIN_SCORE", 1),
			ConfidenceFloor: getEnvAsFloat("TRIAGE_CONFIDENCE_FLOOR", 0),
		},
		SLA: SLAConfig{
			CriticalResponse:     getEnvAsDuration("SLA_CRITICAL_RESPONSE", time.Hour),
			HighResponse:         getEnvAsDuration("SLA_HIGH_RESPONSE", 4*time.Hour),
			MediumResponse:       getEnvAsDuration("SLA_MEDIUM_RESPONSE", 24*time.Hour),
			LowResponse:          getEnvAsDuration("SLA_LOW_RESPONSE", 72*time.Hour),
			SystemDownMultiplier: getEnvAsFloat("SLA_SYSTEM_DOWN_MULTIPLIER", 0.5),
			ScanInterval:         getEnvAsDuration("SLA_SCAN_INTERVAL", time.Minute),
			StoreTimeout:         getEnvAsDuration("SLA_STORE_TIMEOUT", 5*time.Second),
		},
		Chatbot: ChatbotConfig{
			EscalationThreshold: getEnvAsFloat("CHATBOT_ESCALATION_THRESHOLD", 0.5),
		},
		Monitor: MonitorConfig{
			Thresholds: map[string]MetricThreshold{
				"cpu": {
					Warning:  getEnvAsFloat("MONITOR_CPU_WARNING", 80),
					Critical: getEnvAsFloat("MONITOR_CPU_CRITICAL", 92),
				},
				"memory": {
					Warning:  getEnvAsFloat("MONITOR_MEMORY_WARNING", 85),
					Critical: getEnvAsFloat("MONITOR_MEMORY_CRITICAL", 95),
				},
				"disk": {
					Warning:  getEnvAsFloat("MONITOR_DISK_WARNING", 90),
					Critical: getEnvAsFloat("MONITOR_DISK_CRITICAL", 97),
				},
			},
			RaiseAfter: getEnvAsInt("MONITOR_RAISE_AFTER", 3),
			ClearAfter: getEnvAsInt("MONITOR_CLEAR_AFTER", 3),
			MinValue:   getEnvAsFloat("MONITOR_MIN_VALUE", 0),
			MaxValue:   getEnvAsFloat("MONITOR_MAX_VALUE", 100),
		},
		Events: EventsConfig{
			SubscriberBuffer: getEnvAsInt("EVENTS_SUBSCRIBER_BUFFER", 64),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
