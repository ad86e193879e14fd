package config

import (
	"os"
	"strconv"
	"time"
)

type Application struct {
	GracefulShutdownTimeout time.Duration
}

type HTTPServer struct {
	Port int
}

type Database struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type Redis struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type Logger struct {
	Level string
	Mode  string // development or production
}

type JWT struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type OTP struct {
	Length         int
	ExpirationTime time.Duration
	// ExposeCodes echoes generated codes in HTTP responses. Off unless
	// explicitly enabled; intended for local development only.
	ExposeCodes bool
}

type Notifier struct {
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	WhatsAppAPIURL   string
	WhatsAppAPIKey   string
	QueueSize        int
	SendTimeout      time.Duration
}

type Reaper struct {
	SweepInterval            time.Duration
	RateLimitCleanupInterval time.Duration
}

type RateLimit struct {
	MaxRequests    int
	WindowDuration time.Duration
}

type Config struct {
	Application Application
	HTTPServer  HTTPServer
	Database    Database
	Redis       Redis
	Logger      Logger
	JWT         JWT
	OTP         OTP
	Notifier    Notifier
	Reaper      Reaper
	RateLimit   RateLimit
}

func Load() (*Config, error) {
	cfg := &Config{
		Application: Application{
			GracefulShutdownTimeout: parseDurationWithDefault("APPLICATION_GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		HTTPServer: HTTPServer{
			Port: parseIntWithDefault("HTTP_SERVER_PORT", 8080),
		},
		Database: Database{
			Host:     getEnvWithDefault("DATABASE_HOST", "db"),
			Port:     parseIntWithDefault("DATABASE_PORT", 5432),
			User:     getEnvWithDefault("DATABASE_USER", "emr_auth"),
			Password: getEnvWithDefault("DATABASE_PASSWORD", "emr_auth"),
			Name:     getEnvWithDefault("DATABASE_NAME", "emr_auth"),
			SSLMode:  getEnvWithDefault("DATABASE_SSL_MODE", "disable"),
		},
		Redis: Redis{
			Host:     getEnvWithDefault("REDIS_HOST", "redis"),
			Port:     parseIntWithDefault("REDIS_PORT", 6379),
			Password: getEnvWithDefault("REDIS_PASSWORD", ""),
			DB:       parseIntWithDefault("REDIS_DB", 0),
		},
		Logger: Logger{
			Level: getEnvWithDefault("LOGGER_LEVEL", "info"),
			Mode:  getEnvWithDefault("LOGGER_MODE", "production"),
		},
		JWT: JWT{
			Secret:          getEnvWithDefault("JWT_SECRET", "your-super-secret-key-change-in-production"),
			AccessTokenTTL:  parseDurationWithDefault("JWT_ACCESS_TOKEN_TTL", 24*time.Hour),
			RefreshTokenTTL: parseDurationWithDefault("JWT_REFRESH_TOKEN_TTL", 7*24*time.Hour),
		},
		OTP: OTP{
			Length:         parseIntWithDefault("OTP_LENGTH", 6),
			ExpirationTime: parseDurationWithDefault("OTP_EXPIRATION_TIME", 5*time.Minute),
			ExposeCodes:    getEnvBoolWithDefault("OTP_EXPOSE_CODES", false),
		},
		Notifier: Notifier{
			TwilioAccountSID: getEnvWithDefault("TWILIO_ACCOUNT_SID", ""),
			TwilioAuthToken:  getEnvWithDefault("TWILIO_AUTH_TOKEN", ""),
			TwilioFromNumber: getEnvWithDefault("TWILIO_FROM_NUMBER", ""),
			WhatsAppAPIURL:   getEnvWithDefault("WHATSAPP_API_URL", ""),
			WhatsAppAPIKey:   getEnvWithDefault("WHATSAPP_API_KEY", ""),
			QueueSize:        parseIntWithDefault("NOTIFIER_QUEUE_SIZE", 256),
			SendTimeout:      parseDurationWithDefault("NOTIFIER_SEND_TIMEOUT", 10*time.Second),
		},
		Reaper: Reaper{
			SweepInterval:            parseDurationWithDefault("REAPER_SWEEP_INTERVAL", 1*time.Hour),
			RateLimitCleanupInterval: parseDurationWithDefault("REAPER_RATE_LIMIT_CLEANUP_INTERVAL", 6*time.Hour),
		},
		RateLimit: RateLimit{
			MaxRequests:    parseIntWithDefault("RATE_LIMIT_MAX_REQUESTS", 3),
			WindowDuration: parseDurationWithDefault("RATE_LIMIT_WINDOW_DURATION", 10*time.Minute),
		},
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
