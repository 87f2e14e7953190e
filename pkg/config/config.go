package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	// TrustedProxies may set X-Forwarded-For; others are identified by peer address.
	TrustedProxies []string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	SlotCache SlotCacheConfig
	RateLimit RateLimitConfig
	Reminders ReminderConfig
	Web       WebConfig
	Seed      SeedConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig governs the caller identity tokens accepted by admin endpoints.
type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SlotCacheConfig toggles the Redis read-through cache for available slots.
type SlotCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// RateLimitConfig throttles booking submissions per client IP.
type RateLimitConfig struct {
	BookingPerMinute int
	BookingBurst     int
}

// ReminderConfig tunes the reminder dispatch worker pool.
type ReminderConfig struct {
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

// WebConfig configures the server-rendered booking UI.
type WebConfig struct {
	Port       int
	APIBaseURL string
	APITimeout time.Duration
	AdminToken string
}

// SeedConfig drives cmd/seed.
type SeedConfig struct {
	Days    int
	OwnerID string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.TrustedProxies = splitAndTrim(v.GetString("TRUSTED_PROXIES"))

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.SlotCache = SlotCacheConfig{
		Enabled: v.GetBool("ENABLE_SLOT_CACHE"),
		TTL:     parseDuration(v.GetString("SLOT_CACHE_TTL"), time.Minute),
	}

	cfg.RateLimit = RateLimitConfig{
		BookingPerMinute: v.GetInt("BOOKING_RATE_LIMIT"),
		BookingBurst:     v.GetInt("BOOKING_RATE_BURST"),
	}

	cfg.Reminders = ReminderConfig{
		Workers:    v.GetInt("REMINDER_WORKERS"),
		Retries:    v.GetInt("REMINDER_RETRIES"),
		RetryDelay: parseDuration(v.GetString("REMINDER_RETRY_DELAY"), 5*time.Second),
	}

	cfg.Web = WebConfig{
		Port:       v.GetInt("WEB_PORT"),
		APIBaseURL: strings.TrimRight(v.GetString("WEB_API_BASE_URL"), "/"),
		APITimeout: parseDuration(v.GetString("WEB_API_TIMEOUT"), 5*time.Second),
		AdminToken: v.GetString("WEB_ADMIN_TOKEN"),
	}

	cfg.Seed = SeedConfig{
		Days:    v.GetInt("SEED_DAYS"),
		OwnerID: v.GetString("SEED_OWNER_ID"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/v1")
	v.SetDefault("TRUSTED_PROXIES", "127.0.0.1,::1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "slot_booking")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "slot-booking-api")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_SLOT_CACHE", false)
	v.SetDefault("SLOT_CACHE_TTL", "1m")

	v.SetDefault("BOOKING_RATE_LIMIT", 30)
	v.SetDefault("BOOKING_RATE_BURST", 5)

	v.SetDefault("REMINDER_WORKERS", 2)
	v.SetDefault("REMINDER_RETRIES", 3)
	v.SetDefault("REMINDER_RETRY_DELAY", "5s")

	v.SetDefault("WEB_PORT", 3000)
	v.SetDefault("WEB_API_BASE_URL", "http://localhost:8080/v1")
	v.SetDefault("WEB_API_TIMEOUT", "5s")
	v.SetDefault("WEB_ADMIN_TOKEN", "")

	v.SetDefault("SEED_DAYS", 7)
	v.SetDefault("SEED_OWNER_ID", "")
}

// SetConfigFile reports a plain fs error rather than ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
