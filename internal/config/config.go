package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the server and the CLI
type Config struct {
	Port string

	Analysis  AnalysisConfig
	Analytics AnalyticsConfig
	Auth      AuthConfig

	RedisAddr string
	MongoURI  string
	MongoDB   string

	// StoreDriver selects the client storage backend: memory, sqlite, redis or mongo
	StoreDriver string
	SQLitePath  string

	FilesDir    string
	CORSOrigins string

	LogFormat string
	LogLevel  string
}

// AnalyticsConfig configures the event buffer and its collector
type AnalyticsConfig struct {
	// Endpoint is the collector URL; empty disables delivery
	Endpoint      string
	Timeout       time.Duration
	BeaconQueue   int
	MaxBufferSize int
}

// AuthConfig configures console login and token lifetimes
type AuthConfig struct {
	Username        string
	Password        string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Enabled reports whether a collector endpoint is configured
func (c AnalyticsConfig) Enabled() bool {
	return c.Endpoint != ""
}

// Load reads .env (when present), an optional config file and the environment.
// Environment variables win over the file, the file wins over defaults.
func Load() (*Config, error) {
	if path := os.Getenv("SUMA_DOTENV"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("config.godotenv(%s): %w", path, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("config.godotenv(.env): %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("SUMA_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config.read(%s): %w", path, err)
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("PORT", "8080")

	v.SetDefault("ANALYSIS_BASE_URL", "http://localhost:8000")
	v.SetDefault("ANALYSIS_TIMEOUT", 10*time.Second)
	v.SetDefault("LOCALE", "zh-TW")

	v.SetDefault("ANALYTICS_ENDPOINT", "")
	v.SetDefault("COLLECTOR_TIMEOUT", 10*time.Second)
	v.SetDefault("BEACON_QUEUE", 64)
	v.SetDefault("MAX_BUFFER_LENGTH", DefaultMaxBufferLength)

	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "password123")
	v.SetDefault("JWT_SECRET", "super-secret-key-change-in-production")
	v.SetDefault("ACCESS_TOKEN_TTL", 15*time.Minute)
	v.SetDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour)

	v.SetDefault("REDIS_URI", "")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB", "suma")
	v.SetDefault("STORE_DRIVER", "memory")
	v.SetDefault("SQLITE_PATH", "")

	v.SetDefault("FILES_DIR", "pdfs")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_LEVEL", "info")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port: v.GetString("PORT"),
		Analysis: AnalysisConfig{
			BaseURL: strings.TrimRight(v.GetString("ANALYSIS_BASE_URL"), "/"),
			Timeout: v.GetDuration("ANALYSIS_TIMEOUT"),
			Locale:  v.GetString("LOCALE"),
		},
		Analytics: AnalyticsConfig{
			Endpoint:      v.GetString("ANALYTICS_ENDPOINT"),
			Timeout:       v.GetDuration("COLLECTOR_TIMEOUT"),
			BeaconQueue:   v.GetInt("BEACON_QUEUE"),
			MaxBufferSize: v.GetInt("MAX_BUFFER_LENGTH"),
		},
		Auth: AuthConfig{
			Username:        v.GetString("ADMIN_USERNAME"),
			Password:        v.GetString("ADMIN_PASSWORD"),
			JWTSecret:       v.GetString("JWT_SECRET"),
			AccessTokenTTL:  v.GetDuration("ACCESS_TOKEN_TTL"),
			RefreshTokenTTL: v.GetDuration("REFRESH_TOKEN_TTL"),
		},
		RedisAddr:   normalizeRedisAddr(v.GetString("REDIS_URI")),
		MongoURI:    v.GetString("MONGO_URI"),
		MongoDB:     v.GetString("MONGO_DB"),
		StoreDriver: strings.ToLower(v.GetString("STORE_DRIVER")),
		SQLitePath:  v.GetString("SQLITE_PATH"),
		FilesDir:    v.GetString("FILES_DIR"),
		CORSOrigins: v.GetString("CORS_ALLOWED_ORIGINS"),
		LogFormat:   v.GetString("LOG_FORMAT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
	}
}

// normalizeRedisAddr strips a redis:// scheme so the value can be used as an Addr
func normalizeRedisAddr(addr string) string {
	return strings.TrimPrefix(addr, "redis://")
}
