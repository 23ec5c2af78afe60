package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Shortener ShortenerConfig
}

type AppConfig struct {
	Port    string
	BaseURL string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host string
	Port string
}

type AuthConfig struct {
	JWTSecret string
	JWTTTL    time.Duration
}

// RateLimitConfig holds the fixed-window request quotas, all per hour.
type RateLimitConfig struct {
	AnonymousPerHour     int
	AuthenticatedPerHour int
	PremiumPerHour       int
}

type ShortenerConfig struct {
	CodeLength    int
	DefaultExpiry time.Duration
	PremiumExpiry time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Missing .env is fine in container deployments, env vars take over.
	_ = viper.ReadInConfig()

	var cfg Config
	cfg.App.Port = viper.GetString("APP_PORT")
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	cfg.App.BaseURL = viper.GetString("BASE_URL")
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:" + cfg.App.Port
	}

	cfg.DB.Host = viper.GetString("DB_HOST")
	cfg.DB.Port = viper.GetString("DB_PORT")
	cfg.DB.User = viper.GetString("DB_USER")
	cfg.DB.Password = viper.GetString("DB_PASSWORD")
	cfg.DB.Name = viper.GetString("DB_NAME")
	cfg.Redis.Host = viper.GetString("REDIS_HOST")
	cfg.Redis.Port = viper.GetString("REDIS_PORT")

	cfg.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	jwtHours := viper.GetInt("JWT_TTL_HOURS")
	if jwtHours == 0 {
		jwtHours = 24
	}
	cfg.Auth.JWTTTL = time.Duration(jwtHours) * time.Hour

	cfg.RateLimit.AnonymousPerHour = viper.GetInt("RATE_LIMIT_ANONYMOUS")
	if cfg.RateLimit.AnonymousPerHour == 0 {
		cfg.RateLimit.AnonymousPerHour = 60
	}
	cfg.RateLimit.AuthenticatedPerHour = viper.GetInt("RATE_LIMIT_AUTHENTICATED")
	if cfg.RateLimit.AuthenticatedPerHour == 0 {
		cfg.RateLimit.AuthenticatedPerHour = 1000
	}
	cfg.RateLimit.PremiumPerHour = viper.GetInt("RATE_LIMIT_PREMIUM")
	if cfg.RateLimit.PremiumPerHour == 0 {
		cfg.RateLimit.PremiumPerHour = 5000
	}

	cfg.Shortener.CodeLength = viper.GetInt("SHORT_CODE_LENGTH")
	if cfg.Shortener.CodeLength == 0 {
		cfg.Shortener.CodeLength = 6
	}
	expiryDays := viper.GetInt("DEFAULT_EXPIRY_DAYS")
	if expiryDays == 0 {
		expiryDays = 30
	}
	cfg.Shortener.DefaultExpiry = time.Duration(expiryDays) * 24 * time.Hour
	premiumDays := viper.GetInt("PREMIUM_EXPIRY_DAYS")
	if premiumDays == 0 {
		premiumDays = 365
	}
	cfg.Shortener.PremiumExpiry = time.Duration(premiumDays) * 24 * time.Hour

	return &cfg, nil
}
