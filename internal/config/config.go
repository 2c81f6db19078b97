package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	JWTSecret        string
	JWTRefreshSecret string

	// DocumentCacheTTL bounds how long a rendered report card document is
	// served without regeneration; ListCacheTTL does the same for per-student
	// report card listings.
	DocumentCacheTTL time.Duration
	ListCacheTTL     time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	// NotifyAddress receives a copy of each newly generated report card.
	// Empty disables notifications.
	NotifyAddress string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SMS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "SchoolERP API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("document.cache_ttl", "10m")
	v.SetDefault("list.cache_ttl", "30m")
	v.SetDefault("smtp.port", 587)

	documentTTL, err := time.ParseDuration(v.GetString("document.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid document cache ttl: %w", err)
	}

	listTTL, err := time.ParseDuration(v.GetString("list.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid list cache ttl: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		JWTRefreshSecret: v.GetString("jwt.refresh_secret"),
		DocumentCacheTTL: documentTTL,
		ListCacheTTL:     listTTL,
		SMTPHost:         v.GetString("smtp.host"),
		SMTPPort:         v.GetInt("smtp.port"),
		SMTPUsername:     v.GetString("smtp.username"),
		SMTPPassword:     v.GetString("smtp.password"),
		SMTPFrom:         v.GetString("smtp.from"),
		NotifyAddress:    v.GetString("notify.address"),
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}

	return cfg, nil
}
