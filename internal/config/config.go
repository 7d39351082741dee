package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is loaded once at startup and treated as immutable afterwards.
// Services receive the sections they need through their constructors; nothing
// reads the environment at call time.
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Auth           AuthConfig
	RateLimit      RateLimitConfig
	Logging        LoggingConfig
	AdminBootstrap AdminBootstrapConfig
	Environment    string
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MaxConnections int    `yaml:"max_connections"`
}

type AuthConfig struct {
	JWTSecret            string
	Issuer               string
	Audience             string
	AccessTokenLifetime  time.Duration
	RefreshTokenLifetime time.Duration
}

type RateLimitConfig struct {
	LoginPer15Minutes int `yaml:"login_per_15_minutes"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type AdminBootstrapConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// fileConfig is the YAML schema for --config files. Token lifetimes are
// written as plain minutes and days, matching the environment variables.
type fileConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     struct {
		JWTSecret                  string `yaml:"jwt_secret"`
		Issuer                     string `yaml:"issuer"`
		Audience                   string `yaml:"audience"`
		AccessTokenLifetimeMinutes int    `yaml:"access_token_lifetime_minutes"`
		RefreshTokenLifetimeDays   int    `yaml:"refresh_token_lifetime_days"`
	} `yaml:"auth"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	Logging        LoggingConfig        `yaml:"logging"`
	AdminBootstrap AdminBootstrapConfig `yaml:"admin_bootstrap"`
	Environment    string               `yaml:"environment"`
}

// Load builds the configuration from environment variables. When path is
// non-empty the YAML file is read first and environment variables override it.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
		applyFile(&cfg, file)
	}

	applyEnv(&cfg)

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			MaxConnections: 25,
		},
		Auth: AuthConfig{
			Issuer:               "eventmanager",
			Audience:             "eventmanager",
			AccessTokenLifetime:  15 * time.Minute,
			RefreshTokenLifetime: 7 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			LoginPer15Minutes: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Environment: "development",
	}
}

func applyFile(cfg *Config, file fileConfig) {
	if file.Server.Host != "" {
		cfg.Server.Host = file.Server.Host
	}
	if file.Server.Port != 0 {
		cfg.Server.Port = file.Server.Port
	}
	if file.Database.URL != "" {
		cfg.Database.URL = file.Database.URL
	}
	if file.Database.MaxConnections != 0 {
		cfg.Database.MaxConnections = file.Database.MaxConnections
	}
	if file.Auth.JWTSecret != "" {
		cfg.Auth.JWTSecret = file.Auth.JWTSecret
	}
	if file.Auth.Issuer != "" {
		cfg.Auth.Issuer = file.Auth.Issuer
	}
	if file.Auth.Audience != "" {
		cfg.Auth.Audience = file.Auth.Audience
	}
	if file.Auth.AccessTokenLifetimeMinutes > 0 {
		cfg.Auth.AccessTokenLifetime = time.Duration(file.Auth.AccessTokenLifetimeMinutes) * time.Minute
	}
	if file.Auth.RefreshTokenLifetimeDays > 0 {
		cfg.Auth.RefreshTokenLifetime = time.Duration(file.Auth.RefreshTokenLifetimeDays) * 24 * time.Hour
	}
	if file.RateLimit.LoginPer15Minutes != 0 {
		cfg.RateLimit.LoginPer15Minutes = file.RateLimit.LoginPer15Minutes
	}
	if file.Logging.Level != "" {
		cfg.Logging.Level = file.Logging.Level
	}
	if file.Logging.Format != "" {
		cfg.Logging.Format = file.Logging.Format
	}
	if file.AdminBootstrap.Email != "" {
		cfg.AdminBootstrap = file.AdminBootstrap
	}
	if file.Environment != "" {
		cfg.Environment = file.Environment
	}
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)

	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.MaxConnections = getEnvInt("DATABASE_MAX_CONNECTIONS", cfg.Database.MaxConnections)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.Issuer = getEnv("JWT_ISSUER", cfg.Auth.Issuer)
	cfg.Auth.Audience = getEnv("JWT_AUDIENCE", cfg.Auth.Audience)
	if minutes := getEnvInt("ACCESS_TOKEN_LIFETIME_MINUTES", 0); minutes > 0 {
		cfg.Auth.AccessTokenLifetime = time.Duration(minutes) * time.Minute
	}
	if days := getEnvInt("REFRESH_TOKEN_LIFETIME_DAYS", 0); days > 0 {
		cfg.Auth.RefreshTokenLifetime = time.Duration(days) * 24 * time.Hour
	}

	cfg.RateLimit.LoginPer15Minutes = getEnvInt("RATE_LIMIT_LOGIN", cfg.RateLimit.LoginPer15Minutes)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.AdminBootstrap.Name = getEnv("ADMIN_NAME", cfg.AdminBootstrap.Name)
	cfg.AdminBootstrap.Email = getEnv("ADMIN_EMAIL", cfg.AdminBootstrap.Email)
	cfg.AdminBootstrap.Password = getEnv("ADMIN_PASSWORD", cfg.AdminBootstrap.Password)

	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
