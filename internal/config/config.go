// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultSessionSecret is only acceptable outside production.
const DefaultSessionSecret = "devsessionsecret"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Login    LoginConfig
	Redis    RedisConfig
	App      AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig selects the driver and holds its connection settings.
type DatabaseConfig struct {
	Driver     string // postgres | sqlite
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// SessionConfig holds session token settings.
type SessionConfig struct {
	Secret   string
	TTLHours int
}

// LoginConfig holds the failed-login throttle.
type LoginConfig struct {
	MaxAttempts   int
	WindowMinutes int
}

// RedisConfig enables the Redis-backed login throttle.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env                    string
	LogLevel               string
	Migrations             bool
	AllowTherapistRegister bool
	SentryDSN              string
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// TTL returns the session lifetime.
func (s SessionConfig) TTL() time.Duration { return time.Duration(s.TTLHours) * time.Hour }

// Window returns the throttle window.
func (l LoginConfig) Window() time.Duration { return time.Duration(l.WindowMinutes) * time.Minute }

// Production reports whether APP_ENV is production.
func (a AppConfig) Production() bool { return a.Env == "production" }

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "psycare"),
			Password:   getEnv("DB_PASSWORD", "psycare"),
			DBName:     getEnv("DB_NAME", "psycare"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "psycare.db"),
		},
		Session: SessionConfig{
			Secret:   getEnv("SESSION_SECRET", DefaultSessionSecret),
			TTLHours: getEnvInt("SESSION_TTL_HOURS", 336),
		},
		Login: LoginConfig{
			MaxAttempts:   getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
			WindowMinutes: getEnvInt("LOGIN_WINDOW_MINUTES", 15),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		App: AppConfig{
			Env:                    getEnv("APP_ENV", "development"),
			LogLevel:               getEnv("LOG_LEVEL", "info"),
			Migrations:             getEnvBool("MIGRATIONS", true),
			AllowTherapistRegister: getEnvBool("ALLOW_THERAPIST_REGISTER", false),
			SentryDSN:              os.Getenv("SENTRY_DSN"),
		},
	}
}

// Validate rejects configurations that must not start.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.App.Production() && (c.Session.Secret == "" || c.Session.Secret == DefaultSessionSecret) {
		return errors.New("config: SESSION_SECRET must be set in production")
	}
	if c.Session.TTLHours <= 0 {
		return errors.New("config: SESSION_TTL_HOURS must be positive")
	}
	if c.Login.MaxAttempts <= 0 || c.Login.WindowMinutes <= 0 {
		return errors.New("config: login throttle settings must be positive")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
