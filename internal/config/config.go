package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API      APIConfig      `yaml:"api"`
	Listing  ListingConfig  `yaml:"listing"`
	Session  SessionConfig  `yaml:"session"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Stub     StubConfig     `yaml:"stub"`
	LogLevel string         `yaml:"log_level"`
}

// APIConfig configures the backend client
type APIConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	CallTimeout time.Duration `yaml:"call_timeout"`
	RateLimit   float64       `yaml:"rate_limit"`
	MaxRetries  int           `yaml:"max_retries"`
}

type ListingConfig struct {
	PageSize  int    `yaml:"page_size"`
	Sort      string `yaml:"sort"`
	Direction string `yaml:"direction"`
}

// SessionConfig selects where the session token is kept
type SessionConfig struct {
	Backend  string `yaml:"backend"` // memory, file or redis
	File     string `yaml:"file"`
	RedisURL string `yaml:"redis_url"`
	Profile  string `yaml:"profile"`
}

type AuthConfig struct {
	Mock       bool          `yaml:"mock"`
	SigningKey string        `yaml:"signing_key"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// StubConfig configures the fixture backend
type StubConfig struct {
	Store string `yaml:"store"` // memory or postgres
	Port  string `yaml:"port"`
}

func defaults() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "http://localhost:8080",
			Timeout:     30 * time.Second,
			CallTimeout: 15 * time.Second,
		},
		Listing: ListingConfig{
			PageSize:  10,
			Sort:      "id",
			Direction: "asc",
		},
		Session: SessionConfig{
			Backend: "file",
			File:    defaultSessionFile(),
			Profile: "default",
		},
		Auth: AuthConfig{
			SigningKey: "dev-signing-key",
			TokenTTL:   24 * time.Hour,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Name:     "carrental",
			User:     "carrental",
			SSLMode:  "disable",
			MaxConns: 25,
			MinConns: 5,
		},
		Stub: StubConfig{
			Store: "memory",
			Port:  "8080",
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE and the environment, in that order. A .env file in the
// working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.API.BaseURL = getEnv("API_BASE_URL", c.API.BaseURL)
	c.API.Timeout = getEnvDuration("API_TIMEOUT", c.API.Timeout)
	c.API.CallTimeout = getEnvDuration("API_CALL_TIMEOUT", c.API.CallTimeout)
	c.API.RateLimit = getEnvFloat("API_RATE_LIMIT", c.API.RateLimit)
	c.API.MaxRetries = getEnvInt("API_MAX_RETRIES", c.API.MaxRetries)

	c.Listing.PageSize = getEnvInt("LISTING_PAGE_SIZE", c.Listing.PageSize)
	c.Listing.Sort = getEnv("LISTING_SORT", c.Listing.Sort)
	c.Listing.Direction = strings.ToLower(getEnv("LISTING_DIRECTION", c.Listing.Direction))

	c.Session.Backend = strings.ToLower(getEnv("SESSION_BACKEND", c.Session.Backend))
	c.Session.File = getEnv("SESSION_FILE", c.Session.File)
	c.Session.RedisURL = getEnv("REDIS_URL", c.Session.RedisURL)
	c.Session.Profile = getEnv("SESSION_PROFILE", c.Session.Profile)

	c.Auth.Mock = getEnvBool("AUTH_MOCK", c.Auth.Mock)
	c.Auth.SigningKey = getEnv("AUTH_SIGNING_KEY", c.Auth.SigningKey)
	c.Auth.TokenTTL = getEnvDuration("AUTH_TOKEN_TTL", c.Auth.TokenTTL)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvInt("DB_PORT", c.Database.Port)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.MaxConns = getEnvInt("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvInt("DB_MIN_CONNS", c.Database.MinConns)

	c.Stub.Store = strings.ToLower(getEnv("STUB_STORE", c.Stub.Store))
	c.Stub.Port = getEnv("API_PORT", c.Stub.Port)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate rejects values no component can work with
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("API_BASE_URL is required"))
	}
	if c.Listing.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("LISTING_PAGE_SIZE must be positive, got %d", c.Listing.PageSize))
	}
	if c.Listing.Direction != "asc" && c.Listing.Direction != "desc" {
		errs = append(errs, fmt.Errorf("LISTING_DIRECTION must be asc or desc, got %q", c.Listing.Direction))
	}

	switch c.Session.Backend {
	case "memory":
	case "file":
		if c.Session.File == "" {
			errs = append(errs, errors.New("SESSION_FILE is required for the file session backend"))
		}
	case "redis":
		if c.Session.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis session backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend))
	}

	if c.Auth.Mock && c.Auth.SigningKey == "" {
		errs = append(errs, errors.New("AUTH_SIGNING_KEY is required in mock auth mode"))
	}

	if c.Stub.Store != "memory" && c.Stub.Store != "postgres" {
		errs = append(errs, fmt.Errorf("unknown STUB_STORE %q", c.Stub.Store))
	}

	return errors.Join(errs...)
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".carrental/session.json"
	}
	return dir + "/carrental/session.json"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
