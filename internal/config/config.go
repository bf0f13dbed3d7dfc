package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	DB     DBConfig
	TMDB   TMDBConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port      int    `envconfig:"SERVER_PORT" default:"8080"`
	SecretKey string `envconfig:"SECRET_KEY" required:"true"`
}

// DBConfig holds database configuration
type DBConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	Path     string `envconfig:"DB_PATH" default:"movie-collection.db"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASSWORD" default:""`
	Database string `envconfig:"DB_NAME" default:"filmshelf"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"10"`
}

// TMDBConfig holds configuration for The Movie Database client
type TMDBConfig struct {
	APIKey       string        `envconfig:"TMDB_API_KEY" required:"true"`
	BaseURL      string        `envconfig:"TMDB_BASE_URL" default:"https://api.themoviedb.org/3"`
	ImageBaseURL string        `envconfig:"TMDB_IMAGE_BASE_URL" default:"https://image.tmdb.org/t/p/w500"`
	Timeout      time.Duration `envconfig:"TMDB_TIMEOUT" default:"10s"`
	RateLimit    float64       `envconfig:"TMDB_RATE_LIMIT" default:"4"`
	MaxRetries   int           `envconfig:"TMDB_MAX_RETRIES" default:"3"`
}

// DSN returns the MySQL data source name
func (c *DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	if err := envconfig.Process("", &cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to load db config: %w", err)
	}

	if err := envconfig.Process("", &cfg.TMDB); err != nil {
		return nil, fmt.Errorf("failed to load tmdb config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}
	switch c.DB.Driver {
	case "sqlite":
		if c.DB.Path == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case "mysql":
		if c.DB.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for the mysql driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or mysql, got %q", c.DB.Driver)
	}
	if c.TMDB.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required")
	}
	if c.TMDB.RateLimit <= 0 {
		return fmt.Errorf("TMDB_RATE_LIMIT must be positive")
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("TMDB_TIMEOUT must be positive")
	}
	return nil
}
