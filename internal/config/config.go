package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

const EnvironmentDevelopment = "development"

type Config struct {
	// Server
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	StaticDir   string `env:"STATIC_DIR"`

	// Database
	DatabaseURL       string `env:"DATABASE_URL"`
	DatabaseAuthToken string `env:"DATABASE_AUTH_TOKEN"`

	// JWT
	JWTSecret string `env:"JWT_SECRET"`

	// Resumes
	MaxResumeBytes int `env:"MAX_RESUME_BYTES" envDefault:"5242880"`

	// Warnings lists non-fatal configuration problems found by Load.
	Warnings []string `env:"-"`
}

// IsDevelopment reports whether internal error details may be returned to clients.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvironmentDevelopment
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if cfg.DatabaseURL == "" {
		cfg.Warnings = append(cfg.Warnings, "DATABASE_URL is not set, using local database file")
	}
	if cfg.DatabaseAuthToken == "" {
		cfg.Warnings = append(cfg.Warnings, "DATABASE_AUTH_TOKEN is not set")
	}

	return &cfg, nil
}

// EdgeConfig configures the offline cache edge in front of the web app.
type EdgeConfig struct {
	Port         string   `env:"EDGE_PORT" envDefault:"8081"`
	Environment  string   `env:"ENVIRONMENT" envDefault:"development"`
	UpstreamURL  string   `env:"UPSTREAM_URL"`
	CacheName    string   `env:"CACHE_NAME" envDefault:"jobtracker-v1"`
	StaticAssets []string `env:"STATIC_ASSETS" envDefault:"/,/index.html,/manifest.json" envSeparator:","`
	SkipWaiting  bool     `env:"SKIP_WAITING" envDefault:"true"`
}

func LoadEdge() (*EdgeConfig, error) {
	var cfg EdgeConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.UpstreamURL == "" {
		return nil, fmt.Errorf("UPSTREAM_URL environment variable is required")
	}

	return &cfg, nil
}

// CLIConfig configures the jobtracker command line client.
type CLIConfig struct {
	APIURL    string `env:"API_URL" envDefault:"http://localhost:8080"`
	TokenFile string `env:"JOBTRACKER_TOKEN_FILE"`
}

func LoadCLI() (*CLIConfig, error) {
	var cfg CLIConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.TokenFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locate config dir: %w", err)
		}
		cfg.TokenFile = filepath.Join(dir, "jobtracker", "token")
	}

	return &cfg, nil
}
