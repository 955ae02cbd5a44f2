package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Groww struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
	} `yaml:"groww"`
	Upstox struct {
		APIKey      string `yaml:"api_key"`
		APISecret   string `yaml:"api_secret"`
		RedirectURI string `yaml:"redirect_uri"`
		AccessToken string `yaml:"access_token"`
	} `yaml:"upstox"`
	Data struct {
		ClosesFile    string `yaml:"closes_file"`
		PortfolioFile string `yaml:"portfolio_file"`
		EnvFile       string `yaml:"env_file"`
	} `yaml:"data"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Refresh struct {
		OpenIntervalSec   int `yaml:"open_interval_sec"`
		ClosedIntervalSec int `yaml:"closed_interval_sec"`
		NewsIntervalSec   int `yaml:"news_interval_sec"`
		FetchWorkers      int `yaml:"fetch_workers"`
		BatchTimeoutSec   int `yaml:"batch_timeout_sec"`
	} `yaml:"refresh"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Broker credentials usually live in .env next to the binary.
	// Real environment variables still win over .env values.
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env")
	}

	// Environment variable overrides
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("GROWW_API_KEY"); v != "" {
		cfg.Groww.APIKey = v
	}
	if v := os.Getenv("GROWW_API_SECRET"); v != "" {
		cfg.Groww.APISecret = v
	}
	if v := os.Getenv("UPSTOX_API_KEY"); v != "" {
		cfg.Upstox.APIKey = v
	}
	if v := os.Getenv("UPSTOX_API_SECRET"); v != "" {
		cfg.Upstox.APISecret = v
	}
	if v := os.Getenv("UPSTOX_REDIRECT_URI"); v != "" {
		cfg.Upstox.RedirectURI = v
	}
	if v := os.Getenv("UPSTOX_ACCESS_TOKEN"); v != "" {
		cfg.Upstox.AccessToken = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Server.Port == "" {
		cfg.Server.Port = "5000"
	}
	if cfg.Upstox.RedirectURI == "" {
		cfg.Upstox.RedirectURI = "http://localhost:5000/callback"
	}
	if cfg.Data.ClosesFile == "" {
		cfg.Data.ClosesFile = "data/saved_closes.json"
	}
	if cfg.Data.PortfolioFile == "" {
		cfg.Data.PortfolioFile = "data/portfolio.json"
	}
	if cfg.Data.EnvFile == "" {
		cfg.Data.EnvFile = ".env"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/market_terminal.db"
	}
	if cfg.Refresh.OpenIntervalSec == 0 {
		cfg.Refresh.OpenIntervalSec = 30
	}
	if cfg.Refresh.ClosedIntervalSec == 0 {
		cfg.Refresh.ClosedIntervalSec = 60
	}
	if cfg.Refresh.NewsIntervalSec == 0 {
		cfg.Refresh.NewsIntervalSec = 300
	}
	if cfg.Refresh.FetchWorkers == 0 {
		cfg.Refresh.FetchWorkers = 20
	}
	if cfg.Refresh.BatchTimeoutSec == 0 {
		cfg.Refresh.BatchTimeoutSec = 60
	}

	return cfg, nil
}

// Validate checks the fields the server cannot run without. Broker
// credentials are optional: sources degrade to the public baseline.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Refresh.OpenIntervalSec <= 0 || c.Refresh.ClosedIntervalSec <= 0 {
		return fmt.Errorf("refresh intervals must be positive")
	}
	if c.Refresh.FetchWorkers <= 0 {
		return fmt.Errorf("refresh.fetch_workers must be positive")
	}
	return nil
}
