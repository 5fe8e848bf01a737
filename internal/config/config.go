package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Market struct {
		BaseURL   string `yaml:"base_url"`
		AppKey    string `yaml:"app_key"`
		AppSecret string `yaml:"app_secret"`
	} `yaml:"market"`
	Advisor struct {
		Provider string `yaml:"provider"` // "claude" or "gpt"
		Claude   struct {
			APIKey string `yaml:"api_key"`
			Model  string `yaml:"model"`
		} `yaml:"claude"`
		GPT struct {
			APIKey string `yaml:"api_key"`
			Model  string `yaml:"model"`
		} `yaml:"gpt"`
		TimeoutSec  int `yaml:"timeout_sec"`
		CacheTTLMin int `yaml:"cache_ttl_min"`
	} `yaml:"advisor"`
	Analysis struct {
		DaysBack       int `yaml:"days_back"`
		TopN           int `yaml:"top_n"`
		CollectWorkers int `yaml:"collect_workers"`
		AnalyzeWorkers int `yaml:"analyze_workers"`
	} `yaml:"analysis"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
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

	// Environment variable overrides
	if v := os.Getenv("MARKET_BASE_URL"); v != "" {
		cfg.Market.BaseURL = v
	}
	if v := os.Getenv("MARKET_APP_KEY"); v != "" {
		cfg.Market.AppKey = v
	}
	if v := os.Getenv("MARKET_APP_SECRET"); v != "" {
		cfg.Market.AppSecret = v
	}
	if v := os.Getenv("ADVISOR_PROVIDER"); v != "" {
		cfg.Advisor.Provider = v
	}
	if v := os.Getenv("CLAUDE_API_KEY"); v != "" {
		cfg.Advisor.Claude.APIKey = v
	}
	if v := os.Getenv("GPT_API_KEY"); v != "" {
		cfg.Advisor.GPT.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("ANALYSIS_DAYS_BACK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.DaysBack = n
		}
	}

	// Defaults
	if cfg.Advisor.Provider == "" {
		cfg.Advisor.Provider = "claude"
	}
	if cfg.Advisor.Claude.Model == "" {
		cfg.Advisor.Claude.Model = "claude-3-5-sonnet-20241022"
	}
	if cfg.Advisor.GPT.Model == "" {
		cfg.Advisor.GPT.Model = "gpt-4o"
	}
	if cfg.Advisor.TimeoutSec == 0 {
		cfg.Advisor.TimeoutSec = 45
	}
	if cfg.Advisor.CacheTTLMin == 0 {
		cfg.Advisor.CacheTTLMin = 360
	}
	if cfg.Analysis.DaysBack == 0 {
		cfg.Analysis.DaysBack = 60
	}
	if cfg.Analysis.TopN == 0 {
		cfg.Analysis.TopN = 10
	}
	if cfg.Analysis.CollectWorkers == 0 {
		cfg.Analysis.CollectWorkers = 10
	}
	if cfg.Analysis.AnalyzeWorkers == 0 {
		cfg.Analysis.AnalyzeWorkers = 3
	}
	if cfg.Schedule.DailyCron == "" {
		// Weekdays at 16:00, after the session close.
		cfg.Schedule.DailyCron = "0 0 16 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stock_radar.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Market.BaseURL == "" {
		return fmt.Errorf("market.base_url is required")
	}
	if c.Market.AppKey == "" || c.Market.AppSecret == "" {
		return fmt.Errorf("market.app_key and market.app_secret are required")
	}
	switch c.Advisor.Provider {
	case "claude":
		if c.Advisor.Claude.APIKey == "" {
			return fmt.Errorf("advisor.claude.api_key is required")
		}
	case "gpt":
		if c.Advisor.GPT.APIKey == "" {
			return fmt.Errorf("advisor.gpt.api_key is required")
		}
	default:
		return fmt.Errorf("advisor.provider must be claude or gpt, got %q", c.Advisor.Provider)
	}
	if c.Analysis.CollectWorkers < 1 || c.Analysis.AnalyzeWorkers < 1 {
		return fmt.Errorf("analysis worker counts must be positive")
	}
	return nil
}

// AdvisorTimeout returns the advisory call timeout as a duration.
func (c *Config) AdvisorTimeout() time.Duration {
	return time.Duration(c.Advisor.TimeoutSec) * time.Second
}

// CacheTTL returns the advisory result cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Advisor.CacheTTLMin) * time.Minute
}
