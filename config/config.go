// Package config loads the application configuration.
//
// Precedence: built-in defaults, then the YAML file, then environment
// variables with the PROMOCOACH_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	LLM    LLMConfig    `yaml:"llm"`
	Coach  CoachConfig  `yaml:"coach"`
	Store  StoreConfig  `yaml:"store"`
	Redis  RedisConfig  `yaml:"redis"`
	Search SearchConfig `yaml:"search"`
	Log    LogConfig    `yaml:"log"`
}

// LLMConfig configures the model provider.
type LLMConfig struct {
	// BaseURL of the OpenAI-compatible endpoint.
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	// Timeout per completion request.
	Timeout time.Duration `yaml:"timeout"`
}

// CoachConfig tunes the analysis steps.
type CoachConfig struct {
	Temperature float32 `yaml:"temperature"`
	// MaxFieldTokens is the per-field budget for oversized prompt inputs.
	MaxFieldTokens int `yaml:"max_field_tokens"`
	// DataDir holds the engineer's input documents as <key>.txt files.
	DataDir string `yaml:"data_dir"`
}

// StoreConfig configures output persistence.
type StoreConfig struct {
	// Path of the SQLite database file.
	Path string `yaml:"path"`
}

// RedisConfig configures the course-search cache. Leave Addr empty to run
// without caching.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SearchConfig configures the course search tool.
type SearchConfig struct {
	Endpoint          string        `yaml:"endpoint"`
	APIKey            string        `yaml:"api_key"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is "json" or "console".
	Format string `yaml:"format"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o",
			Timeout: 2 * time.Minute,
		},
		Coach: CoachConfig{
			Temperature:    0.7,
			MaxFieldTokens: 1500,
			DataDir:        "data",
		},
		Store: StoreConfig{
			Path: "promocoach.db",
		},
		Search: SearchConfig{
			Endpoint:          "https://google.serper.dev/search",
			RequestsPerMinute: 20,
			CacheTTL:          24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and PROMOCOACH_ environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	envString("PROMOCOACH_LLM_BASE_URL", &c.LLM.BaseURL)
	envString("PROMOCOACH_LLM_API_KEY", &c.LLM.APIKey)
	envString("PROMOCOACH_LLM_MODEL", &c.LLM.Model)
	envDuration("PROMOCOACH_LLM_TIMEOUT", &c.LLM.Timeout)

	envInt("PROMOCOACH_COACH_MAX_FIELD_TOKENS", &c.Coach.MaxFieldTokens)
	envString("PROMOCOACH_COACH_DATA_DIR", &c.Coach.DataDir)

	envString("PROMOCOACH_STORE_PATH", &c.Store.Path)

	envString("PROMOCOACH_REDIS_ADDR", &c.Redis.Addr)
	envString("PROMOCOACH_REDIS_PASSWORD", &c.Redis.Password)
	envInt("PROMOCOACH_REDIS_DB", &c.Redis.DB)

	envString("PROMOCOACH_SEARCH_ENDPOINT", &c.Search.Endpoint)
	envString("PROMOCOACH_SEARCH_API_KEY", &c.Search.APIKey)
	envInt("PROMOCOACH_SEARCH_REQUESTS_PER_MINUTE", &c.Search.RequestsPerMinute)

	envString("PROMOCOACH_LOG_LEVEL", &c.Log.Level)
	envString("PROMOCOACH_LOG_FORMAT", &c.Log.Format)
}

func (c *Config) validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q", c.Log.Format)
	}
	if c.Coach.MaxFieldTokens < 0 {
		return fmt.Errorf("max_field_tokens must not be negative")
	}
	return nil
}

func envString(name string, dst *string) {
	if v, ok := os.LookupEnv(name); ok {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	if v, ok := os.LookupEnv(name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if v, ok := os.LookupEnv(name); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
