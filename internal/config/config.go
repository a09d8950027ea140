// Package config loads service settings from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nadmax/planwise/internal/ai"
)

// Config holds settings shared by the server, the worker and the CLI.
// Environment variables override values from the config file.
type Config struct {
	Port          string
	RedisAddr     string
	PostgresDSN   string
	GoogleAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	LogLevel      string
	LogFormat     string
	CORSOrigins   []string
	WorkerID      string
	PollInterval  time.Duration
	Workers       int
	FromName      string
	FromAddress   string
	EmailAPIKey   string
}

var envKeys = map[string]string{
	"port":            "PORT",
	"redis_addr":      "REDIS_ADDR",
	"postgres_dsn":    "POSTGRES_DSN",
	"google_api_key":  "GOOGLE_API_KEY",
	"gemini_model":    "GEMINI_MODEL",
	"gemini_base_url": "GEMINI_BASE_URL",
	"log_level":       "LOG_LEVEL",
	"log_format":      "LOG_FORMAT",
	"cors_origins":    "CORS_ORIGINS",
	"worker_id":       "WORKER_ID",
	"poll_interval":   "WORKER_POLL_INTERVAL",
	"workers":         "WORKER_CONCURRENCY",
	"from_name":       "FROM_NAME",
	"from_address":    "FROM_ADDRESS",
	"email_api_key":   "EMAIL_API_KEY",
}

// Load reads path when it is non-empty, otherwise planwise.yaml from the
// working directory if present, then applies the environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("gemini_model", ai.DefaultModel)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("poll_interval", time.Second)
	v.SetDefault("workers", 1)
	v.SetDefault("from_name", "Planwise")

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("planwise")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Port:          v.GetString("port"),
		RedisAddr:     v.GetString("redis_addr"),
		PostgresDSN:   v.GetString("postgres_dsn"),
		GoogleAPIKey:  v.GetString("google_api_key"),
		GeminiModel:   v.GetString("gemini_model"),
		GeminiBaseURL: v.GetString("gemini_base_url"),
		LogLevel:      v.GetString("log_level"),
		LogFormat:     v.GetString("log_format"),
		CORSOrigins:   splitList(v.Get("cors_origins")),
		WorkerID:      v.GetString("worker_id"),
		PollInterval:  v.GetDuration("poll_interval"),
		Workers:       v.GetInt("workers"),
		FromName:      v.GetString("from_name"),
		FromAddress:   v.GetString("from_address"),
		EmailAPIKey:   v.GetString("email_api_key"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}

	return nil
}

// EmailEnabled reports whether outgoing mail is configured.
func (c *Config) EmailEnabled() bool {
	return c.EmailAPIKey != "" && c.FromAddress != ""
}

// splitList accepts a YAML list or a comma-separated string.
func splitList(value any) []string {
	var items []string
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			items = append(items, fmt.Sprint(item))
		}
	case []string:
		items = v
	case string:
		items = strings.Split(v, ",")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
