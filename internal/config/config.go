package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

type Config struct {
	Port        string      `yaml:"port"`
	DatabaseURL string      `yaml:"database_url"`
	LogLevel    string      `yaml:"log_level"`
	Kafka       KafkaConfig `yaml:"kafka"`
	HTTP        HTTPConfig  `yaml:"http"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Enabled reports whether assignment records should be forwarded to Kafka.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type HTTPConfig struct {
	// RateLimitPerSecond bounds run submissions. Zero disables the limiter.
	RateLimitPerSecond float64 `yaml:"rate_limit_per_second"`
	Burst              int     `yaml:"burst"`
}

func Default() *Config {
	return &Config{
		Port:     "8080",
		LogLevel: "info",
		Kafka: KafkaConfig{
			Topic: "ticket-assignments",
		},
		HTTP: HTTPConfig{
			RateLimitPerSecond: 5,
			Burst:              10,
		},
	}
}

// Load reads CONFIG_FILE (or config.yaml) over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = DefaultPath
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("RATE_LIMIT_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing RATE_LIMIT_PER_SECOND: %w", err)
		}
		c.HTTP.RateLimitPerSecond = f
	}
	return nil
}

// SlogLevel maps LogLevel onto slog, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
