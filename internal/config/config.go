// Package config loads service configuration from the environment with an
// optional YAML file underneath. Environment variables always win so
// deployments can override a checked-in file without editing it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDev        = "dev"
	EnvProduction = "production"
)

type Config struct {
	Environment string `yaml:"environment"`
	Port        int    `yaml:"port"`
	APIPrefix   string `yaml:"api_prefix"`
	APIKey      string `yaml:"api_key"`

	CORSOrigins       []string `yaml:"cors_origins"`
	RateLimitPerMin   int      `yaml:"rate_limit_per_minute"`
	TrustedProxyCount int      `yaml:"trusted_proxy_count"`

	MaxURLLength int    `yaml:"max_url_length"`
	ModelDir     string `yaml:"model_dir"`

	NetworkTimeout time.Duration `yaml:"network_timeout"`
	SSLTimeout     time.Duration `yaml:"ssl_timeout"`
	WhoisTimeout   time.Duration `yaml:"whois_timeout"`

	CacheMaxSize int           `yaml:"cache_max_size"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func defaults() Config {
	return Config{
		Environment:       EnvDev,
		Port:              8080,
		APIPrefix:         "/api/v1",
		CORSOrigins:       []string{"*"},
		RateLimitPerMin:   30,
		TrustedProxyCount: 0,
		MaxURLLength:      2048,
		ModelDir:          "models",
		NetworkTimeout:    8 * time.Second,
		SSLTimeout:        5 * time.Second,
		WhoisTimeout:      10 * time.Second,
		CacheMaxSize:      2000,
		CacheTTL:          time.Hour,
		LogLevel:          "info",
		LogFormat:         "console",
	}
}

// Load builds the config from defaults, then the YAML file at path (if
// non-empty), then the environment.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setStr(&c.Environment, "ENVIRONMENT")
	setInt(&c.Port, "PORT")
	setStr(&c.APIPrefix, "API_PREFIX")
	setStr(&c.APIKey, "API_KEY")
	if v := os.Getenv("BACKEND_CORS_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		c.CORSOrigins = origins
	}
	setInt(&c.RateLimitPerMin, "RATE_LIMIT_PER_MINUTE")
	setInt(&c.TrustedProxyCount, "TRUSTED_PROXY_COUNT")
	setInt(&c.MaxURLLength, "MAX_URL_LENGTH")
	setStr(&c.ModelDir, "MODEL_DIR")
	setSeconds(&c.NetworkTimeout, "NETWORK_TIMEOUT")
	setSeconds(&c.SSLTimeout, "SSL_TIMEOUT")
	setSeconds(&c.WhoisTimeout, "WHOIS_TIMEOUT")
	setInt(&c.CacheMaxSize, "CACHE_MAX_SIZE")
	setSeconds(&c.CacheTTL, "CACHE_TTL")
	setStr(&c.LogLevel, "LOG_LEVEL")
	setStr(&c.LogFormat, "LOG_FORMAT")
}

// Validate enforces the production hardening rules.
func (c *Config) Validate() error {
	if c.Environment != EnvDev && c.Environment != EnvProduction {
		return fmt.Errorf("config: unknown environment %q", c.Environment)
	}
	if c.Environment == EnvProduction {
		if c.APIKey == "" {
			return fmt.Errorf("config: API_KEY must be set in production")
		}
		for _, o := range c.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("config: wildcard CORS origin is not allowed in production")
			}
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.RateLimitPerMin < 1 {
		return fmt.Errorf("config: rate limit must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// setSeconds reads a duration expressed as a number of seconds, matching
// the convention of the deployment environment.
func setSeconds(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			*dst = time.Duration(f * float64(time.Second))
		}
	}
}
