package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultInferenceURL = "https://onixasf-skin-cancer-efficientnetb3.hf.space/run/predict"

type Config struct {
	APIPort  string `yaml:"api_port"`
	LogLevel string `yaml:"log_level"`

	InferenceURL            string `yaml:"inference_url"`
	InferenceTimeoutSeconds int    `yaml:"inference_timeout_seconds"`
	InferenceFileField      string `yaml:"inference_file_field"`

	UploadMaxBytes      int64   `yaml:"upload_max_bytes"`
	ConfidenceTolerance float64 `yaml:"confidence_tolerance"`

	RetryMaxAttempts          int     `yaml:"retry_max_attempts"`
	RetryInitialBackoffMS     int     `yaml:"retry_initial_backoff_ms"`
	BreakerEnabled            bool    `yaml:"breaker_enabled"`
	BreakerMinRequests        int     `yaml:"breaker_min_requests"`
	BreakerFailureRatio       float64 `yaml:"breaker_failure_ratio"`
	BreakerOpenTimeoutSeconds int     `yaml:"breaker_open_timeout_seconds"`

	APIRateLimitRPS            float64 `yaml:"api_rate_limit_rps"`
	APIRateLimitBurst          int     `yaml:"api_rate_limit_burst"`
	APIBackpressureMaxInFlight int     `yaml:"api_backpressure_max_in_flight"`
	APIBackpressureWaitMS      int     `yaml:"api_backpressure_wait_ms"`
}

func Defaults() Config {
	return Config{
		APIPort:  "8080",
		LogLevel: "info",

		InferenceURL:            DefaultInferenceURL,
		InferenceTimeoutSeconds: 60,
		InferenceFileField:      "file",

		UploadMaxBytes:      10 << 20,
		ConfidenceTolerance: 0.01,

		RetryMaxAttempts:          1,
		RetryInitialBackoffMS:     250,
		BreakerEnabled:            false,
		BreakerMinRequests:        5,
		BreakerFailureRatio:       0.6,
		BreakerOpenTimeoutSeconds: 30,

		APIRateLimitRPS:            5,
		APIRateLimitBurst:          10,
		APIBackpressureMaxInFlight: 16,
		APIBackpressureWaitMS:      250,
	}
}

// Load reads configuration from the environment over the defaults.
func Load() Config {
	return applyEnv(Defaults())
}

// LoadFile reads a YAML file over the defaults, then applies the environment.
// An empty path behaves like Load.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	return applyEnv(cfg), nil
}

func (c Config) InferenceTimeout() time.Duration {
	return time.Duration(c.InferenceTimeoutSeconds) * time.Second
}

func applyEnv(cfg Config) Config {
	return Config{
		APIPort:  mustEnv("API_PORT", cfg.APIPort),
		LogLevel: mustEnv("LOG_LEVEL", cfg.LogLevel),

		InferenceURL:            mustEnv("INFERENCE_URL", cfg.InferenceURL),
		InferenceTimeoutSeconds: mustEnvInt("INFERENCE_TIMEOUT_SECONDS", cfg.InferenceTimeoutSeconds),
		InferenceFileField:      mustEnv("INFERENCE_FILE_FIELD", cfg.InferenceFileField),

		UploadMaxBytes:      int64(mustEnvInt("UPLOAD_MAX_BYTES", int(cfg.UploadMaxBytes))),
		ConfidenceTolerance: mustEnvFloat("CONFIDENCE_TOLERANCE", cfg.ConfidenceTolerance),

		RetryMaxAttempts:          mustEnvInt("RESILIENCE_RETRY_MAX_ATTEMPTS", cfg.RetryMaxAttempts),
		RetryInitialBackoffMS:     mustEnvInt("RESILIENCE_RETRY_INITIAL_BACKOFF_MS", cfg.RetryInitialBackoffMS),
		BreakerEnabled:            mustEnvBool("RESILIENCE_BREAKER_ENABLED", cfg.BreakerEnabled),
		BreakerMinRequests:        mustEnvInt("RESILIENCE_BREAKER_MIN_REQUESTS", cfg.BreakerMinRequests),
		BreakerFailureRatio:       mustEnvFloat("RESILIENCE_BREAKER_FAILURE_RATIO", cfg.BreakerFailureRatio),
		BreakerOpenTimeoutSeconds: mustEnvInt("RESILIENCE_BREAKER_OPEN_TIMEOUT_SECONDS", cfg.BreakerOpenTimeoutSeconds),

		APIRateLimitRPS:            mustEnvFloat("API_RATE_LIMIT_RPS", cfg.APIRateLimitRPS),
		APIRateLimitBurst:          mustEnvInt("API_RATE_LIMIT_BURST", cfg.APIRateLimitBurst),
		APIBackpressureMaxInFlight: mustEnvInt("API_BACKPRESSURE_MAX_IN_FLIGHT", cfg.APIBackpressureMaxInFlight),
		APIBackpressureWaitMS:      mustEnvInt("API_BACKPRESSURE_WAIT_MS", cfg.APIBackpressureWaitMS),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
