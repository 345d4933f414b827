package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"API_PORT", "LOG_LEVEL", "INFERENCE_URL", "INFERENCE_TIMEOUT_SECONDS",
		"INFERENCE_FILE_FIELD", "UPLOAD_MAX_BYTES", "CONFIDENCE_TOLERANCE",
		"RESILIENCE_RETRY_MAX_ATTEMPTS", "RESILIENCE_BREAKER_ENABLED",
		"API_RATE_LIMIT_RPS", "API_RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.InferenceURL != DefaultInferenceURL {
		t.Fatalf("unexpected default inference url %q", cfg.InferenceURL)
	}
	if cfg.InferenceTimeout() != 60*time.Second {
		t.Fatalf("expected 60s timeout, got %s", cfg.InferenceTimeout())
	}
	if cfg.InferenceFileField != "file" {
		t.Fatalf("expected file field, got %q", cfg.InferenceFileField)
	}
	if cfg.RetryMaxAttempts != 1 {
		t.Fatalf("expected single attempt by default, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.BreakerEnabled {
		t.Fatalf("expected breaker to be opt-in")
	}
	if cfg.ConfidenceTolerance != 0.01 {
		t.Fatalf("expected tolerance 0.01, got %v", cfg.ConfidenceTolerance)
	}
}

func TestLoadParsesOverridesAndIgnoresGarbage(t *testing.T) {
	clearEnv(t)
	t.Setenv("INFERENCE_URL", "http://localhost:7860/predict")
	t.Setenv("INFERENCE_TIMEOUT_SECONDS", "5")
	t.Setenv("RESILIENCE_BREAKER_ENABLED", "true")
	t.Setenv("API_RATE_LIMIT_RPS", "not-a-number")

	cfg := Load()
	if cfg.InferenceURL != "http://localhost:7860/predict" {
		t.Fatalf("expected inference url override, got %q", cfg.InferenceURL)
	}
	if cfg.InferenceTimeoutSeconds != 5 {
		t.Fatalf("expected timeout 5, got %d", cfg.InferenceTimeoutSeconds)
	}
	if !cfg.BreakerEnabled {
		t.Fatalf("expected breaker enabled by env")
	}
	if cfg.APIRateLimitRPS != Defaults().APIRateLimitRPS {
		t.Fatalf("expected fallback rps, got %v", cfg.APIRateLimitRPS)
	}
}

func TestLoadFileAppliesYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	content := []byte("api_port: \"9000\"\ninference_url: http://file-host/predict\nconfidence_tolerance: 0.05\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("API_PORT", "9100")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.APIPort != "9100" {
		t.Fatalf("expected env to win over file, got %q", cfg.APIPort)
	}
	if cfg.InferenceURL != "http://file-host/predict" {
		t.Fatalf("expected file inference url, got %q", cfg.InferenceURL)
	}
	if cfg.ConfidenceTolerance != 0.05 {
		t.Fatalf("expected file tolerance, got %v", cfg.ConfidenceTolerance)
	}
	if cfg.InferenceTimeoutSeconds != 60 {
		t.Fatalf("expected default timeout to survive, got %d", cfg.InferenceTimeoutSeconds)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
