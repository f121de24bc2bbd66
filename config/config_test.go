package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Config{
		LogLevel:        "warn",
		LogFormat:       "console",
		TracingExporter: "none",
		MetricsExporter: "none",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_NonInteractiveToggle(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"True", true},
		{"false", false},
		{"1", false},
		{"yes", false},
		{" true", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("ARTIFACTS_CONDA_NONINTERACTIVE_MODE", tt.value)
			cfg, err := Load(NewViper())
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.NonInteractive != tt.want {
				t.Errorf("NonInteractive = %v for %q, want %v", cfg.NonInteractive, tt.value, tt.want)
			}
		})
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ARTIFACTS_CONDA_HOSTS", "pkgs.example.com; Feeds.Internal ;;")
	t.Setenv("ARTIFACTS_CONDA_HELPER_PATH", "/opt/provider")
	t.Setenv("ARTIFACTS_CONDA_HELPER_TIMEOUT", "2m")
	t.Setenv("ARTIFACTS_CONDA_CACHE_TTL", "10m")
	t.Setenv("ARTIFACTS_CONDA_LOG_LEVEL", "WARNING")
	t.Setenv("ARTIFACTS_CONDA_LOG_FORMAT", "json")
	t.Setenv("ARTIFACTS_CONDA_TRACING_EXPORTER", "stdout")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff([]string{"pkgs.example.com", "feeds.internal"}, cfg.ExtraHosts); diff != "" {
		t.Errorf("ExtraHosts mismatch (-want +got):\n%s", diff)
	}
	if cfg.HelperPath != "/opt/provider" {
		t.Errorf("HelperPath = %q", cfg.HelperPath)
	}
	if cfg.HelperTimeout != 2*time.Minute || cfg.CacheTTL != 10*time.Minute {
		t.Errorf("durations = %v, %v", cfg.HelperTimeout, cfg.CacheTTL)
	}
	if cfg.LogLevel != "warn" || cfg.LogFormat != "json" {
		t.Errorf("logging = %q, %q", cfg.LogLevel, cfg.LogFormat)
	}

	obs := cfg.Observe("artifacts-cred", "test")
	if !obs.Tracing.Enabled || obs.Metrics.Enabled || !obs.Logging.Enabled {
		t.Errorf("Observe() = %+v", obs)
	}
	if err := obs.Validate(); err != nil {
		t.Errorf("Observe().Validate() = %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
		want       error
	}{
		{"ARTIFACTS_CONDA_HELPER_TIMEOUT", "soon", ErrInvalidDuration},
		{"ARTIFACTS_CONDA_CACHE_TTL", "-1m", ErrInvalidDuration},
		{"ARTIFACTS_CONDA_LOG_LEVEL", "loud", ErrInvalidLogLevel},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(NewViper()); !errors.Is(err, tt.want) {
				t.Fatalf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifacts-cred.yaml")
	body := "hosts: pkgs.example.com\ncache_ttl: 5m\nlog_level: info\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ARTIFACTS_CONDA_CONFIG", path)
	t.Setenv("ARTIFACTS_CONDA_LOG_LEVEL", "debug")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cmp.Equal(cfg.ExtraHosts, []string{"pkgs.example.com"}) || cfg.CacheTTL != 5*time.Minute {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, env should override the file", cfg.LogLevel)
	}

	t.Setenv("ARTIFACTS_CONDA_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(NewViper()); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
