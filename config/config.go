// Package config loads artifacts-cred settings from the environment, an
// optional config file, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonwraymond/feedcred/observe"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "ARTIFACTS_CONDA"

// Keys.
const (
	KeyNonInteractive  = "noninteractive_mode"
	KeyHosts           = "hosts"
	KeyHelperPath      = "helper_path"
	KeyHelperTimeout   = "helper_timeout"
	KeyCacheTTL        = "cache_ttl"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyTracingExporter = "tracing_exporter"
	KeyMetricsExporter = "metrics_exporter"
	KeyConfigFile      = "config"
)

var (
	ErrInvalidDuration = errors.New("config: invalid duration")
	ErrInvalidLogLevel = errors.New("config: invalid log level")
)

// Config is the resolved configuration. It is read once at startup.
type Config struct {
	NonInteractive bool
	ExtraHosts     []string

	// HelperPath overrides the platform default credential provider path.
	HelperPath    string
	HelperTimeout time.Duration
	CacheTTL      time.Duration

	LogLevel        string
	LogFormat       string
	TracingExporter string
	MetricsExporter string
}

// NewViper returns a viper instance with env binding and defaults applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyNonInteractive, "false")
	v.SetDefault(KeyHosts, "")
	v.SetDefault(KeyHelperPath, "")
	v.SetDefault(KeyHelperTimeout, "0s")
	v.SetDefault(KeyCacheTTL, "0s")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyTracingExporter, "none")
	v.SetDefault(KeyMetricsExporter, "none")
	v.SetDefault(KeyConfigFile, "")

	return v
}

// Load builds a Config from v. If the config key names a file, it is read
// first; environment variables and bound flags still take precedence.
func Load(v *viper.Viper) (Config, error) {
	if path := strings.TrimSpace(v.GetString(KeyConfigFile)); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := Config{
		NonInteractive:  parseToggle(v.GetString(KeyNonInteractive)),
		ExtraHosts:      splitHosts(v.GetString(KeyHosts)),
		HelperPath:      strings.TrimSpace(v.GetString(KeyHelperPath)),
		LogLevel:        strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		LogFormat:       strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat))),
		TracingExporter: strings.ToLower(strings.TrimSpace(v.GetString(KeyTracingExporter))),
		MetricsExporter: strings.ToLower(strings.TrimSpace(v.GetString(KeyMetricsExporter))),
	}

	var err error
	if cfg.HelperTimeout, err = duration(v, KeyHelperTimeout); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = duration(v, KeyCacheTTL); err != nil {
		return Config{}, err
	}

	switch cfg.LogLevel {
	case "warning":
		cfg.LogLevel = "warn"
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.LogLevel)
	}

	return cfg, nil
}

// Observe returns the telemetry configuration for cfg.
func (c Config) Observe(serviceName, version string) observe.Config {
	return observe.Config{
		ServiceName: serviceName,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   c.TracingExporter != "" && c.TracingExporter != "none",
			Exporter:  c.TracingExporter,
			SamplePct: 1.0,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.MetricsExporter != "" && c.MetricsExporter != "none",
			Exporter: c.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.LogLevel,
			Format:  c.LogFormat,
		},
	}
}

// parseToggle is true only for "true" in any letter case.
func parseToggle(s string) bool {
	return strings.EqualFold(s, "true")
}

func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ";") {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidDuration, key, raw)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidDuration, key)
	}
	return d, nil
}
