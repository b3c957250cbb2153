// Package config loads widget settings from defaults, an optional YAML file
// and PHONEHOME_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nethserver/phonehome-widget/internal/phonehome"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Endpoint  string `yaml:"endpoint"`
	WidgetURL string `yaml:"widget_url"`

	IntervalMs      int `yaml:"interval_ms"`
	ErrorIntervalMs int `yaml:"error_interval_ms"`
	PaintDelayMs    int `yaml:"paint_delay_ms"`
	TimeoutMs       int `yaml:"timeout_ms"`

	Debug    bool   `yaml:"debug"`
	FailStop bool   `yaml:"fail_stop"` // stop polling on a malformed response
	LockFile string `yaml:"lock_file"`
}

const envPrefix = "PHONEHOME_"

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Endpoint:        phonehome.DefaultEndpoint,
		WidgetURL:       phonehome.WidgetURL,
		IntervalMs:      3600000,
		ErrorIntervalMs: 5000,
		PaintDelayMs:    2000,
		TimeoutMs:       int(phonehome.DefaultTimeout / time.Millisecond),
		LockFile:        defaultLockFile(),
	}
}

// Load builds a Config. path may be empty, in which case only defaults and
// environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(envPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %q is not an integer", envPrefix, name, v)
		}
		*dst = n
		return nil
	}
	flag := func(name string, dst *bool) error {
		v, ok := lookup(envPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %q is not a boolean", envPrefix, name, v)
		}
		*dst = b
		return nil
	}

	str("ENDPOINT", &cfg.Endpoint)
	str("WIDGET_URL", &cfg.WidgetURL)
	str("LOCK_FILE", &cfg.LockFile)

	return errors.Join(
		num("INTERVAL_MS", &cfg.IntervalMs),
		num("ERROR_INTERVAL_MS", &cfg.ErrorIntervalMs),
		num("PAINT_DELAY_MS", &cfg.PaintDelayMs),
		num("TIMEOUT_MS", &cfg.TimeoutMs),
		flag("DEBUG", &cfg.Debug),
		flag("FAIL_STOP", &cfg.FailStop),
	)
}

// Interval is the delay between successful updates.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// ErrorInterval is the delay before retrying a failed update.
func (c *Config) ErrorInterval() time.Duration {
	return time.Duration(c.ErrorIntervalMs) * time.Millisecond
}

// PaintDelay is how long the in-flight glyph stays before the result shows.
func (c *Config) PaintDelay() time.Duration {
	return time.Duration(c.PaintDelayMs) * time.Millisecond
}

// Timeout bounds one request.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func defaultLockFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "phonehome", "widget.lock")
}

// Validate checks cfg and reports every problem found.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateURL("endpoint", cfg.Endpoint); err != nil {
		errs = append(errs, err)
	}
	if err := validateURL("widget_url", cfg.WidgetURL); err != nil {
		errs = append(errs, err)
	}
	if cfg.IntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("interval_ms must be > 0, got %d", cfg.IntervalMs))
	}
	if cfg.ErrorIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("error_interval_ms must be > 0, got %d", cfg.ErrorIntervalMs))
	}
	if cfg.PaintDelayMs <= 0 {
		errs = append(errs, fmt.Errorf("paint_delay_ms must be > 0, got %d", cfg.PaintDelayMs))
	}
	if cfg.TimeoutMs <= 0 {
		errs = append(errs, fmt.Errorf("timeout_ms must be > 0, got %d", cfg.TimeoutMs))
	}

	return errors.Join(errs...)
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host: %q", field, raw)
	}
	return nil
}
