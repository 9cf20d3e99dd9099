package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
	"safety-analytics-go/internal/types"
)

const (
	DefaultPort            = "8080"
	DefaultBaselineHours   = 200000.0
	DefaultPrefsDBPath     = "./safety_prefs.db"
	DefaultMaxUploadMB     = 32
	DefaultFetchTimeoutSec = 30
)

// Feed is a remote export re-imported on a cron schedule.
type Feed struct {
	Name     string           `yaml:"name"`
	Kind     types.RecordKind `yaml:"kind"`
	URL      string           `yaml:"url"`
	Schedule string           `yaml:"schedule"`
}

type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`

	BaselineHours   float64 `yaml:"baseline_hours"`
	PrefsDBPath     string  `yaml:"prefs_db_path"`
	MaxUploadMB     int     `yaml:"max_upload_mb"`
	FetchTimeoutSec int     `yaml:"fetch_timeout_sec"`
	// DataDir, when set, is scanned at startup for injuries.*, near-misses.*
	// and inspections.* exports.
	DataDir string `yaml:"data_dir"`

	Feeds []Feed `yaml:"feeds"`
}

// Load reads CONFIG_PATH (default config.yaml) if present, then applies
// env overrides and defaults, then validates.
func Load() (Config, error) {
	path := "config.yaml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		path = p
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	var cfg Config
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	envOverride(&cfg.Port, "PORT")
	envOverride(&cfg.Environment, "ENVIRONMENT")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")
	envOverride(&cfg.PrefsDBPath, "PREFS_DB_PATH")
	envOverride(&cfg.DataDir, "DATA_DIR")
	if err := envOverrideFloat(&cfg.BaselineHours, "BASELINE_HOURS"); err != nil {
		return Config{}, err
	}
	if err := envOverrideInt(&cfg.MaxUploadMB, "MAX_UPLOAD_MB"); err != nil {
		return Config{}, err
	}
	if err := envOverrideInt(&cfg.FetchTimeoutSec, "FETCH_TIMEOUT_SEC"); err != nil {
		return Config{}, err
	}

	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.BaselineHours == 0 {
		cfg.BaselineHours = DefaultBaselineHours
	}
	if cfg.PrefsDBPath == "" {
		cfg.PrefsDBPath = DefaultPrefsDBPath
	}
	if cfg.MaxUploadMB == 0 {
		cfg.MaxUploadMB = DefaultMaxUploadMB
	}
	if cfg.FetchTimeoutSec == 0 {
		cfg.FetchTimeoutSec = DefaultFetchTimeoutSec
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if n, err := strconv.Atoi(c.Port); err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if c.BaselineHours <= 0 {
		return fmt.Errorf("invalid baseline_hours %v: must be > 0", c.BaselineHours)
	}
	if c.MaxUploadMB < 1 || c.MaxUploadMB > 1024 {
		return fmt.Errorf("invalid max_upload_mb %d: must be between 1 and 1024", c.MaxUploadMB)
	}
	if c.FetchTimeoutSec < 1 {
		return fmt.Errorf("invalid fetch_timeout_sec %d: must be >= 1", c.FetchTimeoutSec)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	seen := map[string]bool{}
	for i, f := range c.Feeds {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("feed %d: name is required", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("feed %q: duplicate name", f.Name)
		}
		seen[f.Name] = true
		switch f.Kind {
		case types.KindInjury, types.KindNearMiss, types.KindInspection:
		default:
			return fmt.Errorf("feed %q: invalid kind %q", f.Name, f.Kind)
		}
		if !strings.HasPrefix(f.URL, "http://") && !strings.HasPrefix(f.URL, "https://") {
			return fmt.Errorf("feed %q: url must be http(s)", f.Name)
		}
		if _, err := cron.ParseStandard(f.Schedule); err != nil {
			return fmt.Errorf("feed %q: invalid schedule %q: %w", f.Name, f.Schedule, err)
		}
	}
	return nil
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
