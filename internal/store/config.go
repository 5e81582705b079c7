package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"opsboard/internal/hospital"
	"opsboard/internal/timeofday"

	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

// Config is the user configuration in ~/.opsboard/config.yaml.
// Every field is optional; zero values fall back to defaults.
type Config struct {
	// Theme is one of: light|dark|auto
	Theme string `yaml:"theme,omitempty"`

	// DataDir overrides where opsboard.sqlite lives.
	DataDir string `yaml:"data_dir,omitempty"`

	// AutosaveDelay is a Go duration ("3s").
	AutosaveDelay string `yaml:"autosave_delay,omitempty"`

	// PrimeTime is the OR prime-time window ("07:00-15:30").
	PrimeTime string `yaml:"prime_time,omitempty"`

	Thresholds *hospital.Thresholds `yaml:"thresholds,omitempty"`
}

func ConfigDir() (string, error) {
	// Keeps tests from touching ~/.opsboard.
	if v := strings.TrimSpace(os.Getenv("OPSBOARD_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".opsboard"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadConfig returns an empty config when the file does not exist.
func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "config.yaml.*.tmp", path, b, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Theme)) {
	case "", "auto", "light", "dark":
	default:
		return fmt.Errorf("theme: unknown value %q (want light|dark|auto)", c.Theme)
	}
	if strings.TrimSpace(c.AutosaveDelay) != "" {
		d, err := time.ParseDuration(c.AutosaveDelay)
		if err != nil {
			return fmt.Errorf("autosave_delay: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("autosave_delay: must be positive, got %s", d)
		}
	}
	if strings.TrimSpace(c.PrimeTime) != "" {
		if _, err := timeofday.ParseRange(c.PrimeTime); err != nil {
			return fmt.Errorf("prime_time: %w", err)
		}
	}
	return nil
}

// AutosaveQuietPeriod returns the configured delay or 0 (caller default).
func (c *Config) AutosaveQuietPeriod() time.Duration {
	if c == nil {
		return 0
	}
	d, err := time.ParseDuration(strings.TrimSpace(c.AutosaveDelay))
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

func (c *Config) PrimeTimeRange() timeofday.Range {
	if c != nil {
		if r, err := timeofday.ParseRange(c.PrimeTime); err == nil {
			return r
		}
	}
	return hospital.DefaultPrimeTime()
}

// EffectiveThresholds overlays configured thresholds on the defaults.
func (c *Config) EffectiveThresholds() hospital.Thresholds {
	th := hospital.DefaultThresholds()
	if c == nil || c.Thresholds == nil {
		return th
	}
	o := *c.Thresholds
	if o.OccupancyWatch > 0 {
		th.OccupancyWatch = o.OccupancyWatch
	}
	if o.OccupancyCritical > 0 {
		th.OccupancyCritical = o.OccupancyCritical
	}
	if o.StaffingWatch > 0 {
		th.StaffingWatch = o.StaffingWatch
	}
	if o.StaffingCritical > 0 {
		th.StaffingCritical = o.StaffingCritical
	}
	if o.ORWatch > 0 {
		th.ORWatch = o.ORWatch
	}
	if o.ORCritical > 0 {
		th.ORCritical = o.ORCritical
	}
	return th
}
