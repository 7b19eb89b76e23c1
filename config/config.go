// Package config loads xtrend settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ftahirops/xtrend/engine"
)

// Source names accepted by Config.Source.
const (
	SourceProc     = "proc"
	SourceGopsutil = "gopsutil"
	SourceStatic   = "static"
)

// Config holds every user-configurable setting. CLI flags override values
// loaded from the file.
type Config struct {
	// Interval is a duration string (e.g. "60s") between ticks.
	Interval string `yaml:"interval"`
	// HistorySize bounds the trend store.
	HistorySize int `yaml:"history_size"`
	// Trends enables the trend store, trend results and moving averages.
	Trends bool `yaml:"trends"`
	// AveragePeriods is the moving-average window.
	AveragePeriods int `yaml:"average_periods"`
	// Console prints each tick to stdout.
	Console bool `yaml:"console"`
	// Reports writes one JSON document per tick into ReportsDir.
	Reports bool `yaml:"reports"`
	// Summary rewrites the markdown summary in ReportsDir every tick.
	Summary bool `yaml:"summary"`
	// ReportsDir receives report and summary files.
	ReportsDir string `yaml:"reports_dir"`

	// Source selects the metric source: proc, gopsutil or static.
	Source string `yaml:"source"`
	// ProcRoot is the procfs mount point for the proc source.
	ProcRoot string `yaml:"proc_root"`
	// DiskPath is the filesystem whose usage is reported.
	DiskPath string `yaml:"disk_path"`

	Thresholds ThresholdsConfig `yaml:"thresholds"`
	HTTP       HTTPConfig       `yaml:"http"`
	Notify     NotifyConfig     `yaml:"notify"`

	// Record appends every report to this JSON lines file.
	Record string `yaml:"record"`
	// Archive stores every report in this SQLite database.
	Archive string `yaml:"archive"`
	// AlertLog appends non-info alerts to this JSON lines file.
	AlertLog string `yaml:"alert_log"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// BandConfig is a warn/crit pair in percent or score units.
type BandConfig struct {
	Warn float64 `yaml:"warn"`
	Crit float64 `yaml:"crit"`
}

// ThresholdsConfig mirrors engine.Thresholds.
type ThresholdsConfig struct {
	CPU             BandConfig `yaml:"cpu"`
	Memory          BandConfig `yaml:"memory"`
	Disk            BandConfig `yaml:"disk"`
	Load            BandConfig `yaml:"load"`
	NetworkWarnMBps float64    `yaml:"network_warn_mbps"`
}

// HTTPConfig controls the HTTP exporter.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// NotifyConfig controls alert-level notifications.
type NotifyConfig struct {
	Webhook      string `yaml:"webhook"`
	Command      string `yaml:"command"`
	SustainTicks int    `yaml:"sustain_ticks"`
	AllowPrivate bool   `yaml:"allow_private"`
}

// Default returns a config with the stock settings.
func Default() Config {
	th := engine.DefaultThresholds()
	return Config{
		Interval:       "60s",
		HistorySize:    engine.DefaultHistorySize,
		Trends:         true,
		AveragePeriods: engine.DefaultAveragePeriods,
		Console:        true,
		Reports:        true,
		Summary:        true,
		ReportsDir:     "reports",
		Source:         SourceProc,
		ProcRoot:       "/proc",
		DiskPath:       "/",
		Thresholds: ThresholdsConfig{
			CPU:             BandConfig{th.CPU.Warn, th.CPU.Crit},
			Memory:          BandConfig{th.Memory.Warn, th.Memory.Crit},
			Disk:            BandConfig{th.Disk.Warn, th.Disk.Crit},
			Load:            BandConfig{th.Load.Warn, th.Load.Crit},
			NetworkWarnMBps: th.NetworkWarnMBps,
		},
		HTTP: HTTPConfig{
			Enabled: false,
			Addr:    "127.0.0.1:3000",
		},
		Notify: NotifyConfig{
			SustainTicks: engine.DefaultSustainTicks,
		},
		LogLevel: "info",
	}
}

// Path returns ~/.config/xtrend/config.yaml (or under XDG_CONFIG_HOME).
// Returns empty string if the home directory cannot be determined.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "xtrend", "config.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
// An empty path means Path().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
		if path == "" {
			return cfg, nil
		}
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating the parent directory.
func Save(path string, cfg Config) error {
	if path == "" {
		path = Path()
		if path == "" {
			return fmt.Errorf("cannot determine config directory")
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if _, err := c.IntervalDuration(); err != nil {
		return err
	}
	if c.HistorySize < 2 {
		return fmt.Errorf("history_size must be at least 2, got %d", c.HistorySize)
	}
	if c.AveragePeriods <= 0 {
		return fmt.Errorf("average_periods must be positive, got %d", c.AveragePeriods)
	}
	switch c.Source {
	case SourceProc, SourceGopsutil, SourceStatic:
	default:
		return fmt.Errorf("unknown source %q (want proc, gopsutil or static)", c.Source)
	}
	if c.Notify.SustainTicks < 0 {
		return fmt.Errorf("notify.sustain_ticks must not be negative, got %d", c.Notify.SustainTicks)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if err := c.EngineThresholds().Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	return nil
}

// IntervalDuration parses Interval.
func (c Config) IntervalDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 0, fmt.Errorf("interval %q: %w", c.Interval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %s", d)
	}
	return d, nil
}

// EngineThresholds converts the threshold section for the engine.
func (c Config) EngineThresholds() engine.Thresholds {
	t := c.Thresholds
	return engine.Thresholds{
		CPU:             engine.Band{Warn: t.CPU.Warn, Crit: t.CPU.Crit},
		Memory:          engine.Band{Warn: t.Memory.Warn, Crit: t.Memory.Crit},
		Disk:            engine.Band{Warn: t.Disk.Warn, Crit: t.Disk.Crit},
		Load:            engine.Band{Warn: t.Load.Warn, Crit: t.Load.Crit},
		NetworkWarnMBps: t.NetworkWarnMBps,
	}
}

// EngineNotify converts the notify section for the engine.
func (c Config) EngineNotify() engine.NotifyConfig {
	return engine.NotifyConfig{
		Webhook:      c.Notify.Webhook,
		Command:      c.Notify.Command,
		SustainTicks: c.Notify.SustainTicks,
		AllowPrivate: c.Notify.AllowPrivate,
	}
}

// ParseLogLevel maps a level name to slog. Empty means info.
func ParseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}
