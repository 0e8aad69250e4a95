// Package config loads runtime settings: defaults, then an optional TOML
// file, then a .env file, then BOSSMODE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "bossmode.toml"
	DefaultDBName         = "bossmode.db"
	DefaultStateFile      = ".bossmode_state.json"
	DefaultLogFile        = "bossmode.log"
	EnvPrefix             = "BOSSMODE_"
)

var ErrInvalidConfig = errors.New("config: invalid value")

// Duration reads and writes TOML strings such as "60s" or "1h".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalidConfig, text)
	}
	d.Duration = v
	return nil
}

type Config struct {
	DBPath                 string   `toml:"db_path"`
	OwnerID                string   `toml:"owner_id"`
	Timezone               string   `toml:"timezone"`
	StateFile              string   `toml:"state_file"`
	DesktopNotifications   bool     `toml:"desktop_notifications"`
	ReminderCheckInterval  Duration `toml:"reminder_check_interval"`
	MissedCheckTime        string   `toml:"missed_check_time"`
	DefaultReminderMinutes int      `toml:"default_reminder_minutes"`
	DueAlertGrace          Duration `toml:"due_alert_grace"`
	SchedulerBuffer        int      `toml:"scheduler_buffer"`
	HTTPAddr               string   `toml:"http_addr"`
	LogLevel               string   `toml:"log_level"`
	LogFile                string   `toml:"log_file"`
}

func Default() Config {
	return Config{
		DBPath:                 DefaultDBName,
		OwnerID:                "local",
		StateFile:              DefaultStateFile,
		DesktopNotifications:   false,
		ReminderCheckInterval:  Duration{time.Minute},
		MissedCheckTime:        "00:05",
		DefaultReminderMinutes: 15,
		DueAlertGrace:          Duration{time.Hour},
		SchedulerBuffer:        64,
		HTTPAddr:               ":8080",
		LogLevel:               "info",
		LogFile:                DefaultLogFile,
	}
}

// Load layers the TOML file at path (created with defaults when absent), the
// .env file at envFile and the process environment. Empty paths skip their
// layer.
func Load(path, envFile string) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadOrCreate(path); err != nil {
			return cfg, err
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}
	cfg = FromEnv(cfg)
	return cfg, cfg.Validate()
}

func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// FromEnv overlays BOSSMODE_* variables on base. Unparseable values are
// ignored.
func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnvString("OWNER_ID"); ok {
		cfg.OwnerID = v
	}
	if v, ok := getEnvString("TIMEZONE"); ok {
		cfg.Timezone = v
	}
	if v, ok := getEnvString("STATE_FILE"); ok {
		cfg.StateFile = v
	}
	if v, ok := getEnvBool("DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvDuration("REMINDER_CHECK_INTERVAL"); ok && v > 0 {
		cfg.ReminderCheckInterval = Duration{v}
	}
	if v, ok := getEnvString("MISSED_CHECK_TIME"); ok {
		cfg.MissedCheckTime = v
	}
	if v, ok := getEnvInt("DEFAULT_REMINDER_MINUTES"); ok && v >= 0 {
		cfg.DefaultReminderMinutes = v
	}
	if v, ok := getEnvDuration("DUE_ALERT_GRACE"); ok && v > 0 {
		cfg.DueAlertGrace = Duration{v}
	}
	if v, ok := getEnvInt("SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvString("HTTP_ADDR"); ok {
		cfg.HTTPAddr = v
	}
	if v, ok := getEnvString("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnvString("LOG_FILE"); ok {
		cfg.LogFile = v
	}
	return cfg
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.OwnerID) == "" {
		return fmt.Errorf("%w: owner_id is required", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, _, err := c.MissedCheckClock(); err != nil {
		return err
	}
	if c.ReminderCheckInterval.Duration < time.Second {
		return fmt.Errorf("%w: reminder_check_interval must be at least 1s", ErrInvalidConfig)
	}
	if c.DueAlertGrace.Duration <= 0 {
		return fmt.Errorf("%w: due_alert_grace must be positive", ErrInvalidConfig)
	}
	if c.DefaultReminderMinutes < 0 {
		return fmt.Errorf("%w: default_reminder_minutes must not be negative", ErrInvalidConfig)
	}
	if c.SchedulerBuffer <= 0 {
		return fmt.Errorf("%w: scheduler_buffer must be positive", ErrInvalidConfig)
	}
	return nil
}

// Location resolves the configured IANA zone; empty or "Local" means the
// machine's zone.
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q", ErrInvalidConfig, tz)
	}
	return loc, nil
}

// MissedCheckClock splits missed_check_time "HH:MM".
func (c Config) MissedCheckClock() (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(c.MissedCheckTime), ":")
	if ok {
		hour, err = strconv.Atoi(h)
		if err == nil {
			minute, err = strconv.Atoi(m)
		}
	}
	if !ok || err != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: missed_check_time %q", ErrInvalidConfig, c.MissedCheckTime)
	}
	return hour, minute, nil
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(EnvPrefix + name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(EnvPrefix + name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(EnvPrefix + name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

func getEnvDuration(name string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(EnvPrefix + name))
	if raw == "" {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
