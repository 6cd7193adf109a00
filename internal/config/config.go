package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix marks environment overrides. Nested keys use "__", e.g.
// PLANTAFEL_WORKDAY_START_HOUR=7.
const EnvPrefix = "PLANTAFEL_"

// FeedConfig is one ICS absence calendar.
type FeedConfig struct {
	// ID names the feed in logs.
	ID string `yaml:"id" validate:"required"`
	// URL is the ICS endpoint.
	URL string `yaml:"url" validate:"required,url"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone used for calendar days (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" validate:"required"`

	// Locale drives the collation of resource names (BCP 47, e.g. "de").
	Locale string `yaml:"locale"`

	// DefaultView is "employee" or "project".
	DefaultView string `yaml:"default_view" validate:"oneof=employee project"`

	// WorkdayStartHour / WorkdayEndHour bound a timed event created by a drop.
	WorkdayStartHour int `yaml:"workday_start_hour" validate:"gte=0,lte=23"`
	WorkdayEndHour   int `yaml:"workday_end_hour" validate:"gte=1,lte=24,gtfield=WorkdayStartHour"`

	// DataFile is the board snapshot (.yaml, .yml or .json).
	DataFile string `yaml:"data_file" validate:"required"`

	// AbsenceFeeds are optional HR calendars merged into the snapshot's absences.
	AbsenceFeeds []FeedConfig `yaml:"absence_feeds" validate:"dive"`

	// CacheDir keeps the last good body of every absence feed.
	CacheDir string `yaml:"cache_dir"`

	// RefreshCron is the schedule of `plantafel watch` (e.g. "*/15 * * * *").
	RefreshCron string `yaml:"refresh" validate:"required"`

	// HorizonDays / BackfillDays size the inspected window around today.
	HorizonDays  int `yaml:"horizon_days" validate:"gte=1,lte=366"`
	BackfillDays int `yaml:"backfill_days" validate:"gte=0,lte=366"`

	// MetricsTextfile, if set, receives board gauges in Prometheus text format.
	MetricsTextfile string `yaml:"metrics_textfile"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:         "Europe/Berlin",
		Locale:           "de",
		DefaultView:      "employee",
		WorkdayStartHour: 8,
		WorkdayEndHour:   17,
		DataFile:         "./var/plantafel.yaml",
		AbsenceFeeds:     []FeedConfig{},
		CacheDir:         "./var/absence-cache",
		RefreshCron:      "*/15 * * * *",
		HorizonDays:      28,
		BackfillDays:     7,
		LogLevel:         "info",
	}
}

// Normalize trims and lower-cases enum-like fields and replaces blank
// strings with defaults. Keys missing from the file never reach it as zero
// values; Load layers the file over DefaultConfig.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.Locale == "" {
		c.Locale = d.Locale
	}
	c.DefaultView = strings.ToLower(strings.TrimSpace(c.DefaultView))
	if c.DefaultView == "" {
		c.DefaultView = d.DefaultView
	}
	if c.WorkdayStartHour == 0 && c.WorkdayEndHour == 0 {
		c.WorkdayStartHour, c.WorkdayEndHour = d.WorkdayStartHour, d.WorkdayEndHour
	}
	if c.DataFile == "" {
		c.DataFile = d.DataFile
	}
	if c.AbsenceFeeds == nil {
		c.AbsenceFeeds = []FeedConfig{}
	}
	if c.CacheDir == "" {
		c.CacheDir = d.CacheDir
	}
	if c.RefreshCron == "" {
		c.RefreshCron = d.RefreshCron
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = d.HorizonDays
	}
	if c.BackfillDays < 0 {
		c.BackfillDays = 0
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Validate checks field constraints and that Timezone is loadable.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.Errorf("config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return errors.Wrap(err, "config")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return errors.Wrapf(err, "config: timezone %q", c.Timezone)
	}
	return nil
}

// Location returns the configured timezone, or time.Local if it cannot be
// loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load reads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms first.
//   - Keys missing from the file keep their DefaultConfig value; explicit
//     zeros are kept.
//   - PLANTAFEL_* environment variables override file values.
//   - The result is normalized and validated.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(err, "stat config")
		}
		if err := Save(path, DefaultConfig()); err != nil {
			return nil, errors.Wrap(err, "write default config")
		}
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(DefaultConfig(), "yaml"), nil); err != nil {
		return nil, errors.Wrap(err, "load defaults")
	}
	if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
		return nil, errors.Wrap(err, "load config file")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "load env overrides")
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps PLANTAFEL_WORKDAY_START_HOUR to workday_start_hour and
// PLANTAFEL_A__B to a.b.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes cfg to path as YAML through a temp file and rename, with
// 0700 on the parent directory and 0600 on the file.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	return WriteFileAtomic(path, data, ".plantafel-config-*.tmp")
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// WriteFileAtomic writes data next to path and renames it into place.
func WriteFileAtomic(path string, data []byte, pattern string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
