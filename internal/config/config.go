package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Storage   StorageConfig   `yaml:"storage"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Device    DeviceConfig    `yaml:"device"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	LogLevel  string          `yaml:"log_level"`
}

type BotConfig struct {
	Token        string        `yaml:"token"`
	AllowedUsers []int64       `yaml:"allowed_users"`
	Language     string        `yaml:"language"`
	MinInterval  time.Duration `yaml:"min_interval"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type BroadcastConfig struct {
	Concurrency int      `yaml:"concurrency"`
	Reactions   []string `yaml:"reactions"`
}

type DeviceConfig struct {
	DeviceModel    string `yaml:"device_model"`
	SystemVersion  string `yaml:"system_version"`
	AppVersion     string `yaml:"app_version"`
	LangCode       string `yaml:"lang_code"`
	SystemLangCode string `yaml:"system_lang_code"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultReactions is the glyph set used when none is configured.
var DefaultReactions = []string{"🔥", "👍", "❤️"}

func Dir() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		cfgDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(cfgDir, "telefleet")
}

// Load reads the YAML file at path, applies TELEFLEET_* environment
// overrides and fills in defaults. A missing file is not an error when the
// environment supplies what is needed.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	cfg.setDefaults(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("TELEFLEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if s := v.GetString("bot.token"); s != "" {
		cfg.Bot.Token = s
	}
	if s := v.GetString("bot.language"); s != "" {
		cfg.Bot.Language = s
	}
	if s := v.GetString("storage.driver"); s != "" {
		cfg.Storage.Driver = s
	}
	if s := v.GetString("storage.path"); s != "" {
		cfg.Storage.Path = s
	}
	if s := v.GetString("metrics.addr"); s != "" {
		cfg.Metrics.Addr = s
	}
	if s := v.GetString("log_level"); s != "" {
		cfg.LogLevel = s
	}
}

func (c *Config) setDefaults(dir string) {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Bot.Language == "" {
		c.Bot.Language = "en"
	}
	if c.Bot.MinInterval == 0 {
		c.Bot.MinInterval = 200 * time.Millisecond
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverJSON
	}
	if c.Storage.Path == "" {
		switch c.Storage.Driver {
		case DriverSQLite:
			c.Storage.Path = filepath.Join(dir, "telefleet.db")
		default:
			c.Storage.Path = filepath.Join(dir, "Sessions.json")
		}
	}
	if c.Broadcast.Concurrency <= 0 {
		c.Broadcast.Concurrency = 4
	}
	if len(c.Broadcast.Reactions) == 0 {
		c.Broadcast.Reactions = DefaultReactions
	}
	if c.Device.DeviceModel == "" {
		c.Device.DeviceModel = "telefleet"
	}
	if c.Device.SystemVersion == "" {
		c.Device.SystemVersion = "linux"
	}
	if c.Device.AppVersion == "" {
		c.Device.AppVersion = "1.0.0"
	}
	if c.Device.LangCode == "" {
		c.Device.LangCode = "en"
	}
	if c.Device.SystemLangCode == "" {
		c.Device.SystemLangCode = "en"
	}
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverJSON, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Bot.Language {
	case "en", "fa":
	default:
		return fmt.Errorf("unsupported language %q", c.Bot.Language)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// RequireBot reports an error when the bot cannot be started.
func (c *Config) RequireBot() error {
	if c.Bot.Token == "" {
		return errors.New("bot.token is not set (config file or TELEFLEET_BOT_TOKEN)")
	}
	return nil
}
