// Package config loads the proxymanager YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	DefaultListen     = "127.0.0.1:19090"
	DefaultLogRetain  = 7 * 24 * time.Hour
	DefaultConfigFile = "proxymanager.yaml"
)

// Config 运行配置。时长字段使用 Go duration 字符串（如 "30s"）。
type Config struct {
	Listen string `yaml:"listen"`
	Dev    bool   `yaml:"dev"`
	// DataRoot holds runtime files (logs); empty picks a per-user directory.
	DataRoot string `yaml:"dataRoot"`
	// DryRun keeps proxy state in memory instead of touching the OS.
	DryRun bool `yaml:"dryRun"`

	Log struct {
		Path   string `yaml:"path"`
		Retain string `yaml:"retain"`
	} `yaml:"log"`

	Guard struct {
		Interval string `yaml:"interval"`
	} `yaml:"guard"`

	// CleanOnExit clears the system proxy when the server shuts down.
	CleanOnExit bool `yaml:"cleanOnExit"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	var c Config
	c.Listen = DefaultListen
	c.Log.Retain = DefaultLogRetain.String()
	return c
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks listen address and duration fields.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return errors.New("listen must not be empty")
	}
	if _, err := c.LogRetain(); err != nil {
		return err
	}
	if _, err := c.GuardInterval(); err != nil {
		return err
	}
	return nil
}

// LogRetain 日志保留时长；空值使用默认值
func (c Config) LogRetain() (time.Duration, error) {
	return parseDuration("log.retain", c.Log.Retain, DefaultLogRetain)
}

// GuardInterval 守护检查周期；空值或 0 表示关闭
func (c Config) GuardInterval() (time.Duration, error) {
	return parseDuration("guard.interval", c.Guard.Interval, 0)
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func parseDuration(field, raw string, def time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}
