// Package config provides configuration management for the mirai tools.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ErrConfigNotFound indicates no usable config file was found.
var ErrConfigNotFound = errors.New("config not found")

// Config matches the structure of mirai.json
type Config struct {
	Gateway  GatewayConfig  `json:"gateway" yaml:"gateway" mapstructure:"gateway"`
	Bot      BotConfig      `json:"bot" yaml:"bot" mapstructure:"bot"`
	Events   EventsConfig   `json:"events" yaml:"events" mapstructure:"events"`
	Replies  []ReplyRule    `json:"replies,omitempty" yaml:"replies,omitempty" mapstructure:"replies" validate:"dive"`
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule" mapstructure:"schedule"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// GatewayConfig points at a mirai-api-http instance.
type GatewayConfig struct {
	URL     string        `json:"url" yaml:"url" mapstructure:"url" validate:"required,url"`
	AuthKey string        `json:"authKey" yaml:"authKey" mapstructure:"authKey"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	Debug   bool          `json:"debug" yaml:"debug" mapstructure:"debug"`
}

// BotConfig identifies the bot account sessions are bound to.
type BotConfig struct {
	QQ uint64 `json:"qq" yaml:"qq" mapstructure:"qq"`
}

// EventsConfig controls how events are received.
type EventsConfig struct {
	Mode         string        `json:"mode" yaml:"mode" mapstructure:"mode" validate:"oneof=polling websocket"`
	PollInterval time.Duration `json:"pollInterval" yaml:"pollInterval" mapstructure:"pollInterval" validate:"gte=0"`
	Batch        int           `json:"batch" yaml:"batch" mapstructure:"batch" validate:"gte=1"`
}

// ReplyRule answers messages whose trimmed text equals Match.
type ReplyRule struct {
	Match string `json:"match" yaml:"match" mapstructure:"match" validate:"required"`
	Reply string `json:"reply" yaml:"reply" mapstructure:"reply" validate:"required"`
	// Quote makes the reply quote the triggering message.
	Quote bool `json:"quote" yaml:"quote" mapstructure:"quote"`
}

// ScheduleConfig configures scheduled messages.
type ScheduleConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	StorePath string `json:"storePath,omitempty" yaml:"storePath,omitempty" mapstructure:"storePath"`
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// StateDir returns the mirai state directory path.
// Can be overridden via MIRAI_STATE_DIR environment variable.
// Default: ~/.mirai
func StateDir() string {
	if override := strings.TrimSpace(os.Getenv("MIRAI_STATE_DIR")); override != "" {
		return expandPath(override)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".mirai"
	}
	return filepath.Join(home, ".mirai")
}

// ConfigPath returns the default config file path.
// Can be overridden via MIRAI_CONFIG_PATH environment variable.
// Default: ~/.mirai/mirai.json
func ConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("MIRAI_CONFIG_PATH")); override != "" {
		return expandPath(override)
	}
	return filepath.Join(StateDir(), "mirai.json")
}

// SchedulePath returns the schedule store path.
func (c *Config) SchedulePath() string {
	if c.Schedule.StorePath != "" {
		return expandPath(c.Schedule.StorePath)
	}
	return filepath.Join(StateDir(), "schedule.json")
}

// expandPath expands ~ to home directory and resolves the path.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = strings.Replace(path, "~", home, 1)
		}
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

// LoadViper loads the configuration into a Viper instance. When no config
// file exists the instance still carries defaults and environment values,
// and ErrConfigNotFound is returned alongside it.
func LoadViper() (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	if configPath := strings.TrimSpace(os.Getenv("MIRAI_CONFIG_PATH")); configPath != "" {
		expandedPath := expandPath(configPath)
		fileInfo, err := os.Stat(expandedPath)
		if err == nil && fileInfo.IsDir() {
			v.SetConfigName("mirai")
			v.AddConfigPath(expandedPath)
		} else {
			v.SetConfigFile(expandedPath)
		}
	} else {
		v.SetConfigName("mirai")
		v.AddConfigPath(StateDir())
	}

	// Env vars - use MIRAI_ prefix, e.g. MIRAI_GATEWAY_URL
	v.SetEnvPrefix("MIRAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return v, ErrConfigNotFound
		}
		return nil, err
	}

	return v, nil
}

// Load reads the configuration from file and environment variables. A
// missing file yields the defaults together with ErrConfigNotFound.
func Load() (*Config, error) {
	v, loadErr := LoadViper()
	if v == nil {
		return nil, loadErr
	}

	cfg, err := Decode(v)
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// Decode unmarshals the settings held by v and expands environment references.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	expandEnvVars(&cfg)

	return &cfg, nil
}

// Watch reloads the config file whenever it changes and hands the new
// config to fn. Reloads that fail to decode or validate are reported to
// onErr and otherwise ignored.
func Watch(v *viper.Viper, fn func(*Config), onErr func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Decode(v)
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			if onErr != nil {
				onErr(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		fn(cfg)
	})
	v.WatchConfig()
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("gateway.url", "http://localhost:8080")
	v.SetDefault("gateway.authKey", "")
	v.SetDefault("gateway.timeout", "30s")
	v.SetDefault("gateway.debug", false)

	v.SetDefault("bot.qq", 0)

	v.SetDefault("events.mode", "polling")
	v.SetDefault("events.pollInterval", "500ms")
	v.SetDefault("events.batch", 10)

	v.SetDefault("schedule.enabled", false)
	v.SetDefault("logging.level", "info")
}

// expandEnvVars expands environment variables in the config.
func expandEnvVars(cfg *Config) {
	cfg.Gateway.URL = os.ExpandEnv(cfg.Gateway.URL)
	cfg.Gateway.AuthKey = os.ExpandEnv(cfg.Gateway.AuthKey)
}

// Save saves the configuration to the config file.
// Uses ConfigPath() for consistency with Load() - defaults to ~/.mirai/mirai.json
// Only JSON format is supported.
func Save(cfg *Config) error {
	configPath := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

var validate = validator.New()

// Validate checks for semantic errors in the config.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]bool, len(c.Replies))
	for _, r := range c.Replies {
		match := strings.TrimSpace(r.Match)
		if seen[match] {
			return fmt.Errorf("invalid config: duplicate reply for %q", match)
		}
		seen[match] = true
	}
	return nil
}

// RequireBot checks a bot account is configured.
func (c *Config) RequireBot() error {
	if c.Bot.QQ == 0 {
		return errors.New("bot.qq is required")
	}
	return nil
}
