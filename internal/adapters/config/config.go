// Package config centralises configuration loading: defaults, an optional
// TOML config file, and environment overrides, in ascending precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = "hns"

	// ConfigPathEnv overrides the config file location entirely.
	ConfigPathEnv = "HNS_CONFIG"
)

type Config struct {
	Hevy    HevyConfig
	Webhook WebhookConfig
	Sync    SyncConfig
	HTTP    HTTPConfig
	Serve   ServeConfig
	Capture CaptureConfig
}

type HevyConfig struct {
	APIKey   string
	BaseURL  string
	PageSize int
}

type WebhookConfig struct {
	URL       string
	AuthToken string
}

type SyncConfig struct {
	// StartDate is the lower bound of the sync window, YYYY-MM-DD.
	StartDate string
	// Delay is the send-then-wait throttle between deliveries.
	Delay time.Duration
}

type HTTPConfig struct {
	Timeout time.Duration
}

type ServeConfig struct {
	Address string
}

type CaptureConfig struct {
	Dir     string
	Address string
}

var envBindings = map[string]string{
	"hevy.api_key":       "HEVY_API_KEY",
	"hevy.base_url":      "HEVY_BASE_URL",
	"hevy.page_size":     "HEVY_PAGE_SIZE",
	"webhook.url":        "WEBHOOK_URL",
	"webhook.auth_token": "WEBHOOK_AUTH_TOKEN",
	"sync.start_date":    "SYNC_START_DATE",
	"sync.delay":         "SYNC_DELAY",
	"http.timeout":       "HTTP_TIMEOUT",
	"serve.address":      "SERVE_ADDRESS",
	"capture.dir":        "CAPTURE_DIR",
	"capture.address":    "CAPTURE_ADDRESS",
}

func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)

	if explicit := os.Getenv(ConfigPathEnv); explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		if userConfigDir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(userConfigDir, configDir))
		}
		v.AddConfigPath(".")
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return Config{
		Hevy: HevyConfig{
			APIKey:   strings.TrimSpace(v.GetString("hevy.api_key")),
			BaseURL:  strings.TrimRight(v.GetString("hevy.base_url"), "/"),
			PageSize: v.GetInt("hevy.page_size"),
		},
		Webhook: WebhookConfig{
			URL:       strings.TrimSpace(v.GetString("webhook.url")),
			AuthToken: strings.TrimSpace(v.GetString("webhook.auth_token")),
		},
		Sync: SyncConfig{
			StartDate: strings.TrimSpace(v.GetString("sync.start_date")),
			Delay:     v.GetDuration("sync.delay"),
		},
		HTTP: HTTPConfig{
			Timeout: v.GetDuration("http.timeout"),
		},
		Serve: ServeConfig{
			Address: v.GetString("serve.address"),
		},
		Capture: CaptureConfig{
			Dir:     v.GetString("capture.dir"),
			Address: v.GetString("capture.address"),
		},
	}, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("hevy.base_url", "https://api.hevyapp.com")
	v.SetDefault("hevy.page_size", 10)
	v.SetDefault("sync.delay", "1s")
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("serve.address", ":8080")
	v.SetDefault("capture.dir", "./captures")
	v.SetDefault("capture.address", ":8090")
}

// Since parses the configured start date at UTC midnight.
func (c SyncConfig) Since() (time.Time, error) {
	if c.StartDate == "" {
		return time.Time{}, errors.New("start date is not configured (set sync.start_date or SYNC_START_DATE)")
	}

	since, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse start date %q (want YYYY-MM-DD): %w", c.StartDate, err)
	}

	return since, nil
}

// ValidateSync checks everything the sync command needs before the first
// network call.
func (c Config) ValidateSync() error {
	if c.Hevy.APIKey == "" {
		return errors.New("hevy api key is not configured (set hevy.api_key or HEVY_API_KEY)")
	}
	if c.Webhook.URL == "" {
		return errors.New("webhook url is not configured (set webhook.url or WEBHOOK_URL)")
	}
	if _, err := c.Sync.Since(); err != nil {
		return err
	}
	return nil
}

// ValidateServe checks everything the relay server needs. The start date is
// optional here: /sync accepts one per request.
func (c Config) ValidateServe() error {
	if c.Hevy.APIKey == "" {
		return errors.New("hevy api key is not configured (set hevy.api_key or HEVY_API_KEY)")
	}
	if c.Webhook.URL == "" {
		return errors.New("webhook url is not configured (set webhook.url or WEBHOOK_URL)")
	}
	return nil
}
