package config

import (
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// fileSchema mirrors the on-disk config.toml layout.
type fileSchema struct {
	Hevy    hevySchema    `toml:"hevy"`
	Webhook webhookSchema `toml:"webhook"`
	Sync    syncSchema    `toml:"sync"`
	HTTP    httpSchema    `toml:"http"`
	Serve   serveSchema   `toml:"serve"`
	Capture captureSchema `toml:"capture"`
}

type hevySchema struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	PageSize int    `toml:"page_size"`
}

type webhookSchema struct {
	URL       string `toml:"url"`
	AuthToken string `toml:"auth_token"`
}

type syncSchema struct {
	StartDate string `toml:"start_date"`
	Delay     string `toml:"delay"`
}

type httpSchema struct {
	Timeout string `toml:"timeout"`
}

type serveSchema struct {
	Address string `toml:"address"`
}

type captureSchema struct {
	Dir     string `toml:"dir"`
	Address string `toml:"address"`
}

func toSchema(cfg Config) fileSchema {
	return fileSchema{
		Hevy: hevySchema{
			APIKey:   cfg.Hevy.APIKey,
			BaseURL:  cfg.Hevy.BaseURL,
			PageSize: cfg.Hevy.PageSize,
		},
		Webhook: webhookSchema{
			URL:       cfg.Webhook.URL,
			AuthToken: cfg.Webhook.AuthToken,
		},
		Sync: syncSchema{
			StartDate: cfg.Sync.StartDate,
			Delay:     cfg.Sync.Delay.String(),
		},
		HTTP: httpSchema{
			Timeout: cfg.HTTP.Timeout.String(),
		},
		Serve: serveSchema{
			Address: cfg.Serve.Address,
		},
		Capture: captureSchema{
			Dir:     cfg.Capture.Dir,
			Address: cfg.Capture.Address,
		},
	}
}

// EncodeTOML renders a Config in the config.toml file layout, used by
// `hns config init` and `hns config show`.
func EncodeTOML(cfg Config) ([]byte, error) {
	return toml.Marshal(toSchema(cfg))
}

// DefaultPath is where `hns config init` writes when no explicit path is
// given: $XDG_CONFIG_HOME/hns/config.toml (or the platform equivalent).
func DefaultPath(userConfigDir string) string {
	return filepath.Join(userConfigDir, configDir, configName+"."+configType)
}
