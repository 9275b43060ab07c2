package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/hevytools/notion-sync/internal/adapters/config"
	"github.com/hevytools/notion-sync/internal/adapters/hevy"
	"github.com/hevytools/notion-sync/internal/adapters/webhook"
	"github.com/hevytools/notion-sync/internal/application"
	"github.com/hevytools/notion-sync/internal/ports"
)

type app struct {
	cfg        config.Config
	httpClient *http.Client
	logger     *slog.Logger
	clock      ports.Clock
}

func wireApp() (*app, error) {
	// A .env next to the binary is a dev convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	return &app{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTP.Timeout},
		logger:     slog.New(slog.NewTextHandler(os.Stderr, nil)),
		clock:      ports.SystemClock{},
	}, nil
}

func (a *app) newSource() *hevy.Client {
	return hevy.NewClient(a.cfg.Hevy.APIKey, a.httpClient,
		hevy.WithBaseURL(a.cfg.Hevy.BaseURL),
		hevy.WithPageSize(a.cfg.Hevy.PageSize),
	)
}

func (a *app) newDispatcher() *webhook.Dispatcher {
	return webhook.NewDispatcher(a.cfg.Webhook.URL, a.cfg.Webhook.AuthToken, a.httpClient)
}

func (a *app) newPipeline(opts ...application.PipelineOption) *application.Pipeline {
	return application.NewPipeline(a.newSource(), a.newDispatcher(), a.cfg.Sync.Delay, opts...)
}
