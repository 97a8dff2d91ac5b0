package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/deskpilot/internal/adapters/driven/api"
	"github.com/custodia-labs/deskpilot/internal/adapters/driven/charts"
	"github.com/custodia-labs/deskpilot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/deskpilot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/cli"
	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driven"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
	"github.com/custodia-labs/deskpilot/internal/core/services"
	"github.com/custodia-labs/deskpilot/internal/logger"
)

// build wires one session: settings, the API client, the query cache and
// everything layered on it.
func build(opts cli.Options) (*cli.Services, error) {
	store, dir, err := configStore(opts)
	if err != nil {
		return nil, err
	}
	settingsService := services.NewSettingsService(store)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if opts.APIURL != "" {
		settings.API.BaseURL = opts.APIURL
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	client, err := api.NewClient(api.ConfigFromSettings(settings.API))
	if err != nil {
		return nil, err
	}
	logger.Debug("api: %s", client.BaseURL())

	cache := services.NewQueryCache(client, services.WithGCDelay(settings.Cache.GCDelay))
	pipeline := services.NewMutationPipeline(client, cache)
	viz := services.NewVisualizer(cache)
	timeRange := settings.Dashboard.TimeRange

	return &cli.Services{
		Settings: settingsService,
		Inbox:    services.NewInboxService(cache, pipeline),
		NewDashboard: func(notify func(domain.Notice)) driving.DashboardService {
			palette := charts.DefaultPalette()
			return services.NewDashboard(cache, pipeline, viz, services.DashboardConfig{
				TimeRange:      timeRange,
				VolumeChart:    charts.NewVolumeChart(charts.NewSurface("volume"), palette),
				SentimentChart: charts.NewSentimentChart(charts.NewSurface("sentiment"), palette),
				OnNotice:       notify,
			})
		},
		LogDir: dir,
		Close:  cache.Close,
	}, nil
}

// configStore opens the settings store and returns the directory logs
// are written to. --no-config keeps settings in memory and logs in the
// temp directory.
func configStore(opts cli.Options) (driven.ConfigStore, string, error) {
	if opts.NoConfig {
		return memory.NewConfigStore(), filepath.Join(os.TempDir(), file.DirName), nil
	}

	dir := opts.ConfigDir
	if dir == "" {
		var err error
		if dir, err = file.DefaultDir(); err != nil {
			return nil, "", fmt.Errorf("locating config dir: %w", err)
		}
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, "", fmt.Errorf("opening config: %w", err)
	}
	return store, dir, nil
}
