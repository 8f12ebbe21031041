package cli

import (
	"github.com/custodia-labs/repogallery/internal/adapters/driven/assets"
	"github.com/custodia-labs/repogallery/internal/adapters/driven/auth"
	config "github.com/custodia-labs/repogallery/internal/adapters/driven/config/file"
	storage "github.com/custodia-labs/repogallery/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/repogallery/internal/connectors/github"
	"github.com/custodia-labs/repogallery/internal/core/ports/driven"
	"github.com/custodia-labs/repogallery/internal/core/ports/driving"
	"github.com/custodia-labs/repogallery/internal/core/services"
	"github.com/custodia-labs/repogallery/internal/extractor"
	"github.com/custodia-labs/repogallery/internal/normalisers/project"
)

const defaultConfigName = config.DefaultPath

// Services are the use cases the commands drive.
type Services struct {
	Fetcher driving.GalleryFetcher
	Assets  driving.AssetMirror
	Status  driving.StatusReporter
	Dataset driven.DatasetStore
}

// newServices builds Services for a command. Tests replace it.
var newServices = func() (*Services, error) {
	cfg, err := config.Load(configPath, configPath != "")
	if err != nil {
		return nil, err
	}
	return Wire(cfg), nil
}

// Wire connects the adapters described by cfg.
func Wire(cfg *config.Config) *Services {
	opts := github.DefaultOptions()
	opts.RequestsPerSecond = cfg.RequestsPerSecond
	opts.MaxRateLimitWait = cfg.MaxRateLimitWait.Duration
	opts.Retry = cfg.RetryPolicy()
	client := github.NewClient(auth.DefaultChain(cfg.EnvFile, cfg.Prompt), opts)

	ex := extractor.New(client, cfg.Paths)
	dataset := storage.NewDatasetStore(cfg.DatasetPath)
	manifest := storage.NewManifestStore(cfg.AssetManifestPath)
	downloader := assets.NewDownloader(cfg.AssetDir, assets.Options{Retry: cfg.RetryPolicy()})

	pipeline := services.NewPipeline(
		github.NewDiscoverer(client, cfg.IncludeArchived),
		ex,
		project.New(cfg.NamePattern),
		dataset,
		client,
		services.PipelineOptions{
			Organization:       cfg.Organization,
			NamePattern:        cfg.NamePattern,
			MaxWorkers:         cfg.Workers,
			CallsPerRepository: ex.CallsPerRepository(),
		},
	)

	return &Services{
		Fetcher: pipeline,
		Assets:  services.NewAssetService(downloader, manifest),
		Status:  services.NewStatusService(dataset, manifest),
		Dataset: dataset,
	}
}
