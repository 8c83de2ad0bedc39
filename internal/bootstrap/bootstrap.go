// Package bootstrap assembles the job pipeline from configuration so the
// API server and the CLI share one wiring.
package bootstrap

import (
	"fmt"

	"github.com/rs/zerolog"

	"mediadl/internal/adapter/repo"
	"mediadl/internal/domain"
	"mediadl/internal/extractor"
	"mediadl/internal/infra"
	"mediadl/internal/service"
	"mediadl/internal/storage"
)

// Services is the wired pipeline.
type Services struct {
	Jobs      domain.JobRepository
	Extractor extractor.Extractor
	Files     *storage.FileStore
	Runner    *service.Runner
}

// Build wires the repository, extractor, file store and runner. A non-empty
// mode overrides cfg.DeliveryMode.
func Build(cfg *infra.Config, logger zerolog.Logger, mode string) (*Services, error) {
	if mode == "" {
		mode = cfg.DeliveryMode
	}
	delivery, err := service.ParseDeliveryMode(mode)
	if err != nil {
		return nil, err
	}

	x, err := extractor.New(extractor.Options{Backend: cfg.ExtractorBackend, YtDlpPath: cfg.YtDlpPath})
	if err != nil {
		return nil, err
	}

	var files *storage.FileStore
	if delivery == service.DeliveryDisk {
		files, err = storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
	}

	jobs := repo.NewJobRepository()
	runner, err := service.NewRunner(service.Options{
		Jobs:       jobs,
		Extractor:  x,
		Files:      files,
		Mode:       delivery,
		JobTimeout: cfg.JobTimeout,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("backend", x.Name()).
		Str("delivery", string(delivery)).
		Str("storage", files.BasePath()).
		Msg("pipeline ready")

	return &Services{Jobs: jobs, Extractor: x, Files: files, Runner: runner}, nil
}
