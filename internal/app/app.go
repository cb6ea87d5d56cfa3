package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"LabRateImporter/internal/classifier"
	"LabRateImporter/internal/config"
	"LabRateImporter/internal/domain"
	"LabRateImporter/internal/infrastructure/httpapi"
	"LabRateImporter/internal/infrastructure/source"
	"LabRateImporter/internal/infrastructure/storage"
	"LabRateImporter/internal/logging"
	"LabRateImporter/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	source     *source.FileSource
	classifier *classifier.Classifier
}

// New builds the application from cfg. The classifier rule table is loaded
// from classifier.rulesFile when set.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format, nil)
	}

	rules := classifier.DefaultRules()
	if cfg.Classifier.RulesFile != "" {
		loaded, err := classifier.LoadRulesFile(cfg.Classifier.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}
	cls := classifier.New(rules)
	baseLogger.Debug("classifier rules loaded", "version", cls.Version())

	return &Application{
		cfg:        cfg,
		logger:     baseLogger,
		source:     source.NewFileSource(nil, baseLogger.With("component", "source")),
		classifier: cls,
	}, nil
}

// Import parses the rate list at path (import.file when empty) and stores
// every recognized test. Configuration is validated before the file is read.
func (a *Application) Import(ctx context.Context, path string) (usecase.Report, error) {
	if err := a.cfg.Validate(); err != nil {
		return usecase.Report{}, err
	}

	repo, err := a.openRepository(ctx)
	if err != nil {
		return usecase.Report{}, err
	}
	defer repo.Close()

	importer := usecase.NewImporter(usecase.ImporterDeps{
		Source:     a.source,
		Repository: repo,
		Classifier: a.classifier,
		BatchSize:  a.cfg.Import.BatchSize,
		Logger:     a.logger.With("component", "importer"),
	})
	return importer.Run(ctx, a.ratesPath(path))
}

// Preview parses and classifies the rate list without touching storage.
func (a *Application) Preview(ctx context.Context, path string) ([]domain.CatalogTest, usecase.Report, error) {
	importer := usecase.NewImporter(usecase.ImporterDeps{
		Source:     a.source,
		Classifier: a.classifier,
		Logger:     a.logger.With("component", "importer"),
	})
	return importer.Preview(ctx, a.ratesPath(path))
}

// Migrate applies pending schema migrations and returns how many ran.
func (a *Application) Migrate(ctx context.Context) (int, error) {
	repo, err := a.requireRepository(ctx)
	if err != nil {
		return 0, err
	}
	defer repo.Close()

	applied, err := storage.NewMigrator(repo).Up(ctx)
	if err != nil {
		return applied, fmt.Errorf("migrate: %w", err)
	}
	a.logger.Info("migrations applied", "dialect", repo.Dialect(), "count", applied)
	return applied, nil
}

// MigrationStatus lists the known migrations and whether each is applied.
func (a *Application) MigrationStatus(ctx context.Context) ([]storage.MigrationStatus, error) {
	repo, err := a.requireRepository(ctx)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	return storage.NewMigrator(repo).Status(ctx)
}

// Serve runs the catalog HTTP API until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	repo, err := a.requireRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	e := httpapi.NewServer(repo, a.logger.With("component", "httpapi"))

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", "addr", a.cfg.Server.Addr)
		if err := e.Start(a.cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("server stopped")
	return nil
}

func (a *Application) requireRepository(ctx context.Context) (*storage.Repository, error) {
	if a.cfg.Database.URL == "" {
		return nil, &config.MissingError{Key: "DATABASE_URL"}
	}
	return a.openRepository(ctx)
}

func (a *Application) openRepository(ctx context.Context) (*storage.Repository, error) {
	repo, err := storage.Open(ctx, a.cfg.Database.URL, a.cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return repo, nil
}

func (a *Application) ratesPath(path string) string {
	if path != "" {
		return path
	}
	return a.cfg.Import.File
}
