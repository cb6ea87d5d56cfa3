package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"LabRateImporter/internal/classifier"
	"LabRateImporter/internal/domain"
	"LabRateImporter/internal/ports"
	"LabRateImporter/internal/ratelist"
)

// DefaultBatchSize matches the row count committed per transaction.
const DefaultBatchSize = 100

// ImporterDeps wires the driven adapters into the import workflow.
type ImporterDeps struct {
	Source     ports.RateListSource
	Repository ports.TestRepository
	Classifier *classifier.Classifier
	BatchSize  int
	Logger     *slog.Logger
}

// Importer implements the rate-list ingestion workflow.
type Importer struct {
	source     ports.RateListSource
	repository ports.TestRepository
	classifier *classifier.Classifier
	batchSize  int
	logger     *slog.Logger
}

// Report summarizes one run.
type Report struct {
	Lines         int
	Parsed        int
	Continuations int
	Noise         int
	Malformed     int
	Persisted     int
	Batches       int
}

// NewImporter constructs the orchestration component.
func NewImporter(deps ImporterDeps) *Importer {
	if deps.Classifier == nil {
		deps.Classifier = classifier.New(nil)
	}
	if deps.BatchSize <= 0 {
		deps.BatchSize = DefaultBatchSize
	}
	return &Importer{
		source:     deps.Source,
		repository: deps.Repository,
		classifier: deps.Classifier,
		batchSize:  deps.BatchSize,
		logger:     deps.Logger,
	}
}

// Preview reads, parses and classifies the rate list at path without storing it.
func (i *Importer) Preview(ctx context.Context, path string) ([]domain.CatalogTest, Report, error) {
	if i.source == nil {
		return nil, Report{}, errors.New("rate list source is not configured")
	}

	lines, err := i.source.ReadLines(ctx, path)
	if err != nil {
		return nil, Report{}, fmt.Errorf("read rate list: %w", err)
	}

	parsed := ratelist.Parse(lines)
	report := Report{
		Lines:         parsed.Lines,
		Parsed:        len(parsed.Entries),
		Continuations: parsed.Continuations,
		Noise:         parsed.Noise,
		Malformed:     parsed.Malformed,
	}
	i.info("rate list parsed",
		"path", path,
		"lines", report.Lines,
		"tests", report.Parsed,
		"continuations", report.Continuations,
		"skipped", report.Noise+report.Malformed)

	return i.classifier.ClassifyAll(parsed.Entries), report, nil
}

// Run imports the rate list at path. Batches are committed independently: on a
// storage failure the returned report counts what is already stored.
func (i *Importer) Run(ctx context.Context, path string) (Report, error) {
	if i.repository == nil {
		return Report{}, errors.New("test repository is not configured")
	}

	tests, report, err := i.Preview(ctx, path)
	if err != nil {
		return report, err
	}

	for start := 0; start < len(tests); start += i.batchSize {
		end := min(start+i.batchSize, len(tests))

		n, err := i.repository.InsertBatch(ctx, tests[start:end])
		if err != nil {
			return report, fmt.Errorf("persist batch %d: %w", report.Batches+1, err)
		}
		report.Persisted += n
		report.Batches++
		i.info("batch imported", "batch", report.Batches, "tests", n)
	}

	return report, nil
}

func (i *Importer) info(msg string, args ...interface{}) {
	if i.logger != nil {
		i.logger.Info(msg, args...)
	}
}
