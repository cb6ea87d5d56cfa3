package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"LabRateImporter/internal/domain"
)

// ErrNotFound is returned by catalog lookups for unknown IDs.
var ErrNotFound = errors.New("test not found")

// RateListSource loads a rate list document as ordered lines.
type RateListSource interface {
	ReadLines(ctx context.Context, path string) ([]string, error)
}

// TestRepository persists classified tests. Each call is one atomic batch.
type TestRepository interface {
	InsertBatch(ctx context.Context, tests []domain.CatalogTest) (int, error)
}

// CatalogFilter narrows catalog listings. Empty fields match everything.
type CatalogFilter struct {
	Category domain.Category
	Query    string
}

// TestCatalog serves stored tests to readers.
type TestCatalog interface {
	List(ctx context.Context, filter CatalogFilter, limit, offset int) ([]domain.CatalogTest, int, error)
	Get(ctx context.Context, id uuid.UUID) (domain.CatalogTest, error)
	Ping(ctx context.Context) error
}
