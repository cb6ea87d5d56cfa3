package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LabRateImporter/internal/domain"
	"LabRateImporter/internal/logging"
	"LabRateImporter/internal/ports"
)

type fakeCatalog struct {
	tests   []domain.CatalogTest
	pingErr error
	listErr error

	lastFilter ports.CatalogFilter
	lastLimit  int
	lastOffset int
}

func (f *fakeCatalog) List(_ context.Context, filter ports.CatalogFilter, limit, offset int) ([]domain.CatalogTest, int, error) {
	f.lastFilter, f.lastLimit, f.lastOffset = filter, limit, offset
	if f.listErr != nil {
		return nil, 0, f.listErr
	}

	var matched []domain.CatalogTest
	for _, t := range f.tests {
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(filter.Query)) {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func (f *fakeCatalog) Get(_ context.Context, id uuid.UUID) (domain.CatalogTest, error) {
	for _, t := range f.tests {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.CatalogTest{}, ports.ErrNotFound
}

func (f *fakeCatalog) Ping(context.Context) error {
	return f.pingErr
}

func seededCatalog() *fakeCatalog {
	names := []struct {
		name     string
		category domain.Category
	}{
		{"TSH", domain.CategoryHormones},
		{"Complete Blood Count (CBC)", domain.CategoryHematology},
		{"HbA1c", domain.CategoryDiabetes},
	}
	f := &fakeCatalog{}
	for i, n := range names {
		f.tests = append(f.tests, domain.CatalogTest{
			ID:             uuid.New(),
			Name:           n.name,
			Description:    n.name + " - Serum sample analysis",
			Price:          100 * (i + 1),
			Category:       n.category,
			Symptoms:       []string{"Fatigue"},
			ReportTime:     domain.DefaultReportTime,
			HomeCollection: true,
		})
	}
	return f
}

func serve(t *testing.T, catalog ports.TestCatalog, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := NewServer(catalog, logging.Discard())
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type listResponse struct {
	Data    []domain.CatalogTest `json:"data"`
	Total   int                  `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
	HasMore bool                 `json:"has_more"`
}

func TestListTestsDefaults(t *testing.T) {
	catalog := seededCatalog()
	rec := serve(t, catalog, "/api/individual-tests")
	require.Equal(t, http.StatusOK, rec.Code)

	var body listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, DefaultLimit, body.Limit)
	assert.Zero(t, body.Offset)
	assert.False(t, body.HasMore)
	require.Len(t, body.Data, 3)
	assert.Equal(t, "Complete Blood Count (CBC)", body.Data[0].Name)
}

func TestListTestsPagination(t *testing.T) {
	catalog := seededCatalog()
	rec := serve(t, catalog, "/api/individual-tests?limit=1&offset=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "HbA1c", body.Data[0].Name)
	assert.True(t, body.HasMore)
}

func TestListTestsClampsLimit(t *testing.T) {
	catalog := seededCatalog()
	rec := serve(t, catalog, "/api/individual-tests?limit=5000&offset=-3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MaxLimit, catalog.lastLimit)
	assert.Zero(t, catalog.lastOffset)
}

func TestListTestsFilters(t *testing.T) {
	catalog := seededCatalog()
	rec := serve(t, catalog, "/api/individual-tests?category=Hormones&q=ts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ports.CatalogFilter{Category: domain.CategoryHormones, Query: "ts"}, catalog.lastFilter)

	var body listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "TSH", body.Data[0].Name)
}

func TestListTestsEmptyPageIsArray(t *testing.T) {
	rec := serve(t, &fakeCatalog{}, "/api/individual-tests")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestListTestsRejectsUnknownCategory(t *testing.T) {
	rec := serve(t, seededCatalog(), "/api/individual-tests?category=Astrology")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTestsStoreFailure(t *testing.T) {
	rec := serve(t, &fakeCatalog{listErr: errors.New("connection reset")}, "/api/individual-tests")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestGetTest(t *testing.T) {
	catalog := seededCatalog()
	want := catalog.tests[0]

	rec := serve(t, catalog, "/api/individual-tests/"+want.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.CatalogTest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Category, got.Category)
}

func TestGetTestErrors(t *testing.T) {
	catalog := seededCatalog()

	rec := serve(t, catalog, "/api/individual-tests/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, catalog, "/api/individual-tests/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := serve(t, &fakeCatalog{}, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)

	rec = serve(t, &fakeCatalog{pingErr: errors.New("down")}, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
