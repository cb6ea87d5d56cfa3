package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"LabRateImporter/internal/domain"
	"LabRateImporter/internal/ports"
)

const testsTable = "individual_tests"

var testColumns = []string{
	"id", "name", "description", "price", "category", "symptoms",
	"preparation_required", "report_time", "home_collection",
}

// Repository persists classified tests into Postgres or sqlite.
type Repository struct {
	db      *sql.DB
	dialect dialect
}

var (
	_ ports.TestRepository = (*Repository)(nil)
	_ ports.TestCatalog    = (*Repository)(nil)
)

// Open connects to the database named by url and verifies it answers.
func Open(ctx context.Context, url string, maxOpenConns int) (*Repository, error) {
	d, dsn, err := dialectFor(url)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}

	if d.name == sqliteDialect.name {
		// one connection keeps in-memory databases alive and serializes writes
		db.SetMaxOpenConns(1)
	} else if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}

	return &Repository{db: db, dialect: d}, nil
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Dialect reports the database flavour in use.
func (r *Repository) Dialect() string {
	return r.dialect.name
}

// Ping checks that the database still answers.
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return errors.New("database is not configured")
	}
	return r.db.PingContext(ctx)
}

// InsertBatch writes tests as one multi-row INSERT inside a transaction.
func (r *Repository) InsertBatch(ctx context.Context, tests []domain.CatalogTest) (int, error) {
	if len(tests) == 0 {
		return 0, nil
	}

	insert := sq.Insert(testsTable).
		Columns(testColumns...).
		PlaceholderFormat(r.dialect.placeholder)

	for _, t := range tests {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		symptoms, err := r.dialect.listArg(t.Symptoms)
		if err != nil {
			return 0, fmt.Errorf("test %q: %w", t.Name, err)
		}
		insert = insert.Values(
			t.ID.String(),
			t.Name,
			t.Description,
			t.Price,
			string(t.Category),
			symptoms,
			t.PreparationRequired,
			t.ReportTime,
			t.HomeCollection,
		)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("insert tests: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	return len(tests), nil
}

// List returns one page of tests ordered by name, plus the filtered total.
func (r *Repository) List(ctx context.Context, filter ports.CatalogFilter, limit, offset int) ([]domain.CatalogTest, int, error) {
	count := sq.Select("COUNT(*)").From(testsTable).PlaceholderFormat(r.dialect.placeholder)
	page := sq.Select(testColumns...).From(testsTable).PlaceholderFormat(r.dialect.placeholder)

	if filter.Category != "" {
		eq := sq.Eq{"category": string(filter.Category)}
		count = count.Where(eq)
		page = page.Where(eq)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := sq.Like{"LOWER(name)": "%" + strings.ToLower(q) + "%"}
		count = count.Where(like)
		page = page.Where(like)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tests: %w", err)
	}

	page = page.OrderBy("name ASC", "id ASC")
	if limit > 0 {
		page = page.Limit(uint64(limit))
	}
	if offset > 0 {
		page = page.Offset(uint64(offset))
	}

	pageSQL, pageArgs, err := page.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tests: %w", err)
	}

	var items []domain.CatalogTest
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			_ = rows.Close()
			return nil, 0, fmt.Errorf("scan test: %w", err)
		}
		items = append(items, t)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, 0, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, 0, fmt.Errorf("close rows: %w", closeErr)
	}

	return items, total, nil
}

// Get loads a single test; unknown IDs yield ports.ErrNotFound.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (domain.CatalogTest, error) {
	query, args, err := sq.Select(testColumns...).
		From(testsTable).
		Where(sq.Eq{"id": id.String()}).
		PlaceholderFormat(r.dialect.placeholder).
		ToSql()
	if err != nil {
		return domain.CatalogTest{}, fmt.Errorf("build select: %w", err)
	}

	t, err := r.scan(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CatalogTest{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.CatalogTest{}, fmt.Errorf("get test %s: %w", id, err)
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scan(row rowScanner) (domain.CatalogTest, error) {
	var (
		t        domain.CatalogTest
		category string
	)
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.Price,
		&category,
		r.dialect.listDest(&t.Symptoms),
		&t.PreparationRequired,
		&t.ReportTime,
		&t.HomeCollection,
	)
	t.Category = domain.Category(category)
	return t, err
}
