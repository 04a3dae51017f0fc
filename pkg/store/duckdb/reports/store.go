package reports

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/jyotish-atlas/pkg/models/store"
	"github.com/de-tools/jyotish-atlas/pkg/store/duckdb"
)

// Store indexes exported report files.
type Store interface {
	Add(ctx context.Context, record store.ReportRecord) error
	Modules(ctx context.Context, reportID string) ([]string, error)
	ListByName(ctx context.Context, name string, limit int) ([]store.ReportRecord, error)
	Count(ctx context.Context) (int64, error)
}

type reportStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &reportStore{db: db}, nil
}

// Add writes the report row and its ordered module rows in one transaction.
func (s *reportStore) Add(ctx context.Context, record store.ReportRecord) error {
	if record.ID == "" || record.Path == "" {
		return fmt.Errorf("report id and path are required")
	}

	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		q := duckdb.QuerierFrom(ctx, s.db)

		query := `
			INSERT INTO reports (id, name, format, path, fallback, module_count, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`

		_, err := q.ExecContext(ctx, query,
			record.ID,
			record.Name,
			record.Format,
			record.Path,
			record.Fallback,
			record.ModuleCount,
			record.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("insert report: %w", err)
		}

		for i, module := range record.Modules {
			_, err := q.ExecContext(ctx,
				`INSERT INTO report_modules (report_id, position, module) VALUES (?, ?, ?)`,
				record.ID, i, module,
			)
			if err != nil {
				return fmt.Errorf("insert report module %q: %w", module, err)
			}
		}
		return nil
	})
}

// Modules returns the module names of a report in report order.
func (s *reportStore) Modules(ctx context.Context, reportID string) ([]string, error) {
	rows, err := duckdb.QuerierFrom(ctx, s.db).QueryContext(ctx,
		`SELECT module FROM report_modules WHERE report_id = ? ORDER BY position`, reportID)
	if err != nil {
		return nil, fmt.Errorf("query report modules: %w", err)
	}
	defer rows.Close()

	var modules []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan report module: %w", err)
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// ListByName returns the newest reports for name first.
func (s *reportStore) ListByName(ctx context.Context, name string, limit int) ([]store.ReportRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, name, format, path, fallback, module_count, created_at
		FROM reports
		WHERE name = ?
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := duckdb.QuerierFrom(ctx, s.db).QueryContext(ctx, query, name, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var records []store.ReportRecord
	for rows.Next() {
		var r store.ReportRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.Format, &r.Path, &r.Fallback, &r.ModuleCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return records, nil
}

func (s *reportStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := duckdb.QuerierFrom(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}
