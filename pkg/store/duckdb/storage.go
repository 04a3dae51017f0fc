package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const ReportsTableSchema = `
	CREATE TABLE IF NOT EXISTS reports (
		id VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		format VARCHAR NOT NULL,
		path VARCHAR NOT NULL,
		fallback BOOLEAN NOT NULL DEFAULT FALSE,
		module_count INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`
const ReportModulesSchema = `
	CREATE TABLE IF NOT EXISTS report_modules (
		report_id VARCHAR NOT NULL,
		position INTEGER NOT NULL,
		module VARCHAR NOT NULL,
		PRIMARY KEY (report_id, position)
	);
`
const GeocodeCacheSchema = `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		query VARCHAR PRIMARY KEY,
		latitude DOUBLE NOT NULL,
		longitude DOUBLE NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

var bootQueries = []string{
	ReportsTableSchema,
	ReportModulesSchema,
	GeocodeCacheSchema,
}

type Settings struct {
	DbPath  string
	Threads int
}

// NewDB opens (or creates) the database at settings.DbPath and runs the boot
// schema on every new connection. ":memory:" gives a private in-memory database.
func NewDB(settings Settings) (*sql.DB, error) {
	threads := settings.Threads
	if threads <= 0 {
		threads = 4
	}

	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=%d", settings.DbPath, threads), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
