package reports

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/jyotish-atlas/pkg/models/store"
	"github.com/de-tools/jyotish-atlas/pkg/store/duckdb"
	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{db: db, store: s}
}

func TestNewStore(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupFixture(t)
		assert.NotNil(t, f.store)
	})

	t.Run("nil db", func(t *testing.T) {
		s, err := NewStore(nil)
		assert.Error(t, err)
		assert.Nil(t, s)
	})
}

func TestReportStore_AddAndList(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	records := []store.ReportRecord{
		{ID: "r1", Name: "Test", Format: "pdf", Path: "reports/test_1.pdf", ModuleCount: 2, Modules: []string{"Health", "Personality"}, CreatedAt: base},
		{ID: "r2", Name: "Test", Format: "docx", Path: "reports/test_2.docx", Fallback: true, ModuleCount: 15, CreatedAt: base.Add(time.Hour)},
		{ID: "r3", Name: "Other", Format: "pdf", Path: "reports/other_1.pdf", ModuleCount: 1, CreatedAt: base},
	}
	for _, r := range records {
		require.NoError(t, f.store.Add(ctx, r))
	}

	got, err := f.store.ListByName(ctx, "Test", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r2", got[0].ID)
	assert.True(t, got[0].Fallback)
	assert.Equal(t, 15, got[0].ModuleCount)
	assert.Equal(t, "r1", got[1].ID)
	assert.True(t, base.Equal(got[1].CreatedAt))

	n, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	modules, err := f.store.Modules(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Health", "Personality"}, modules)

	modules, err = f.store.Modules(ctx, "r3")
	require.NoError(t, err)
	assert.Empty(t, modules)
}

func TestReportStore_AddIsAtomic(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	// A leftover row holds position 1, so the second module insert fails.
	_, err := f.db.Exec(`INSERT INTO report_modules (report_id, position, module) VALUES ('dup', 1, 'Career')`)
	require.NoError(t, err)

	err = f.store.Add(ctx, store.ReportRecord{
		ID: "dup", Name: "Test", Format: "pdf", Path: "p", Modules: []string{"Personality", "Health"}, CreatedAt: time.Now(),
	})
	require.Error(t, err)

	n, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	modules, err := f.store.Modules(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, []string{"Career"}, modules)
}

func TestReportStore_AddValidates(t *testing.T) {
	f := setupFixture(t)
	err := f.store.Add(context.Background(), store.ReportRecord{Name: "Test"})
	assert.Error(t, err)
}

func TestReportStore_AddInsideTransaction(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	err := duckdb.InTransaction(ctx, f.db, func(ctx context.Context) error {
		if err := f.store.Add(ctx, store.ReportRecord{ID: "tx1", Name: "Tx", Format: "pdf", Path: "p", CreatedAt: time.Now()}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	n, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReportStore_DatabaseErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reports").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()
	err = s.Add(ctx, store.ReportRecord{ID: "x", Path: "p"})
	assert.ErrorIs(t, err, sql.ErrConnDone)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reports").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO report_modules").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()
	err = s.Add(ctx, store.ReportRecord{ID: "y", Path: "p", Modules: []string{"Health"}})
	assert.ErrorIs(t, err, sql.ErrConnDone)

	mock.ExpectQuery("SELECT module FROM report_modules").WillReturnError(sql.ErrConnDone)
	_, err = s.Modules(ctx, "y")
	assert.ErrorIs(t, err, sql.ErrConnDone)

	mock.ExpectQuery("SELECT id, name, format").WillReturnError(sql.ErrConnDone)
	_, err = s.ListByName(ctx, "Test", 0)
	assert.ErrorIs(t, err, sql.ErrConnDone)

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow("not-a-number"))
	_, err = s.Count(ctx)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
