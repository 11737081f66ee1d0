package fixture_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/mlwarehouse/internal/db"
	"github.com/tordrt/mlwarehouse/internal/fixture"
	"github.com/tordrt/mlwarehouse/internal/schema"
	"github.com/tordrt/mlwarehouse/internal/warehouse"
)

const fixtureDir = "../../testdata/fixtures"

func newWarehouseDB(t *testing.T) *db.SQLiteClient {
	t.Helper()
	ctx := context.Background()

	client, err := db.NewSQLiteClient(ctx, filepath.Join(t.TempDir(), "mlwh.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	stmts, err := warehouse.Model().CreateStatements(schema.DialectSQLite)
	require.NoError(t, err)
	for _, stmt := range stmts {
		_, err := client.DB().ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}
	return client
}

func TestTableName(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"200-sample.yml", "sample"},
		{"00-iseq_run_status_dict.yml", "iseq_run_status_dict"},
		{"300-OseqFlowcell.yml", "oseq_flowcell"},
		{"IseqRunStatus.yaml", "iseq_run_status"},
		{"study.yml", "study"},
		{"v2-study.yml", "v2-study"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, fixture.TableName(tt.file))
		})
	}
}

func TestReadDirOrdersFiles(t *testing.T) {
	files, err := fixture.ReadDir(fixtureDir)
	require.NoError(t, err)
	require.NotEmpty(t, files)

	assert.Equal(t, "iseq_run_status_dict", files[0].Table)
	assert.Equal(t, "iseq_run_lane_metrics", files[len(files)-1].Table)
	for i := 1; i < len(files); i++ {
		assert.LessOrEqual(t, filepath.Base(files[i-1].Path), filepath.Base(files[i].Path))
	}
}

func TestLoadDir(t *testing.T) {
	ctx := context.Background()
	client := newWarehouseDB(t)

	loader, err := fixture.NewLoader(client.DB(), warehouse.Model(), schema.DialectSQLite, nil)
	require.NoError(t, err)

	n, err := loader.LoadDir(ctx, fixtureDir)
	require.NoError(t, err)
	assert.Equal(t, 27, n)

	counts := map[string]int{
		"study":                2,
		"sample":               4,
		"study_users":          1,
		"iseq_run_status_dict": 2,
		"pac_bio_run":          3,
	}
	for table, want := range counts {
		var got int
		require.NoError(t, client.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&got))
		assert.Equal(t, want, got, table)
	}

	var consent int
	require.NoError(t, client.DB().QueryRowContext(ctx,
		"SELECT consent_withdrawn FROM sample WHERE id_sample_tmp = 1").Scan(&consent))
	assert.Equal(t, 0, consent, "column default should apply")
}

func TestLoadRejectsUndeclaredColumns(t *testing.T) {
	ctx := context.Background()
	client := newWarehouseDB(t)
	loader, err := fixture.NewLoader(client.DB(), warehouse.Model(), schema.DialectSQLite, nil)
	require.NoError(t, err)

	_, err = loader.Load(ctx, fixture.File{
		Path:  "inline",
		Table: "study",
		Rows:  []fixture.Row{{"id_study_tmp": 1, "favourite_colour": "blue"}},
	})
	assert.ErrorIs(t, err, fixture.ErrUnknownColumn)

	_, err = loader.Load(ctx, fixture.File{Path: "inline", Table: "legacy_table", Rows: []fixture.Row{{"id": 1}}})
	assert.ErrorIs(t, err, fixture.ErrUnknownTable)

	_, err = loader.Load(ctx, fixture.File{Path: "inline", Table: "study", Rows: []fixture.Row{{}}})
	assert.ErrorIs(t, err, fixture.ErrEmptyRow)

	var count int
	require.NoError(t, client.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM study").Scan(&count))
	assert.Zero(t, count, "nothing is written when validation fails")
}

func TestLoadRollsBackOnDanglingReference(t *testing.T) {
	ctx := context.Background()
	client := newWarehouseDB(t)
	loader, err := fixture.NewLoader(client.DB(), warehouse.Model(), schema.DialectSQLite, nil)
	require.NoError(t, err)

	_, err = loader.Load(ctx, fixture.File{
		Path:  "inline",
		Table: "study_users",
		Rows: []fixture.Row{{
			"id_study_users_tmp": 1,
			"id_study_tmp":       99,
			"last_updated":       "2023-01-01 00:00:00",
		}},
	})
	require.Error(t, err)

	var count int
	require.NoError(t, client.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM study_users").Scan(&count))
	assert.Zero(t, count)
}

func TestFailedLoadKeepsForeignKeysEnforced(t *testing.T) {
	client := newWarehouseDB(t)
	sqlDB := client.DB()
	// one pooled connection, so every statement below reuses the one Load held
	sqlDB.SetMaxOpenConns(1)

	loader, err := fixture.NewLoader(sqlDB, warehouse.Model(), schema.DialectSQLite, nil)
	require.NoError(t, err)

	dangling := fixture.Row{
		"id_study_users_tmp": 1,
		"id_study_tmp":       99,
		"last_updated":       "2023-01-01 00:00:00",
	}
	study := fixture.Row{
		"id_study_tmp":  1,
		"id_lims":       "SQSCP",
		"id_study_lims": "5901",
		"last_updated":  "2023-01-01 00:00:00",
		"recorded_at":   "2023-01-01 00:00:00",
	}

	tests := []struct {
		name  string
		files []fixture.File
	}{
		{
			name:  "commit rejects dangling reference",
			files: []fixture.File{{Path: "inline", Table: "study_users", Rows: []fixture.Row{dangling}}},
		},
		{
			name:  "insert fails mid load",
			files: []fixture.File{{Path: "inline", Table: "study", Rows: []fixture.Row{study, study}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			_, err := loader.Load(ctx, tt.files...)
			require.Error(t, err)

			_, err = sqlDB.ExecContext(ctx,
				"INSERT INTO study_users (id_study_users_tmp, id_study_tmp, last_updated) VALUES (?, ?, ?)",
				2, 99, "2023-01-01 00:00:00")
			require.Error(t, err, "foreign keys are enforced once the load is over")
			assert.Contains(t, err.Error(), "FOREIGN KEY")

			var count int
			require.NoError(t, sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM study").Scan(&count))
			assert.Zero(t, count)
		})
	}

	n, err := loader.Load(context.Background(), fixture.File{Path: "inline", Table: "study", Rows: []fixture.Row{study}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "100-study.yml")
	require.NoError(t, os.WriteFile(bad, []byte("id_study_tmp: 1\n"), 0o644))

	_, err := fixture.ReadFile(bad)
	assert.Error(t, err, "a mapping is not a list of rows")

	_, err = fixture.ReadFile(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestNewLoaderRejectsPostgres(t *testing.T) {
	_, err := fixture.NewLoader(nil, warehouse.Model(), schema.DialectPostgres, nil)
	assert.ErrorIs(t, err, schema.ErrUnsupportedDialect)
}
