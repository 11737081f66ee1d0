package warehouse_test

import (
	"context"
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

func newQueries(t *testing.T) *warehouse.Queries {
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

	loader, err := fixture.NewLoader(client.DB(), warehouse.Model(), schema.DialectSQLite, nil)
	require.NoError(t, err)
	_, err = loader.LoadDir(ctx, "../../testdata/fixtures")
	require.NoError(t, err)

	q, err := warehouse.NewQueries(client.DB(), schema.DialectSQLite)
	require.NoError(t, err)
	return q
}

var since = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func TestRecentONT(t *testing.T) {
	q := newQueries(t)

	runs, err := q.RecentONT(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	var names, experiments []string
	for _, r := range runs {
		names = append(names, r.SampleName.String)
		experiments = append(experiments, r.ExperimentName)
	}
	assert.Equal(t, []string{"ONTRUN-2", "ONTRUN-3", "ONTRUN-4"}, experiments)
	assert.Equal(t, []string{"5901STDY2", "6407STDY3", "5901STDY4"}, names)

	tagged := runs[0]
	assert.Equal(t, "5901", tagged.StudyID)
	assert.Equal(t, "supplier_2", tagged.SupplierName.String)
	assert.Equal(t, "NB01-12", tagged.Identifier.String)
	assert.Equal(t, "EXP-NBD104", tagged.SetName.String)
	assert.False(t, tagged.Identifier2.Valid)

	assert.False(t, runs[1].SupplierName.Valid)
	assert.Equal(t, 2, runs[1].InstrumentSlot)
}

func TestRecentPacBio(t *testing.T) {
	q := newQueries(t)

	runs, err := q.RecentPacBio(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, runs, 2, "run updates alone do not make a run recent")

	assert.Equal(t, "80002", runs[0].RunName)
	assert.Equal(t, "80003", runs[1].RunName)
	assert.Equal(t, "B1", runs[1].WellLabel)
	assert.Equal(t, "TRAC-2-103", runs[1].LibraryTubeName)
	assert.Equal(t, "1001", runs[1].Identifier.String)
	assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), runs[1].StudyUpdated.UTC())
}

func TestRecentFluidigm(t *testing.T) {
	q := newQueries(t)

	wells, err := q.RecentFluidigm(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, wells, 2)

	assert.Equal(t, int64(1662436137), wells[0].PlateBarcode)
	assert.Equal(t, "S018", wells[0].WellLabel)
	assert.Equal(t, "5901STDY4", wells[0].SampleName.String)
	assert.False(t, wells[0].ConsentWithdrawn)

	assert.Equal(t, int64(1662457061), wells[1].PlateBarcode)
	assert.Equal(t, "6407", wells[1].StudyID)
	assert.True(t, wells[1].ConsentWithdrawn)
	assert.Equal(t, time.Date(2022, 8, 25, 10, 21, 52, 0, time.UTC), wells[1].RecordedAt.UTC())
}

func TestFlgenPlate(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()

	wells, err := q.FlgenPlate(ctx, 1662436101, "S001")
	require.NoError(t, err)
	require.Len(t, wells, 1, "plate lookups are not limited to recent changes")
	assert.Equal(t, "5901STDY1", wells[0].SampleName.String)
	assert.Equal(t, "5901", wells[0].StudyID)
	assert.Equal(t, time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC), wells[0].RecordedAt.UTC())

	wells, err = q.FlgenPlate(ctx, 1662436101, "S018")
	require.NoError(t, err)
	assert.Empty(t, wells, "well S018 is on a different plate")
}

func TestFindPacBioRuns(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		run      string
		well     string
		tag      string
		wantTube []string
	}{
		{name: "any tag", run: "80003", well: "B1", wantTube: []string{"TRAC-2-103"}},
		{name: "matching tag", run: "80003", well: "B1", tag: "1001", wantTube: []string{"TRAC-2-103"}},
		{name: "other tag", run: "80003", well: "B1", tag: "1002"},
		{name: "untagged library", run: "80001", well: "A1", wantTube: []string{"TRAC-2-101"}},
		{name: "tag filter skips untagged", run: "80001", well: "A1", tag: "1001"},
		{name: "well of another run", run: "80001", well: "B1"},
		{name: "unknown run", run: "99999", well: "A1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := q.FindPacBioRuns(ctx, tt.run, tt.well, tt.tag)
			require.NoError(t, err)

			var tubes []string
			for _, r := range runs {
				assert.Equal(t, tt.run, r.RunName)
				assert.Equal(t, tt.well, r.WellLabel)
				tubes = append(tubes, r.LibraryTubeName)
			}
			assert.Equal(t, tt.wantTube, tubes)
		})
	}
}

func TestSequencedBasesByMonth(t *testing.T) {
	q := newQueries(t)

	months, err := q.SequencedBasesByMonth(context.Background(), since)
	require.NoError(t, err)

	assert.Equal(t, []warehouse.MonthlyBases{
		{Month: "2023-01", Bases: 302*1000 + 302*2000, Runs: 2},
		{Month: "2023-02", Bases: 151 * 4000, Runs: 1},
	}, months)

	later, err := q.SequencedBasesByMonth(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, later)
}

func TestNewQueriesRejectsPostgres(t *testing.T) {
	_, err := warehouse.NewQueries(nil, schema.DialectPostgres)
	assert.ErrorIs(t, err, schema.ErrUnsupportedDialect)
}

func TestTagIndex(t *testing.T) {
	tests := []struct {
		identifier string
		want       int
		ok         bool
	}{
		{"NB01-12", 12, true},
		{"EXP-NBD104-3", 3, true},
		{"BC-007", 7, true},
		{"1001", 0, false},
		{"NB01-", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			got, ok := warehouse.TagIndex(tt.identifier)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
