package warehouse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/mlwarehouse/internal/schema"
)

func TestModelDeclaresWarehouseTables(t *testing.T) {
	m := Model()

	assert.Equal(t, []string{
		"flgen_plate",
		"iseq_run_lane_metrics",
		"iseq_run_status",
		"iseq_run_status_dict",
		"oseq_flowcell",
		"pac_bio_run",
		"sample",
		"seq_product_irods_locations",
		"study",
		"study_users",
	}, m.Names())
	assert.Same(t, m, Model(), "model should be built once")
}

func TestModelDeclarations(t *testing.T) {
	m := Model()

	sample, err := m.Entity("sample")
	require.NoError(t, err)
	assert.Equal(t, []string{"id_sample_tmp"}, sample.PrimaryKey)
	idCol, ok := sample.Column("id_sample_tmp")
	require.True(t, ok)
	assert.Equal(t, "INTEGER(10) UNSIGNED", idCol.Type)
	assert.False(t, idCol.Nullable)
	assert.Equal(t, "Internal to this database id, value can change", idCol.Comment)

	lanes, err := m.Entity("iseq_run_lane_metrics")
	require.NoError(t, err)
	assert.Equal(t, []string{"id_run", "position"}, lanes.PrimaryKey)

	ont, err := m.Entity("oseq_flowcell")
	require.NoError(t, err)
	assert.ElementsMatch(t, []schema.ForeignKeyRef{
		{Column: "id_sample_tmp", ReferredTable: "sample", ReferredColumn: "id_sample_tmp"},
		{Column: "id_study_tmp", ReferredTable: "study", ReferredColumn: "id_study_tmp"},
	}, ont.ForeignKeys)
	for _, name := range []string{"tag_identifier", "tag2_identifier", "tag_set_name", "tag2_set_id_lims"} {
		assert.True(t, ont.HasColumn(name), name)
	}

	pacbio, err := m.Entity("pac_bio_run")
	require.NoError(t, err)
	tagSeq, ok := pacbio.Column("tag_sequence")
	require.True(t, ok)
	assert.Equal(t, "VARCHAR(30)", tagSeq.Type)

	irods, err := m.Entity("seq_product_irods_locations")
	require.NoError(t, err)
	assert.Equal(t, "Table relating products to their irods locations", irods.Comment)
}

func TestModelTypesRenderStably(t *testing.T) {
	for _, e := range Model().Entities() {
		for _, c := range e.Columns {
			rendered := schema.DialectMySQL.RenderType(c.Type)
			assert.NotEmpty(t, rendered, "%s.%s", e.Name, c.Name)
			assert.Equal(t, rendered, schema.DialectMySQL.RenderType(rendered), "%s.%s", e.Name, c.Name)
		}
	}
}

func TestModelCreateStatements(t *testing.T) {
	for _, d := range []schema.Dialect{schema.DialectMySQL, schema.DialectSQLite} {
		t.Run(string(d), func(t *testing.T) {
			stmts, err := Model().CreateStatements(d)
			require.NoError(t, err)

			position := make(map[string]int)
			for i, stmt := range stmts {
				if !strings.HasPrefix(stmt, "CREATE TABLE ") {
					continue
				}
				name := strings.Fields(stmt)[2]
				position[strings.Trim(name, "`\"")] = i
			}
			require.Len(t, position, Model().Len())
			assert.Less(t, position["study"], position["study_users"])
			assert.Less(t, position["sample"], position["pac_bio_run"])
			assert.Less(t, position["iseq_run_status_dict"], position["iseq_run_status"])
		})
	}
}

func TestKnownTypeExceptions(t *testing.T) {
	assert.Contains(t, KnownTypeExceptions, "iseq_external_product_components.id_iseq_product_ext")
	for _, e := range KnownTypeExceptions {
		assert.Len(t, strings.Split(e, "."), 2, e)
	}
}
