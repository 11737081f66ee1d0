package schema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/mlwarehouse/internal/schema"
)

func studyEntity() schema.Entity {
	return schema.Entity{
		Name: "study",
		Columns: []schema.Column{
			{Name: "id_study_tmp", Type: "INTEGER(10) UNSIGNED"},
			{Name: "name", Type: "VARCHAR(255)", Nullable: true},
		},
		PrimaryKey: []string{"id_study_tmp"},
	}
}

func sampleEntity() schema.Entity {
	return schema.Entity{
		Name: "sample",
		Columns: []schema.Column{
			{Name: "id_sample_tmp", Type: "INTEGER(10) UNSIGNED"},
			{Name: "id_study_tmp", Type: "INTEGER(10) UNSIGNED"},
		},
		PrimaryKey: []string{"id_sample_tmp"},
		ForeignKeys: []schema.ForeignKeyRef{
			{Column: "id_study_tmp", ReferredTable: "study", ReferredColumn: "id_study_tmp"},
		},
	}
}

func TestNewModel(t *testing.T) {
	m, err := schema.NewModel(studyEntity(), sampleEntity())
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"sample", "study"}, m.Names())

	study, err := m.Entity("study")
	require.NoError(t, err)
	assert.Equal(t, []string{"id_study_tmp"}, study.PrimaryKey)
	assert.True(t, study.HasColumn("name"))
	assert.False(t, study.HasColumn("missing"))

	all := m.Entities()
	require.Len(t, all, 2)
	assert.Equal(t, "sample", all[0].Name)
	assert.Equal(t, "study", all[1].Name)
}

func TestModelEntityNotFound(t *testing.T) {
	m, err := schema.NewModel(studyEntity())
	require.NoError(t, err)

	_, err = m.Entity("legacy_table")
	require.ErrorIs(t, err, schema.ErrEntityNotFound)
}

func TestModelIsFrozen(t *testing.T) {
	m, err := schema.NewModel(studyEntity())
	require.NoError(t, err)

	e, err := m.Entity("study")
	require.NoError(t, err)
	e.Columns[0].Type = "BIGINT"
	e.PrimaryKey[0] = "name"

	again, err := m.Entity("study")
	require.NoError(t, err)
	assert.Equal(t, "INTEGER(10) UNSIGNED", again.Columns[0].Type)
	assert.Equal(t, []string{"id_study_tmp"}, again.PrimaryKey)
}

func TestNewModelPreconditions(t *testing.T) {
	dupColumn := studyEntity()
	dupColumn.Columns = append(dupColumn.Columns, schema.Column{Name: "name", Type: "TEXT"})

	badPK := studyEntity()
	badPK.PrimaryKey = []string{"id"}

	danglingTable := sampleEntity()
	danglingTable.ForeignKeys[0].ReferredTable = "project"

	danglingColumn := sampleEntity()
	danglingColumn.ForeignKeys[0].ReferredColumn = "id"

	unknownLocal := sampleEntity()
	unknownLocal.ForeignKeys[0].Column = "id_project_tmp"

	tests := []struct {
		name     string
		entities []schema.Entity
		wantErr  error
	}{
		{name: "empty name", entities: []schema.Entity{{}}, wantErr: schema.ErrEmptyEntityName},
		{name: "duplicate entity", entities: []schema.Entity{studyEntity(), studyEntity()}, wantErr: schema.ErrDuplicateEntity},
		{name: "duplicate column", entities: []schema.Entity{dupColumn}, wantErr: schema.ErrDuplicateColumn},
		{name: "unknown primary key column", entities: []schema.Entity{badPK}, wantErr: schema.ErrUnknownPrimaryKeyColumn},
		{name: "dangling referred table", entities: []schema.Entity{studyEntity(), danglingTable}, wantErr: schema.ErrDanglingForeignKey},
		{name: "dangling referred column", entities: []schema.Entity{studyEntity(), danglingColumn}, wantErr: schema.ErrDanglingForeignKey},
		{name: "unknown constrained column", entities: []schema.Entity{studyEntity(), unknownLocal}, wantErr: schema.ErrDanglingForeignKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.NewModel(tt.entities...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadModelFile(t *testing.T) {
	doc := `
entities:
  - name: study
    columns:
      - name: id_study_tmp
        type: INTEGER(10) UNSIGNED
      - name: name
        type: VARCHAR(255)
        nullable: true
        comment: Study name
    primary_key: [id_study_tmp]
  - name: study_users
    columns:
      - name: id_study_users_tmp
        type: INTEGER(10) UNSIGNED
      - name: id_study_tmp
        type: INTEGER(10) UNSIGNED
    primary_key: [id_study_users_tmp]
    foreign_keys:
      - column: id_study_tmp
        referred_table: study
        referred_column: id_study_tmp
        on_delete: CASCADE
`
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	m, err := schema.LoadModelFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"study", "study_users"}, m.Names())

	users, err := m.Entity("study_users")
	require.NoError(t, err)
	require.Len(t, users.ForeignKeys, 1)
	assert.Equal(t, "CASCADE", users.ForeignKeys[0].OnDelete)

	study, err := m.Entity("study")
	require.NoError(t, err)
	col, ok := study.Column("name")
	require.True(t, ok)
	assert.Equal(t, "Study name", col.Comment)
	assert.True(t, col.Nullable)
}

func TestParseModelRejectsDanglingReference(t *testing.T) {
	doc := `
entities:
  - name: sample
    columns:
      - name: id_study_tmp
        type: INTEGER
    foreign_keys:
      - column: id_study_tmp
        referred_table: study
        referred_column: id_study_tmp
`
	_, err := schema.ParseModel([]byte(doc))
	require.ErrorIs(t, err, schema.ErrDanglingForeignKey)
}

func TestForeignKeyExpand(t *testing.T) {
	fk := schema.ForeignKey{
		Name:            "fk_product",
		Columns:         []string{"id_run", "position", "tag_index"},
		ReferredTable:   "iseq_flowcell",
		ReferredColumns: []string{"id_run", "position", "tag_index"},
		OnDelete:        "CASCADE",
	}

	refs := fk.Expand()
	require.Len(t, refs, 3)
	for i, ref := range refs {
		assert.Equal(t, fk.Columns[i], ref.Column)
		assert.Equal(t, fk.ReferredColumns[i], ref.ReferredColumn)
		assert.Equal(t, "iseq_flowcell", ref.ReferredTable)
		assert.Equal(t, "CASCADE", ref.OnDelete)
	}
}
