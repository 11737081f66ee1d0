package schema

import "sort"

// Entity represents one warehouse table
type Entity struct {
	Name        string          `yaml:"name"`
	Comment     string          `yaml:"comment,omitempty"`
	Columns     []Column        `yaml:"columns"`
	PrimaryKey  []string        `yaml:"primary_key,omitempty"`
	ForeignKeys []ForeignKeyRef `yaml:"foreign_keys,omitempty"`
}

// Column represents a table column
type Column struct {
	Name         string  `yaml:"name"`
	Type         string  `yaml:"type"`
	Nullable     bool    `yaml:"nullable,omitempty"`
	DefaultValue *string `yaml:"default,omitempty"`
	IsUnique     bool    `yaml:"unique,omitempty"`
	IsIndexed    bool    `yaml:"indexed,omitempty"`
	Comment      string  `yaml:"comment,omitempty"`
}

// ForeignKeyRef is a single-column foreign key as declared on an entity
type ForeignKeyRef struct {
	Column         string `yaml:"column"`
	ReferredTable  string `yaml:"referred_table"`
	ReferredColumn string `yaml:"referred_column"`
	OnDelete       string `yaml:"on_delete,omitempty"`
	OnUpdate       string `yaml:"on_update,omitempty"`
}

// ForeignKey is a foreign key constraint as reported by a live database.
// Columns and ReferredColumns are parallel slices.
type ForeignKey struct {
	Name            string
	Columns         []string
	ReferredTable   string
	ReferredColumns []string
	OnDelete        string
	OnUpdate        string
}

// Expand returns one single-column reference per constrained/referred
// column pair.
func (fk ForeignKey) Expand() []ForeignKeyRef {
	n := len(fk.Columns)
	if len(fk.ReferredColumns) < n {
		n = len(fk.ReferredColumns)
	}

	refs := make([]ForeignKeyRef, 0, n)
	for i := 0; i < n; i++ {
		refs = append(refs, ForeignKeyRef{
			Column:         fk.Columns[i],
			ReferredTable:  fk.ReferredTable,
			ReferredColumn: fk.ReferredColumns[i],
			OnDelete:       fk.OnDelete,
			OnUpdate:       fk.OnUpdate,
		})
	}
	return refs
}

// Column returns the named column and whether it exists
func (e *Entity) Column(name string) (Column, bool) {
	for _, col := range e.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// HasColumn checks if the entity declares a column by name
func (e *Entity) HasColumn(name string) bool {
	_, ok := e.Column(name)
	return ok
}

// IsPrimaryKey reports whether the column is part of the primary key
func (e *Entity) IsPrimaryKey(column string) bool {
	for _, pk := range e.PrimaryKey {
		if pk == column {
			return true
		}
	}
	return false
}

// ColumnNames returns the column names in declaration order
func (e *Entity) ColumnNames() []string {
	names := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		names[i] = c.Name
	}
	return names
}

func (e Entity) clone() Entity {
	out := e
	out.Columns = append([]Column(nil), e.Columns...)
	for i, col := range out.Columns {
		if col.DefaultValue != nil {
			v := *col.DefaultValue
			out.Columns[i].DefaultValue = &v
		}
	}
	out.PrimaryKey = append([]string(nil), e.PrimaryKey...)
	out.ForeignKeys = append([]ForeignKeyRef(nil), e.ForeignKeys...)
	return out
}

// SortEntities orders entities by name
func SortEntities(entities []Entity) {
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].Name < entities[j].Name
	})
}
