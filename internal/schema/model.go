package schema

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Model is an immutable set of declared entities keyed by table name.
// It is safe for concurrent use once constructed.
type Model struct {
	entities map[string]Entity
	names    []string
}

// NewModel validates the given entities and freezes them into a Model.
// Duplicate names, unknown primary key columns and foreign keys that do
// not resolve to a declared column are rejected here rather than during
// comparison.
func NewModel(entities ...Entity) (*Model, error) {
	m := &Model{entities: make(map[string]Entity, len(entities))}

	for _, e := range entities {
		if e.Name == "" {
			return nil, ErrEmptyEntityName
		}
		if _, exists := m.entities[e.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntity, e.Name)
		}

		seen := make(map[string]bool, len(e.Columns))
		for _, col := range e.Columns {
			if seen[col.Name] {
				return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateColumn, e.Name, col.Name)
			}
			seen[col.Name] = true
		}

		for _, pk := range e.PrimaryKey {
			if !seen[pk] {
				return nil, fmt.Errorf("%w: %s.%s", ErrUnknownPrimaryKeyColumn, e.Name, pk)
			}
		}

		m.entities[e.Name] = e.clone()
		m.names = append(m.names, e.Name)
	}

	for _, name := range m.names {
		e := m.entities[name]
		for _, fk := range e.ForeignKeys {
			if !e.HasColumn(fk.Column) {
				return nil, fmt.Errorf("%w: %s.%s is not a column of %s", ErrDanglingForeignKey, e.Name, fk.Column, e.Name)
			}
			target, ok := m.entities[fk.ReferredTable]
			if !ok || !target.HasColumn(fk.ReferredColumn) {
				return nil, fmt.Errorf("%w: %s.%s -> %s.%s", ErrDanglingForeignKey, e.Name, fk.Column, fk.ReferredTable, fk.ReferredColumn)
			}
		}
	}

	sort.Strings(m.names)
	return m, nil
}

// MustModel is like NewModel but panics on invalid declarations. It is
// intended for compiled-in models.
func MustModel(entities ...Entity) *Model {
	m, err := NewModel(entities...)
	if err != nil {
		panic(fmt.Sprintf("schema: invalid model: %v", err))
	}
	return m
}

// Entity returns a copy of the named entity
func (m *Model) Entity(name string) (Entity, error) {
	e, ok := m.entities[name]
	if !ok {
		return Entity{}, fmt.Errorf("%w: %s", ErrEntityNotFound, name)
	}
	return e.clone(), nil
}

// Entities returns copies of every declared entity, sorted by name
func (m *Model) Entities() []Entity {
	out := make([]Entity, 0, len(m.names))
	for _, name := range m.names {
		out = append(out, m.entities[name].clone())
	}
	return out
}

// Names returns the declared table names in sorted order
func (m *Model) Names() []string {
	return append([]string(nil), m.names...)
}

// Len returns the number of declared entities
func (m *Model) Len() int {
	return len(m.names)
}

// ParseModel builds a Model from a YAML document listing entities
func ParseModel(data []byte) (*Model, error) {
	var doc struct {
		Entities []Entity `yaml:"entities"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	return NewModel(doc.Entities...)
}

// LoadModelFile reads a YAML model from disk
func LoadModelFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return ParseModel(data)
}
