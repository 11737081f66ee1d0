package conformance

import (
	"fmt"
	"sort"

	"github.com/tordrt/mlwarehouse/internal/schema"
)

// Category classifies a single mismatch
type Category string

const (
	CategoryCoverage              Category = "coverage"
	CategoryMissingDeclaration    Category = "missing_declaration"
	CategoryMissingColumn         Category = "missing_column"
	CategoryType                  Category = "type"
	CategoryPrimaryKey            Category = "primary_key"
	CategoryForeignKeyCardinality Category = "foreign_key_cardinality"
	CategoryForeignKeyLookup      Category = "foreign_key_lookup"
	CategoryForeignKeyOption      Category = "foreign_key_option"
)

// Categories lists every category in report order
func Categories() []Category {
	return []Category{
		CategoryCoverage,
		CategoryMissingDeclaration,
		CategoryMissingColumn,
		CategoryType,
		CategoryPrimaryKey,
		CategoryForeignKeyCardinality,
		CategoryForeignKeyLookup,
		CategoryForeignKeyOption,
	}
}

// Mismatch is one discrepancy between the declared and the live schema.
// Subject names the column or constraint involved; Option is set only for
// foreign key option mismatches.
type Mismatch struct {
	Category Category `yaml:"category"`
	Entity   string   `yaml:"entity"`
	Subject  string   `yaml:"subject,omitempty"`
	Option   string   `yaml:"option,omitempty"`
	Declared string   `yaml:"declared,omitempty"`
	Live     string   `yaml:"live,omitempty"`
	Detail   string   `yaml:"detail,omitempty"`
}

// String renders the mismatch as a single diff line
func (m Mismatch) String() string {
	switch m.Category {
	case CategoryCoverage:
		return fmt.Sprintf("coverage: table %s %s", m.Entity, m.Detail)
	case CategoryMissingDeclaration:
		return fmt.Sprintf("missing_declaration: %s.%s (%s) exists in the database but is not declared", m.Entity, m.Subject, m.Live)
	case CategoryMissingColumn:
		return fmt.Sprintf("missing_column: %s.%s (%s) is declared but missing from the database", m.Entity, m.Subject, m.Declared)
	case CategoryType:
		return fmt.Sprintf("type: %s.%s declared %s, live %s", m.Entity, m.Subject, m.Declared, m.Live)
	case CategoryPrimaryKey:
		return fmt.Sprintf("primary_key: %s declared (%s), live (%s)", m.Entity, m.Declared, m.Live)
	case CategoryForeignKeyCardinality:
		return fmt.Sprintf("foreign_key_cardinality: %s declares %s foreign keys, live has %s", m.Entity, m.Declared, m.Live)
	case CategoryForeignKeyLookup:
		return fmt.Sprintf("foreign_key_lookup: %s %s: %s", m.Entity, m.Subject, m.Detail)
	case CategoryForeignKeyOption:
		return fmt.Sprintf("foreign_key_option: %s %s %s declared %q, live %q", m.Entity, m.Subject, m.Option, m.Declared, m.Live)
	default:
		return fmt.Sprintf("%s: %s %s", m.Category, m.Entity, m.Detail)
	}
}

// Report is the outcome of one conformance run
type Report struct {
	Dialect       schema.Dialect `yaml:"dialect"`
	TablesChecked int            `yaml:"tables_checked"`
	Mismatches    []Mismatch     `yaml:"mismatches"`
}

// Empty reports full conformance
func (r *Report) Empty() bool {
	return len(r.Mismatches) == 0
}

// Len returns the number of mismatches
func (r *Report) Len() int {
	return len(r.Mismatches)
}

// ByCategory returns the mismatches of one category in report order
func (r *Report) ByCategory(c Category) []Mismatch {
	var out []Mismatch
	for _, m := range r.Mismatches {
		if m.Category == c {
			out = append(out, m)
		}
	}
	return out
}

// ForEntity returns the mismatches recorded against one table
func (r *Report) ForEntity(name string) []Mismatch {
	var out []Mismatch
	for _, m := range r.Mismatches {
		if m.Entity == name {
			out = append(out, m)
		}
	}
	return out
}

// Counts returns the number of mismatches per category
func (r *Report) Counts() map[Category]int {
	counts := make(map[Category]int)
	for _, m := range r.Mismatches {
		counts[m.Category]++
	}
	return counts
}

// Entities returns the sorted names of tables with at least one mismatch
func (r *Report) Entities() []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range r.Mismatches {
		if !seen[m.Entity] {
			seen[m.Entity] = true
			names = append(names, m.Entity)
		}
	}
	sort.Strings(names)
	return names
}

// Lines renders every mismatch as a diff line
func (r *Report) Lines() []string {
	lines := make([]string, len(r.Mismatches))
	for i, m := range r.Mismatches {
		lines[i] = m.String()
	}
	return lines
}

func (r *Report) add(m Mismatch) {
	r.Mismatches = append(r.Mismatches, m)
}
