package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/mlwarehouse/internal/schema"
)

// MarkdownFormatter formats entities as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the entities in markdown format
func (f *MarkdownFormatter) Format(entities []schema.Entity) error {
	_, _ = fmt.Fprintln(f.writer, "# Warehouse Schema")
	_, _ = fmt.Fprintln(f.writer)

	for _, entity := range entities {
		if err := f.FormatEntity(entity); err != nil {
			return err
		}
	}
	return nil
}

// FormatEntity formats a single entity (used by the multi-file formatter)
func (f *MarkdownFormatter) FormatEntity(entity schema.Entity) error {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", entity.Name)
	if entity.Comment != "" {
		_, _ = fmt.Fprintf(f.writer, "%s\n\n", oneLine(entity.Comment))
	}

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)

	for _, col := range entity.Columns {
		line := fmt.Sprintf("- **%s:** %s", col.Name, col.Type)
		if constraints := formatConstraints(col, entity.PrimaryKey); constraints != "" {
			line += ", " + constraints
		}
		if col.Comment != "" {
			line += " (" + oneLine(col.Comment) + ")"
		}
		_, _ = fmt.Fprintln(f.writer, line)
	}
	_, _ = fmt.Fprintln(f.writer)

	if len(entity.ForeignKeys) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### References")
		_, _ = fmt.Fprintln(f.writer)
		for _, fk := range entity.ForeignKeys {
			_, _ = fmt.Fprintf(f.writer, "- %s → %s.%s%s\n",
				fk.Column,
				fk.ReferredTable,
				fk.ReferredColumn,
				formatActions(fk))
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	return nil
}

func formatConstraints(col schema.Column, primaryKey []string) string {
	var constraints []string

	for _, pk := range primaryKey {
		if pk == col.Name {
			constraints = append(constraints, "PK")
			break
		}
	}

	if col.IsUnique {
		constraints = append(constraints, "UNIQUE")
	}

	if !col.Nullable {
		constraints = append(constraints, "NOT NULL")
	}

	if col.DefaultValue != nil {
		constraints = append(constraints, fmt.Sprintf("DEFAULT %s", *col.DefaultValue))
	}

	return strings.Join(constraints, ", ")
}
