package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/mlwarehouse/internal/schema"
)

// TextFormatter formats entities as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the entities in compact text format
func (f *TextFormatter) Format(entities []schema.Entity) error {
	for i, entity := range entities {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer)
		}
		f.formatEntity(entity)
	}
	return nil
}

func (f *TextFormatter) formatEntity(entity schema.Entity) {
	pkStr := ""
	if len(entity.PrimaryKey) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(entity.PrimaryKey, ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s%s\n", entity.Name, pkStr)
	if entity.Comment != "" {
		_, _ = fmt.Fprintf(f.writer, "  -- %s\n", oneLine(entity.Comment))
	}

	for _, col := range entity.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", formatColumnText(col))
	}

	if len(entity.ForeignKeys) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  REFERENCES:")
		for _, fk := range entity.ForeignKeys {
			_, _ = fmt.Fprintf(f.writer, "    %s → %s.%s%s\n", fk.Column, fk.ReferredTable, fk.ReferredColumn, formatActions(fk))
		}
	}
}

func formatColumnText(col schema.Column) string {
	parts := []string{col.Name + ":", col.Type}

	if col.IsUnique {
		parts = append(parts, "UNIQUE")
	}
	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if col.DefaultValue != nil {
		parts = append(parts, fmt.Sprintf("DEFAULT %s", *col.DefaultValue))
	}
	if col.Comment != "" {
		parts = append(parts, "# "+oneLine(col.Comment))
	}

	return strings.Join(parts, " ")
}

// formatActions renders the referential actions that carry a policy
func formatActions(fk schema.ForeignKeyRef) string {
	var b strings.Builder
	if action := schema.NormalizeAction(fk.OnDelete); action != "" {
		b.WriteString(" ON DELETE " + action)
	}
	if action := schema.NormalizeAction(fk.OnUpdate); action != "" {
		b.WriteString(" ON UPDATE " + action)
	}
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
