package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/mlwarehouse/internal/schema"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
)

// MultiFileFormatter writes entities to a directory: an overview plus one
// file per entity.
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes the entities to multiple files
func (f *MultiFileFormatter) Format(entities []schema.Entity) error {
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(entities); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, entity := range entities {
		if err := f.writeEntityFile(entity, entities); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", entity.Name, err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeOverview(entities []schema.Entity) error {
	filename := filepath.Join(f.OutputDir, "_overview"+f.fileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	sorted := make([]schema.Entity, len(entities))
	copy(sorted, entities)
	schema.SortEntities(sorted)

	if f.OutputFormat == formatMarkdown {
		f.writeMarkdownOverview(file, sorted)
	} else {
		f.writeTextOverview(file, sorted)
	}
	return nil
}

func (f *MultiFileFormatter) writeMarkdownOverview(w io.Writer, entities []schema.Entity) {
	_, _ = fmt.Fprintf(w, "# Warehouse Overview\n\n")
	_, _ = fmt.Fprintf(w, "Each table has a corresponding file: `<table_name>%s`\n\n", f.fileExtension())
	_, _ = fmt.Fprintf(w, "## Tables\n\n")

	for _, entity := range entities {
		_, _ = fmt.Fprintf(w, "- **%s**", entity.Name)
		if targets := referredTables(entity); len(targets) > 0 {
			_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ", "))
		}
		if entity.Comment != "" {
			_, _ = fmt.Fprintf(w, ": %s", oneLine(entity.Comment))
		}
		_, _ = fmt.Fprintln(w)
	}
}

func (f *MultiFileFormatter) writeTextOverview(w io.Writer, entities []schema.Entity) {
	_, _ = fmt.Fprintf(w, "WAREHOUSE OVERVIEW\n")
	_, _ = fmt.Fprintf(w, "Each table has a file: <table_name>%s\n\n", f.fileExtension())

	for _, entity := range entities {
		_, _ = fmt.Fprint(w, entity.Name)
		if targets := referredTables(entity); len(targets) > 0 {
			_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ","))
		}
		_, _ = fmt.Fprintln(w)
	}
}

func (f *MultiFileFormatter) writeEntityFile(entity schema.Entity, all []schema.Entity) error {
	filename := filepath.Join(f.OutputDir, entity.Name+f.fileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	incoming := findIncomingReferences(entity.Name, all)

	if f.OutputFormat != formatMarkdown {
		NewTextFormatter(file).formatEntity(entity)
		if len(incoming) > 0 {
			_, _ = fmt.Fprintln(file)
			_, _ = fmt.Fprintln(file, "  REFERENCED BY:")
			for _, ref := range incoming {
				_, _ = fmt.Fprintf(file, "    %s.%s → %s\n", ref.SourceTable, ref.SourceColumn, ref.TargetColumn)
			}
		}
		return nil
	}

	if err := NewMarkdownFormatter(file).FormatEntity(entity); err != nil {
		return err
	}
	if len(incoming) > 0 {
		_, _ = fmt.Fprintf(file, "### Referenced by\n\n")
		for _, ref := range incoming {
			_, _ = fmt.Fprintf(file, "- %s.%s → %s\n", ref.SourceTable, ref.SourceColumn, ref.TargetColumn)
		}
		_, _ = fmt.Fprintln(file)
	}
	return nil
}

// IncomingReference is a foreign key of another entity pointing at this one
type IncomingReference struct {
	SourceTable  string
	SourceColumn string
	TargetColumn string
}

func findIncomingReferences(entityName string, entities []schema.Entity) []IncomingReference {
	var incoming []IncomingReference

	for _, entity := range entities {
		for _, fk := range entity.ForeignKeys {
			if fk.ReferredTable == entityName {
				incoming = append(incoming, IncomingReference{
					SourceTable:  entity.Name,
					SourceColumn: fk.Column,
					TargetColumn: fk.ReferredColumn,
				})
			}
		}
	}

	return incoming
}

// referredTables lists the distinct tables an entity references, sorted
func referredTables(entity schema.Entity) []string {
	seen := make(map[string]bool)
	var targets []string
	for _, fk := range entity.ForeignKeys {
		if !seen[fk.ReferredTable] {
			seen[fk.ReferredTable] = true
			targets = append(targets, fk.ReferredTable)
		}
	}
	sort.Strings(targets)
	return targets
}

func (f *MultiFileFormatter) fileExtension() string {
	if f.OutputFormat == formatMarkdown {
		return ".md"
	}
	return ".txt"
}
