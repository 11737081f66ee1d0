package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/mlwarehouse/internal/conformance"
	"github.com/tordrt/mlwarehouse/internal/schema"
)

// TableCommenter is implemented by introspectors that can read table
// comments.
type TableCommenter interface {
	TableComment(ctx context.Context, table string) (string, error)
}

var (
	_ conformance.Introspector = (*MySQLIntrospector)(nil)
	_ conformance.Introspector = (*PostgresIntrospector)(nil)
	_ conformance.Introspector = (*SQLiteIntrospector)(nil)
	_ TableCommenter           = (*MySQLIntrospector)(nil)
	_ TableCommenter           = (*PostgresIntrospector)(nil)
)

// Extract builds a snapshot of the live schema for the given tables.
// If tables is empty, every table the introspector lists is extracted.
// Live foreign keys are expanded to one reference per column pair.
func Extract(ctx context.Context, port conformance.Introspector, tables []string) ([]schema.Entity, error) {
	tableNames := tables
	if len(tableNames) == 0 {
		var err error
		tableNames, err = port.ListTables(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get table names: %w", err)
		}
	}

	entities := make([]schema.Entity, 0, len(tableNames))
	for _, tableName := range tableNames {
		entity, err := extractEntity(ctx, port, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", tableName, err)
		}
		entities = append(entities, entity)
	}

	return entities, nil
}

func extractEntity(ctx context.Context, port conformance.Introspector, tableName string) (schema.Entity, error) {
	entity := schema.Entity{Name: tableName}

	columns, err := port.Columns(ctx, tableName)
	if err != nil {
		return entity, fmt.Errorf("failed to extract columns: %w", err)
	}
	entity.Columns = columns

	pk, err := port.PrimaryKey(ctx, tableName)
	if err != nil {
		return entity, fmt.Errorf("failed to extract primary key: %w", err)
	}
	entity.PrimaryKey = pk

	fks, err := port.ForeignKeys(ctx, tableName)
	if err != nil {
		return entity, fmt.Errorf("failed to extract foreign keys: %w", err)
	}
	for _, fk := range fks {
		entity.ForeignKeys = append(entity.ForeignKeys, fk.Expand()...)
	}

	if commenter, ok := port.(TableCommenter); ok {
		comment, err := commenter.TableComment(ctx, tableName)
		if err != nil {
			return entity, err
		}
		entity.Comment = comment
	}

	return entity, nil
}

// foreignKeyRow is one constrained/referred column pair as read from a
// catalog, ordered by constraint then position.
type foreignKeyRow struct {
	name           string
	column         string
	referredTable  string
	referredColumn string
	onUpdate       string
	onDelete       string
}

// groupForeignKeys folds consecutive rows of the same constraint into one
// foreign key.
func groupForeignKeys(rows []foreignKeyRow) []schema.ForeignKey {
	var fks []schema.ForeignKey
	for _, r := range rows {
		n := len(fks)
		if n > 0 && fks[n-1].Name == r.name {
			fks[n-1].Columns = append(fks[n-1].Columns, r.column)
			fks[n-1].ReferredColumns = append(fks[n-1].ReferredColumns, r.referredColumn)
			continue
		}
		fks = append(fks, schema.ForeignKey{
			Name:            r.name,
			Columns:         []string{r.column},
			ReferredTable:   r.referredTable,
			ReferredColumns: []string{r.referredColumn},
			OnDelete:        r.onDelete,
			OnUpdate:        r.onUpdate,
		})
	}
	return fks
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
