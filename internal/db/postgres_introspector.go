package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/mlwarehouse/internal/schema"
)

// PostgresIntrospector reads table structure from the PostgreSQL catalog
type PostgresIntrospector struct {
	conn   *pgx.Conn
	schema string
}

// NewPostgresIntrospector creates an introspector for one schema,
// "public" when schemaName is empty.
func NewPostgresIntrospector(client *PostgresClient, schemaName string) *PostgresIntrospector {
	if schemaName == "" {
		schemaName = "public"
	}
	return &PostgresIntrospector{
		conn:   client.Conn(),
		schema: schemaName,
	}
}

func (i *PostgresIntrospector) Dialect() schema.Dialect {
	return schema.DialectPostgres
}

// ListTables returns the base tables of the schema
func (i *PostgresIntrospector) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := i.conn.Query(ctx, query, i.schema)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Columns returns the columns of a table in attribute order with their
// format_type rendering, e.g. "character varying(255)".
func (i *PostgresIntrospector) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	query := `
		SELECT
			a.attname,
			format_type(a.atttypid, a.atttypmod),
			NOT a.attnotnull,
			pg_get_expr(d.adbin, d.adrelid),
			COALESCE(col_description(a.attrelid, a.attnum), '')
		FROM pg_attribute a
		JOIN pg_class c ON c.oid = a.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
		WHERE n.nspname = $1
			AND c.relname = $2
			AND a.attnum > 0
			AND NOT a.attisdropped
		ORDER BY a.attnum
	`

	rows, err := i.conn.Query(ctx, query, i.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		if err := rows.Scan(&col.Name, &col.Type, &col.Nullable, &col.DefaultValue, &col.Comment); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	indexed, err := i.indexedColumns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read indexes: %w", err)
	}
	for idx := range columns {
		if flags, ok := indexed[columns[idx].Name]; ok {
			columns[idx].IsIndexed = true
			columns[idx].IsUnique = flags.unique
		}
	}

	return columns, nil
}

type indexFlags struct {
	unique bool
}

// indexedColumns returns the columns covered by a non-primary index. A
// column is unique only when a single-column unique index covers it.
func (i *PostgresIntrospector) indexedColumns(ctx context.Context, table string) (map[string]indexFlags, error) {
	query := `
		SELECT
			a.attname,
			bool_or(ix.indisunique AND ix.indnatts = 1)
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE t.relkind = 'r'
			AND n.nspname = $1
			AND t.relname = $2
			AND NOT ix.indisprimary
		GROUP BY a.attname
	`

	rows, err := i.conn.Query(ctx, query, i.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]indexFlags)
	for rows.Next() {
		var name string
		var unique bool
		if err := rows.Scan(&name, &unique); err != nil {
			return nil, err
		}
		out[name] = indexFlags{unique: unique}
	}
	return out, rows.Err()
}

// PrimaryKey returns the primary key columns in key order
func (i *PostgresIntrospector) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT a.attname
		FROM pg_constraint con
		JOIN pg_class c ON c.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		CROSS JOIN LATERAL unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
		WHERE con.contype = 'p'
			AND n.nspname = $1
			AND c.relname = $2
		ORDER BY k.ord
	`

	rows, err := i.conn.Query(ctx, query, i.schema, table)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// ForeignKeys returns every foreign key constraint of the table with its
// referential actions.
func (i *PostgresIntrospector) ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	query := `
		SELECT
			con.conname,
			a.attname,
			rc.relname,
			ra.attname,
			con.confupdtype::text,
			con.confdeltype::text
		FROM pg_constraint con
		JOIN pg_class c ON c.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_class rc ON rc.oid = con.confrelid
		CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS k(attnum, refattnum, ord)
		JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
		JOIN pg_attribute ra ON ra.attrelid = con.confrelid AND ra.attnum = k.refattnum
		WHERE con.contype = 'f'
			AND n.nspname = $1
			AND c.relname = $2
		ORDER BY con.conname, k.ord
	`

	rows, err := i.conn.Query(ctx, query, i.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fkRows []foreignKeyRow
	for rows.Next() {
		var r foreignKeyRow
		var updateCode, deleteCode string
		if err := rows.Scan(&r.name, &r.column, &r.referredTable, &r.referredColumn, &updateCode, &deleteCode); err != nil {
			return nil, err
		}
		r.onUpdate = postgresAction(updateCode)
		r.onDelete = postgresAction(deleteCode)
		fkRows = append(fkRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return groupForeignKeys(fkRows), nil
}

// TableComment returns the table comment, or "" when none is set
func (i *PostgresIntrospector) TableComment(ctx context.Context, table string) (string, error) {
	var comment string
	err := i.conn.QueryRow(ctx, `
		SELECT COALESCE(obj_description(c.oid, 'pg_class'), '')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relname = $2
	`, i.schema, table).Scan(&comment)
	if err != nil {
		return "", fmt.Errorf("failed to read comment for table %s: %w", table, err)
	}
	return comment, nil
}
