package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tordrt/mlwarehouse/internal/schema"
)

// MySQLIntrospector reads table structure from information_schema
type MySQLIntrospector struct {
	db         *sql.DB
	schemaName string
}

// NewMySQLIntrospector creates an introspector for one MySQL schema
func NewMySQLIntrospector(client *MySQLClient, schemaName string) *MySQLIntrospector {
	if schemaName == "" {
		schemaName = client.DatabaseName()
	}
	return &MySQLIntrospector{
		db:         client.DB(),
		schemaName: schemaName,
	}
}

func (i *MySQLIntrospector) Dialect() schema.Dialect {
	return schema.DialectMySQL
}

// ListTables returns the base tables of the schema
func (i *MySQLIntrospector) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := i.db.QueryContext(ctx, query, i.schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

// Columns returns the columns of a table in ordinal order. The type is the
// full column_type, qualified with the character set and collation when
// they differ from the table default.
func (i *MySQLIntrospector) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.column_default,
			c.column_key,
			c.column_comment,
			c.character_set_name,
			c.collation_name,
			t.table_collation
		FROM information_schema.columns c
		JOIN information_schema.tables t
			ON t.table_schema = c.table_schema
			AND t.table_name = c.table_name
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := i.db.QueryContext(ctx, query, i.schemaName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var nullable, columnKey string
		var defaultVal, charset, collation, tableCollation sql.NullString

		if err := rows.Scan(&col.Name, &col.Type, &nullable, &defaultVal, &columnKey,
			&col.Comment, &charset, &collation, &tableCollation); err != nil {
			return nil, err
		}

		col.Nullable = nullable == "YES"
		col.IsUnique = columnKey == "UNI"
		col.IsIndexed = columnKey != ""
		if defaultVal.Valid {
			v := defaultVal.String
			col.DefaultValue = &v
		}
		if collation.Valid && collation.String != tableCollation.String {
			col.Type = qualifyCharset(col.Type, charset.String, collation.String)
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// PrimaryKey returns the primary key columns in key order
func (i *MySQLIntrospector) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`

	rows, err := i.db.QueryContext(ctx, query, i.schemaName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var colName string
		if err := rows.Scan(&colName); err != nil {
			return nil, err
		}
		pk = append(pk, colName)
	}

	return pk, rows.Err()
}

// ForeignKeys returns every foreign key constraint of the table with its
// referential actions.
func (i *MySQLIntrospector) ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	query := `
		SELECT
			kcu.constraint_name,
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			rc.update_rule,
			rc.delete_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_schema = kcu.constraint_schema
			AND rc.constraint_name = kcu.constraint_name
			AND rc.table_name = kcu.table_name
		WHERE kcu.table_schema = ?
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.constraint_name, kcu.ordinal_position
	`

	rows, err := i.db.QueryContext(ctx, query, i.schemaName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fkRows []foreignKeyRow
	for rows.Next() {
		var r foreignKeyRow
		if err := rows.Scan(&r.name, &r.column, &r.referredTable, &r.referredColumn, &r.onUpdate, &r.onDelete); err != nil {
			return nil, err
		}
		fkRows = append(fkRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return groupForeignKeys(fkRows), nil
}

// TableComment returns the table comment, or "" when none is set
func (i *MySQLIntrospector) TableComment(ctx context.Context, table string) (string, error) {
	var comment sql.NullString
	err := i.db.QueryRowContext(ctx, `
		SELECT table_comment
		FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?
	`, i.schemaName, table).Scan(&comment)
	if err != nil {
		return "", fmt.Errorf("failed to read comment for table %s: %w", table, err)
	}
	return comment.String, nil
}

func qualifyCharset(columnType, charset, collation string) string {
	if charset != "" {
		columnType += " CHARACTER SET " + charset
	}
	return columnType + " COLLATE " + collation
}
