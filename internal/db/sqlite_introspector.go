package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/tordrt/mlwarehouse/internal/schema"
)

// SQLiteIntrospector reads table structure through PRAGMA statements
type SQLiteIntrospector struct {
	db *sql.DB
}

// NewSQLiteIntrospector creates a SQLite introspector
func NewSQLiteIntrospector(client *SQLiteClient) *SQLiteIntrospector {
	return &SQLiteIntrospector{db: client.DB()}
}

func (i *SQLiteIntrospector) Dialect() schema.Dialect {
	return schema.DialectSQLite
}

// ListTables returns every user table
func (i *SQLiteIntrospector) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := i.db.QueryContext(ctx, query)
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

type sqliteColumn struct {
	col     schema.Column
	pkOrder int
}

func (i *SQLiteIntrospector) tableInfo(ctx context.Context, table string) ([]sqliteColumn, error) {
	rows, err := i.db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(table)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sqliteColumn
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}

		col := schema.Column{
			Name:     name,
			Type:     colType,
			Nullable: notNull == 0 && pk == 0,
		}
		if defaultValue.Valid {
			v := defaultValue.String
			col.DefaultValue = &v
		}
		out = append(out, sqliteColumn{col: col, pkOrder: pk})
	}

	return out, rows.Err()
}

// Columns returns the columns of a table in declaration order
func (i *SQLiteIntrospector) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	info, err := i.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}

	indexes, err := i.indexes(ctx, table)
	if err != nil {
		return nil, err
	}

	columns := make([]schema.Column, len(info))
	for n, c := range info {
		columns[n] = c.col
		for _, idx := range indexes {
			if !containsString(idx.columns, c.col.Name) {
				continue
			}
			if c.pkOrder == 0 {
				columns[n].IsIndexed = true
			}
			if idx.unique && len(idx.columns) == 1 && c.pkOrder == 0 {
				columns[n].IsUnique = true
			}
		}
	}

	return columns, nil
}

type sqliteIndex struct {
	name    string
	unique  bool
	columns []string
}

// indexes reads every index of the table. The index list is drained before
// the per-index queries run so that a single connection suffices.
func (i *SQLiteIntrospector) indexes(ctx context.Context, table string) ([]sqliteIndex, error) {
	rows, err := i.db.QueryContext(ctx, "PRAGMA index_list("+quoteIdent(table)+")")
	if err != nil {
		return nil, err
	}

	var list []sqliteIndex
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, err
		}
		if origin == "pk" {
			continue
		}
		list = append(list, sqliteIndex{name: name, unique: unique == 1})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for n := range list {
		cols, err := i.indexColumns(ctx, list[n].name)
		if err != nil {
			return nil, err
		}
		list[n].columns = cols
	}
	return list, nil
}

func (i *SQLiteIntrospector) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, "PRAGMA index_info("+quoteIdent(index)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var colName sql.NullString
		if err := rows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, err
		}
		if colName.Valid {
			columns = append(columns, colName.String)
		}
	}
	return columns, rows.Err()
}

// PrimaryKey returns the primary key columns in key order
func (i *SQLiteIntrospector) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	info, err := i.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}

	var pk []string
	for order := 1; ; order++ {
		found := false
		for _, c := range info {
			if c.pkOrder == order {
				pk = append(pk, c.col.Name)
				found = true
			}
		}
		if !found {
			break
		}
	}
	return pk, nil
}

// ForeignKeys returns every foreign key constraint of the table. SQLite
// does not name constraints, so the PRAGMA id is used.
func (i *SQLiteIntrospector) ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	rows, err := i.db.QueryContext(ctx, "PRAGMA foreign_key_list("+quoteIdent(table)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fkRows []foreignKeyRow
	var seqs []int
	for rows.Next() {
		var id, seq int
		var targetTable, fromCol, onUpdate, onDelete, match string
		var toCol sql.NullString

		if err := rows.Scan(&id, &seq, &targetTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}

		fkRows = append(fkRows, foreignKeyRow{
			name:           "fk_" + table + "_" + strconv.Itoa(id),
			column:         fromCol,
			referredTable:  targetTable,
			referredColumn: toCol.String,
			onUpdate:       onUpdate,
			onDelete:       onDelete,
		})
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := i.resolveImplicitTargets(ctx, fkRows, seqs); err != nil {
		return nil, err
	}
	return groupForeignKeys(fkRows), nil
}

// resolveImplicitTargets fills the referred column of keys written as
// "REFERENCES parent" with no column list. SQLite reports a NULL target
// for these; the key then refers to the parent's primary key, matched by
// position.
func (i *SQLiteIntrospector) resolveImplicitTargets(ctx context.Context, fkRows []foreignKeyRow, seqs []int) error {
	parentKeys := make(map[string][]string)
	for n := range fkRows {
		if fkRows[n].referredColumn != "" {
			continue
		}
		parent := fkRows[n].referredTable
		pk, ok := parentKeys[parent]
		if !ok {
			var err error
			if pk, err = i.PrimaryKey(ctx, parent); err != nil {
				return fmt.Errorf("failed to read primary key of %s: %w", parent, err)
			}
			parentKeys[parent] = pk
		}
		if seqs[n] < len(pk) {
			fkRows[n].referredColumn = pk[seqs[n]]
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
