package schema

import (
	"fmt"
	"strings"
)

// CreateStatements returns the DDL that creates every declared entity in
// the given dialect. Referenced tables are created before the tables that
// point at them.
func (m *Model) CreateStatements(d Dialect) ([]string, error) {
	ordered, err := m.creationOrder()
	if err != nil {
		return nil, err
	}

	var stmts []string
	for _, name := range ordered {
		entityStmts, err := CreateTableSQL(m.entities[name], d)
		if err != nil {
			return nil, fmt.Errorf("failed to build DDL for %s: %w", name, err)
		}
		stmts = append(stmts, entityStmts...)
	}
	return stmts, nil
}

// creationOrder sorts entity names so that foreign key targets come first.
// Self references are allowed; other cycles are rejected.
func (m *Model) creationOrder() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(m.names))
	order := make([]string, 0, len(m.names))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s", ErrReferenceCycle, name)
		}
		state[name] = visiting
		for _, fk := range m.entities[name].ForeignKeys {
			if fk.ReferredTable == name {
				continue
			}
			if err := visit(fk.ReferredTable); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range m.names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// CreateTableSQL builds the CREATE TABLE statement for an entity. SQLite
// indexes cannot be declared inline, so they are returned as additional
// CREATE INDEX statements.
func CreateTableSQL(e Entity, d Dialect) ([]string, error) {
	if len(e.Columns) == 0 {
		return nil, fmt.Errorf("entity %s has no columns", e.Name)
	}

	var quote func(string) string
	switch d {
	case DialectMySQL:
		quote = func(s string) string { return "`" + strings.ReplaceAll(s, "`", "``") + "`" }
	case DialectSQLite:
		quote = func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, d)
	}

	var defs []string
	var indexes []string
	for _, col := range e.Columns {
		def := quote(col.Name) + " " + columnTypeFor(col.Type, d)
		if !col.Nullable {
			def += " NOT NULL"
		}
		if col.DefaultValue != nil && (d == DialectMySQL || !strings.Contains(strings.ToUpper(*col.DefaultValue), "ON UPDATE")) {
			def += " DEFAULT " + *col.DefaultValue
		}
		if col.IsUnique && !e.IsPrimaryKey(col.Name) {
			def += " UNIQUE"
		}
		if d == DialectMySQL && col.Comment != "" {
			def += " COMMENT " + quoteString(col.Comment)
		}
		defs = append(defs, def)

		if col.IsIndexed && !col.IsUnique && !e.IsPrimaryKey(col.Name) {
			indexName := fmt.Sprintf("idx_%s_%s", e.Name, col.Name)
			if d == DialectMySQL {
				defs = append(defs, fmt.Sprintf("KEY %s (%s)", quote(indexName), quote(col.Name)))
			} else {
				indexes = append(indexes, fmt.Sprintf("CREATE INDEX %s ON %s (%s)", quote(indexName), quote(e.Name), quote(col.Name)))
			}
		}
	}

	if len(e.PrimaryKey) > 0 {
		pkCols := make([]string, len(e.PrimaryKey))
		for i, pk := range e.PrimaryKey {
			pkCols[i] = quote(pk)
		}
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pkCols, ", ")))
	}

	for _, fk := range e.ForeignKeys {
		fkDef := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			quote(fmt.Sprintf("fk_%s_%s", e.Name, fk.Column)),
			quote(fk.Column),
			quote(fk.ReferredTable),
			quote(fk.ReferredColumn))
		if action := NormalizeAction(fk.OnDelete); action != "" {
			fkDef += " ON DELETE " + action
		}
		if action := NormalizeAction(fk.OnUpdate); action != "" {
			fkDef += " ON UPDATE " + action
		}
		defs = append(defs, fkDef)
	}

	stmt := fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", quote(e.Name), strings.Join(defs, ",\n  "))
	if d == DialectMySQL && e.Comment != "" {
		stmt += " COMMENT=" + quoteString(e.Comment)
	}
	return append([]string{stmt}, indexes...), nil
}

// columnTypeFor maps a declared MySQL type onto the target dialect. SQLite
// only needs the type affinity; DATETIME is kept so that drivers still
// decode timestamps.
func columnTypeFor(raw string, d Dialect) string {
	if d != DialectSQLite {
		return raw
	}
	tokens := TypeTokens(raw)
	if len(tokens) == 0 {
		return "BLOB"
	}
	base := strings.ToUpper(tokens[0])
	if idx := strings.Index(base, "("); idx >= 0 {
		base = base[:idx]
	}
	switch base {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT", "BOOL", "BOOLEAN":
		return "INTEGER"
	case "CHAR", "VARCHAR", "TEXT", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT", "ENUM", "SET":
		return "TEXT"
	case "FLOAT", "DOUBLE", "REAL", "DECIMAL", "NUMERIC":
		return "REAL"
	case "DATETIME", "TIMESTAMP":
		return "DATETIME"
	case "DATE":
		return "DATE"
	default:
		return base
	}
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
