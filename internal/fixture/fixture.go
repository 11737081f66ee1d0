// Package fixture loads YAML row fixtures into warehouse tables.
//
// A fixture file holds a YAML list of rows, each a mapping of column name to
// value. The target table comes from the file name: "200-sample.yml" and
// "200-Sample.yml" both load into sample. Files in a directory are applied
// in lexical order inside a single transaction with foreign key checks
// suspended, so parents may be loaded after their children.
package fixture

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/mlwarehouse/internal/schema"
	"github.com/tordrt/mlwarehouse/pkg/logger"
)

var (
	ErrUnknownTable  = errors.New("fixture targets an undeclared table")
	ErrUnknownColumn = errors.New("fixture row has an undeclared column")
	ErrEmptyRow      = errors.New("fixture row is empty")
)

// Row is a single fixture row keyed by column name
type Row map[string]any

// File is a parsed fixture file
type File struct {
	Path  string
	Table string
	Rows  []Row
}

// Loader inserts fixtures into a database
type Loader struct {
	db      *sql.DB
	model   *schema.Model
	dialect schema.Dialect
	log     *logger.Logger
}

// NewLoader creates a fixture loader. Rows are validated against model
// before anything is written.
func NewLoader(db *sql.DB, model *schema.Model, dialect schema.Dialect, log *logger.Logger) (*Loader, error) {
	switch dialect {
	case schema.DialectMySQL, schema.DialectSQLite:
	default:
		return nil, fmt.Errorf("%w: %s", schema.ErrUnsupportedDialect, dialect)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Loader{db: db, model: model, dialect: dialect, log: log}, nil
}

// ReadDir parses every *.yml and *.yaml file in dir, sorted by file name
func ReadDir(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yml", ".yaml":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	files := make([]File, 0, len(names))
	for _, name := range names {
		f, err := ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// ReadFile parses a single fixture file
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}

	var rows []Row
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return File{}, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}

	return File{
		Path:  path,
		Table: TableName(filepath.Base(path)),
		Rows:  rows,
	}, nil
}

// TableName derives the target table from a fixture file name by dropping
// the numeric ordering prefix and the extension. CamelCase names are
// converted to snake_case.
func TableName(fileName string) string {
	name := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if idx := strings.Index(name, "-"); idx >= 0 && isOrderPrefix(name[:idx]) {
		name = name[idx+1:]
	}

	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isOrderPrefix(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// LoadDir loads every fixture file in dir and returns the number of rows
// inserted
func (l *Loader) LoadDir(ctx context.Context, dir string) (int, error) {
	files, err := ReadDir(dir)
	if err != nil {
		return 0, err
	}
	return l.Load(ctx, files...)
}

// Load validates and inserts the given fixture files in order
func (l *Loader) Load(ctx context.Context, files ...File) (int, error) {
	for _, f := range files {
		if err := l.validate(f); err != nil {
			return 0, err
		}
	}

	conn, err := l.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := l.suspendForeignKeys(ctx, conn); err != nil {
		return 0, err
	}
	defer l.restoreForeignKeys(conn)

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := l.deferForeignKeys(ctx, tx); err != nil {
		return 0, err
	}

	total := 0
	for _, f := range files {
		n, err := l.insertRows(ctx, tx, f)
		if err != nil {
			return 0, fmt.Errorf("failed to load %s: %w", f.Path, err)
		}
		l.log.ForTable(f.Table).WithField("rows", n).Debug("loaded fixture")
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	l.log.Infof("Loaded %d fixture rows from %d files", total, len(files))
	return total, nil
}

func (l *Loader) validate(f File) error {
	entity, err := l.model.Entity(f.Table)
	if err != nil {
		return fmt.Errorf("%w: %s (from %s)", ErrUnknownTable, f.Table, f.Path)
	}
	for i, row := range f.Rows {
		if len(row) == 0 {
			return fmt.Errorf("%w: %s row %d", ErrEmptyRow, f.Path, i+1)
		}
		for column := range row {
			if !entity.HasColumn(column) {
				return fmt.Errorf("%w: %s.%s in %s row %d", ErrUnknownColumn, f.Table, column, f.Path, i+1)
			}
		}
	}
	return nil
}

// MySQL turns checks off for the session, so the load holds its own
// connection and never hands it back to the pool with checks still off.
func (l *Loader) suspendForeignKeys(ctx context.Context, conn *sql.Conn) error {
	if l.dialect != schema.DialectMySQL {
		return nil
	}
	if _, err := conn.ExecContext(ctx, "SET foreign_key_checks = 0"); err != nil {
		return fmt.Errorf("failed to suspend foreign key checks: %w", err)
	}
	return nil
}

// restoreForeignKeys runs on every path out of Load, including a cancelled
// context. A connection that cannot be restored is discarded.
func (l *Loader) restoreForeignKeys(conn *sql.Conn) {
	if l.dialect != schema.DialectMySQL {
		return
	}
	if _, err := conn.ExecContext(context.Background(), "SET foreign_key_checks = 1"); err != nil {
		l.log.WithError(err).Warn("failed to restore foreign key checks, discarding connection")
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	}
}

// SQLite only honours deferred checks inside a transaction and resets the
// pragma when it ends.
func (l *Loader) deferForeignKeys(ctx context.Context, tx *sql.Tx) error {
	if l.dialect != schema.DialectSQLite {
		return nil
	}
	if _, err := tx.ExecContext(ctx, "PRAGMA defer_foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to defer foreign key checks: %w", err)
	}
	return nil
}

func (l *Loader) insertRows(ctx context.Context, tx *sql.Tx, f File) (int, error) {
	for i, row := range f.Rows {
		query, args := l.buildInsert(f.Table, row)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return i, fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}
	return len(f.Rows), nil
}

// buildInsert returns an INSERT with columns in sorted order
func (l *Loader) buildInsert(table string, row Row) (string, []any) {
	columns := make([]string, 0, len(row))
	for column := range row {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		quoted[i] = l.quote(column)
		placeholders[i] = "?"
		args[i] = row[column]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		l.quote(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "))
	return query, args
}

func (l *Loader) quote(name string) string {
	if l.dialect == schema.DialectMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
