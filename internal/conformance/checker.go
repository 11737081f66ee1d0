package conformance

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tordrt/mlwarehouse/internal/schema"
	"github.com/tordrt/mlwarehouse/pkg/logger"
)

// Option configures a Checker
type Option func(*Checker)

// WithIgnoredColumns skips the type comparison for the given
// "table.column" names.
func WithIgnoredColumns(columns ...string) Option {
	return func(c *Checker) {
		for _, col := range columns {
			c.ignoredColumns[strings.TrimSpace(col)] = true
		}
	}
}

// WithExcludedTables removes tables from both sides before comparing
func WithExcludedTables(tables ...string) Option {
	return func(c *Checker) {
		for _, t := range tables {
			c.excludedTables[strings.TrimSpace(t)] = true
		}
	}
}

// WithProgress registers a callback invoked once per examined table
func WithProgress(fn func(table string)) Option {
	return func(c *Checker) {
		c.progress = fn
	}
}

// Checker compares declared entities with a live database
type Checker struct {
	log            *logger.Logger
	ignoredColumns map[string]bool
	excludedTables map[string]bool
	progress       func(table string)
}

// NewChecker creates a checker. A nil logger discards output.
func NewChecker(log *logger.Logger, opts ...Option) *Checker {
	if log == nil {
		log = logger.NewNopLogger()
	}
	c := &Checker{
		log:            log,
		ignoredColumns: make(map[string]bool),
		excludedTables: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckModel lists the live tables through port and checks every entity
// of the model against them.
func (c *Checker) CheckModel(ctx context.Context, model *schema.Model, port Introspector) (*Report, error) {
	tables, err := port.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return c.Check(ctx, model.Entities(), tables, port)
}

// Check compares the declared entities with the live tables. Every
// discrepancy is recorded in the returned report; an error is returned
// only when the live schema cannot be read.
func (c *Checker) Check(ctx context.Context, declared []schema.Entity, liveTables []string, port Introspector) (*Report, error) {
	dialect := port.Dialect()
	report := &Report{Dialect: dialect}

	byName := make(map[string]schema.Entity, len(declared))
	for _, e := range declared {
		if c.excludedTables[e.Name] {
			continue
		}
		byName[e.Name] = e
	}
	live := make(map[string]bool, len(liveTables))
	for _, t := range liveTables {
		if c.excludedTables[t] {
			continue
		}
		live[t] = true
	}

	for _, name := range unionNames(byName, live) {
		entity, isDeclared := byName[name]
		switch {
		case isDeclared && !live[name]:
			report.add(Mismatch{
				Category: CategoryCoverage,
				Entity:   name,
				Declared: name,
				Detail:   "is declared but does not exist in the database",
			})
			continue
		case !isDeclared:
			report.add(Mismatch{
				Category: CategoryCoverage,
				Entity:   name,
				Live:     name,
				Detail:   "exists in the database but is not declared",
			})
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tableLog := c.log.ForTable(name)
		tableLog.Debug("checking table")
		before := report.Len()

		if err := c.checkColumns(ctx, report, dialect, entity, port); err != nil {
			return nil, err
		}
		if err := c.checkPrimaryKey(ctx, report, entity, port); err != nil {
			return nil, err
		}
		if err := c.checkForeignKeys(ctx, report, entity, port); err != nil {
			return nil, err
		}

		report.TablesChecked++
		if n := report.Len() - before; n > 0 {
			tableLog.WithField("mismatches", n).Debug("table differs")
		}
		if c.progress != nil {
			c.progress(name)
		}
	}

	c.log.WithFields(logrus.Fields{
		"dialect":    dialect,
		"tables":     report.TablesChecked,
		"mismatches": report.Len(),
	}).Info("conformance check finished")

	return report, nil
}

func (c *Checker) checkColumns(ctx context.Context, report *Report, dialect schema.Dialect, entity schema.Entity, port Introspector) error {
	liveColumns, err := port.Columns(ctx, entity.Name)
	if err != nil {
		return fmt.Errorf("failed to get columns for table %s: %w", entity.Name, err)
	}

	seen := make(map[string]bool, len(liveColumns))
	for _, lc := range liveColumns {
		seen[lc.Name] = true
		liveType := dialect.RenderType(lc.Type)

		dc, ok := entity.Column(lc.Name)
		if !ok {
			report.add(Mismatch{
				Category: CategoryMissingDeclaration,
				Entity:   entity.Name,
				Subject:  lc.Name,
				Live:     liveType,
			})
			continue
		}

		if c.ignoredColumns[entity.Name+"."+lc.Name] {
			c.log.ForTable(entity.Name).WithField("column", lc.Name).Debug("type comparison skipped")
			continue
		}

		declaredType := dialect.RenderType(dc.Type)
		if declaredType == liveType {
			continue
		}
		if rule, ok := Equivalent(declaredType, liveType); ok {
			c.log.ForTable(entity.Name).WithFields(logrus.Fields{
				"column": lc.Name,
				"rule":   rule,
			}).Debug("types equivalent")
			continue
		}
		report.add(Mismatch{
			Category: CategoryType,
			Entity:   entity.Name,
			Subject:  lc.Name,
			Declared: declaredType,
			Live:     liveType,
		})
	}

	for _, dc := range entity.Columns {
		if seen[dc.Name] {
			continue
		}
		report.add(Mismatch{
			Category: CategoryMissingColumn,
			Entity:   entity.Name,
			Subject:  dc.Name,
			Declared: dialect.RenderType(dc.Type),
		})
	}
	return nil
}

func (c *Checker) checkPrimaryKey(ctx context.Context, report *Report, entity schema.Entity, port Introspector) error {
	livePK, err := port.PrimaryKey(ctx, entity.Name)
	if err != nil {
		return fmt.Errorf("failed to get primary key for table %s: %w", entity.Name, err)
	}

	declaredOnly := setDifference(entity.PrimaryKey, livePK)
	liveOnly := setDifference(livePK, entity.PrimaryKey)
	if len(declaredOnly) == 0 && len(liveOnly) == 0 {
		return nil
	}

	var detail []string
	if len(declaredOnly) > 0 {
		detail = append(detail, "declared only: "+strings.Join(declaredOnly, ", "))
	}
	if len(liveOnly) > 0 {
		detail = append(detail, "live only: "+strings.Join(liveOnly, ", "))
	}
	report.add(Mismatch{
		Category: CategoryPrimaryKey,
		Entity:   entity.Name,
		Declared: strings.Join(sortedCopy(entity.PrimaryKey), ", "),
		Live:     strings.Join(sortedCopy(livePK), ", "),
		Detail:   strings.Join(detail, "; "),
	})
	return nil
}

func (c *Checker) checkForeignKeys(ctx context.Context, report *Report, entity schema.Entity, port Introspector) error {
	liveFKs, err := port.ForeignKeys(ctx, entity.Name)
	if err != nil {
		return fmt.Errorf("failed to get foreign keys for table %s: %w", entity.Name, err)
	}

	var expanded []schema.ForeignKeyRef
	for _, fk := range liveFKs {
		expanded = append(expanded, fk.Expand()...)
	}

	if len(expanded) != len(entity.ForeignKeys) {
		report.add(Mismatch{
			Category: CategoryForeignKeyCardinality,
			Entity:   entity.Name,
			Declared: strconv.Itoa(len(entity.ForeignKeys)),
			Live:     strconv.Itoa(len(expanded)),
		})
	}

	for _, lf := range expanded {
		subject := describeRef(lf)

		var matches []schema.ForeignKeyRef
		for _, df := range entity.ForeignKeys {
			if df.ReferredTable == lf.ReferredTable &&
				df.ReferredColumn == lf.ReferredColumn &&
				df.Column == lf.Column {
				matches = append(matches, df)
			}
		}

		switch len(matches) {
		case 0:
			report.add(Mismatch{
				Category: CategoryForeignKeyLookup,
				Entity:   entity.Name,
				Subject:  subject,
				Live:     subject,
				Detail:   "no declared foreign key matches",
			})
			continue
		case 1:
		default:
			report.add(Mismatch{
				Category: CategoryForeignKeyLookup,
				Entity:   entity.Name,
				Subject:  subject,
				Live:     subject,
				Detail:   fmt.Sprintf("%d declared foreign keys match", len(matches)),
			})
			continue
		}

		df := matches[0]
		for _, opt := range []struct {
			name           string
			declared, live string
		}{
			{"on_delete", df.OnDelete, lf.OnDelete},
			{"on_update", df.OnUpdate, lf.OnUpdate},
		} {
			d := schema.NormalizeAction(opt.declared)
			l := schema.NormalizeAction(opt.live)
			if d == l {
				continue
			}
			report.add(Mismatch{
				Category: CategoryForeignKeyOption,
				Entity:   entity.Name,
				Subject:  subject,
				Option:   opt.name,
				Declared: d,
				Live:     l,
			})
		}
	}
	return nil
}

func describeRef(ref schema.ForeignKeyRef) string {
	return fmt.Sprintf("%s -> %s.%s", ref.Column, ref.ReferredTable, ref.ReferredColumn)
}

func unionNames(declared map[string]schema.Entity, live map[string]bool) []string {
	names := make([]string, 0, len(declared)+len(live))
	for name := range declared {
		names = append(names, name)
	}
	for name := range live {
		if _, ok := declared[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// setDifference returns the sorted members of a missing from b
func setDifference(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, s := range b {
		in[s] = true
	}
	var out []string
	seen := make(map[string]bool)
	for _, s := range a {
		if !in[s] && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
