package conformance

import (
	"context"

	"github.com/tordrt/mlwarehouse/internal/schema"
)

// Introspector reads the structure of a live database. Column types are
// returned raw; the checker renders them with Dialect.
type Introspector interface {
	Dialect() schema.Dialect
	ListTables(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, table string) ([]schema.Column, error)
	PrimaryKey(ctx context.Context, table string) ([]string, error)
	ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error)
}
