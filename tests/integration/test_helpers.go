//go:build integration
// +build integration

package integration

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/tordrt/mlwarehouse/internal/schema"
)

const fixtureDir = "../../testdata/fixtures"

// startMySQL runs a MySQL container and returns an mlwarehouse URL for it
func startMySQL(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping MySQL integration test in short mode")
	}
	ctx := context.Background()

	container, err := mysql.Run(ctx,
		"mysql:8.4",
		mysql.WithDatabase("mlwarehouse"),
		mysql.WithUsername("mlwh"),
		mysql.WithPassword("mlwh"),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("Failed to start MySQL container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "parseTime=true")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	return "mysql://" + connStr
}

// startPostgres runs a PostgreSQL container and returns its connection URL
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping PostgreSQL integration test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("mlwarehouse"),
		postgres.WithUsername("mlwh"),
		postgres.WithPassword("mlwh"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	return connStr
}

// verifyTablesExist checks that all expected tables were extracted
func verifyTablesExist(t *testing.T, entities []schema.Entity, expectedTables []string) {
	t.Helper()

	if len(entities) != len(expectedTables) {
		t.Errorf("Expected %d tables, got %d", len(expectedTables), len(entities))
	}

	tableMap := make(map[string]bool)
	for _, e := range entities {
		tableMap[e.Name] = true
	}

	for _, tableName := range expectedTables {
		if !tableMap[tableName] {
			t.Errorf("Expected table %s not found in schema", tableName)
		}
	}
}

// verifyColumns checks that the live table has exactly the declared columns
func verifyColumns(t *testing.T, live, declared schema.Entity) {
	t.Helper()

	for _, col := range declared.Columns {
		if !live.HasColumn(col.Name) {
			t.Errorf("Expected column %s not found in %s table", col.Name, live.Name)
		}
	}
	if len(live.Columns) != len(declared.Columns) {
		t.Errorf("Table %s has %d columns, declared %d", live.Name, len(live.Columns), len(declared.Columns))
	}
}

// verifyPrimaryKey checks that a table has the expected primary key
func verifyPrimaryKey(t *testing.T, table schema.Entity, expectedPK []string) {
	t.Helper()

	if len(table.PrimaryKey) != len(expectedPK) {
		t.Errorf("Expected primary key %v on %s, got %v", expectedPK, table.Name, table.PrimaryKey)
		return
	}

	for i, pk := range expectedPK {
		if table.PrimaryKey[i] != pk {
			t.Errorf("Expected primary key %v on %s, got %v", expectedPK, table.Name, table.PrimaryKey)
			return
		}
	}
}

// verifyForeignKey checks that a foreign key from sourceColumn to
// targetTable exists
func verifyForeignKey(t *testing.T, table schema.Entity, sourceColumn, targetTable string) {
	t.Helper()

	for _, fk := range table.ForeignKeys {
		if fk.ReferredTable == targetTable && fk.Column == sourceColumn {
			return
		}
	}

	t.Errorf("Expected foreign key from %s.%s to %s not found", table.Name, sourceColumn, targetTable)
}

// findEntity returns the named entity from a list
func findEntity(entities []schema.Entity, name string) (schema.Entity, bool) {
	for _, e := range entities {
		if e.Name == name {
			return e, true
		}
	}
	return schema.Entity{}, false
}
