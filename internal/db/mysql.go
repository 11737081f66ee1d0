package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// MySQLClient manages the connection to the warehouse MySQL database
type MySQLClient struct {
	db     *sql.DB
	dbName string
}

// NewMySQLClient opens and pings a MySQL connection. dsn is in the
// go-sql-driver format, e.g. "user:pw@tcp(host:3306)/mlwarehouse".
func NewMySQLClient(ctx context.Context, dsn string) (*MySQLClient, error) {
	dsn, dbName, err := normalizeMySQLDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLClient{db: db, dbName: dbName}, nil
}

// Close closes the database connection
func (c *MySQLClient) Close() error {
	return c.db.Close()
}

// DB returns the underlying database handle
func (c *MySQLClient) DB() *sql.DB {
	return c.db
}

// DatabaseName returns the schema named in the DSN
func (c *MySQLClient) DatabaseName() string {
	return c.dbName
}

// normalizeMySQLDSN rewrites dsn so that DATETIME columns scan into
// time.Time whatever the caller passed for parseTime.
func normalizeMySQLDSN(dsn string) (string, string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse MySQL DSN: %w", err)
	}
	if cfg.DBName == "" {
		return "", "", fmt.Errorf("MySQL DSN does not name a database")
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), cfg.DBName, nil
}

// FormatMySQLDSN builds a DSN for the given credentials. Times are parsed
// into time.Time so that query results scan directly.
func FormatMySQLDSN(user, password, host string, port int, dbName string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", host, port)
	cfg.DBName = dbName
	cfg.ParseTime = true
	return cfg.FormatDSN()
}
