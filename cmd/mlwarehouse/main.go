package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tordrt/mlwarehouse/internal/config"
	"github.com/tordrt/mlwarehouse/internal/schema"
	"github.com/tordrt/mlwarehouse/internal/warehouse"
	"github.com/tordrt/mlwarehouse/pkg/logger"
)

// errNonConformant is returned by check when the report is not empty.
// main turns it into exit status 2 without printing it.
var errNonConformant = errors.New("database does not conform to the declared schema")

var (
	configPath string
	dbURL      string
	mysqlURL   string
	sqlitePath string
	schemaName string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "mlwarehouse",
	Short: "Check and document the multi-LIMS warehouse schema",
	Long: `mlwarehouse compares a live warehouse database with the schema declared in code,
documents either side, loads test fixtures and runs a few example queries.

The connection comes from --config, one of --mysql-url/--db-url/--sqlite, or the
MYSQL_USER, MYSQL_PW, MYSQL_HOST, MYSQL_PORT and MYSQL_DBNAME environment variables
(a .env file in the working directory is read first).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Path to the YAML configuration file")
	pf.StringVar(&dbURL, "db-url", "", "PostgreSQL connection string")
	pf.StringVar(&mysqlURL, "mysql-url", "", "MySQL connection string")
	pf.StringVar(&sqlitePath, "sqlite", "", "SQLite database file path")
	pf.StringVarP(&schemaName, "schema", "s", "", "Database schema name (default: public for PostgreSQL, the URL database for MySQL)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(loadFixturesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errNonConformant) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads --config when given, then applies .env and MYSQL_*
// overrides
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("cannot load config: %w", err)
		}
		cfg = loaded
	}

	if err := config.LoadEnvFile(); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveDatabaseURL picks the connection from the flags, falling back to
// the configuration
func resolveDatabaseURL(cfg *config.Config) (string, error) {
	count := 0
	for _, v := range []string{dbURL, mysqlURL, sqlitePath} {
		if v != "" {
			count++
		}
	}
	if count > 1 {
		return "", fmt.Errorf("only one of --db-url, --mysql-url, or --sqlite can be specified")
	}

	switch {
	case dbURL != "":
		return dbURL, nil
	case mysqlURL != "":
		if strings.HasPrefix(mysqlURL, "mysql://") {
			return mysqlURL, nil
		}
		return "mysql://" + mysqlURL, nil
	case sqlitePath != "":
		return "sqlite://" + sqlitePath, nil
	}

	url, err := cfg.DatabaseURL()
	if err != nil {
		return "", fmt.Errorf("no database given (use --config, --mysql-url, --db-url or --sqlite): %w", err)
	}
	return url, nil
}

// connectionSchema prefers --schema over the configured schema
func connectionSchema(cfg *config.Config) string {
	if schemaName != "" {
		return schemaName
	}
	return cfg.Database.Schema
}

// loadModel returns the YAML model at path, or the compiled-in declarations
func loadModel(path string) (*schema.Model, error) {
	if path == "" {
		return warehouse.Model(), nil
	}
	return schema.LoadModelFile(path)
}

func newLogger() *logger.Logger {
	return logger.NewLogger(verbose)
}

// parseTableList splits a comma separated list of table names
func parseTableList(tablesStr string) []string {
	if tablesStr == "" {
		return nil
	}
	tableList := strings.Split(tablesStr, ",")
	for i, t := range tableList {
		tableList[i] = strings.TrimSpace(t)
	}
	return tableList
}
