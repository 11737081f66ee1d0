package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tordrt/mlwarehouse/internal/db"
)

// Environment variables read by ApplyEnv
const (
	EnvUser     = "MYSQL_USER"
	EnvPassword = "MYSQL_PW"
	EnvHost     = "MYSQL_HOST"
	EnvPort     = "MYSQL_PORT"
	EnvDBName   = "MYSQL_DBNAME"
)

type DatabaseConfig struct {
	Type     string `yaml:"type"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Schema   string `yaml:"schema"`
	Path     string `yaml:"path"`
}

type CheckConfig struct {
	Model         string   `yaml:"model"`
	ExcludeTables []string `yaml:"exclude_tables"`
	IgnoreColumns []string `yaml:"ignore_columns"`
}

type FixtureConfig struct {
	Dir string `yaml:"dir"`
}

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Check    CheckConfig    `yaml:"check"`
	Fixtures FixtureConfig  `yaml:"fixtures"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads a YAML config file. ${VAR} and $VAR references are
// expanded from the environment before parsing.
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	c.Database.Type = normalizeDatabaseType(c.Database.Type)

	switch c.Database.Type {
	case "mysql":
		if c.Database.Host == "" {
			c.Database.Host = "localhost"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
	case "postgres":
		if c.Database.Host == "" {
			c.Database.Host = "localhost"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.Schema == "" {
			c.Database.Schema = "public"
		}
	}
}

// LoadEnvFile loads .env from the working directory when present
func LoadEnvFile() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides MySQL connection settings from the MYSQL_*
// environment variables. When any of them is set the connection becomes a
// MySQL one built from the variables.
func (c *Config) ApplyEnv() error {
	if !mysqlEnvSet() {
		return nil
	}

	if c.Database.Type != "mysql" {
		c.Database = DatabaseConfig{Type: "mysql"}
		c.applyDefaults()
	}
	c.Database.URL = ""

	if v, ok := os.LookupEnv(EnvUser); ok {
		c.Database.Username = v
	}
	if v, ok := os.LookupEnv(EnvPassword); ok {
		c.Database.Password = v
	}
	if v, ok := os.LookupEnv(EnvHost); ok {
		c.Database.Host = v
	}
	if v, ok := os.LookupEnv(EnvPort); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Database.Port = port
	}
	if v, ok := os.LookupEnv(EnvDBName); ok {
		c.Database.Database = v
	}
	return nil
}

func mysqlEnvSet() bool {
	for _, key := range []string{EnvUser, EnvPassword, EnvHost, EnvPort, EnvDBName} {
		if _, ok := os.LookupEnv(key); ok {
			return true
		}
	}
	return false
}

// DatabaseURL returns a connection URL understood by the mlwarehouse
// package: mysql://, postgres:// or sqlite://.
func (c *Config) DatabaseURL() (string, error) {
	d := c.Database
	if d.URL != "" {
		return d.URL, nil
	}

	switch d.Type {
	case "mysql":
		if d.Database == "" {
			return "", fmt.Errorf("database name is required (set database.database or %s)", EnvDBName)
		}
		return "mysql://" + db.FormatMySQLDSN(d.Username, d.Password, d.Host, d.Port, d.Database), nil
	case "postgres":
		if d.Database == "" {
			return "", fmt.Errorf("database name is required")
		}
		u := url.URL{
			Scheme: "postgres",
			Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
			Path:   "/" + d.Database,
		}
		if d.Username != "" {
			u.User = url.UserPassword(d.Username, d.Password)
		}
		return u.String(), nil
	case "sqlite":
		if d.Path == "" {
			return "", fmt.Errorf("database path is required for sqlite")
		}
		return "sqlite://" + d.Path, nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", d.Type)
	}
}

func normalizeDatabaseType(dbType string) string {
	dbType = strings.ToLower(strings.TrimSpace(dbType))
	switch dbType {
	case "", "mysql", "mariadb":
		return "mysql"
	case "postgres", "postgresql":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return dbType
	}
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareEnvVar   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands ${VAR} and $VAR references
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
	return bareEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}
