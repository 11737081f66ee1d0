package db

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		dbName  string
		wantErr bool
	}{
		{name: "no parameters", dsn: "mlwh:pw@tcp(localhost:3306)/mlwarehouse", dbName: "mlwarehouse"},
		{name: "parseTime off", dsn: "mlwh:pw@tcp(localhost:3306)/mlwarehouse?parseTime=false", dbName: "mlwarehouse"},
		{name: "other parameters kept", dsn: "mlwh:pw@tcp(db:3307)/mlwh?autocommit=true&timeout=5s", dbName: "mlwh"},
		{name: "no database", dsn: "mlwh:pw@tcp(localhost:3306)/", wantErr: true},
		{name: "malformed", dsn: "mlwh:pw@tcp(localhost:3306", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, dbName, err := normalizeMySQLDSN(tt.dsn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dbName, dbName)

			cfg, err := mysql.ParseDSN(dsn)
			require.NoError(t, err)
			assert.True(t, cfg.ParseTime)
			assert.Equal(t, tt.dbName, cfg.DBName)
		})
	}

	dsn, _, err := normalizeMySQLDSN("mlwh:pw@tcp(db:3307)/mlwh?autocommit=true&timeout=5s")
	require.NoError(t, err)
	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "db:3307", cfg.Addr)
	assert.Equal(t, "pw", cfg.Passwd)
	assert.Equal(t, "true", cfg.Params["autocommit"])
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestFormatMySQLDSN(t *testing.T) {
	dsn := FormatMySQLDSN("reader", "s3cret", "db.example.org", 3307, "mlwh")
	assert.Contains(t, dsn, "tcp(db.example.org:3307)")
	assert.Contains(t, dsn, "parseTime=true")

	normalized, dbName, err := normalizeMySQLDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "mlwh", dbName)
	assert.Equal(t, dsn, normalized)
}
