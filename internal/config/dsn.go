package config

import (
	"fmt"
	"strings"
)

// Database drivers selectable through database.dsn.
const (
	DriverNone     = ""
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// ParseDSN picks the history store driver from a DSN:
//
//	postgres://... or postgresql://...  PostgreSQL, DSN passed as is
//	sqlite3://path                      SQLite database at path
//	file:... or :memory:                SQLite, DSN passed as is
//	(empty)                             history disabled
func ParseDSN(dsn string) (driver, conn string, err error) {
	switch {
	case dsn == "":
		return DriverNone, "", nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite3://"):
		path := strings.TrimPrefix(dsn, "sqlite3://")
		if path == "" {
			return "", "", fmt.Errorf("database.dsn %q has no path", dsn)
		}
		return DriverSQLite, path, nil
	case strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		return DriverSQLite, dsn, nil
	default:
		return "", "", fmt.Errorf("database.dsn: unsupported scheme in %q (want postgres://, sqlite3:// or file:)", dsn)
	}
}
