package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Driver selects the session store backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverMemory   Driver = "memory"
	DriverPostgres Driver = "postgres"
	DriverRedis    Driver = "redis"
)

func (d Driver) String() string { return string(d) }

// IsValid reports whether d is a known driver.
func (d Driver) IsValid() bool {
	switch d {
	case DriverSQLite, DriverMemory, DriverPostgres, DriverRedis:
		return true
	default:
		return false
	}
}

// Transactional reports whether the driver supports a real unit of work.
func (d Driver) Transactional() bool {
	return d == DriverSQLite || d == DriverPostgres
}

// ParseDriver parses a driver name. An empty value selects SQLite, and
// "postgresql" is accepted as an alias.
func ParseDriver(value string) (Driver, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "":
		return DriverSQLite, nil
	case "postgresql":
		return DriverPostgres, nil
	}
	d := Driver(v)
	if !d.IsValid() {
		return "", fmt.Errorf("unsupported store driver: %s", value)
	}
	return d, nil
}

// DefaultSQLitePath returns ~/.opportunity/data.db.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".opportunity", "data.db")
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[2:])
}
