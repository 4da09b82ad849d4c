package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb/v2"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite3"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv_store (
	key        VARCHAR PRIMARY KEY,
	value      VARCHAR NOT NULL,
	updated_at BIGINT  NOT NULL
)`

// InitDB opens a database with either driver and makes sure the key-value
// table exists. The parent directory is created when missing.
func InitDB(driver, path string) (*sql.DB, error) {
	if driver != DriverDuckDB && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}

	return db, nil
}
