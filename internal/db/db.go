package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// schemaVersion is tracked in PRAGMA user_version. A mismatch drops and
// recreates the table rather than migrating; with a single schema version
// ever shipped this loses nothing, but any future version bump should
// switch to additive migrations.
const schemaVersion = 2

const createTaskTable = `
CREATE TABLE IF NOT EXISTS task_items (
	task_id INTEGER PRIMARY KEY AUTOINCREMENT,
	description TEXT NOT NULL,
	is_finished INTEGER DEFAULT 0,
	creation_timestamp INTEGER NOT NULL,
	last_modified_timestamp INTEGER NOT NULL
);`

// Open opens (creating if needed) the task database at path and ensures the
// schema is current. Pass ":memory:" for an ephemeral database.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_busy_timeout=5000"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	// Single local file, single writer; one connection avoids lock churn
	// and keeps :memory: databases on a single shared handle.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := configurePragmas(conn); err != nil {
		conn.Close()
		return nil, err
	}
	if err := initSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func configurePragmas(conn *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=FULL;",
	}
	for _, q := range pragmas {
		if _, err := conn.Exec(q); err != nil {
			return fmt.Errorf("set pragma %q: %w", q, err)
		}
	}
	return nil
}

func initSchema(conn *sql.DB) error {
	var version int
	if err := conn.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version != 0 && version != schemaVersion {
		log.Printf("db: schema version %d on disk, want %d; recreating task_items (all data lost)",
			version, schemaVersion)
		if _, err := conn.Exec("DROP TABLE IF EXISTS task_items;"); err != nil {
			return fmt.Errorf("drop outdated task_items: %w", err)
		}
	}

	if _, err := conn.Exec(createTaskTable); err != nil {
		return fmt.Errorf("create task_items: %w", err)
	}

	if version != schemaVersion {
		// PRAGMA does not take bind parameters.
		if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d;", schemaVersion)); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	}
	return nil
}
