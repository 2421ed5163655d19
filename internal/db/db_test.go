package db

import (
	"context"
	"path/filepath"
	"testing"

	"tasklist/internal/models"
)

func TestOpen_CreatesSchemaAndDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "tasks.db")
	conn, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	var name string
	err = conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'task_items'`).Scan(&name)
	if err != nil {
		t.Fatalf("task_items table missing: %v", err)
	}

	var version int
	if err := conn.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != schemaVersion {
		t.Errorf("user_version = %d, want %d", version, schemaVersion)
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()

	conn, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	repo := NewTaskRepository(conn, path)
	if _, err := repo.Insert(ctx, models.NewTask("survives reopen")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	conn, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer conn.Close()
	repo = NewTaskRepository(conn, path)

	all, err := repo.RetrieveAll(ctx)
	if err != nil {
		t.Fatalf("RetrieveAll: %v", err)
	}
	if len(all) != 1 || all[0].Description != "survives reopen" {
		t.Errorf("data lost across reopen: %+v", all)
	}
}

func TestOpen_VersionMismatchRecreatesTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()

	conn, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	repo := NewTaskRepository(conn, path)
	if _, err := repo.Insert(ctx, models.NewTask("doomed")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	// Simulate a database written by an older release.
	if _, err := conn.Exec("PRAGMA user_version = 1;"); err != nil {
		t.Fatalf("downgrade user_version: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	conn, err = Open(path)
	if err != nil {
		t.Fatalf("reopen after version change: %v", err)
	}
	defer conn.Close()
	repo = NewTaskRepository(conn, path)

	all, err := repo.RetrieveAll(ctx)
	if err != nil {
		t.Fatalf("RetrieveAll: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("destructive upgrade should drop old rows, got %+v", all)
	}

	var version int
	if err := conn.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != schemaVersion {
		t.Errorf("user_version = %d after upgrade, want %d", version, schemaVersion)
	}
}

func TestOpen_InMemory(t *testing.T) {
	conn, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:): %v", err)
	}
	defer conn.Close()

	repo := NewTaskRepository(conn, ":memory:")
	if _, err := repo.Insert(context.Background(), models.NewTask("ephemeral")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if n, err := repo.Count(context.Background()); err != nil || n != 1 {
		t.Errorf("Count = %d, %v; want 1, nil", n, err)
	}
}
