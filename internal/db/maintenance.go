package db

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Optimize reclaims free pages and refreshes the query planner statistics.
// Safe to run at any point; purely storage hygiene.
func (r *TaskRepository) Optimize(ctx context.Context) error {
	for _, q := range []string{"VACUUM;", "ANALYZE;"} {
		if _, err := r.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("optimize database (%s): %w", q, err)
		}
	}
	return nil
}

// Backup copies the database file to destPath. The copy goes through a
// uniquely named temp file in the destination directory and is renamed into
// place, so a reader never sees a half-written backup. Returns false with a
// nil error when there is no database file to copy (e.g. ":memory:").
func (r *TaskRepository) Backup(destPath string) (bool, error) {
	if r.path == "" || r.path == ":memory:" {
		return false, nil
	}

	// Fold WAL content back into the main file so the copy is complete.
	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
		return false, fmt.Errorf("checkpoint before backup: %w", err)
	}

	src, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("open database for backup: %w", err)
	}
	defer src.Close()

	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return false, fmt.Errorf("create backup directory: %w", err)
	}

	tmpPath := filepath.Join(destDir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(destPath), uuid.NewString()))
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("create backup temp file: %w", err)
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return false, fmt.Errorf("copy database to backup: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return false, fmt.Errorf("sync backup file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("close backup file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("finalize backup file: %w", err)
	}
	return true, nil
}
