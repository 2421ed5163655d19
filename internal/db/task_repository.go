package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"tasklist/internal/models"
)

// defines methods for task db operations
type TaskRepositoryInterface interface {
	Insert(ctx context.Context, task *models.Task) (int64, error)
	RetrieveAll(ctx context.Context) ([]*models.Task, error)
	RetrieveCompleted(ctx context.Context) ([]*models.Task, error)
	RetrievePending(ctx context.Context) ([]*models.Task, error)
	SearchByDescription(ctx context.Context, term string) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ClearCompleted(ctx context.Context) (bool, error)
	Count(ctx context.Context) (int, error)
	CountCompleted(ctx context.Context) (int, error)
	CountPending(ctx context.Context) (int, error)
	Optimize(ctx context.Context) error
	Backup(destPath string) (bool, error)
}

// TaskRepository is the sole owner of the durable task records. Descriptions
// are stored as given: callers validate and sanitize before Insert and
// Update, the repository never re-checks content rules.
type TaskRepository struct {
	db   *sql.DB
	path string
}

func NewTaskRepository(db *sql.DB, path string) *TaskRepository {
	return &TaskRepository{db: db, path: path}
}

const taskColumns = "task_id, description, is_finished, creation_timestamp, last_modified_timestamp"

// Insert persists the task and assigns its store id. On error no record
// exists and the task keeps its zero id.
func (r *TaskRepository) Insert(ctx context.Context, task *models.Task) (int64, error) {
	query := `INSERT INTO task_items (description, is_finished, creation_timestamp, last_modified_timestamp)
	 VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(
		ctx, query, task.Description, task.Finished, task.CreatedAt, task.ModifiedAt)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted task id: %w", err)
	}
	task.SetID(id)
	return id, nil
}

func (r *TaskRepository) RetrieveAll(ctx context.Context) ([]*models.Task, error) {
	return r.retrieveWithFilter(ctx, "", nil, "creation_timestamp DESC")
}

func (r *TaskRepository) RetrieveCompleted(ctx context.Context) ([]*models.Task, error) {
	return r.retrieveWithFilter(ctx, "is_finished = ?", []any{1}, "last_modified_timestamp DESC")
}

func (r *TaskRepository) RetrievePending(ctx context.Context) ([]*models.Task, error) {
	return r.retrieveWithFilter(ctx, "is_finished = ?", []any{0}, "creation_timestamp DESC")
}

// SearchByDescription matches the term case-insensitively anywhere in the
// description. A blank term finds nothing rather than everything.
func (r *TaskRepository) SearchByDescription(ctx context.Context, term string) ([]*models.Task, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	return r.retrieveWithFilter(ctx, "description LIKE ?", []any{"%" + term + "%"}, "creation_timestamp DESC")
}

func (r *TaskRepository) retrieveWithFilter(ctx context.Context, where string, args []any, orderBy string) ([]*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM task_items"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY " + orderBy

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{}
		if err := rows.Scan(
			&task.ID, &task.Description, &task.Finished, &task.CreatedAt, &task.ModifiedAt,
		); err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		// A blank description means a corrupt row; skip it instead of
		// surfacing garbage to every caller.
		if strings.TrimSpace(task.Description) == "" {
			log.Printf("db: skipping task %d with blank description", task.ID)
			continue
		}
		task.Description = strings.TrimSpace(task.Description)
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task rows: %w", err)
	}
	return tasks, nil
}

// Update rewrites description and finished flag and stamps the modification
// time. Returns false when no task has the given id; creation_timestamp is
// never touched.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) (bool, error) {
	now := time.Now().UnixMilli()
	query := `UPDATE task_items SET description = ?, is_finished = ?, last_modified_timestamp = ?
	 WHERE task_id = ?`

	result, err := r.db.ExecContext(ctx, query, task.Description, task.Finished, now, task.ID)
	if err != nil {
		return false, fmt.Errorf("update task %d: %w", task.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update task %d rows affected: %w", task.ID, err)
	}
	if affected > 0 {
		task.ModifiedAt = now
	}
	return affected > 0, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM task_items WHERE task_id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete task %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task %d rows affected: %w", id, err)
	}
	return affected > 0, nil
}

// ClearCompleted deletes every finished task and reports whether any row
// went away. Pending tasks are untouched.
func (r *TaskRepository) ClearCompleted(ctx context.Context) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM task_items WHERE is_finished = 1")
	if err != nil {
		return false, fmt.Errorf("clear completed tasks: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("clear completed rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *TaskRepository) Count(ctx context.Context) (int, error) {
	return r.countWhere(ctx, "")
}

func (r *TaskRepository) CountCompleted(ctx context.Context) (int, error) {
	return r.countWhere(ctx, "is_finished = 1")
}

func (r *TaskRepository) CountPending(ctx context.Context) (int, error) {
	return r.countWhere(ctx, "is_finished = 0")
}

func (r *TaskRepository) countWhere(ctx context.Context, where string) (int, error) {
	query := "SELECT COUNT(*) FROM task_items"
	if where != "" {
		query += " WHERE " + where
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}
