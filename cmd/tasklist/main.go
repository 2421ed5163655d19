package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tasklist/internal/config"
	"tasklist/internal/db"
	"tasklist/internal/models"
	"tasklist/internal/validation"
)

// shell is the thin presentation layer over the validator and the store. It
// holds no state of its own beyond a cached task list that is re-queried
// after every mutation.
type shell struct {
	repo      *db.TaskRepository
	validator *validation.Validator
	cfg       *config.Config
	tasks     []*models.Task
	in        *bufio.Scanner
	out       *os.File
}

func main() {
	// .env is optional; real settings live in the config file.
	_ = godotenv.Load()

	configPath := os.Getenv("TASKLIST_CONFIG")
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if path := os.Getenv("TASKLIST_DB_PATH"); path != "" {
		cfg.Database.Path = path
	}

	conn, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open task database: %v", err)
	}
	defer conn.Close()

	s := &shell{
		repo:      db.NewTaskRepository(conn, cfg.Database.Path),
		validator: cfg.Validator(),
		cfg:       cfg,
		in:        bufio.NewScanner(os.Stdin),
		out:       os.Stdout,
	}
	s.run()
}

func (s *shell) run() {
	ctx := context.Background()
	if err := s.refresh(ctx); err != nil {
		log.Fatalf("Failed to load tasks: %v", err)
	}
	s.printf("tasklist — %d task(s). Type 'help' for commands.\n", len(s.tasks))

	for {
		s.printf("> ")
		if !s.in.Scan() {
			return
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}
		command, arg := splitCommand(line)
		if command == "quit" || command == "exit" {
			return
		}
		s.dispatch(ctx, command, arg)
	}
}

func splitCommand(line string) (string, string) {
	parts := strings.SplitN(line, " ", 2)
	command := strings.ToLower(parts[0])
	arg := ""
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return command, arg
}

func (s *shell) dispatch(ctx context.Context, command, arg string) {
	switch command {
	case "help":
		s.printHelp()
	case "add":
		s.addTask(ctx, arg)
	case "list":
		s.listTasks(ctx, "all")
	case "pending":
		s.listTasks(ctx, "pending")
	case "done":
		s.listTasks(ctx, "completed")
	case "finish":
		s.setFinished(ctx, arg, true)
	case "reopen":
		s.setFinished(ctx, arg, false)
	case "edit":
		s.editTask(ctx, arg)
	case "rm":
		s.removeTask(ctx, arg)
	case "search":
		s.searchTasks(ctx, arg)
	case "clear":
		s.clearCompleted(ctx)
	case "stats":
		s.showStats(ctx)
	case "compact":
		s.compact(ctx)
	case "backup":
		s.backup(arg)
	default:
		s.printf("Unknown command %q. Type 'help' for commands.\n", command)
	}
}

func (s *shell) printHelp() {
	s.printf(`Commands:
  add <text>        add a task
  list              show all tasks
  pending           show pending tasks
  done              show completed tasks
  finish <id>       mark a task completed
  reopen <id>       mark a task pending
  edit <id> <text>  change a task description
  rm <id>           delete a task
  search <term>     find tasks by description
  clear             delete all completed tasks
  stats             show task counts
  compact           reclaim database space
  backup [path]     copy the database file
  quit              exit
`)
}

// addTask runs the full input pipeline: validate, check for duplicates
// against the loaded list, sanitize, insert, re-query.
func (s *shell) addTask(ctx context.Context, raw string) {
	result := s.validator.Validate(raw)
	if !result.OK {
		s.printf("%s\n\n%s\n", result.Message, s.validator.Summary(raw))
		return
	}

	description := validation.Sanitize(raw)
	if !validation.IsUnique(description, s.tasks) {
		s.printf("A task with this description already exists. Add anyway? [y/N] ")
		if !s.in.Scan() || !isYes(s.in.Text()) {
			s.printf("Cancelled.\n")
			return
		}
		description += " (Copy)"
	}

	task := models.NewTask(description)
	if _, err := s.repo.Insert(ctx, task); err != nil {
		log.Printf("insert task: %v", err)
		s.printf("Could not save the task; nothing was added.\n")
		return
	}
	if err := s.refresh(ctx); err != nil {
		log.Printf("refresh after insert: %v", err)
	}
	s.printf("Added task %d.\n", task.ID)
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func (s *shell) listTasks(ctx context.Context, which string) {
	var tasks []*models.Task
	var err error
	switch which {
	case "pending":
		tasks, err = s.repo.RetrievePending(ctx)
	case "completed":
		tasks, err = s.repo.RetrieveCompleted(ctx)
	default:
		tasks, err = s.repo.RetrieveAll(ctx)
	}
	if err != nil {
		log.Printf("list %s tasks: %v", which, err)
		s.printf("Could not load tasks.\n")
		return
	}
	s.renderTasks(tasks)
}

func (s *shell) renderTasks(tasks []*models.Task) {
	if len(tasks) == 0 {
		s.printf("No tasks.\n")
		return
	}
	for _, task := range tasks {
		mark := " "
		if task.Finished {
			mark = "x"
		}
		s.printf("%4d [%s] %s  (%s)\n",
			task.ID, mark, task.Description, task.CreationTime().Format("2006-01-02 15:04"))
	}
}

func (s *shell) setFinished(ctx context.Context, arg string, finished bool) {
	task, ok := s.findTask(arg)
	if !ok {
		return
	}
	task.SetFinished(finished)
	s.updateTask(ctx, task)
}

func (s *shell) editTask(ctx context.Context, arg string) {
	idArg, text := splitCommand(arg)
	task, ok := s.findTask(idArg)
	if !ok {
		return
	}
	// The store does not re-validate on update; the shell must.
	result := s.validator.Validate(text)
	if !result.OK {
		s.printf("%s\n", result.Message)
		return
	}
	task.SetDescription(validation.Sanitize(text))
	s.updateTask(ctx, task)
}

func (s *shell) updateTask(ctx context.Context, task *models.Task) {
	changed, err := s.repo.Update(ctx, task)
	if err != nil {
		log.Printf("update task %d: %v", task.ID, err)
		s.printf("Could not save the change; nothing was modified.\n")
		return
	}
	if !changed {
		s.printf("Task %d no longer exists.\n", task.ID)
	}
	if err := s.refresh(ctx); err != nil {
		log.Printf("refresh after update: %v", err)
	}
}

func (s *shell) removeTask(ctx context.Context, arg string) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		s.printf("Usage: rm <id>\n")
		return
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		log.Printf("delete task %d: %v", id, err)
		s.printf("Could not delete the task.\n")
		return
	}
	if !deleted {
		s.printf("No task with id %d.\n", id)
		return
	}
	if err := s.refresh(ctx); err != nil {
		log.Printf("refresh after delete: %v", err)
	}
	s.printf("Deleted task %d.\n", id)
}

func (s *shell) searchTasks(ctx context.Context, term string) {
	results, err := s.repo.SearchByDescription(ctx, term)
	if err != nil {
		log.Printf("search tasks: %v", err)
		s.printf("Search failed.\n")
		return
	}
	s.renderTasks(results)
}

func (s *shell) clearCompleted(ctx context.Context) {
	cleared, err := s.repo.ClearCompleted(ctx)
	if err != nil {
		log.Printf("clear completed: %v", err)
		s.printf("Could not clear completed tasks.\n")
		return
	}
	if !cleared {
		s.printf("No completed tasks to clear.\n")
		return
	}
	if err := s.refresh(ctx); err != nil {
		log.Printf("refresh after clear: %v", err)
	}
	s.printf("Cleared completed tasks.\n")
}

func (s *shell) showStats(ctx context.Context) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		log.Printf("count tasks: %v", err)
		s.printf("Could not read task counts.\n")
		return
	}
	completed, err := s.repo.CountCompleted(ctx)
	if err != nil {
		log.Printf("count completed: %v", err)
		s.printf("Could not read task counts.\n")
		return
	}
	pending, err := s.repo.CountPending(ctx)
	if err != nil {
		log.Printf("count pending: %v", err)
		s.printf("Could not read task counts.\n")
		return
	}
	s.printf("Total: %d  Pending: %d  Completed: %d\n", total, pending, completed)
}

func (s *shell) compact(ctx context.Context) {
	if err := s.repo.Optimize(ctx); err != nil {
		log.Printf("optimize database: %v", err)
		s.printf("Compaction failed.\n")
		return
	}
	s.printf("Database compacted.\n")
}

func (s *shell) backup(arg string) {
	destPath := arg
	if destPath == "" {
		name := fmt.Sprintf("tasks-%s.db", time.Now().Format("20060102-150405"))
		destPath = filepath.Join(s.cfg.Database.BackupDir, name)
	}
	copied, err := s.repo.Backup(destPath)
	if err != nil {
		log.Printf("backup database: %v", err)
		s.printf("Backup failed.\n")
		return
	}
	if !copied {
		s.printf("Nothing to back up yet.\n")
		return
	}
	s.printf("Backed up to %s\n", destPath)
}

// findTask resolves an id argument against the cached list. The cache is
// refreshed after every mutation, so a miss means the task is gone.
func (s *shell) findTask(arg string) (*models.Task, bool) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		s.printf("Expected a task id, got %q.\n", arg)
		return nil, false
	}
	for _, task := range s.tasks {
		if task.ID == id {
			return task, true
		}
	}
	s.printf("No task with id %d.\n", id)
	return nil, false
}

func (s *shell) refresh(ctx context.Context) error {
	tasks, err := s.repo.RetrieveAll(ctx)
	if err != nil {
		return err
	}
	s.tasks = tasks
	return nil
}

func (s *shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
