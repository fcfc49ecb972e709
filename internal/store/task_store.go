package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/taskly/internal/model"
)

const taskColumns = "t.id, t.nama_tugas, t.tanggal, t.deadline, t.is_completed, t.jenis, t.user_id, t.created_at, t.updated_at"

// CreateTask inserts a new task. Generates a UUID if ID is empty and
// fills in the timestamps on the caller's value.
func (s *SQLStore) CreateTask(ctx context.Context, task *model.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return fmt.Errorf("task title must not be empty")
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Kind == "" {
		task.Kind = model.KindPersonal
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO tasks (
			id, nama_tugas, tanggal, deadline, is_completed,
			jenis, user_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.StartDate, task.Deadline, boolToInt(task.Completed),
		string(task.Kind), task.OwnerID, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

// GetTaskByID retrieves a single task by ID, including group members.
// Inside a transaction the row is locked until commit.
func (s *SQLStore) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	row := s.q.QueryRowxContext(ctx,
		"SELECT "+taskColumns+" FROM tasks t WHERE t.id = ?"+s.lockClause(), id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	if task.Kind == model.KindGroup {
		members, err := s.GetTaskMembers(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading members for task %s: %w", id, err)
		}
		task.Members = members
	}
	return &task, nil
}

// GetTasks retrieves tasks matching the filter, ordered by deadline and
// then creation time.
func (s *SQLStore) GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query, args := buildTaskQuery(filter)

	rows, err := s.q.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		tasks = append(tasks, task)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}

	// Rows must be closed before issuing member queries; the sqlite
	// store holds a single connection.
	if err := s.loadMembers(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTaskCompleted sets the stored completion flag of a task.
func (s *SQLStore) UpdateTaskCompleted(ctx context.Context, id string, completed bool) error {
	result, err := s.q.ExecContext(ctx,
		"UPDATE tasks SET is_completed = ?, updated_at = ? WHERE id = ?",
		boolToInt(completed), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// MySQL reports zero affected rows when the value is unchanged,
		// so confirm the row is really missing.
		var n int
		if err := sqlx.GetContext(ctx, s.q, &n, "SELECT COUNT(*) FROM tasks WHERE id = ?", id); err != nil {
			return fmt.Errorf("checking task %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
	}
	return nil
}

// GetDueTasks returns incomplete tasks whose deadline falls on or before
// the given YYYY-MM-DD date.
func (s *SQLStore) GetDueTasks(ctx context.Context, deadlineOnOrBefore string) ([]model.Task, error) {
	rows, err := s.q.QueryxContext(ctx,
		"SELECT "+taskColumns+" FROM tasks t WHERE t.is_completed = 0 AND t.deadline <= ? ORDER BY t.deadline, t.created_at",
		deadlineOnOrBefore)
	if err != nil {
		return nil, fmt.Errorf("querying due tasks: %w", err)
	}

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		tasks = append(tasks, task)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterating due tasks: %w", err)
	}

	if err := s.loadMembers(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// loadMembers fills Members for every group task in tasks.
func (s *SQLStore) loadMembers(ctx context.Context, tasks []model.Task) error {
	for i := range tasks {
		if tasks[i].Kind != model.KindGroup {
			continue
		}
		members, err := s.GetTaskMembers(ctx, tasks[i].ID)
		if err != nil {
			return fmt.Errorf("loading members for task %s: %w", tasks[i].ID, err)
		}
		tasks[i].Members = members
	}
	return nil
}

// buildTaskQuery constructs the SQL query and args for a TaskFilter.
func buildTaskQuery(filter TaskFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	from := " FROM tasks t"
	if filter.UserID != "" {
		from += " LEFT JOIN task_members m ON m.tugas_id = t.id AND m.user_id = ?"
		args = append(args, filter.UserID)
		conditions = append(conditions, "(t.user_id = ? OR m.user_id IS NOT NULL)")
		args = append(args, filter.UserID)
	}
	if filter.Kind != nil {
		conditions = append(conditions, "t.jenis = ?")
		args = append(args, string(*filter.Kind))
	}
	if filter.Completed != nil {
		conditions = append(conditions, "t.is_completed = ?")
		args = append(args, boolToInt(*filter.Completed))
	}

	query := "SELECT " + taskColumns + from
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t.deadline, t.created_at, t.id"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}
	return query, args
}

// scanTask scans a task row into a model.Task.
func scanTask(row scanner) (model.Task, error) {
	var t model.Task
	var completed int
	err := row.Scan(
		&t.ID, &t.Title, &t.StartDate, &t.Deadline, &completed,
		&t.Kind, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scanning task row: %w", err)
	}
	t.Completed = completed != 0
	return t, nil
}

