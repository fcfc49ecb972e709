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

const subtaskColumns = "id, nama_sub_tugas, tugas_id, is_completed, sort_order, created_at"

// CreateSubtask inserts a new subtask under sub.TaskID. A zero SortOrder
// appends the subtask after its existing siblings.
func (s *SQLStore) CreateSubtask(ctx context.Context, sub *model.Subtask) error {
	if strings.TrimSpace(sub.Title) == "" {
		return fmt.Errorf("subtask title must not be empty")
	}
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	sub.CreatedAt = time.Now().UTC()

	if sub.SortOrder == 0 {
		var maxOrder int
		err := sqlx.GetContext(ctx, s.q, &maxOrder,
			"SELECT COALESCE(MAX(sort_order), 0) FROM subtasks WHERE tugas_id = ?",
			sub.TaskID)
		if err != nil {
			return fmt.Errorf("getting max subtask sort_order: %w", err)
		}
		sub.SortOrder = maxOrder + 1
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO subtasks (id, nama_sub_tugas, tugas_id, is_completed, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Title, sub.TaskID, boolToInt(sub.Completed),
		sub.SortOrder, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating subtask: %w", err)
	}
	return nil
}

// GetSubtaskByID retrieves a single subtask. The read never locks; callers
// that need to serialise on a task lock the parent row instead.
func (s *SQLStore) GetSubtaskByID(ctx context.Context, id string) (*model.Subtask, error) {
	row := s.q.QueryRowxContext(ctx,
		"SELECT "+subtaskColumns+" FROM subtasks WHERE id = ?", id)
	sub, err := scanSubtask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subtask %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting subtask %s: %w", id, err)
	}
	return &sub, nil
}

// GetSubtasksByParent returns all subtasks of a task in sort order.
// Inside a transaction the rows are locked until commit.
func (s *SQLStore) GetSubtasksByParent(ctx context.Context, taskID string) ([]model.Subtask, error) {
	rows, err := s.q.QueryxContext(ctx,
		"SELECT "+subtaskColumns+" FROM subtasks WHERE tugas_id = ? ORDER BY sort_order, created_at"+s.lockClause(),
		taskID)
	if err != nil {
		return nil, fmt.Errorf("querying subtasks for task %s: %w", taskID, err)
	}
	defer rows.Close()

	var subs []model.Subtask
	for rows.Next() {
		sub, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// GetSubtasksForTasks batch-loads subtasks for several tasks, keyed by
// task id. Tasks without subtasks are absent from the map.
func (s *SQLStore) GetSubtasksForTasks(ctx context.Context, taskIDs []string) (map[string][]model.Subtask, error) {
	out := make(map[string][]model.Subtask, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(
		"SELECT "+subtaskColumns+" FROM subtasks WHERE tugas_id IN (?) ORDER BY tugas_id, sort_order, created_at",
		taskIDs)
	if err != nil {
		return nil, fmt.Errorf("building subtask batch query: %w", err)
	}

	rows, err := s.q.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying subtasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sub, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		out[sub.TaskID] = append(out[sub.TaskID], sub)
	}
	return out, rows.Err()
}

// UpdateSubtaskCompleted sets the completion flag of a subtask.
func (s *SQLStore) UpdateSubtaskCompleted(ctx context.Context, id string, completed bool) error {
	result, err := s.q.ExecContext(ctx,
		"UPDATE subtasks SET is_completed = ? WHERE id = ?",
		boolToInt(completed), id,
	)
	if err != nil {
		return fmt.Errorf("updating subtask %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var n int
		if err := sqlx.GetContext(ctx, s.q, &n, "SELECT COUNT(*) FROM subtasks WHERE id = ?", id); err != nil {
			return fmt.Errorf("checking subtask %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("subtask %s: %w", id, ErrNotFound)
		}
	}
	return nil
}

// scanSubtask scans a subtask row into a model.Subtask.
func scanSubtask(row scanner) (model.Subtask, error) {
	var sub model.Subtask
	var completed int
	err := row.Scan(
		&sub.ID, &sub.Title, &sub.TaskID, &completed,
		&sub.SortOrder, &sub.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sub, err
		}
		return sub, fmt.Errorf("scanning subtask row: %w", err)
	}
	sub.Completed = completed != 0
	return sub, nil
}
