package store

import (
	"context"
	"errors"

	"github.com/nhle/taskly/internal/model"
)

// ErrNotFound is returned (wrapped) when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// TaskFilter controls filtering and pagination for task queries.
type TaskFilter struct {
	Kind      *model.Kind // pribadi, kelompok, or nil (all)
	UserID    string      // owner or member; empty means every user
	Completed *bool       // stored is_completed flag, or nil (all)
	Limit     int
	Offset    int
}

// Store defines the persistence interface for tasks, subtasks, group
// membership, and notifications.
type Store interface {
	// === Tasks ===

	CreateTask(ctx context.Context, task *model.Task) error
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	UpdateTaskCompleted(ctx context.Context, id string, completed bool) error
	GetDueTasks(ctx context.Context, deadlineOnOrBefore string) ([]model.Task, error)

	// === Subtasks ===

	CreateSubtask(ctx context.Context, sub *model.Subtask) error
	GetSubtaskByID(ctx context.Context, id string) (*model.Subtask, error)
	GetSubtasksByParent(ctx context.Context, taskID string) ([]model.Subtask, error)
	GetSubtasksForTasks(ctx context.Context, taskIDs []string) (map[string][]model.Subtask, error)
	UpdateSubtaskCompleted(ctx context.Context, id string, completed bool) error

	// === Group members ===

	SetTaskMembers(ctx context.Context, taskID string, userIDs []string) error
	GetTaskMembers(ctx context.Context, taskID string) ([]string, error)

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) error
	GetNotificationsForUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	// WithTx runs fn against a Store bound to a single transaction.
	// Reads made through that Store inside fn lock the rows they return
	// where the database supports it. The transaction commits if fn
	// returns nil and rolls back otherwise. Nested calls reuse the
	// outer transaction.
	WithTx(ctx context.Context, fn func(Store) error) error

	// Ping checks the database connection.
	Ping(ctx context.Context) error
}
