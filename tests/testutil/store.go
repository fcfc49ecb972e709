package testutil

import (
	"context"
	"testing"

	"github.com/nhle/taskly/internal/model"
	"github.com/nhle/taskly/internal/store"
)

// NewTestStore creates an in-memory SQLStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedTask inserts a personal task owned by ownerID with one subtask per
// title and returns the task and its subtasks in order.
func SeedTask(t *testing.T, s store.Store, ownerID string, titles ...string) (model.Task, []model.Subtask) {
	t.Helper()
	ctx := context.Background()

	task := model.Task{
		Title:     "seeded task",
		StartDate: "2024-05-01",
		Deadline:  "2024-05-10",
		Kind:      model.KindPersonal,
		OwnerID:   ownerID,
	}
	if err := s.CreateTask(ctx, &task); err != nil {
		t.Fatalf("seeding task: %v", err)
	}

	subs := make([]model.Subtask, 0, len(titles))
	for _, title := range titles {
		sub := model.Subtask{Title: title, TaskID: task.ID}
		if err := s.CreateSubtask(ctx, &sub); err != nil {
			t.Fatalf("seeding subtask %q: %v", title, err)
		}
		subs = append(subs, sub)
	}
	return task, subs
}
