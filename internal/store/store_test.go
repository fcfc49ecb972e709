package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nhle/taskly/internal/model"
	"github.com/nhle/taskly/internal/store"
	"github.com/nhle/taskly/tests/testutil"
)

func TestCreateAndGetTask(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	task := model.Task{
		Title:     "Laporan",
		StartDate: "2024-05-01",
		Deadline:  "2024-05-03",
		Kind:      model.KindPersonal,
		OwnerID:   "u1",
	}
	if err := s.CreateTask(ctx, &task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.ID == "" {
		t.Fatal("Expected CreateTask to assign an ID")
	}

	got, err := s.GetTaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if got.Title != "Laporan" || got.Deadline != "2024-05-03" || got.OwnerID != "u1" {
		t.Errorf("Unexpected task: %+v", got)
	}
	if got.Completed {
		t.Error("Expected new task to be incomplete")
	}
}

func TestGetTaskByIDNotFound(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.GetTaskByID(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestCreateTaskRejectsEmptyTitle(t *testing.T) {
	s := testutil.NewTestStore(t)

	task := model.Task{Title: "  ", StartDate: "2024-05-01", Deadline: "2024-05-01"}
	if err := s.CreateTask(context.Background(), &task); err == nil {
		t.Fatal("Expected error for empty title")
	}
}

func TestSubtasksKeepInsertionOrder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	task, _ := testutil.SeedTask(t, s, "u1", "A", "B", "C")

	subs, err := s.GetSubtasksByParent(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetSubtasksByParent failed: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("Expected 3 subtasks, got %d", len(subs))
	}
	for i, want := range []string{"A", "B", "C"} {
		if subs[i].Title != want {
			t.Errorf("subs[%d].Title = %q, want %q", i, subs[i].Title, want)
		}
		if subs[i].SortOrder != i+1 {
			t.Errorf("subs[%d].SortOrder = %d, want %d", i, subs[i].SortOrder, i+1)
		}
	}
}

func TestUpdateSubtaskCompleted(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, subs := testutil.SeedTask(t, s, "u1", "A")

	if err := s.UpdateSubtaskCompleted(ctx, subs[0].ID, true); err != nil {
		t.Fatalf("UpdateSubtaskCompleted failed: %v", err)
	}
	// Writing the same value again must not look like a missing row.
	if err := s.UpdateSubtaskCompleted(ctx, subs[0].ID, true); err != nil {
		t.Fatalf("Idempotent UpdateSubtaskCompleted failed: %v", err)
	}

	got, err := s.GetSubtaskByID(ctx, subs[0].ID)
	if err != nil {
		t.Fatalf("GetSubtaskByID failed: %v", err)
	}
	if !got.Completed {
		t.Error("Expected subtask to be completed")
	}

	err = s.UpdateSubtaskCompleted(ctx, "missing", true)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing subtask, got %v", err)
	}
}

func TestUpdateTaskCompletedNotFound(t *testing.T) {
	s := testutil.NewTestStore(t)

	err := s.UpdateTaskCompleted(context.Background(), "missing", true)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetSubtasksForTasks(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	t1, _ := testutil.SeedTask(t, s, "u1", "A", "B")
	t2, _ := testutil.SeedTask(t, s, "u1")
	t3, _ := testutil.SeedTask(t, s, "u1", "C")

	got, err := s.GetSubtasksForTasks(ctx, []string{t1.ID, t2.ID, t3.ID})
	if err != nil {
		t.Fatalf("GetSubtasksForTasks failed: %v", err)
	}
	if len(got[t1.ID]) != 2 {
		t.Errorf("Expected 2 subtasks for t1, got %d", len(got[t1.ID]))
	}
	if _, ok := got[t2.ID]; ok {
		t.Error("Expected no entry for task without subtasks")
	}
	if len(got[t3.ID]) != 1 || got[t3.ID][0].Title != "C" {
		t.Errorf("Unexpected subtasks for t3: %+v", got[t3.ID])
	}

	empty, err := s.GetSubtasksForTasks(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("Expected empty map for no ids, got %v, %v", empty, err)
	}
}

func TestGetTasksFilters(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	personal, _ := testutil.SeedTask(t, s, "u1")
	group := model.Task{
		Title:     "Kelompok",
		StartDate: "2024-05-01",
		Deadline:  "2024-05-02",
		Kind:      model.KindGroup,
	}
	if err := s.CreateTask(ctx, &group); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if err := s.SetTaskMembers(ctx, group.ID, []string{"u1", "u2", "u2", " "}); err != nil {
		t.Fatalf("SetTaskMembers failed: %v", err)
	}
	testutil.SeedTask(t, s, "u3")

	tests := []struct {
		name    string
		filter  store.TaskFilter
		wantIDs []string
	}{
		{"owner or member", store.TaskFilter{UserID: "u1"}, []string{group.ID, personal.ID}},
		{"member only", store.TaskFilter{UserID: "u2"}, []string{group.ID}},
		{"kind", store.TaskFilter{UserID: "u1", Kind: kindPtr(model.KindPersonal)}, []string{personal.ID}},
		{"nobody", store.TaskFilter{UserID: "u9"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.GetTasks(ctx, tt.filter)
			if err != nil {
				t.Fatalf("GetTasks failed: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Expected %d tasks, got %d", len(tt.wantIDs), len(got))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("got[%d].ID = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}

	got, err := s.GetTaskByID(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if len(got.Members) != 2 || got.Members[0] != "u1" || got.Members[1] != "u2" {
		t.Errorf("Unexpected members: %v", got.Members)
	}
}

func TestGetDueTasks(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	due, _ := testutil.SeedTask(t, s, "u1") // deadline 2024-05-10
	done, _ := testutil.SeedTask(t, s, "u1")
	if err := s.UpdateTaskCompleted(ctx, done.ID, true); err != nil {
		t.Fatalf("UpdateTaskCompleted failed: %v", err)
	}

	got, err := s.GetDueTasks(ctx, "2024-05-10")
	if err != nil {
		t.Fatalf("GetDueTasks failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != due.ID {
		t.Fatalf("Expected only the incomplete task, got %+v", got)
	}

	got, err = s.GetDueTasks(ctx, "2024-05-09")
	if err != nil {
		t.Fatalf("GetDueTasks failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no due tasks before the deadline, got %d", len(got))
	}
}

func TestWithTxRollsBack(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	task, subs := testutil.SeedTask(t, s, "u1", "A")
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Store) error {
		if err := tx.UpdateSubtaskCompleted(ctx, subs[0].ID, true); err != nil {
			return err
		}
		if err := tx.UpdateTaskCompleted(ctx, task.ID, true); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	got, err := s.GetTaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if got.Completed {
		t.Error("Expected task update to be rolled back")
	}
	sub, err := s.GetSubtaskByID(ctx, subs[0].ID)
	if err != nil {
		t.Fatalf("GetSubtaskByID failed: %v", err)
	}
	if sub.Completed {
		t.Error("Expected subtask update to be rolled back")
	}
}

func TestWithTxNested(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	task, _ := testutil.SeedTask(t, s, "u1")

	err := s.WithTx(ctx, func(tx store.Store) error {
		// SetTaskMembers opens its own transaction; it must join this one.
		if err := tx.SetTaskMembers(ctx, task.ID, []string{"u2"}); err != nil {
			return err
		}
		return tx.WithTx(ctx, func(inner store.Store) error {
			return inner.UpdateTaskCompleted(ctx, task.ID, true)
		})
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	members, err := s.GetTaskMembers(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTaskMembers failed: %v", err)
	}
	if len(members) != 1 || members[0] != "u2" {
		t.Errorf("Unexpected members: %v", members)
	}
}

func TestNotifications(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	task, _ := testutil.SeedTask(t, s, "u1")
	n := model.Notification{
		TaskID:  task.ID,
		UserID:  "u1",
		Channel: model.ChannelPersonalTaskAdded,
		Title:   "Tugas baru",
	}
	if err := s.CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	unread, err := s.GetNotificationsForUser(ctx, "u1", true)
	if err != nil {
		t.Fatalf("GetNotificationsForUser failed: %v", err)
	}
	if len(unread) != 1 {
		t.Fatalf("Expected 1 unread notification, got %d", len(unread))
	}
	if unread[0].Channel != model.ChannelPersonalTaskAdded {
		t.Errorf("Channel = %s, want %s", unread[0].Channel, model.ChannelPersonalTaskAdded)
	}

	if err := s.MarkNotificationRead(ctx, unread[0].ID); err != nil {
		t.Fatalf("MarkNotificationRead failed: %v", err)
	}
	if err := s.MarkNotificationRead(ctx, unread[0].ID); err != nil {
		t.Fatalf("Repeated MarkNotificationRead failed: %v", err)
	}

	unread, err = s.GetNotificationsForUser(ctx, "u1", true)
	if err != nil {
		t.Fatalf("GetNotificationsForUser failed: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("Expected no unread notifications, got %d", len(unread))
	}

	if err := s.MarkNotificationRead(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func kindPtr(k model.Kind) *model.Kind { return &k }
