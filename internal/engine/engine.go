// Package engine owns the task completion rules: creating tasks with
// subtasks, toggling subtasks, recomputing the parent's completion flag,
// and classifying tasks into in-progress and completed buckets.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nhle/taskly/internal/model"
	"github.com/nhle/taskly/internal/store"
)

// Notifier receives task events. Publish must not block; delivery
// failures are the notifier's concern.
type Notifier interface {
	Publish(event model.TaskEvent)
}

type noopNotifier struct{}

func (noopNotifier) Publish(model.TaskEvent) {}

// Engine applies the completion rules against a store.
type Engine struct {
	logger zerolog.Logger
	store  store.Store
	notify Notifier
}

// New creates an Engine. A nil notifier discards events.
func New(logger zerolog.Logger, s store.Store, n Notifier) *Engine {
	if n == nil {
		n = noopNotifier{}
	}
	return &Engine{
		logger: logger.With().Str("component", "engine").Logger(),
		store:  s,
		notify: n,
	}
}

// NewTask holds the input of CreateTask.
type NewTask struct {
	Title     string
	StartDate string
	Deadline  string
	Kind      model.Kind
	OwnerID   string
	Members   []string
	Subtasks  []string
}

// RecomputedState is the outcome of ToggleSubtask.
type RecomputedState struct {
	SubtaskID        string `json:"sub_tugas_id"`
	SubtaskCompleted bool   `json:"sub_tugas_is_completed"`
	TaskID           string `json:"tugas_id"`
	TaskCompleted    bool   `json:"is_completed"`

	// Transitioned is true when this call moved the parent from
	// incomplete to complete.
	Transitioned bool `json:"transitioned"`

	Total int `json:"total"`
	Done  int `json:"done"`
}

// CreateTask validates in and persists the task with its subtasks in one
// transaction. Subtasks keep their input order.
func (e *Engine) CreateTask(ctx context.Context, in NewTask) (model.TaskWithSubtasks, error) {
	task, err := validateNewTask(in)
	if err != nil {
		return model.TaskWithSubtasks{}, err
	}

	subs := make([]model.Subtask, 0, len(in.Subtasks))
	err = e.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateTask(ctx, &task); err != nil {
			return &PersistenceError{Op: "saving task", Err: err}
		}
		if task.Kind == model.KindGroup && len(task.Members) > 0 {
			if err := tx.SetTaskMembers(ctx, task.ID, task.Members); err != nil {
				return &PersistenceError{Op: "saving task members", Err: err}
			}
		}
		for i, title := range in.Subtasks {
			sub := model.Subtask{
				Title:     strings.TrimSpace(title),
				TaskID:    task.ID,
				SortOrder: i + 1,
			}
			if err := tx.CreateSubtask(ctx, &sub); err != nil {
				return &PersistenceError{Op: fmt.Sprintf("saving subtask %d", i), Err: err}
			}
			subs = append(subs, sub)
		}
		return nil
	})
	if err != nil {
		e.logger.Error().Err(err).Str("title", task.Title).Msg("failed to create task")
		return model.TaskWithSubtasks{}, storeErr("creating task", "task", task.ID, err)
	}

	e.logger.Info().
		Str("task_id", task.ID).
		Str("kind", string(task.Kind)).
		Int("subtasks", len(subs)).
		Msg("created task")

	channel := model.ChannelPersonalTaskAdded
	if task.Kind == model.KindGroup {
		channel = model.ChannelGroupTaskAdded
	}
	e.notify.Publish(model.TaskEvent{
		Channel:  channel,
		TaskID:   task.ID,
		Title:    task.Title,
		Deadline: task.Deadline,
		Audience: task.Audience(),
	})

	return model.TaskWithSubtasks{Task: task, Subtasks: subs}, nil
}

// ToggleSubtask sets a subtask's completion flag and recomputes its
// parent. The parent becomes complete once every sibling is complete; it
// is never reverted to incomplete here, only by UpdateTaskStatus.
func (e *Engine) ToggleSubtask(ctx context.Context, subtaskID string, completed bool) (RecomputedState, error) {
	var state RecomputedState
	err := e.store.WithTx(ctx, func(tx store.Store) error {
		sub, err := tx.GetSubtaskByID(ctx, subtaskID)
		if err != nil {
			return storeErr("loading subtask", "subtask", subtaskID, err)
		}

		// Locking the parent serialises concurrent toggles of siblings.
		parent, err := tx.GetTaskByID(ctx, sub.TaskID)
		if err != nil {
			return storeErr("loading parent task", "task", sub.TaskID, err)
		}

		if err := tx.UpdateSubtaskCompleted(ctx, sub.ID, completed); err != nil {
			return storeErr("updating subtask", "subtask", sub.ID, err)
		}

		siblings, err := tx.GetSubtasksByParent(ctx, parent.ID)
		if err != nil {
			return storeErr("loading sibling subtasks", "task", parent.ID, err)
		}

		state = RecomputedState{
			SubtaskID:        sub.ID,
			SubtaskCompleted: completed,
			TaskID:           parent.ID,
			TaskCompleted:    parent.Completed,
			Total:            len(siblings),
			Done:             countDone(siblings),
		}

		allDone := state.Total > 0 && state.Done == state.Total
		if allDone && !parent.Completed {
			if err := tx.UpdateTaskCompleted(ctx, parent.ID, true); err != nil {
				return storeErr("completing parent task", "task", parent.ID, err)
			}
			state.TaskCompleted = true
			state.Transitioned = true
		}
		return nil
	})
	if err != nil {
		e.logger.Error().Err(err).Str("subtask_id", subtaskID).Msg("failed to toggle subtask")
		return RecomputedState{}, storeErr("toggling subtask", "subtask", subtaskID, err)
	}

	e.logger.Debug().
		Str("subtask_id", state.SubtaskID).
		Bool("completed", completed).
		Int("done", state.Done).
		Int("total", state.Total).
		Msg("toggled subtask")
	if state.Transitioned {
		e.logger.Info().Str("task_id", state.TaskID).Msg("task completed by its subtasks")
	}
	return state, nil
}

// UpdateTaskStatus overrides a task's completion flag directly. It does
// not touch the task's subtasks.
func (e *Engine) UpdateTaskStatus(ctx context.Context, taskID string, completed bool) error {
	if err := e.store.UpdateTaskCompleted(ctx, taskID, completed); err != nil {
		err = storeErr("updating task status", "task", taskID, err)
		e.logger.Error().Err(err).Str("task_id", taskID).Msg("failed to update task status")
		return err
	}
	e.logger.Info().
		Str("task_id", taskID).
		Bool("completed", completed).
		Msg("updated task status")
	return nil
}

// AddSubtask appends an incomplete subtask to an existing task. The
// parent's completion flag is left as it is.
func (e *Engine) AddSubtask(ctx context.Context, taskID, title string) (model.Subtask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Subtask{}, invalid("nama_sub_tugas", "must not be empty")
	}

	sub := model.Subtask{Title: title, TaskID: taskID}
	err := e.store.WithTx(ctx, func(tx store.Store) error {
		if _, err := tx.GetTaskByID(ctx, taskID); err != nil {
			return storeErr("loading task", "task", taskID, err)
		}
		if err := tx.CreateSubtask(ctx, &sub); err != nil {
			return &PersistenceError{Op: "saving subtask", Err: err}
		}
		return nil
	})
	if err != nil {
		return model.Subtask{}, storeErr("adding subtask", "task", taskID, err)
	}

	e.logger.Debug().
		Str("task_id", taskID).
		Str("subtask_id", sub.ID).
		Msg("added subtask")
	return sub, nil
}

// GetSubtasks returns a task's subtasks in display order.
func (e *Engine) GetSubtasks(ctx context.Context, taskID string) ([]model.Subtask, error) {
	if _, err := e.store.GetTaskByID(ctx, taskID); err != nil {
		return nil, storeErr("loading task", "task", taskID, err)
	}
	subs, err := e.store.GetSubtasksByParent(ctx, taskID)
	if err != nil {
		return nil, storeErr("loading subtasks", "task", taskID, err)
	}
	if subs == nil {
		subs = []model.Subtask{}
	}
	return subs, nil
}

// SetMembers replaces the members of a group task.
func (e *Engine) SetMembers(ctx context.Context, taskID string, userIDs []string) error {
	err := e.store.WithTx(ctx, func(tx store.Store) error {
		task, err := tx.GetTaskByID(ctx, taskID)
		if err != nil {
			return storeErr("loading task", "task", taskID, err)
		}
		if task.Kind != model.KindGroup {
			return invalid("anggota", "only group tasks have members")
		}
		if err := tx.SetTaskMembers(ctx, taskID, normalizeMembers(userIDs)); err != nil {
			return &PersistenceError{Op: "saving task members", Err: err}
		}
		return nil
	})
	if err != nil {
		return storeErr("setting members", "task", taskID, err)
	}
	e.logger.Info().
		Str("task_id", taskID).
		Int("members", len(userIDs)).
		Msg("updated task members")
	return nil
}

// GetMembers returns the members of a group task.
func (e *Engine) GetMembers(ctx context.Context, taskID string) ([]string, error) {
	task, err := e.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, storeErr("loading task", "task", taskID, err)
	}
	if task.Members == nil {
		return []string{}, nil
	}
	return task.Members, nil
}

// ListFilter selects the tasks returned by ListTasks and ListBuckets.
type ListFilter struct {
	UserID string
	Kind   *model.Kind
}

// ListTasks loads the tasks a user owns or belongs to, with subtasks.
func (e *Engine) ListTasks(ctx context.Context, filter ListFilter) ([]model.TaskWithSubtasks, error) {
	tasks, subs, err := e.load(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]model.TaskWithSubtasks, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, withSubtasks(t, subs[t.ID]))
	}
	return out, nil
}

// ListBuckets loads the tasks a user owns or belongs to and classifies them.
func (e *Engine) ListBuckets(ctx context.Context, filter ListFilter) (Buckets, error) {
	tasks, subs, err := e.load(ctx, filter)
	if err != nil {
		return Buckets{}, err
	}
	return Classify(tasks, subs), nil
}

// DueTasks returns incomplete tasks with a deadline on or before the
// given date.
func (e *Engine) DueTasks(ctx context.Context, onOrBefore string) ([]model.Task, error) {
	if _, err := model.ParseDate(onOrBefore); err != nil {
		return nil, invalid("deadline", err.Error())
	}
	tasks, err := e.store.GetDueTasks(ctx, onOrBefore)
	if err != nil {
		return nil, storeErr("loading due tasks", "task", "", err)
	}
	return tasks, nil
}

func (e *Engine) load(ctx context.Context, filter ListFilter) ([]model.Task, map[string][]model.Subtask, error) {
	if filter.Kind != nil && !filter.Kind.Valid() {
		return nil, nil, invalid("jenis", fmt.Sprintf("unknown kind %q", *filter.Kind))
	}
	tasks, err := e.store.GetTasks(ctx, store.TaskFilter{UserID: filter.UserID, Kind: filter.Kind})
	if err != nil {
		return nil, nil, storeErr("loading tasks", "task", "", err)
	}

	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	subs, err := e.store.GetSubtasksForTasks(ctx, ids)
	if err != nil {
		return nil, nil, storeErr("loading subtasks", "task", "", err)
	}
	return tasks, subs, nil
}

func validateNewTask(in NewTask) (model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Task{}, invalid("nama_tugas", "must not be empty")
	}
	start, err := model.ParseDate(in.StartDate)
	if err != nil {
		return model.Task{}, invalid("tanggal", err.Error())
	}
	deadline, err := model.ParseDate(in.Deadline)
	if err != nil {
		return model.Task{}, invalid("deadline", err.Error())
	}
	if deadline.Before(start) {
		return model.Task{}, invalid("deadline", "must not be before tanggal")
	}

	kind := in.Kind
	if kind == "" {
		kind = model.KindPersonal
	}
	if !kind.Valid() {
		return model.Task{}, invalid("jenis", fmt.Sprintf("unknown kind %q", kind))
	}
	if kind == model.KindPersonal && len(in.Members) > 0 {
		return model.Task{}, invalid("anggota", "only group tasks have members")
	}

	for i, s := range in.Subtasks {
		if strings.TrimSpace(s) == "" {
			return model.Task{}, invalid(fmt.Sprintf("sub_tugas[%d]", i), "must not be empty")
		}
	}

	task := model.Task{
		Title:     title,
		StartDate: start.Format(model.DateLayout),
		Deadline:  deadline.Format(model.DateLayout),
		Kind:      kind,
		OwnerID:   strings.TrimSpace(in.OwnerID),
	}
	if kind == model.KindGroup {
		task.Members = normalizeMembers(in.Members)
	}
	return task, nil
}

// normalizeMembers trims ids, drops blanks, and removes duplicates while
// keeping first-seen order.
func normalizeMembers(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func countDone(subs []model.Subtask) int {
	n := 0
	for _, s := range subs {
		if s.Completed {
			n++
		}
	}
	return n
}
