package engine

import "github.com/nhle/taskly/internal/model"

// Buckets splits tasks by completion. Each input task lands in exactly
// one bucket, in input order.
type Buckets struct {
	InProgress []model.TaskWithSubtasks `json:"inProgress"`
	Completed  []model.TaskWithSubtasks `json:"completed"`
}

// Classify partitions tasks. A task with subtasks is completed iff every
// subtask is completed; a task without subtasks follows its own stored
// flag. Classify is pure and never fails.
func Classify(tasks []model.Task, subtasksByTask map[string][]model.Subtask) Buckets {
	b := Buckets{
		InProgress: []model.TaskWithSubtasks{},
		Completed:  []model.TaskWithSubtasks{},
	}
	for _, t := range tasks {
		subs := subtasksByTask[t.ID]
		entry := withSubtasks(t, subs)
		if IsComplete(t, subs) {
			b.Completed = append(b.Completed, entry)
		} else {
			b.InProgress = append(b.InProgress, entry)
		}
	}
	return b
}

// IsComplete reports the effective completion of a task given its subtasks.
func IsComplete(t model.Task, subs []model.Subtask) bool {
	if len(subs) == 0 {
		return t.Completed
	}
	return countDone(subs) == len(subs)
}

func withSubtasks(t model.Task, subs []model.Subtask) model.TaskWithSubtasks {
	if subs == nil {
		subs = []model.Subtask{}
	}
	return model.TaskWithSubtasks{Task: t, Subtasks: subs}
}
