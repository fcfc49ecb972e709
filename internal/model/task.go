package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for tanggal and deadline.
const DateLayout = "2006-01-02"

// Kind distinguishes personal tasks from group tasks.
type Kind string

const (
	KindPersonal Kind = "pribadi"
	KindGroup    Kind = "kelompok"
)

// Valid reports whether k is a known task kind.
func (k Kind) Valid() bool {
	return k == KindPersonal || k == KindGroup
}

// Task is a unit of work owned by one user (personal) or shared by a
// set of members (group).
type Task struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"nama_tugas" db:"nama_tugas"`
	StartDate string    `json:"tanggal" db:"tanggal"`
	Deadline  string    `json:"deadline" db:"deadline"`
	Completed bool      `json:"is_completed" db:"is_completed"`
	Kind      Kind      `json:"jenis" db:"jenis"`
	OwnerID   string    `json:"user_id,omitempty" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Members is populated for group tasks by queries that join
	// task_members.
	Members []string `json:"anggota,omitempty" db:"-"`
}

// Audience returns the user ids that should hear about this task.
func (t Task) Audience() []string {
	if t.Kind == KindGroup {
		return t.Members
	}
	if t.OwnerID == "" {
		return nil
	}
	return []string{t.OwnerID}
}

// Subtask is a child work item. Its lifecycle is bound to the parent
// task (CASCADE delete).
type Subtask struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"nama_sub_tugas" db:"nama_sub_tugas"`
	TaskID    string    `json:"tugas_id" db:"tugas_id"`
	Completed bool      `json:"is_completed" db:"is_completed"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TaskWithSubtasks is a task together with its subtasks in display order.
type TaskWithSubtasks struct {
	Task
	Subtasks []Subtask `json:"subtasks"`
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}
