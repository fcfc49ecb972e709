package model

import (
	"fmt"
	"time"
)

// Channel identifies the kind of notification, matching the client's
// notification channel ids.
type Channel string

const (
	ChannelPersonalTaskAdded Channel = "personaltask_added"
	ChannelGroupTaskAdded    Channel = "grouptask_added"
	ChannelDeadlinePersonal  Channel = "deadline_personal"
	ChannelDeadlineGroup     Channel = "deadline_group"
)

// Notification is an alert addressed to a single user about a task.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// TaskID links this notification to the originating task.
	TaskID string `json:"tugas_id" db:"tugas_id"`

	// UserID is the recipient.
	UserID string `json:"user_id" db:"user_id"`

	Channel Channel `json:"channel" db:"channel"`
	Title   string  `json:"title" db:"title"`
	Body    string  `json:"body" db:"body"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read" db:"is_read"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TaskEvent is published when something about a task should reach its
// audience, e.g. on creation or when the deadline approaches.
type TaskEvent struct {
	Channel  Channel
	TaskID   string
	Title    string
	Deadline string
	Audience []string
}

// Message renders the notification title and body for the event.
func (e TaskEvent) Message() (title, body string) {
	switch e.Channel {
	case ChannelPersonalTaskAdded:
		title = "Tugas Baru Ditambahkan"
	case ChannelGroupTaskAdded:
		title = "Tugas Kelompok Baru Ditambahkan"
	case ChannelDeadlinePersonal:
		title = "Pengingat Deadline Tugas Pribadi"
	case ChannelDeadlineGroup:
		title = "Pengingat Deadline Tugas Kelompok"
	default:
		title = "Taskly"
	}

	switch e.Channel {
	case ChannelDeadlinePersonal, ChannelDeadlineGroup:
		body = fmt.Sprintf("Tugas %q akan segera jatuh tempo pada %s.", e.Title, e.Deadline)
	default:
		body = fmt.Sprintf("Tugas %q telah ditambahkan. Deadline: %s.", e.Title, e.Deadline)
	}
	return title, body
}
