package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nhle/taskly/internal/model"
)

// Outbox is the part of the store the StoreSink writes to.
type Outbox interface {
	CreateNotification(ctx context.Context, n model.Notification) error
}

// StoreSink records one notification row per audience member so clients
// can fetch them later.
type StoreSink struct {
	outbox Outbox
}

// NewStoreSink creates a sink writing to outbox.
func NewStoreSink(outbox Outbox) *StoreSink {
	return &StoreSink{outbox: outbox}
}

func (s *StoreSink) Name() string { return "store" }

// Deliver writes a notification for each recipient. It stops at the
// first failure.
func (s *StoreSink) Deliver(ctx context.Context, event model.TaskEvent) error {
	title, body := event.Message()
	for _, userID := range event.Audience {
		err := s.outbox.CreateNotification(ctx, model.Notification{
			TaskID:  event.TaskID,
			UserID:  userID,
			Channel: event.Channel,
			Title:   title,
			Body:    body,
		})
		if err != nil {
			return fmt.Errorf("notifying %s: %w", userID, err)
		}
	}
	return nil
}

// LogSink writes each event to the logger.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink logging at info level.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(_ context.Context, event model.TaskEvent) error {
	title, body := event.Message()
	s.logger.Info().
		Str("channel", string(event.Channel)).
		Str("task_id", event.TaskID).
		Strs("audience", event.Audience).
		Str("title", title).
		Msg(body)
	return nil
}
