package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/taskly/internal/model"
)

// CreateNotification inserts a notification row for a single recipient.
func (s *SQLStore) CreateNotification(ctx context.Context, n model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO notifications (id, tugas_id, user_id, channel, title, body, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.TaskID, n.UserID, string(n.Channel), n.Title, n.Body,
		boolToInt(n.Read), n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// GetNotificationsForUser returns a user's notifications, newest first.
func (s *SQLStore) GetNotificationsForUser(
	ctx context.Context,
	userID string,
	unreadOnly bool,
) ([]model.Notification, error) {
	query := `
		SELECT id, tugas_id, user_id, channel, title, body, is_read, created_at
		FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += " AND is_read = 0"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.q.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying notifications for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		var read int
		if err := rows.Scan(
			&n.ID, &n.TaskID, &n.UserID, &n.Channel, &n.Title, &n.Body,
			&read, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		n.Read = read != 0
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flags a notification as seen.
func (s *SQLStore) MarkNotificationRead(ctx context.Context, id string) error {
	result, err := s.q.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ? AND is_read = 0", id)
	if err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	var n int
	if err := s.q.QueryRowxContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE id = ?", id).Scan(&n); err != nil {
		return fmt.Errorf("checking notification %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}
