package store

import (
	"context"
	"fmt"
	"strings"
)

// SetTaskMembers replaces all member associations for a group task.
// Blank and duplicate user ids are ignored.
func (s *SQLStore) SetTaskMembers(ctx context.Context, taskID string, userIDs []string) error {
	return s.inTx(ctx, func(tx *SQLStore) error {
		// Remove existing associations.
		if _, err := tx.q.ExecContext(ctx,
			"DELETE FROM task_members WHERE tugas_id = ?", taskID); err != nil {
			return fmt.Errorf("clearing task members: %w", err)
		}

		// Insert new associations.
		seen := make(map[string]bool, len(userIDs))
		for _, userID := range userIDs {
			userID = strings.TrimSpace(userID)
			if userID == "" || seen[userID] {
				continue
			}
			seen[userID] = true
			if _, err := tx.q.ExecContext(ctx,
				"INSERT INTO task_members (tugas_id, user_id) VALUES (?, ?)",
				taskID, userID); err != nil {
				return fmt.Errorf("adding member %s to task %s: %w", userID, taskID, err)
			}
		}
		return nil
	})
}

// GetTaskMembers returns the user ids of a task's members, sorted.
func (s *SQLStore) GetTaskMembers(ctx context.Context, taskID string) ([]string, error) {
	rows, err := s.q.QueryxContext(ctx,
		"SELECT user_id FROM task_members WHERE tugas_id = ? ORDER BY user_id", taskID)
	if err != nil {
		return nil, fmt.Errorf("querying members for task %s: %w", taskID, err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scanning member row: %w", err)
		}
		members = append(members, userID)
	}
	return members, rows.Err()
}
