package cli

import (
	"fmt"
	"strings"

	"github.com/nhle/taskly/internal/engine"
	"github.com/nhle/taskly/internal/model"
	"github.com/nhle/taskly/internal/theme"
)

// renderBuckets draws both buckets as bordered panels. today colors
// overdue and due-today deadlines.
func renderBuckets(b engine.Buckets, today string) string {
	return strings.Join([]string{
		renderBucket("In progress", b.InProgress, today),
		renderBucket("Completed", b.Completed, today),
	}, "\n")
}

func renderBucket(title string, tasks []model.TaskWithSubtasks, today string) string {
	var sb strings.Builder
	sb.WriteString(theme.HeaderStyle.Render(fmt.Sprintf("%s (%d)", title, len(tasks))))
	sb.WriteString("\n")

	if len(tasks) == 0 {
		sb.WriteString(theme.HintStyle.Render("no tasks"))
		return theme.PanelStyle.Render(sb.String())
	}

	for i, t := range tasks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(renderTask(t, today))
	}
	return theme.PanelStyle.Render(sb.String())
}

func renderTask(t model.TaskWithSubtasks, today string) string {
	complete := engine.IsComplete(t.Task, t.Subtasks)

	line := fmt.Sprintf("%s %s %s %s",
		theme.CheckMark(complete),
		t.Title,
		theme.KindLabelStyle(t.Kind).Render(string(t.Kind)),
		theme.DeadlineStyle(t.Deadline, today, complete).Render(t.Deadline),
	)

	lines := []string{theme.TaskStyle.Render(line)}
	if len(t.Subtasks) > 0 {
		done := 0
		for _, s := range t.Subtasks {
			if s.Completed {
				done++
			}
		}
		lines[0] += " " + theme.HintStyle.Render(fmt.Sprintf("%d/%d", done, len(t.Subtasks)))
	}
	lines = append(lines, theme.SubtaskStyle.Render(theme.HintStyle.Render(t.ID)))

	for _, s := range t.Subtasks {
		lines = append(lines, theme.SubtaskStyle.Render(
			fmt.Sprintf("%s %s %s", theme.CheckMark(s.Completed), s.Title, theme.HintStyle.Render(s.ID)),
		))
	}
	return strings.Join(lines, "\n")
}
