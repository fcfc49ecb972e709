package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/taskly/internal/engine"
	"github.com/nhle/taskly/internal/model"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create, complete and list tasks",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a task with optional subtasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskCreate,
}

var taskToggleCmd = &cobra.Command{
	Use:   "toggle <subtask-id>",
	Short: "Mark a subtask done (or not done with --undo)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskToggle,
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <task-id> <done|open>",
	Short: "Set a task's completion flag directly",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskStatus,
}

var taskAddSubtaskCmd = &cobra.Command{
	Use:   "add-subtask <task-id> <title>",
	Short: "Append a subtask to a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskAddSubtask,
}

var taskListCmd = &cobra.Command{
	Use:   "list <user-id>",
	Short: "List a user's tasks split into in progress and completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskList,
}

func init() {
	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskToggleCmd)
	taskCmd.AddCommand(taskStatusCmd)
	taskCmd.AddCommand(taskAddSubtaskCmd)
	taskCmd.AddCommand(taskListCmd)

	today := time.Now().Format(model.DateLayout)
	taskCreateCmd.Flags().String("start", today, "Start date (YYYY-MM-DD)")
	taskCreateCmd.Flags().String("deadline", today, "Deadline (YYYY-MM-DD)")
	taskCreateCmd.Flags().String("kind", "personal", "Task kind: personal or group")
	taskCreateCmd.Flags().String("owner", "", "Owner user id")
	taskCreateCmd.Flags().StringSlice("member", nil, "Group member user id (repeatable)")
	taskCreateCmd.Flags().StringArray("subtask", nil, "Subtask title (repeatable, kept in order)")

	taskToggleCmd.Flags().Bool("undo", false, "Mark the subtask as not done")

	taskListCmd.Flags().String("kind", "", "Only list personal or group tasks")
}

// parseKind accepts both the English and the stored kind names.
func parseKind(s string) (model.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "personal", string(model.KindPersonal):
		return model.KindPersonal, nil
	case "group", string(model.KindGroup):
		return model.KindGroup, nil
	default:
		return "", fmt.Errorf("unknown kind %q: want personal or group", s)
	}
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	kindFlag, _ := cmd.Flags().GetString("kind")
	kind, err := parseKind(kindFlag)
	if err != nil {
		return err
	}
	start, _ := cmd.Flags().GetString("start")
	deadline, _ := cmd.Flags().GetString("deadline")
	owner, _ := cmd.Flags().GetString("owner")
	members, _ := cmd.Flags().GetStringSlice("member")
	subtasks, _ := cmd.Flags().GetStringArray("subtask")

	ctx := commandContext(cmd)
	a, err := openApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	task, err := a.engine.CreateTask(ctx, engine.NewTask{
		Title:     args[0],
		StartDate: start,
		Deadline:  deadline,
		Kind:      kind,
		OwnerID:   owner,
		Members:   members,
		Subtasks:  subtasks,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created task %s\n", task.ID)
	for _, s := range task.Subtasks {
		fmt.Fprintf(out, "  subtask %s  %s\n", s.ID, s.Title)
	}
	return nil
}

func runTaskToggle(cmd *cobra.Command, args []string) error {
	undo, _ := cmd.Flags().GetBool("undo")

	ctx := commandContext(cmd)
	a, err := openApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	state, err := a.engine.ToggleSubtask(ctx, args[0], !undo)
	if err != nil {
		return err
	}

	printToggle(cmd.OutOrStdout(), state)
	return nil
}

func printToggle(w io.Writer, state engine.RecomputedState) {
	fmt.Fprintf(w, "Subtask %s: done=%t (%d/%d)\n", state.SubtaskID, state.SubtaskCompleted, state.Done, state.Total)
	if state.Transitioned {
		fmt.Fprintf(w, "Task %s is now complete\n", state.TaskID)
	}
}

func runTaskStatus(cmd *cobra.Command, args []string) error {
	var completed bool
	switch args[1] {
	case "done":
		completed = true
	case "open":
		completed = false
	default:
		return fmt.Errorf("unknown status %q: want done or open", args[1])
	}

	ctx := commandContext(cmd)
	a, err := openApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.engine.UpdateTaskStatus(ctx, args[0], completed); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %s marked %s\n", args[0], args[1])
	return nil
}

func runTaskAddSubtask(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	sub, err := a.engine.AddSubtask(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added subtask %s\n", sub.ID)
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	filter := engine.ListFilter{UserID: args[0]}
	if kindFlag, _ := cmd.Flags().GetString("kind"); kindFlag != "" {
		kind, err := parseKind(kindFlag)
		if err != nil {
			return err
		}
		filter.Kind = &kind
	}

	ctx := commandContext(cmd)
	a, err := openApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	buckets, err := a.engine.ListBuckets(ctx, filter)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderBuckets(buckets, time.Now().Format(model.DateLayout)))
	return nil
}
