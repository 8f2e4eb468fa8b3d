package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newToggleCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle <task_id>",
		Aliases: []string{"done"},
		Short:   "Toggle a task between todo and completed",
		Long: `Mark a task as completed, or a completed task back to todo.
In-progress tasks become completed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.app.RequireUser(); err != nil {
				return notSignedIn(err)
			}

			task, err := resolveTask(e.app.Tasks.Tasks(), args[0])
			if err != nil {
				return err
			}

			updated, err := e.app.Tasks.ToggleStatus(cmd.Context(), task.ID)
			if err != nil {
				return err
			}
			if updated == nil {
				return fmt.Errorf("%w: %s", ErrTaskNotFound, task.ID)
			}

			out := cmd.OutOrStdout()
			if updated.IsCompleted() {
				fmt.Fprintf(out, "✅ Marked task %s as done: %s\n", updated.ID, updated.Title)
				if updated.CompletedAt != nil {
					fmt.Fprintf(out, "Completed at: %s\n", updated.CompletedAt.Local().Format("15:04:05"))
				}
			} else {
				fmt.Fprintf(out, "↩️  Marked task %s back to todo: %s\n", updated.ID, updated.Title)
			}
			return nil
		},
	}
}

func newRmCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task_id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.app.RequireUser(); err != nil {
				return notSignedIn(err)
			}

			task, err := resolveTask(e.app.Tasks.Tasks(), args[0])
			if err != nil {
				return err
			}

			removed, err := e.app.Tasks.Delete(cmd.Context(), task.ID)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("%w: %s", ErrTaskNotFound, task.ID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted task %s: %s\n", task.ID, task.Title)
			return nil
		},
	}
}
