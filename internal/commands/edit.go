package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskflow/internal/models"
	"github.com/balkashynov/taskflow/internal/parser"
)

func newEditCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <task_id>",
		Short: "Edit an existing task",
		Long: `Edit fields of an existing task. Only the flags you pass are changed.

Usage:
  taskflow edit k3f9 --priority urgent --due tomorrow
  taskflow edit k3f9 --status in-progress
  taskflow edit k3f9 --clear-due`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.app.RequireUser(); err != nil {
				return notSignedIn(err)
			}

			task, err := resolveTask(e.app.Tasks.Tasks(), args[0])
			if err != nil {
				return err
			}

			now := e.clock()
			patch, err := patchFromFlags(cmd, now)
			if err != nil {
				return err
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to change. Pass at least one of --title, --description, --category, --priority, --status, --due, --clear-due")
			}

			updated, err := e.app.Tasks.Update(cmd.Context(), task.ID, patch)
			if err != nil {
				return err
			}
			if updated == nil {
				return fmt.Errorf("%w: %s", ErrTaskNotFound, task.ID)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Updated task %s: %s\n", updated.ID, updated.Title)
			printTaskDetails(out, *updated, now)
			return nil
		},
	}

	cmd.Flags().StringP("title", "t", "", "New title")
	cmd.Flags().StringP("description", "d", "", "New description")
	cmd.Flags().StringP("category", "c", "", "Category: work, personal, shopping, health, learning, other")
	cmd.Flags().StringP("priority", "p", "", "Priority: low, medium, high, urgent, or 1-4")
	cmd.Flags().StringP("status", "s", "", "Status: todo, in-progress, completed")
	cmd.Flags().String("due", "", "Due date: dd/mm/yyyy, yyyy-mm-dd, today, tomorrow, X days, X hours, X weeks")
	cmd.Flags().Bool("clear-due", false, "Remove the due date")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	return cmd
}

func patchFromFlags(cmd *cobra.Command, now time.Time) (models.TaskPatch, error) {
	var patch models.TaskPatch
	flags := cmd.Flags()

	if flags.Changed("title") {
		title, _ := flags.GetString("title")
		title = strings.TrimSpace(title)
		if title == "" {
			return patch, fmt.Errorf("title cannot be empty")
		}
		patch.Title = &title
	}
	if flags.Changed("description") {
		description, _ := flags.GetString("description")
		patch.Description = &description
	}
	if flags.Changed("category") {
		v, _ := flags.GetString("category")
		category, err := parser.ParseCategory(v)
		if err != nil {
			return patch, err
		}
		patch.Category = &category
	}
	if flags.Changed("priority") {
		v, _ := flags.GetString("priority")
		priority, err := parser.ParsePriority(v)
		if err != nil {
			return patch, err
		}
		patch.Priority = &priority
	}
	if flags.Changed("status") {
		v, _ := flags.GetString("status")
		status, err := parser.ParseStatus(v)
		if err != nil {
			return patch, err
		}
		patch.Status = &status
	}
	if flags.Changed("due") {
		v, _ := flags.GetString("due")
		due, err := parser.ParseDueDate(v, now)
		if err != nil {
			return patch, fmt.Errorf("error parsing due date: %w", err)
		}
		if due == nil {
			patch.ClearDueDate = true
		} else {
			patch.DueDate = due
		}
	}
	if clearDue, _ := flags.GetBool("clear-due"); clearDue {
		patch.ClearDueDate = true
	}
	return patch, nil
}
