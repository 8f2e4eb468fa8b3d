package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskflow/internal/models"
	"github.com/balkashynov/taskflow/internal/parser"
)

func newAddCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [task description]",
		Short: "Add a new task",
		Long: `Add a new task with optional metadata.

Smart parsing: taskflow add "Finish report @work +urgent due:tomorrow"

Smart parsing syntax:
  @category   - Category (work/personal/shopping/health/learning/other)
  +priority   - Priority (low/medium/high/urgent or 1-4)
  due:3days   - Due date (dd/mm/yyyy, yyyy-mm-dd, today, tomorrow, X days, X hours, X weeks)

Flags take precedence over smart syntax.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.app.RequireUser(); err != nil {
				return notSignedIn(err)
			}

			now := e.clock()
			parsed := parser.ParseTitle(strings.Join(args, " "), now)
			if len(parsed.Errors) > 0 {
				return fmt.Errorf("found issues with parsing: %s", strings.Join(parsed.Errors, "; "))
			}
			in := parsed.Input()

			// Override with explicit flags (flags take precedence)
			if err := applyInputFlags(cmd, &in, now); err != nil {
				return err
			}

			task, err := e.app.Tasks.Add(cmd.Context(), in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created task %s: %s\n", task.ID, task.Title)
			printTaskDetails(out, task, now)
			return nil
		},
	}

	cmd.Flags().StringP("category", "c", "", "Category: work, personal, shopping, health, learning, other")
	cmd.Flags().StringP("priority", "p", "", "Priority: low, medium, high, urgent, or 1-4")
	cmd.Flags().StringP("status", "s", "", "Status: todo, in-progress, completed")
	cmd.Flags().String("due", "", "Due date: dd/mm/yyyy, yyyy-mm-dd, today, tomorrow, X days, X hours, X weeks")
	cmd.Flags().StringP("description", "d", "", "Longer description")
	return cmd
}

func applyInputFlags(cmd *cobra.Command, in *models.TaskInput, now time.Time) error {
	if v, _ := cmd.Flags().GetString("category"); v != "" {
		category, err := parser.ParseCategory(v)
		if err != nil {
			return err
		}
		in.Category = category
	}
	if v, _ := cmd.Flags().GetString("priority"); v != "" {
		priority, err := parser.ParsePriority(v)
		if err != nil {
			return err
		}
		in.Priority = priority
	}
	if v, _ := cmd.Flags().GetString("status"); v != "" {
		status, err := parser.ParseStatus(v)
		if err != nil {
			return err
		}
		in.Status = status
	}
	if v, _ := cmd.Flags().GetString("due"); v != "" {
		due, err := parser.ParseDueDate(v, now)
		if err != nil {
			return fmt.Errorf("error parsing due date: %w", err)
		}
		in.DueDate = due
	}
	if v, _ := cmd.Flags().GetString("description"); v != "" {
		in.Description = v
	}
	return nil
}
