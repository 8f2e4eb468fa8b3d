package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskflow/internal/models"
	"github.com/balkashynov/taskflow/internal/parser"
	"github.com/balkashynov/taskflow/internal/tasks"
	"github.com/balkashynov/taskflow/internal/tui"
)

func newListCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Long: `List tasks with optional filters and sorting.

Filters combine: every given filter must match.
  --due today     due on today's date
  --due week      due within the next 7 days
  --due overdue   past due and not completed

Sort options: dueDate, priority, created (default), alphabetical.
Use -i to open the interactive dashboard.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := e.app.RequireUser()
			if err != nil {
				return notSignedIn(err)
			}

			filters, err := filtersFromFlags(cmd)
			if err != nil {
				return err
			}
			e.app.Tasks.SetFilters(filters)

			sortName, _ := cmd.Flags().GetString("sort")
			sortBy, ok := tasks.ParseSortOption(sortName)
			if !ok {
				return fmt.Errorf("invalid sort option '%s'. Use: dueDate, priority, created, or alphabetical", sortName)
			}
			e.app.Tasks.SetSort(sortBy)

			if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
				return tui.RunDashboard(cmd.Context(), e.app.Tasks, user, e.now)
			}

			list := e.app.Tasks.Filtered()
			out := cmd.OutOrStdout()

			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}

			if len(e.app.Tasks.Tasks()) == 0 {
				fmt.Fprintln(out, "No tasks found. Use 'taskflow add \"task description\"' to create your first task.")
				return nil
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "No tasks match the given filters.")
				return nil
			}

			now := e.clock()
			if group, _ := cmd.Flags().GetBool("group"); group {
				grouped := tasks.Group(list)
				for _, status := range models.Statuses {
					if len(grouped[status]) == 0 {
						continue
					}
					fmt.Fprintf(out, "\n%s (%d)\n", statusTitle(status), len(grouped[status]))
					printTaskTable(out, grouped[status], now)
				}
				fmt.Fprintln(out)
			} else {
				printTaskTable(out, list, now)
			}
			printStatsLine(out, e.app.Tasks.Stats())
			return nil
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().String("sort", string(models.SortCreated), "Sort by: dueDate, priority, created, alphabetical")
	cmd.Flags().Bool("json", false, "JSON output")
	cmd.Flags().BoolP("group", "g", false, "Group tasks by status")
	cmd.Flags().BoolP("interactive", "i", false, "Open the interactive dashboard")
	return cmd
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("category", "c", "", "Filter by category")
	cmd.Flags().StringP("priority", "p", "", "Filter by priority")
	cmd.Flags().StringP("status", "s", "", "Filter by status: todo, in-progress, completed")
	cmd.Flags().StringP("search", "q", "", "Filter by text in title or description")
	cmd.Flags().String("due", "", "Filter by due date: today, week, overdue")
}

func filtersFromFlags(cmd *cobra.Command) (models.FilterOptions, error) {
	var f models.FilterOptions
	flags := cmd.Flags()

	if v, _ := flags.GetString("category"); v != "" {
		category, err := parser.ParseCategory(v)
		if err != nil {
			return f, err
		}
		f.Category = category
	}
	if v, _ := flags.GetString("priority"); v != "" {
		priority, err := parser.ParsePriority(v)
		if err != nil {
			return f, err
		}
		f.Priority = priority
	}
	if v, _ := flags.GetString("status"); v != "" {
		status, err := parser.ParseStatus(v)
		if err != nil {
			return f, err
		}
		f.Status = status
	}
	if v, _ := flags.GetString("due"); v != "" {
		due, err := parser.ParseDueFilter(v)
		if err != nil {
			return f, err
		}
		f.DueDate = due
	}
	f.Search, _ = flags.GetString("search")
	return f, nil
}

func statusTitle(s models.Status) string {
	switch s {
	case models.StatusTodo:
		return "To Do"
	case models.StatusInProgress:
		return "In Progress"
	case models.StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}
