package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/balkashynov/taskflow/internal/models"
	"github.com/balkashynov/taskflow/internal/parser"
)

// printTaskDetails prints the metadata lines under a created or updated task
func printTaskDetails(out io.Writer, task models.Task, now time.Time) {
	fmt.Fprintf(out, "  Category: %s\n", task.Category)
	fmt.Fprintf(out, "  Priority: %s\n", task.Priority)
	fmt.Fprintf(out, "  Status: %s\n", task.Status)
	if task.DueDate != nil {
		fmt.Fprintf(out, "  Due: %s\n", parser.FormatDueDate(task.DueDate, now))
	}
	if task.Description != "" {
		fmt.Fprintf(out, "  Description: %s\n", task.Description)
	}
}

// printTaskTable prints tasks as a fixed-width table
func printTaskTable(out io.Writer, list []models.Task, now time.Time) {
	fmt.Fprintf(out, "%-8s %-11s %-40s %-9s %-8s %s\n", "ID", "STATUS", "TITLE", "CATEGORY", "PRIORITY", "DUE")
	fmt.Fprintln(out, strings.Repeat("-", 96))

	for _, task := range list {
		due := ""
		if task.DueDate != nil {
			due = task.DueDate.In(now.Location()).Format("02/01/2006")
			if task.IsOverdue(now) {
				due += " (overdue)"
			}
		}

		fmt.Fprintf(out, "%-8s %-11s %-40s %-9s %-8s %s\n",
			task.ID,
			task.Status,
			truncate(task.Title, 38),
			task.Category,
			task.Priority,
			due)
	}
}

// printStatsLine prints the one-line summary under a listing
func printStatsLine(out io.Writer, stats models.TaskStats) {
	fmt.Fprintf(out, "%d total, %d completed, %d pending, %d overdue\n",
		stats.Total, stats.Completed, stats.Pending, stats.Overdue)
}

// truncate shortens s to limit runes, ending with "..."
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
