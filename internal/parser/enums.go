package parser

import (
	"fmt"
	"strings"

	"github.com/balkashynov/taskflow/internal/models"
)

// ParseCategory accepts a category name in any case
func ParseCategory(s string) (models.Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range models.Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("Invalid category '%s'. Use: %s", s, joinValues(models.Categories))
}

// ParsePriority accepts a priority name, "med", or a number from 1 (low) to 4 (urgent)
func ParsePriority(s string) (models.Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "low":
		return models.PriorityLow, nil
	case "2", "medium", "med":
		return models.PriorityMedium, nil
	case "3", "high":
		return models.PriorityHigh, nil
	case "4", "urgent":
		return models.PriorityUrgent, nil
	default:
		return "", fmt.Errorf("Invalid priority '%s'. Use: low, medium, high, urgent, or 1-4", s)
	}
}

// ParseStatus accepts a status name; "done" and "progress" are shorthands
func ParseStatus(s string) (models.Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo":
		return models.StatusTodo, nil
	case "in-progress", "inprogress", "progress", "doing":
		return models.StatusInProgress, nil
	case "completed", "done":
		return models.StatusCompleted, nil
	default:
		return "", fmt.Errorf("Invalid status '%s'. Use: %s", s, joinValues(models.Statuses))
	}
}

// ParseDueFilter accepts today, week or overdue
func ParseDueFilter(s string) (models.DueFilter, error) {
	switch f := models.DueFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case models.DueToday, models.DueWeek, models.DueOverdue:
		return f, nil
	default:
		return "", fmt.Errorf("Invalid due filter '%s'. Use: today, week, or overdue", s)
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
