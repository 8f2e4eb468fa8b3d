package tasks

import (
	"time"

	"github.com/balkashynov/taskflow/internal/models"
)

// CalculateStats reduces the full task list to dashboard counters
func CalculateStats(tasks []models.Task, now time.Time) models.TaskStats {
	stats := models.TaskStats{Total: len(tasks)}
	for _, task := range tasks {
		if task.IsCompleted() {
			stats.Completed++
		} else {
			stats.Pending++
		}
		if task.IsOverdue(now) {
			stats.Overdue++
		}
	}
	return stats
}

// Group splits tasks by status, preserving order within each group
func Group(tasks []models.Task) map[models.Status][]models.Task {
	groups := make(map[models.Status][]models.Task, len(models.Statuses))
	for _, task := range tasks {
		groups[task.Status] = append(groups[task.Status], task)
	}
	return groups
}
