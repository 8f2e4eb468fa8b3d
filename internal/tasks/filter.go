package tasks

import (
	"strings"
	"time"

	"github.com/balkashynov/taskflow/internal/models"
)

const week = 7 * 24 * time.Hour

// FilterConfig tunes the due date buckets
type FilterConfig struct {
	// StrictWeek excludes tasks due before now from the week bucket.
	StrictWeek bool
}

// Filter returns the tasks matching every set field of opts, in input order.
func Filter(tasks []models.Task, opts models.FilterOptions, now time.Time) []models.Task {
	return FilterWith(tasks, opts, now, FilterConfig{})
}

// FilterWith is Filter with explicit bucket configuration
func FilterWith(tasks []models.Task, opts models.FilterOptions, now time.Time, cfg FilterConfig) []models.Task {
	search := strings.ToLower(opts.Search)

	result := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if opts.Category != "" && task.Category != opts.Category {
			continue
		}
		if opts.Priority != "" && task.Priority != opts.Priority {
			continue
		}
		if opts.Status != "" && task.Status != opts.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(task.Title), search) &&
			!strings.Contains(strings.ToLower(task.Description), search) {
			continue
		}
		if opts.DueDate != "" && !matchesDue(task, opts.DueDate, now, cfg) {
			continue
		}
		result = append(result, task)
	}
	return result
}

// matchesDue reports whether task falls into the due date bucket.
// Tasks without a due date match no bucket.
func matchesDue(task models.Task, bucket models.DueFilter, now time.Time, cfg FilterConfig) bool {
	if task.DueDate == nil {
		return false
	}
	due := *task.DueDate

	switch bucket {
	case models.DueToday:
		return sameDay(due.In(now.Location()), now)
	case models.DueWeek:
		if due.After(now.Add(week)) {
			return false
		}
		return !cfg.StrictWeek || !due.Before(now)
	case models.DueOverdue:
		return due.Before(now) && !task.IsCompleted()
	default:
		return true
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
