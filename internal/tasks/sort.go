package tasks

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/balkashynov/taskflow/internal/models"
)

// Sort returns a sorted copy of tasks; the input is not modified.
// The sort is stable, so insertion order breaks ties.
func Sort(tasks []models.Task, by models.SortOption) []models.Task {
	return SortLocale(tasks, by, language.Und)
}

// SortLocale is Sort with an explicit collation language for titles
func SortLocale(tasks []models.Task, by models.SortOption, tag language.Tag) []models.Task {
	sorted := slices.Clone(tasks)
	if sorted == nil {
		sorted = []models.Task{}
	}

	switch by {
	case models.SortDueDate:
		slices.SortStableFunc(sorted, compareDueDate)
	case models.SortPriority:
		slices.SortStableFunc(sorted, func(a, b models.Task) int {
			return b.Priority.Rank() - a.Priority.Rank()
		})
	case models.SortCreated:
		slices.SortStableFunc(sorted, func(a, b models.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case models.SortAlphabetical:
		// Collators are not safe for concurrent use; build one per call.
		c := collate.New(tag)
		slices.SortStableFunc(sorted, func(a, b models.Task) int {
			return c.CompareString(a.Title, b.Title)
		})
	}
	return sorted
}

// compareDueDate orders by due date ascending with undated tasks last
func compareDueDate(a, b models.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	default:
		return a.DueDate.Compare(*b.DueDate)
	}
}

// ParseSortOption resolves user input to a sort option
func ParseSortOption(s string) (models.SortOption, bool) {
	for _, opt := range models.SortOptions {
		if string(opt) == s {
			return opt, true
		}
	}
	switch s {
	case "due", "duedate", "due-date":
		return models.SortDueDate, true
	case "alpha", "title", "name":
		return models.SortAlphabetical, true
	case "createdAt", "newest":
		return models.SortCreated, true
	}
	return "", false
}
