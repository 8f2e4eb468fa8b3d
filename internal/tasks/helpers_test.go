package tasks

import (
	"fmt"
	"time"

	"github.com/balkashynov/taskflow/internal/models"
)

var testNow = time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)

// fakeClock is a settable clock for stores under test.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// sequentialIDs returns an id generator yielding t1, t2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("t%d", n)
	}
}

func at(t time.Time) *time.Time { return &t }

func task(id, title string, mods ...func(*models.Task)) models.Task {
	t := models.Task{
		ID:        id,
		Title:     title,
		Category:  models.CategoryOther,
		Priority:  models.PriorityMedium,
		Status:    models.StatusTodo,
		UserID:    "u1",
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	for _, m := range mods {
		m(&t)
	}
	return t
}

func withDue(d time.Time) func(*models.Task) {
	return func(t *models.Task) { t.DueDate = at(d) }
}

func withStatus(s models.Status) func(*models.Task) {
	return func(t *models.Task) { t.Status = s }
}

func withPriority(p models.Priority) func(*models.Task) {
	return func(t *models.Task) { t.Priority = p }
}

func withCategory(c models.Category) func(*models.Task) {
	return func(t *models.Task) { t.Category = c }
}

func withCreated(c time.Time) func(*models.Task) {
	return func(t *models.Task) { t.CreatedAt = c }
}

func withDescription(d string) func(*models.Task) {
	return func(t *models.Task) { t.Description = d }
}

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
