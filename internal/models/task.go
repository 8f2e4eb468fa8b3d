package models

import (
	"strings"
	"time"
)

// Category groups tasks by area of life
type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryShopping Category = "shopping"
	CategoryHealth   Category = "health"
	CategoryLearning Category = "learning"
	CategoryOther    Category = "other"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryWork,
	CategoryPersonal,
	CategoryShopping,
	CategoryHealth,
	CategoryLearning,
	CategoryOther,
}

// Priority is totally ordered: urgent > high > medium > low
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Rank returns the sort weight of a priority, 0 for unknown values
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Status is the lifecycle state of a task
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in board order
var Statuses = []Status{StatusTodo, StatusInProgress, StatusCompleted}

// Task represents a todo item owned by a single user
type Task struct {
	ID          string     `json:"id" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Category    Category   `json:"category" validate:"required,oneof=work personal shopping health learning other"`
	Priority    Priority   `json:"priority" validate:"required,oneof=low medium high urgent"`
	Status      Status     `json:"status" validate:"required,oneof=todo in-progress completed"`
	UserID      string     `json:"userId" validate:"required"`
	CreatedAt   time.Time  `json:"createdAt" validate:"required"`
	UpdatedAt   time.Time  `json:"updatedAt" validate:"required"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// IsCompleted reports whether the task is in the completed state
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsOverdue reports whether an open task is past its due date
func (t Task) IsOverdue(now time.Time) bool {
	return !t.IsCompleted() && t.DueDate != nil && t.DueDate.Before(now)
}

// Clone returns a copy that shares no pointers with t
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.CompletedAt != nil {
		d := *t.CompletedAt
		c.CompletedAt = &d
	}
	return c
}

// TaskInput holds the caller-supplied fields of a new task
type TaskInput struct {
	Title       string     `validate:"required"`
	Description string
	DueDate     *time.Time
	Category    Category `validate:"omitempty,oneof=work personal shopping health learning other"`
	Priority    Priority `validate:"omitempty,oneof=low medium high urgent"`
	Status      Status   `validate:"omitempty,oneof=todo in-progress completed"`
}

// Normalize trims the title and fills in default enum values
func (in TaskInput) Normalize() TaskInput {
	in.Title = strings.TrimSpace(in.Title)
	if in.Category == "" {
		in.Category = CategoryOther
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	return in
}

// TaskPatch is a partial update; nil fields are left untouched
type TaskPatch struct {
	Title        *string   `validate:"omitempty,min=1"`
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Category     *Category `validate:"omitempty,oneof=work personal shopping health learning other"`
	Priority     *Priority `validate:"omitempty,oneof=low medium high urgent"`
	Status       *Status   `validate:"omitempty,oneof=todo in-progress completed"`
}

// IsEmpty reports whether the patch changes nothing
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil && !p.ClearDueDate &&
		p.Category == nil && p.Priority == nil && p.Status == nil
}

// DueFilter selects tasks by due date bucket
type DueFilter string

const (
	DueToday   DueFilter = "today"
	DueWeek    DueFilter = "week"
	DueOverdue DueFilter = "overdue"
)

// FilterOptions holds optional predicates; zero values mean no constraint
type FilterOptions struct {
	Category Category  `json:"category,omitempty" validate:"omitempty,oneof=work personal shopping health learning other"`
	Priority Priority  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	Status   Status    `json:"status,omitempty" validate:"omitempty,oneof=todo in-progress completed"`
	Search   string    `json:"search,omitempty"`
	DueDate  DueFilter `json:"dueDate,omitempty" validate:"omitempty,oneof=today week overdue"`
}

// IsEmpty reports whether no predicate is set
func (f FilterOptions) IsEmpty() bool {
	return f == FilterOptions{}
}

// Merge overlays the non-empty fields of other onto f
func (f FilterOptions) Merge(other FilterOptions) FilterOptions {
	if other.Category != "" {
		f.Category = other.Category
	}
	if other.Priority != "" {
		f.Priority = other.Priority
	}
	if other.Status != "" {
		f.Status = other.Status
	}
	if other.Search != "" {
		f.Search = other.Search
	}
	if other.DueDate != "" {
		f.DueDate = other.DueDate
	}
	return f
}

// SortOption selects the comparator applied to the filtered view
type SortOption string

const (
	SortDueDate      SortOption = "dueDate"
	SortPriority     SortOption = "priority"
	SortCreated      SortOption = "created"
	SortAlphabetical SortOption = "alphabetical"
)

// SortOptions lists every sort option in menu order
var SortOptions = []SortOption{SortDueDate, SortPriority, SortCreated, SortAlphabetical}

// TaskStats is derived from the full task list, never stored
type TaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
}
