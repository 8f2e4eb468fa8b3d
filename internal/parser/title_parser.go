package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/balkashynov/taskflow/internal/models"
)

var (
	categoryRegex = regexp.MustCompile(`(^|\s)@([a-zA-Z]+)`)
	priorityRegex = regexp.MustCompile(`(^|\s)\+([a-zA-Z0-9]+)`)
	dueRegex      = regexp.MustCompile(`(^|\s)due:([^\s]+)`)
)

// ParsedTask represents a task parsed from natural language
type ParsedTask struct {
	Title    string
	Category models.Category
	Priority models.Priority
	DueDate  *time.Time
	Errors   []string
}

// Input converts the parsed fields into a new task input
func (p ParsedTask) Input() models.TaskInput {
	return models.TaskInput{
		Title:    p.Title,
		Category: p.Category,
		Priority: p.Priority,
		DueDate:  p.DueDate,
	}
}

// ParseTitle extracts metadata from a task title using natural syntax
// Syntax: "Task title @category +priority due:3days"
func ParseTitle(input string, now time.Time) ParsedTask {
	result := ParsedTask{
		Title:  input,
		Errors: []string{},
	}

	// Extract category (@work, @health, ...)
	if matches := categoryRegex.FindStringSubmatch(input); len(matches) > 2 {
		category, err := ParseCategory(matches[2])
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		} else {
			result.Category = category
		}
		// Remove from title
		input = categoryRegex.ReplaceAllString(input, "$1")
	}

	// Extract priority (+high, +4, +urgent, etc.)
	if matches := priorityRegex.FindStringSubmatch(input); len(matches) > 2 {
		priority, err := ParsePriority(matches[2])
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		} else {
			result.Priority = priority
		}
		// Remove from title
		input = priorityRegex.ReplaceAllString(input, "$1")
	}

	// Extract due date (due:3days, due:15/12/2024, etc.)
	if matches := dueRegex.FindStringSubmatch(input); len(matches) > 2 {
		dueDate, err := ParseDueDate(matches[2], now)
		if err != nil {
			result.Errors = append(result.Errors, "Invalid due date '"+matches[2]+"': "+err.Error())
		} else {
			result.DueDate = dueDate
		}
		// Remove from title
		input = dueRegex.ReplaceAllString(input, "$1")
	}

	// Clean up the title (remove extra spaces)
	result.Title = strings.Join(strings.Fields(input), " ")

	return result
}
