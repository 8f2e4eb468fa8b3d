package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dateRegex     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	isoDateRegex  = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	relativeRegex = regexp.MustCompile(`^(\d+)\s*(h|hour|hours|d|day|days|w|week|weeks)$`)
)

// ParseDueDate parses various due date formats relative to now
// Supported formats:
// - dd/mm/yyyy (e.g., "15/12/2024")
// - yyyy-mm-dd (e.g., "2024-12-15")
// - today, tomorrow
// - X days (e.g., "3 days", "1 day", "3days")
// - X hours (e.g., "24 hours", "1 hour")
// - X weeks (e.g., "2 weeks", "1 week")
// Calendar dates resolve to the end of that day in now's location.
func ParseDueDate(input string, now time.Time) (*time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	switch strings.ToLower(input) {
	case "today":
		due := endOfDay(now, 0)
		return &due, nil
	case "tomorrow":
		due := endOfDay(now, 1)
		return &due, nil
	}

	// Try calendar formats first
	if dueDate, err := parseDateFormat(input, now.Location()); err == nil {
		return dueDate, nil
	} else if dateRegex.MatchString(input) || isoDateRegex.MatchString(input) {
		return nil, err
	}

	// Try relative time formats
	if dueDate, err := parseRelativeTime(input, now); err == nil {
		return dueDate, nil
	} else if relativeRegex.MatchString(strings.ToLower(input)) {
		return nil, err
	}

	return nil, fmt.Errorf("invalid date format. Use: dd/mm/yyyy, yyyy-mm-dd, today, tomorrow, X days, X hours, or X weeks")
}

// parseDateFormat parses dd/mm/yyyy and yyyy-mm-dd
func parseDateFormat(input string, loc *time.Location) (*time.Time, error) {
	var dayStr, monthStr, yearStr string
	if matches := dateRegex.FindStringSubmatch(input); len(matches) == 4 {
		dayStr, monthStr, yearStr = matches[1], matches[2], matches[3]
	} else if matches := isoDateRegex.FindStringSubmatch(input); len(matches) == 4 {
		yearStr, monthStr, dayStr = matches[1], matches[2], matches[3]
	} else {
		return nil, fmt.Errorf("invalid date format")
	}

	day, _ := strconv.Atoi(dayStr)
	month, _ := strconv.Atoi(monthStr)
	year, _ := strconv.Atoi(yearStr)

	// Validate date ranges
	if day < 1 || day > 31 {
		return nil, fmt.Errorf("day must be between 1 and 31")
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return nil, fmt.Errorf("year must be between 2000 and 2100")
	}

	dueDate := time.Date(year, time.Month(month), day, 23, 59, 59, 0, loc)

	// Check if date is valid (handles leap years, etc.)
	if dueDate.Day() != day || dueDate.Month() != time.Month(month) || dueDate.Year() != year {
		return nil, fmt.Errorf("invalid date")
	}

	return &dueDate, nil
}

// parseRelativeTime parses relative time formats like "3 days", "24 hours", etc.
func parseRelativeTime(input string, now time.Time) (*time.Time, error) {
	matches := relativeRegex.FindStringSubmatch(strings.ToLower(input))
	if len(matches) != 3 {
		return nil, fmt.Errorf("invalid relative time format")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid number")
	}

	switch matches[2] {
	case "h", "hour", "hours":
		if amount < 1 || amount > 8760 { // Max 1 year in hours
			return nil, fmt.Errorf("hours must be between 1 and 8760")
		}
		dueDate := now.Add(time.Duration(amount) * time.Hour)
		return &dueDate, nil

	case "d", "day", "days":
		if amount < 1 || amount > 365 { // Max 1 year in days
			return nil, fmt.Errorf("days must be between 1 and 365")
		}
		dueDate := endOfDay(now, amount)
		return &dueDate, nil

	case "w", "week", "weeks":
		if amount < 1 || amount > 52 { // Max 1 year in weeks
			return nil, fmt.Errorf("weeks must be between 1 and 52")
		}
		dueDate := endOfDay(now, amount*7)
		return &dueDate, nil

	default:
		return nil, fmt.Errorf("unsupported time unit")
	}
}

// endOfDay returns 23:59:59 on the day offset days after now
func endOfDay(now time.Time, days int) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, days).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
}

// FormatDueDate formats a due date for display
func FormatDueDate(dueDate *time.Time, now time.Time) string {
	if dueDate == nil {
		return ""
	}

	// Calculate calendar days difference
	local := dueDate.In(now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dueDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, now.Location())
	daysDiff := int(dueDay.Sub(today).Round(time.Hour).Hours() / 24)

	// Always show the actual date to avoid confusion
	dateStr := local.Format("02/01/2006")

	switch {
	case local.Before(now) && daysDiff <= 0:
		return fmt.Sprintf("⚠️ OVERDUE (%s)", dateStr)
	case daysDiff == 0:
		return fmt.Sprintf("🔥 Due today (%s)", dateStr)
	case daysDiff == 1:
		return fmt.Sprintf("📅 Due tomorrow (%s)", dateStr)
	case daysDiff <= 7:
		return fmt.Sprintf("📅 Due %s (in %d days)", dateStr, daysDiff)
	default:
		return fmt.Sprintf("📅 Due %s", dateStr)
	}
}
