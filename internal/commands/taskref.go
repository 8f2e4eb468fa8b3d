package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/balkashynov/taskflow/internal/models"
)

// ErrTaskNotFound indicates no task matches a reference.
var ErrTaskNotFound = errors.New("task not found")

// resolveTask finds a task by full id or unique id prefix.
func resolveTask(list []models.Task, ref string) (models.Task, error) {
	ref = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ref), "#"))
	if ref == "" {
		return models.Task{}, fmt.Errorf("task reference required")
	}

	var matches []models.Task
	for _, t := range list {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, t := range matches {
			ids[i] = t.ID
		}
		return models.Task{}, fmt.Errorf("ambiguous task reference %q matches %s", ref, strings.Join(ids, ", "))
	}
}
