package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/taskflow/internal/models"
	"github.com/balkashynov/taskflow/internal/tasks"
)

// RunDashboard starts the interactive dashboard for the signed-in user.
// now may be nil to use the wall clock.
func RunDashboard(ctx context.Context, store *tasks.Store, user models.User, now func() time.Time) error {
	model := NewListModel(ctx, store, user, now)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
