package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/taskflow/internal/models"
	"github.com/balkashynov/taskflow/internal/parser"
	"github.com/balkashynov/taskflow/internal/tasks"
)

// ListModel is the dashboard: stats cards, the filtered task list grouped by
// status, and a details panel for the selected task
type ListModel struct {
	ctx   context.Context
	store *tasks.Store
	user  models.User
	now   func() time.Time

	width  int
	height int

	// Task data, flattened in group order
	rows         []models.Task
	selectedTask int // index in rows

	// UI state
	focus    Focus
	search   textinput.Model
	newTask  textinput.Model
	message  string
	err      error
	quitting bool

	// Pagination
	currentPage  int
	tasksPerPage int
}

// Focus represents what UI element has focus
type Focus int

const (
	FocusTable Focus = iota
	FocusSearch
	FocusNewTask
)

// NewListModel creates a dashboard over store
func NewListModel(ctx context.Context, store *tasks.Store, user models.User, now func() time.Time) ListModel {
	if now == nil {
		now = time.Now
	}

	search := newInput("Search title or description...", 100)
	newTask := newInput("New task: Title @category +priority due:tomorrow", 200)

	m := ListModel{
		ctx:          ctx,
		store:        store,
		user:         user,
		now:          now,
		focus:        FocusTable,
		search:       search,
		newTask:      newTask,
		tasksPerPage: 10,
	}
	return m.refresh()
}

func newInput(placeholder string, limit int) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = limit
	input.Width = 60
	input.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	input.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
	input.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	return input
}

// Init initializes the model
func (m ListModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Height - header(2) - cards(5) - group headings(6) - help(2) - borders(4) = rows
		availableHeight := m.height - 19
		if availableHeight < 3 {
			availableHeight = 3
		}
		m.tasksPerPage = availableHeight
		m = m.clampSelection()
		return m, nil

	case tea.KeyMsg:
		switch m.focus {
		case FocusSearch:
			return m.handleSearchKeys(msg)
		case FocusNewTask:
			return m.handleNewTaskKeys(msg)
		}
		return m.handleTableKeys(msg)
	}

	return m, nil
}

// handleTableKeys handles key input when the task list has focus
func (m ListModel) handleTableKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	m.err = nil

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		return m.moveSelectionUp(), nil

	case "down", "j":
		return m.moveSelectionDown(), nil

	case "left", "h":
		return m.prevPage(), nil

	case "right", "l":
		return m.nextPage(), nil

	case "/":
		m.focus = FocusSearch
		m.search.SetValue(m.store.Filters().Search)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd

	case "n":
		m.focus = FocusNewTask
		m.newTask.Reset()
		cmd := m.newTask.Focus()
		return m, cmd

	case "f":
		m.store.SetSort(nextSort(m.store.SortBy()))
		m.message = "Sorted by " + string(m.store.SortBy())
		return m.refresh(), nil

	case "s":
		status := nextStatus(m.store.Filters().Status)
		if status == "" {
			filters := m.store.Filters()
			filters.Status = ""
			m.store.SetFilters(filters)
			return m.refresh(), nil
		}
		return m.quickFilter(models.FilterOptions{Status: status}), nil

	case "p":
		return m.quickFilter(models.FilterOptions{Priority: models.PriorityHigh}), nil

	case "t":
		return m.quickFilter(models.FilterOptions{DueDate: models.DueToday}), nil

	case "w":
		return m.quickFilter(models.FilterOptions{DueDate: models.DueWeek}), nil

	case "o":
		return m.quickFilter(models.FilterOptions{DueDate: models.DueOverdue}), nil

	case "1", "2", "3", "4", "5", "6":
		idx := int(msg.String()[0] - '1')
		return m.quickFilter(models.FilterOptions{Category: models.Categories[idx]}), nil

	case "c":
		m.store.ClearFilters()
		m.message = "Filters cleared"
		return m.refresh(), nil

	case " ", "d":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		updated, err := m.store.ToggleStatus(m.ctx, task.ID)
		if err != nil {
			m.err = err
			return m, nil
		}
		if updated != nil {
			if updated.IsCompleted() {
				m.message = "Completed: " + updated.Title
			} else {
				m.message = "Reopened: " + updated.Title
			}
		}
		return m.refresh(), nil

	case "x":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		if _, err := m.store.Delete(m.ctx, task.ID); err != nil {
			m.err = err
			return m, nil
		}
		m.message = "Deleted: " + task.Title
		return m.refresh(), nil
	}

	return m, nil
}

// handleSearchKeys handles key input when in search mode
func (m ListModel) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		// Exit search without changing the filter
		m.focus = FocusTable
		m.search.Blur()
		return m, nil

	case tea.KeyEnter:
		filters := m.store.Filters()
		filters.Search = strings.TrimSpace(m.search.Value())
		m.store.SetFilters(filters)
		m.focus = FocusTable
		m.search.Blur()
		return m.refresh(), nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// handleNewTaskKeys handles key input in the new task bar
func (m ListModel) handleNewTaskKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.focus = FocusTable
		m.newTask.Blur()
		return m, nil

	case tea.KeyEnter:
		parsed := parser.ParseTitle(m.newTask.Value(), m.now())
		if len(parsed.Errors) > 0 {
			m.err = fmt.Errorf("%s", strings.Join(parsed.Errors, "; "))
			return m, nil
		}
		task, err := m.store.Add(m.ctx, parsed.Input())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.message = "Added: " + task.Title
		m.focus = FocusTable
		m.newTask.Blur()
		m = m.refresh()
		if idx := slices.IndexFunc(m.rows, func(t models.Task) bool { return t.ID == task.ID }); idx >= 0 {
			m.selectedTask = idx
			m = m.clampSelection()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.newTask, cmd = m.newTask.Update(msg)
	return m, cmd
}

// quickFilter narrows the active filters by f, keeping the ones already set
func (m ListModel) quickFilter(f models.FilterOptions) ListModel {
	m.store.MergeFilters(f)
	m.selectedTask = 0
	return m.refresh()
}

// refresh reloads rows from the store, keeping the selection in range
func (m ListModel) refresh() ListModel {
	grouped := m.store.Grouped()
	rows := make([]models.Task, 0, len(m.rows))
	for _, status := range models.Statuses {
		rows = append(rows, grouped[status]...)
	}
	m.rows = rows
	return m.clampSelection()
}

func (m ListModel) clampSelection() ListModel {
	if m.selectedTask >= len(m.rows) {
		m.selectedTask = len(m.rows) - 1
	}
	if m.selectedTask < 0 {
		m.selectedTask = 0
	}
	if m.tasksPerPage > 0 {
		m.currentPage = m.selectedTask / m.tasksPerPage
	}
	return m
}

func (m ListModel) selected() (models.Task, bool) {
	if m.selectedTask < 0 || m.selectedTask >= len(m.rows) {
		return models.Task{}, false
	}
	return m.rows[m.selectedTask], true
}

// moveSelectionUp moves the selection up
func (m ListModel) moveSelectionUp() ListModel {
	if m.selectedTask > 0 {
		m.selectedTask--
		m.currentPage = m.selectedTask / m.tasksPerPage
	}
	return m
}

// moveSelectionDown moves the selection down
func (m ListModel) moveSelectionDown() ListModel {
	if m.selectedTask < len(m.rows)-1 {
		m.selectedTask++
		m.currentPage = m.selectedTask / m.tasksPerPage
	}
	return m
}

// prevPage goes to previous page
func (m ListModel) prevPage() ListModel {
	if m.currentPage > 0 {
		m.currentPage--
		m.selectedTask = m.currentPage * m.tasksPerPage
	}
	return m
}

// nextPage goes to next page
func (m ListModel) nextPage() ListModel {
	if m.currentPage < m.pageCount()-1 {
		m.currentPage++
		m.selectedTask = m.currentPage * m.tasksPerPage
	}
	return m
}

func (m ListModel) pageCount() int {
	return (len(m.rows) + m.tasksPerPage - 1) / m.tasksPerPage
}

func nextSort(current models.SortOption) models.SortOption {
	idx := slices.Index(models.SortOptions, current)
	return models.SortOptions[(idx+1)%len(models.SortOptions)]
}

// nextStatus cycles none -> todo -> in-progress -> completed -> none
func nextStatus(current models.Status) models.Status {
	if current == "" {
		return models.Statuses[0]
	}
	idx := slices.Index(models.Statuses, current)
	if idx < 0 || idx == len(models.Statuses)-1 {
		return ""
	}
	return models.Statuses[idx+1]
}

// View renders the TUI
func (m ListModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Calculate layout
	leftWidth := m.width * 60 / 100       // 60% for table
	rightWidth := m.width - leftWidth - 1 // Rest for details

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTaskTable(leftWidth),
		" ",
		m.renderTaskDetails(rightWidth),
	)

	var bottomBar string
	switch m.focus {
	case FocusSearch:
		bottomBar = m.renderInputBar(m.search.View())
	case FocusNewTask:
		bottomBar = m.renderInputBar(m.newTask.View())
	default:
		bottomBar = m.renderHelpBar()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderStatsCards(),
		content,
		m.renderStatusLine(),
		bottomBar,
	)
}

// renderHeader renders the greeting and the active filters
func (m ListModel) renderHeader() string {
	logo := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true).
		Render("taskflow")
	greeting := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorSecondaryText)).
		Render(fmt.Sprintf("  Welcome back, %s", m.user.Name))

	return logo + greeting + "\n" + lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Render(describeFilters(m.store.Filters(), m.store.SortBy()))
}

// renderStatsCards renders the four counters side by side
func (m ListModel) renderStatsCards() string {
	stats := m.store.Stats()
	cardWidth := (m.width - 8) / 4
	if cardWidth < 12 {
		cardWidth = 12
	}

	card := func(label string, value int, color string) string {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Width(cardWidth).
			Padding(0, 1).
			Render(
				lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Render(label) + "\n" +
					lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(fmt.Sprint(value)),
			)
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		card("Total", stats.Total, ColorAccentBright),
		card("Completed", stats.Completed, ColorSuccess),
		card("Pending", stats.Pending, ColorWarning),
		card("Overdue", stats.Overdue, ColorError),
	)
}

// renderTaskTable renders the left panel with the grouped task list
func (m ListModel) renderTaskTable(width int) string {
	var b strings.Builder

	if len(m.rows) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true)
		if m.store.Filters().IsEmpty() {
			b.WriteString(emptyStyle.Render("No tasks yet. Press n to add one."))
		} else {
			b.WriteString(emptyStyle.Render("No tasks match the filters. Press c to clear them."))
		}
		return m.panel(width).Render(b.String())
	}

	// Calculate column widths for the available space
	availableWidth := width - 4 // Account for borders
	idWidth := 8
	dueWidth := 10
	priorityWidth := 7
	titleWidth := availableWidth - idWidth - dueWidth - priorityWidth - 6
	if titleWidth < 20 {
		titleWidth = 20
	}

	headingStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentBright))

	now := m.now()
	startIndex := m.currentPage * m.tasksPerPage
	endIndex := min(startIndex+m.tasksPerPage, len(m.rows))

	var lastStatus models.Status
	for i := startIndex; i < endIndex; i++ {
		task := m.rows[i]
		if task.Status != lastStatus {
			if i > startIndex {
				b.WriteString("\n")
			}
			b.WriteString(headingStyle.Render(groupTitle(task.Status)))
			b.WriteString("\n")
			lastStatus = task.Status
		}

		title := truncate(task.Title, titleWidth)
		dueText := dueLabel(task, now)

		rowContent := fmt.Sprintf("%-*s %-*s %s %s",
			idWidth, task.ID,
			titleWidth, title,
			priorityStyle(task.Priority).Render(fmt.Sprintf("%-*s", priorityWidth, task.Priority)),
			dueStyle(task, now).Render(fmt.Sprintf("%-*s", dueWidth, dueText)))

		if i == m.selectedTask {
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorAccentBright)).
				Bold(true).
				Render("▸ " + rowContent))
		} else if task.IsCompleted() {
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorDisabledText)).
				Strikethrough(true).
				Render("  " + rowContent))
		} else {
			b.WriteString("  " + rowContent)
		}
		b.WriteString("\n")
	}

	// Pagination info
	if m.pageCount() > 1 {
		pageInfo := fmt.Sprintf("Page %d/%d (%d tasks)", m.currentPage+1, m.pageCount(), len(m.rows))
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHelpText)).
			Align(lipgloss.Center).
			Width(width - 2).
			MarginTop(1).
			Render(pageInfo))
	}

	return m.panel(width).Render(b.String())
}

// renderTaskDetails renders the right panel with task details
func (m ListModel) renderTaskDetails(width int) string {
	var b strings.Builder

	task, ok := m.selected()
	if !ok {
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true).
			Render("Select a task to view details"))
		return m.panel(width).Render(b.String())
	}

	now := m.now()
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))

	b.WriteString(lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Width(width - 4).
		Render(task.Title))
	b.WriteString("\n\n")

	b.WriteString(label.Render("Status: "))
	b.WriteString(statusStyle(task.Status).Render(string(task.Status)))
	b.WriteString("\n")
	b.WriteString(label.Render("Category: "))
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Render(string(task.Category)))
	b.WriteString("\n")
	b.WriteString(label.Render("Priority: "))
	b.WriteString(priorityStyle(task.Priority).Render(string(task.Priority)))
	b.WriteString("\n")

	if task.DueDate != nil {
		b.WriteString(label.Render("Due: "))
		b.WriteString(dueStyle(task, now).Render(parser.FormatDueDate(task.DueDate, now)))
		b.WriteString("\n")
	}
	b.WriteString(label.Render("Created: "))
	b.WriteString(task.CreatedAt.In(now.Location()).Format("02/01/2006 15:04"))
	b.WriteString("\n")
	if task.CompletedAt != nil {
		b.WriteString(label.Render("Completed: "))
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess)).Render(
			task.CompletedAt.In(now.Location()).Format("02/01/2006 15:04")))
		b.WriteString("\n")
	}

	if task.Description != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true).
			Width(width - 4).
			Render(task.Description))
	}

	return m.panel(width).Render(b.String())
}

func (m ListModel) panel(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width)
}

// renderStatusLine renders the last action result or error
func (m ListModel) renderStatusLine() string {
	switch {
	case m.err != nil:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("Error: " + m.err.Error())
	case m.message != "":
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess)).Render(m.message)
	default:
		return ""
	}
}

// renderInputBar renders the active text input
func (m ListModel) renderInputBar(input string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorBorder)).
		Padding(0, 1).
		Width(m.width - 2).
		Render(input)
}

// renderHelpBar renders the help bar with hotkey hints
func (m ListModel) renderHelpBar() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Align(lipgloss.Center).
		Width(m.width)

	helpText := "↑/↓ nav · ←/→ page · n new · d done · x delete · / search · s status · 1-6 category · p high · t/w/o due · f sort · c clear · q quit"
	return helpStyle.Render(helpText)
}

func describeFilters(f models.FilterOptions, sortBy models.SortOption) string {
	var parts []string
	if f.Category != "" {
		parts = append(parts, "category:"+string(f.Category))
	}
	if f.Priority != "" {
		parts = append(parts, "priority:"+string(f.Priority))
	}
	if f.Status != "" {
		parts = append(parts, "status:"+string(f.Status))
	}
	if f.DueDate != "" {
		parts = append(parts, "due:"+string(f.DueDate))
	}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search:%q", f.Search))
	}
	filters := "all tasks"
	if len(parts) > 0 {
		filters = strings.Join(parts, " ")
	}
	return fmt.Sprintf("Showing %s · sorted by %s", filters, sortBy)
}

func groupTitle(s models.Status) string {
	switch s {
	case models.StatusTodo:
		return "○ To Do"
	case models.StatusInProgress:
		return "◐ In Progress"
	case models.StatusCompleted:
		return "✓ Completed"
	default:
		return string(s)
	}
}

// dueLabel returns a short due date label for the table
func dueLabel(task models.Task, now time.Time) string {
	if task.DueDate == nil {
		return "-"
	}
	if task.IsOverdue(now) {
		return "OVERDUE"
	}

	due := task.DueDate.In(now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, now.Location())
	days := int(dueDay.Sub(today).Round(time.Hour).Hours() / 24)

	switch {
	case days < 0:
		return due.Format("02/01")
	case days == 0:
		return "TODAY"
	case days == 1:
		return "TOMORROW"
	case days <= 7:
		return fmt.Sprintf("%dd", days)
	default:
		return due.Format("02/01")
	}
}

func dueStyle(task models.Task, now time.Time) lipgloss.Style {
	style := lipgloss.NewStyle()
	switch {
	case task.DueDate == nil:
		return style.Foreground(lipgloss.Color(ColorDisabledText))
	case task.IsCompleted():
		return style.Foreground(lipgloss.Color(ColorDisabledText))
	case task.IsOverdue(now):
		return style.Foreground(lipgloss.Color(ColorError))
	case task.DueDate.Sub(now) <= 48*time.Hour:
		return style.Foreground(lipgloss.Color(ColorWarning))
	default:
		return style.Foreground(lipgloss.Color(ColorAccentBright))
	}
}

func priorityStyle(p models.Priority) lipgloss.Style {
	color := ColorSecondaryText
	switch p {
	case models.PriorityUrgent:
		color = ColorError
	case models.PriorityHigh:
		color = ColorWarning
	case models.PriorityMedium:
		color = ColorInfo
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func statusStyle(s models.Status) lipgloss.Style {
	color := ColorSecondaryText
	switch s {
	case models.StatusCompleted:
		color = ColorSuccess
	case models.StatusInProgress:
		color = ColorInfo
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// truncate shortens s to limit runes, ending with "..."
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
