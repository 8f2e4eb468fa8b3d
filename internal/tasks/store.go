// Package tasks holds the task list of the signed-in user and its derived views.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	nanoid "github.com/jaevor/go-nanoid"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"github.com/balkashynov/taskflow/internal/db"
	"github.com/balkashynov/taskflow/internal/models"
)

// Task ids are typed on the command line, so keep them short and lowercase.
const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 8
)

var (
	// ErrNotAuthenticated is returned when adding a task with no user loaded.
	ErrNotAuthenticated = errors.New("no user loaded")
	// ErrInvalidTask is returned for task input that fails validation.
	ErrInvalidTask = errors.New("invalid task")
	// ErrPersist wraps storage write failures; in-memory state is left unchanged.
	ErrPersist = errors.New("failed to save tasks")
)

// Options configures a Store. Zero values get defaults.
type Options struct {
	Logger     *logrus.Entry
	Now        func() time.Time
	NewID      func() string
	Locale     language.Tag
	StrictWeek bool
}

// Store is the authoritative task list of one user.
// It is safe for concurrent use.
type Store struct {
	kv     db.Store
	log    *logrus.Entry
	now    func() time.Time
	newID  func() string
	locale language.Tag
	filter FilterConfig

	mu       sync.RWMutex
	userID   string
	tasks    []models.Task
	filtered []models.Task
	filters  models.FilterOptions
	sortBy   models.SortOption
	stats    models.TaskStats
}

// NewStore creates an empty Store persisting to kv
func NewStore(kv db.Store, opts Options) (*Store, error) {
	s := &Store{
		kv:     kv,
		log:    opts.Logger,
		now:    opts.Now,
		newID:  opts.NewID,
		locale: opts.Locale,
		filter: FilterConfig{StrictWeek: opts.StrictWeek},
		sortBy: models.SortCreated,
	}
	if s.log == nil {
		s.log = logrus.NewEntry(logrus.StandardLogger())
	}
	s.log = s.log.WithField("component", "tasks")
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		gen, err := nanoid.CustomASCII(idAlphabet, idLength)
		if err != nil {
			return nil, fmt.Errorf("failed to create id generator: %w", err)
		}
		s.newID = gen
	}
	s.filtered = []models.Task{}
	return s, nil
}

// Load replaces the in-memory list with the list persisted for userID.
// Missing or malformed data yields an empty list; only read failures are returned.
func (s *Store) Load(ctx context.Context, userID string) error {
	loaded, _, err := db.Load[[]models.Task](ctx, s.kv, db.TasksKey(userID))
	if err != nil {
		if !errors.Is(err, db.ErrMalformedStoredData) {
			return fmt.Errorf("failed to load tasks: %w", err)
		}
		s.log.WithError(err).WithField("user_id", userID).Warn("ignoring malformed task list")
		loaded = nil
	}

	for _, task := range loaded {
		if task.UserID != userID {
			s.log.WithFields(logrus.Fields{
				"user_id": userID,
				"task_id": task.ID,
				"owner":   task.UserID,
			}).Warn("ignoring task list containing foreign tasks")
			loaded = nil
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.commit(loaded)
	return nil
}

// Reset forgets the loaded user and all derived state
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = ""
	s.filters = models.FilterOptions{}
	s.sortBy = models.SortCreated
	s.commit(nil)
}

// Add creates a task owned by the loaded user
func (s *Store) Add(ctx context.Context, in models.TaskInput) (models.Task, error) {
	in = in.Normalize()
	if err := models.Validate(in); err != nil {
		return models.Task{}, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == "" {
		return models.Task{}, ErrNotAuthenticated
	}

	now := s.now()
	var due *time.Time
	if in.DueDate != nil {
		d := *in.DueDate
		due = &d
	}
	task := models.Task{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		DueDate:     due,
		Category:    in.Category,
		Priority:    in.Priority,
		Status:      in.Status,
		UserID:      s.userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.IsCompleted() {
		task.CompletedAt = &now
	}

	next := append(slices.Clone(s.tasks), task)
	if err := s.persist(ctx, next); err != nil {
		return models.Task{}, err
	}
	s.commit(next)
	return task.Clone(), nil
}

// Update merges patch into the task with the given id.
// An unknown id is a no-op and returns nil, nil.
func (s *Store) Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	if err := models.Validate(patch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(ctx, id, patch)
}

func (s *Store) update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, nil
	}

	now := s.now()
	next := slices.Clone(s.tasks)
	task := next[idx].Clone()
	applyPatch(&task, patch, now)
	task.UpdatedAt = now
	next[idx] = task

	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.commit(next)
	updated := task.Clone()
	return &updated, nil
}

// Delete removes the task with the given id; unknown ids are a no-op.
// Reports whether a task was removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	next := slices.Delete(slices.Clone(s.tasks), idx, idx+1)
	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	s.commit(next)
	return true, nil
}

// ToggleStatus flips a task between todo and completed.
// In-progress tasks become completed; completed tasks always revert to todo.
func (s *Store) ToggleStatus(ctx context.Context, id string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, nil
	}

	status := models.StatusCompleted
	if s.tasks[idx].IsCompleted() {
		status = models.StatusTodo
	}
	return s.update(ctx, id, models.TaskPatch{Status: &status})
}

// SetFilters replaces the active filters
func (s *Store) SetFilters(f models.FilterOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
	s.refilter()
}

// MergeFilters overlays the set fields of f onto the active filters
func (s *Store) MergeFilters(f models.FilterOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = s.filters.Merge(f)
	s.refilter()
}

// ClearFilters removes every active filter
func (s *Store) ClearFilters() {
	s.SetFilters(models.FilterOptions{})
}

// SetSort changes the ordering of the filtered view
func (s *Store) SetSort(by models.SortOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortBy = by
	s.refilter()
}

// UserID returns the id of the loaded user, empty when none
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Tasks returns a copy of the full list in insertion order
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.tasks)
}

// Filtered returns a copy of the filtered and sorted view
func (s *Store) Filtered() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.filtered)
}

// Grouped returns the filtered view split by status
func (s *Store) Grouped() map[models.Status][]models.Task {
	return Group(s.Filtered())
}

// Stats returns the counters computed at the last list mutation
func (s *Store) Stats() models.TaskStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Filters returns the active filters
func (s *Store) Filters() models.FilterOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// SortBy returns the active sort option
func (s *Store) SortBy() models.SortOption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortBy
}

// Find returns the task with the given id
func (s *Store) Find(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return models.Task{}, false
	}
	return s.tasks[idx].Clone(), true
}

// persist writes the full list; callers hold s.mu
func (s *Store) persist(ctx context.Context, tasks []models.Task) error {
	if s.userID == "" {
		return ErrNotAuthenticated
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	if err := db.Save(ctx, s.kv, db.TasksKey(s.userID), tasks); err != nil {
		s.log.WithError(err).WithField("user_id", s.userID).Error("failed to persist tasks")
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// commit installs a new list and recomputes derived state; callers hold s.mu
func (s *Store) commit(tasks []models.Task) {
	s.tasks = tasks
	s.stats = CalculateStats(tasks, s.now())
	s.refilter()
}

// refilter recomputes the filtered view; callers hold s.mu
func (s *Store) refilter() {
	filtered := FilterWith(s.tasks, s.filters, s.now(), s.filter)
	s.filtered = SortLocale(filtered, s.sortBy, s.locale)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t models.Task) bool { return t.ID == id })
}

// applyPatch merges set fields and maintains the completedAt invariant
func applyPatch(task *models.Task, patch models.TaskPatch, now time.Time) {
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.ClearDueDate {
		task.DueDate = nil
	} else if patch.DueDate != nil {
		due := *patch.DueDate
		task.DueDate = &due
	}
	if patch.Category != nil {
		task.Category = *patch.Category
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Status != nil {
		wasCompleted := task.IsCompleted()
		task.Status = *patch.Status
		switch {
		case task.IsCompleted() && !wasCompleted:
			task.CompletedAt = &now
		case !task.IsCompleted():
			task.CompletedAt = nil
		}
	}
}

func cloneAll(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
