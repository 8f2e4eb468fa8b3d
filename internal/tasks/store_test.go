package tasks

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/taskflow/internal/db"
	"github.com/balkashynov/taskflow/internal/models"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// newTestStore returns a store loaded for user u1 with a fixed clock.
func newTestStore(t *testing.T) (*Store, *db.MemoryStore, *fakeClock) {
	t.Helper()

	kv := db.NewMemoryStore()
	clock := &fakeClock{now: testNow}
	s, err := NewStore(kv, Options{
		Logger: quietLogger(),
		Now:    clock.Now,
		NewID:  sequentialIDs(),
	})
	require.NoError(t, err)
	require.NoError(t, s.Load(context.Background(), "u1"))
	return s, kv, clock
}

func storedTasks(t *testing.T, kv db.Store, userID string) []models.Task {
	t.Helper()
	list, found, err := db.Load[[]models.Task](context.Background(), kv, db.TasksKey(userID))
	require.NoError(t, err)
	require.True(t, found, "no tasks stored for %s", userID)
	return list
}

func TestStore_Add(t *testing.T) {
	ctx := context.Background()
	s, kv, _ := newTestStore(t)

	got, err := s.Add(ctx, models.TaskInput{Title: "  Write report  ", Category: models.CategoryWork})
	require.NoError(t, err)

	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, "Write report", got.Title)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, models.CategoryWork, got.Category)
	assert.Equal(t, models.PriorityMedium, got.Priority)
	assert.Equal(t, models.StatusTodo, got.Status)
	assert.Equal(t, testNow, got.CreatedAt)
	assert.Equal(t, testNow, got.UpdatedAt)
	assert.Nil(t, got.CompletedAt)

	assert.Equal(t, models.TaskStats{Total: 1, Pending: 1}, s.Stats())
	assert.Equal(t, []string{"t1"}, ids(s.Filtered()))
	assert.Equal(t, []string{"t1"}, ids(storedTasks(t, kv, "u1")))
}

func TestStore_AddCompletedSetsCompletedAt(t *testing.T) {
	s, _, _ := newTestStore(t)
	got, err := s.Add(context.Background(), models.TaskInput{Title: "Done already", Status: models.StatusCompleted})
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, testNow, *got.CompletedAt)
}

func TestStore_AddValidation(t *testing.T) {
	s, kv, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, models.TaskInput{Title: "   "})
	assert.ErrorIs(t, err, ErrInvalidTask)

	_, err = s.Add(ctx, models.TaskInput{Title: "x", Priority: "critical"})
	assert.ErrorIs(t, err, ErrInvalidTask)

	assert.Equal(t, 0, s.Stats().Total)
	_, found, _ := kv.Get(ctx, db.TasksKey("u1"))
	assert.False(t, found)
}

func TestStore_AddWithoutUser(t *testing.T) {
	s, err := NewStore(db.NewMemoryStore(), Options{Logger: quietLogger()})
	require.NoError(t, err)

	_, err = s.Add(context.Background(), models.TaskInput{Title: "x"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestStore_AddThenDeleteRestoresTotal(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)
	_, err := s.Add(ctx, models.TaskInput{Title: "keep"})
	require.NoError(t, err)
	before := s.Stats().Total

	added, err := s.Add(ctx, models.TaskInput{Title: "temporary"})
	require.NoError(t, err)
	assert.Equal(t, before+1, s.Stats().Total)

	removed, err := s.Delete(ctx, added.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, before, s.Stats().Total)
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	s, kv, clock := newTestStore(t)
	added, err := s.Add(ctx, models.TaskInput{Title: "Draft"})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	title := "Final"
	priority := models.PriorityUrgent
	due := testNow.Add(time.Hour)
	got, err := s.Update(ctx, added.ID, models.TaskPatch{Title: &title, Priority: &priority, DueDate: &due})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, models.PriorityUrgent, got.Priority)
	assert.Equal(t, due, *got.DueDate)
	assert.Equal(t, testNow, got.CreatedAt)
	assert.Equal(t, testNow.Add(time.Minute), got.UpdatedAt)
	assert.Equal(t, "Final", storedTasks(t, kv, "u1")[0].Title)

	got, err = s.Update(ctx, added.ID, models.TaskPatch{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)
}

func TestStore_UpdateUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	s, kv, _ := newTestStore(t)

	title := "x"
	got, err := s.Update(ctx, "missing", models.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Nil(t, got)

	removed, err := s.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, removed)

	toggled, err := s.ToggleStatus(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, toggled)

	assert.Equal(t, 0, kv.Keys())
}

func TestStore_UpdateStatusMaintainsCompletedAt(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t)
	added, err := s.Add(ctx, models.TaskInput{Title: "x"})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	completed := models.StatusCompleted
	got, err := s.Update(ctx, added.ID, models.TaskPatch{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, clock.Now(), *got.CompletedAt)

	// Re-completing keeps the original completion time
	clock.Advance(time.Hour)
	got, err = s.Update(ctx, added.ID, models.TaskPatch{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(time.Hour), *got.CompletedAt)

	inProgress := models.StatusInProgress
	got, err = s.Update(ctx, added.ID, models.TaskPatch{Status: &inProgress})
	require.NoError(t, err)
	assert.Nil(t, got.CompletedAt)
}

func TestStore_ToggleStatus(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t)

	tests := []struct {
		name          string
		initial       models.Status
		want          models.Status
		wantCompleted bool
	}{
		{"todo completes", models.StatusTodo, models.StatusCompleted, true},
		{"in-progress completes", models.StatusInProgress, models.StatusCompleted, true},
		{"completed reverts to todo", models.StatusCompleted, models.StatusTodo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, err := s.Add(ctx, models.TaskInput{Title: tt.name, Status: tt.initial})
			require.NoError(t, err)

			clock.Advance(time.Second)
			got, err := s.ToggleStatus(ctx, added.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, tt.wantCompleted, got.CompletedAt != nil)
			assert.True(t, got.UpdatedAt.After(added.UpdatedAt))
		})
	}
}

func TestStore_ToggleTwiceRestoresStatus(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t)

	for _, initial := range []models.Status{models.StatusTodo, models.StatusCompleted} {
		added, err := s.Add(ctx, models.TaskInput{Title: "x", Status: initial})
		require.NoError(t, err)

		clock.Advance(time.Second)
		first, err := s.ToggleStatus(ctx, added.ID)
		require.NoError(t, err)
		clock.Advance(time.Second)
		second, err := s.ToggleStatus(ctx, added.ID)
		require.NoError(t, err)

		assert.Equal(t, initial, second.Status)
		assert.Equal(t, added.CompletedAt != nil, second.CompletedAt != nil)
		assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
		assert.True(t, first.UpdatedAt.After(added.UpdatedAt))
	}
}

func TestStore_FiltersAndSortDoNotTouchList(t *testing.T) {
	ctx := context.Background()
	s, kv, clock := newTestStore(t)

	_, err := s.Add(ctx, models.TaskInput{Title: "b low", Priority: models.PriorityLow, Category: models.CategoryWork})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = s.Add(ctx, models.TaskInput{Title: "a urgent", Priority: models.PriorityUrgent})
	require.NoError(t, err)
	stored, _, _ := kv.Get(ctx, db.TasksKey("u1"))

	// default sort is newest first
	assert.Equal(t, []string{"t2", "t1"}, ids(s.Filtered()))

	s.SetSort(models.SortAlphabetical)
	assert.Equal(t, []string{"t2", "t1"}, ids(s.Filtered()))
	s.SetSort(models.SortPriority)
	assert.Equal(t, []string{"t2", "t1"}, ids(s.Filtered()))
	s.SetSort(models.SortCreated)

	s.SetFilters(models.FilterOptions{Category: models.CategoryWork})
	assert.Equal(t, []string{"t1"}, ids(s.Filtered()))

	s.MergeFilters(models.FilterOptions{Search: "urgent"})
	assert.Equal(t, models.FilterOptions{Category: models.CategoryWork, Search: "urgent"}, s.Filters())
	assert.Empty(t, s.Filtered())

	s.ClearFilters()
	assert.Equal(t, []string{"t2", "t1"}, ids(s.Filtered()))

	assert.Equal(t, []string{"t1", "t2"}, ids(s.Tasks()))
	assert.Equal(t, 2, s.Stats().Total)
	after, _, _ := kv.Get(ctx, db.TasksKey("u1"))
	assert.Equal(t, stored, after)
}

func TestStore_FiltersApplyToNewTasks(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)
	s.SetFilters(models.FilterOptions{Status: models.StatusCompleted})

	added, err := s.Add(ctx, models.TaskInput{Title: "x"})
	require.NoError(t, err)
	assert.Empty(t, s.Filtered())

	_, err = s.ToggleStatus(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{added.ID}, ids(s.Filtered()))
}

func TestStore_Load(t *testing.T) {
	ctx := context.Background()
	s, kv, _ := newTestStore(t)
	_, err := s.Add(ctx, models.TaskInput{Title: "mine"})
	require.NoError(t, err)

	other, err := NewStore(kv, Options{Logger: quietLogger(), Now: func() time.Time { return testNow }})
	require.NoError(t, err)
	require.NoError(t, other.Load(ctx, "u1"))
	assert.Equal(t, []string{"t1"}, ids(other.Tasks()))
	assert.Equal(t, 1, other.Stats().Total)

	require.NoError(t, other.Load(ctx, "u2"))
	assert.Empty(t, other.Tasks())
	assert.Equal(t, "u2", other.UserID())
}

func TestStore_LoadMalformedIsEmpty(t *testing.T) {
	ctx := context.Background()

	tests := map[string]string{
		"bad json":      "[{",
		"bad enum":      `[{"id":"t1","title":"x","category":"work","priority":"meh","status":"todo","userId":"u1","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`,
		"foreign owner": `[{"id":"t1","title":"x","category":"work","priority":"low","status":"todo","userId":"u2","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`,
	}

	for name, stored := range tests {
		t.Run(name, func(t *testing.T) {
			kv := db.NewMemoryStore()
			require.NoError(t, kv.Set(ctx, db.TasksKey("u1"), []byte(stored)))

			s, err := NewStore(kv, Options{Logger: quietLogger()})
			require.NoError(t, err)
			require.NoError(t, s.Load(ctx, "u1"))
			assert.Empty(t, s.Tasks())
			assert.Equal(t, models.TaskStats{}, s.Stats())
		})
	}
}

func TestStore_LoadReadErrorIsReturned(t *testing.T) {
	kv := db.NewMemoryStore()
	kv.GetErr = errors.New("disk on fire")
	s, err := NewStore(kv, Options{Logger: quietLogger()})
	require.NoError(t, err)

	assert.Error(t, s.Load(context.Background(), "u1"))
}

func TestStore_PersistFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	s, kv, _ := newTestStore(t)
	added, err := s.Add(ctx, models.TaskInput{Title: "x"})
	require.NoError(t, err)

	kv.SetErr = errors.New("quota exceeded")

	_, err = s.Add(ctx, models.TaskInput{Title: "y"})
	assert.ErrorIs(t, err, ErrPersist)

	_, err = s.ToggleStatus(ctx, added.ID)
	assert.ErrorIs(t, err, ErrPersist)

	_, err = s.Delete(ctx, added.ID)
	assert.ErrorIs(t, err, ErrPersist)

	got, ok := s.Find(added.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusTodo, got.Status)
	assert.Equal(t, 1, s.Stats().Total)
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)
	_, err := s.Add(ctx, models.TaskInput{Title: "x"})
	require.NoError(t, err)
	s.SetSort(models.SortPriority)
	s.SetFilters(models.FilterOptions{Search: "x"})

	s.Reset()
	assert.Empty(t, s.Tasks())
	assert.Empty(t, s.Filtered())
	assert.Equal(t, "", s.UserID())
	assert.Equal(t, models.SortCreated, s.SortBy())
	assert.True(t, s.Filters().IsEmpty())
}

func TestStore_ReturnedTasksAreCopies(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)
	due := testNow.Add(time.Hour)
	added, err := s.Add(ctx, models.TaskInput{Title: "x", DueDate: &due})
	require.NoError(t, err)

	list := s.Tasks()
	list[0].Title = "mutated"
	*list[0].DueDate = testNow

	got, _ := s.Find(added.ID)
	assert.Equal(t, "x", got.Title)
	assert.Equal(t, due, *got.DueDate)
}

func TestStore_AddCopiesInputDueDate(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)
	due := testNow.Add(time.Hour)
	added, err := s.Add(ctx, models.TaskInput{Title: "x", DueDate: &due})
	require.NoError(t, err)

	due = testNow.Add(-48 * time.Hour)

	got, _ := s.Find(added.ID)
	assert.Equal(t, testNow.Add(time.Hour), *got.DueDate)
	assert.Equal(t, 0, s.Stats().Overdue)
}

func TestNewStore_DefaultIDs(t *testing.T) {
	s, err := NewStore(db.NewMemoryStore(), Options{Logger: quietLogger()})
	require.NoError(t, err)
	require.NoError(t, s.Load(context.Background(), "u1"))

	a, err := s.Add(context.Background(), models.TaskInput{Title: "a"})
	require.NoError(t, err)
	b, err := s.Add(context.Background(), models.TaskInput{Title: "b"})
	require.NoError(t, err)

	assert.Len(t, a.ID, idLength)
	assert.NotEqual(t, a.ID, b.ID)
}
