package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadmax/planwise/internal/recipe"
	"github.com/nadmax/planwise/internal/task"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	s, err := NewStore(mr.Addr())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
		mr.Close()
	})

	return s, mr
}

func newTask(title string, created time.Time) *task.Task {
	t := task.NewTask(title, task.LevelMedium, task.LevelHigh, "work", 30)
	t.CreatedAt = created
	return t
}

func TestNewStore_InvalidAddress(t *testing.T) {
	_, err := NewStore("invalid:99999")
	assert.Error(t, err)
}

func TestSaveAndGetTask(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	tsk := newTask("Plan sprint", time.Now())
	require.NoError(t, s.SaveTask(ctx, tsk))

	got, err := s.GetTask(ctx, tsk.ID)
	require.NoError(t, err)
	assert.Equal(t, tsk.ID, got.ID)
	assert.Equal(t, "Plan sprint", got.Title)
	assert.Equal(t, task.PendingStatus, got.Status)
}

func TestGetTask_NotFound(t *testing.T) {
	s, _ := setupTestStore(t)

	_, err := s.GetTask(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTasks_OldestFirst(t *testing.T) {
	s, mr := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	second := newTask("second", base.Add(time.Minute))
	first := newTask("first", base)
	require.NoError(t, s.SaveTask(ctx, second))
	require.NoError(t, s.SaveTask(ctx, first))
	mr.HSet(tasksKey, "corrupt", "{not json")

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "first", tasks[0].Title)
	assert.Equal(t, "second", tasks[1].Title)
}

func TestUpdateTask(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	tsk := newTask("Write tests", time.Now().Add(-time.Hour))
	tsk.UpdatedAt = tsk.CreatedAt
	require.NoError(t, s.SaveTask(ctx, tsk))

	updated, err := s.UpdateTask(ctx, tsk.ID, func(t *task.Task) error {
		t.Status = task.InProgressStatus
		t.ID = "tampered"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, tsk.ID, updated.ID)
	assert.Equal(t, task.InProgressStatus, updated.Status)
	assert.True(t, updated.UpdatedAt.After(tsk.UpdatedAt))

	stored, err := s.GetTask(ctx, tsk.ID)
	require.NoError(t, err)
	assert.Equal(t, task.InProgressStatus, stored.Status)
}

func TestUpdateTask_Errors(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := s.UpdateTask(ctx, "missing", func(*task.Task) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)

	tsk := newTask("x", time.Now())
	require.NoError(t, s.SaveTask(ctx, tsk))
	boom := errors.New("rejected")
	_, err = s.UpdateTask(ctx, tsk.ID, func(*task.Task) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestUpdateTask_ConcurrentWritersRetry(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	const taskCount, rounds = 20, 20

	ids := make([]string, taskCount)
	for i := range ids {
		tsk := newTask("concurrent", time.Now())
		require.NoError(t, s.SaveTask(ctx, tsk))
		ids[i] = tsk.ID
	}

	var failed atomic.Int32
	for range rounds {
		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.UpdateTask(ctx, id, func(t *task.Task) error {
					t.EstimatedTime++
					return nil
				})
				if err != nil {
					failed.Add(1)
				}
			}()
		}
		wg.Wait()
	}

	assert.Zero(t, failed.Load())
	for _, id := range ids {
		got, err := s.GetTask(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 30+rounds, got.EstimatedTime)
	}
}

func TestUpdateTask_SameTaskNoLostWrites(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	tsk := newTask("hot", time.Now())
	require.NoError(t, s.SaveTask(ctx, tsk))

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdateTask(ctx, tsk.ID, func(t *task.Task) error {
				t.EstimatedTime++
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	got, err := s.GetTask(ctx, tsk.ID)
	require.NoError(t, err)
	assert.Equal(t, 30+writers, got.EstimatedTime)
}

func TestDeleteTask(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	tsk := newTask("Delete me", time.Now())
	require.NoError(t, s.SaveTask(ctx, tsk))

	require.NoError(t, s.DeleteTask(ctx, tsk.ID))
	assert.ErrorIs(t, s.DeleteTask(ctx, tsk.ID), ErrNotFound)
}

func TestClearTasks(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	done := newTask("done", time.Now())
	done.Status = task.CompletedStatus
	open := newTask("open", time.Now())
	require.NoError(t, s.SaveTask(ctx, done))
	require.NoError(t, s.SaveTask(ctx, open))

	n, err := s.ClearTasks(ctx, task.CompletedStatus)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, open.ID, tasks[0].ID)

	n, err = s.ClearTasks(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tasks, err = s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestReplaceTasks(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTask(ctx, newTask("old", time.Now())))

	imported := []*task.Task{newTask("a", time.Now()), newTask("b", time.Now())}
	require.NoError(t, s.ReplaceTasks(ctx, imported))

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	require.NoError(t, s.ReplaceTasks(ctx, nil))
	tasks, err = s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestApplyPriorities(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)

	a := newTask("a", time.Now())
	b := newTask("b", time.Now())
	require.NoError(t, s.SaveTask(ctx, a))
	require.NoError(t, s.SaveTask(ctx, b))

	n, err := s.ApplyPriorities(ctx, []task.PriorityResult{
		{ID: a.ID, Priority: 88},
		{ID: "ghost", Priority: 10},
		{ID: b.ID, Priority: 12},
	}, at)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.GetTask(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Priority)
	assert.Equal(t, 88, *got.Priority)
	require.NotNil(t, got.PrioritizedAt)
	assert.True(t, at.Equal(*got.PrioritizedAt))
}

func TestTasksByStatusAndCount(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	for i, status := range []task.TaskStatus{task.PendingStatus, task.PendingStatus, task.CompletedStatus} {
		tsk := newTask("t", time.Now().Add(time.Duration(i)*time.Second))
		tsk.Status = status
		require.NoError(t, s.SaveTask(ctx, tsk))
	}

	pending, err := s.TasksByStatus(ctx, task.PendingStatus)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	counts, err := s.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[task.TaskStatus]int{task.PendingStatus: 2, task.CompletedStatus: 1}, counts)
}

func TestRecipes(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	older := recipe.Extract("Soup;\n**Ingredients:**\n* water")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := recipe.Extract("Salad;\n**Ingredients:**\n* lettuce")
	require.NoError(t, s.SaveRecipe(ctx, older))
	require.NoError(t, s.SaveRecipe(ctx, newer))

	recipes, err := s.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Salad", recipes[0].Title)
	assert.Equal(t, "Soup", recipes[1].Title)

	got, err := s.GetRecipe(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"water"}, got.Ingredients)

	require.NoError(t, s.DeleteRecipe(ctx, older.ID))
	assert.ErrorIs(t, s.DeleteRecipe(ctx, older.ID), ErrNotFound)
	_, err = s.GetRecipe(ctx, older.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
