// Package store keeps tasks and generated recipes in Redis hashes keyed by ID.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nadmax/planwise/internal/recipe"
	"github.com/nadmax/planwise/internal/task"
)

const (
	tasksKey   = "planwise:tasks"
	recipesKey = "planwise:recipes"

	maxUpdateRetries = 100
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("too many concurrent updates")
)

type Store struct {
	client *redis.Client
}

func NewStore(redisAddr string) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) SaveTask(ctx context.Context, t *task.Task) error {
	taskJSON, err := t.ToJSON()
	if err != nil {
		return err
	}

	return s.client.HSet(ctx, tasksKey, t.ID, taskJSON).Err()
}

func (s *Store) GetTask(ctx context.Context, id string) (*task.Task, error) {
	taskJSON, err := s.client.HGet(ctx, tasksKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return task.TaskFromJSON(taskJSON)
}

// ListTasks returns every stored task, oldest first.
func (s *Store) ListTasks(ctx context.Context) ([]*task.Task, error) {
	taskMap, err := s.client.HGetAll(ctx, tasksKey).Result()
	if err != nil {
		return nil, err
	}

	tasks := make([]*task.Task, 0, len(taskMap))
	for _, taskJSON := range taskMap {
		t, err := task.TaskFromJSON(taskJSON)
		if err != nil {
			continue
		}
		tasks = append(tasks, t)
	}

	slices.SortFunc(tasks, func(a, b *task.Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	return tasks, nil
}

func (s *Store) TasksByStatus(ctx context.Context, status task.TaskStatus) ([]*task.Task, error) {
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(tasks, func(t *task.Task) bool { return t.Status != status }), nil
}

// UpdateTask applies fn to the stored task inside an optimistic transaction
// and bumps UpdatedAt. fn may run more than once when the transaction is
// retried.
func (s *Store) UpdateTask(ctx context.Context, id string, fn func(*task.Task) error) (*task.Task, error) {
	var updated *task.Task

	txf := func(tx *redis.Tx) error {
		taskJSON, err := tx.HGet(ctx, tasksKey, id).Result()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}

		t, err := task.TaskFromJSON(taskJSON)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		t.ID = id
		t.UpdatedAt = time.Now().UTC()

		data, err := t.ToJSON()
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, tasksKey, id, data)
			return nil
		})
		updated = t

		return err
	}

	// the whole hash is watched, so a write to any task aborts the transaction
	for range maxUpdateRetries {
		err := s.client.Watch(ctx, txf, tasksKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return updated, nil
	}

	return nil, fmt.Errorf("task %s: %w", id, ErrConflict)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	n, err := s.client.HDel(ctx, tasksKey, id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	return nil
}

// ClearTasks removes every task, or only tasks with the given status.
func (s *Store) ClearTasks(ctx context.Context, status task.TaskStatus) (int, error) {
	if status == "" {
		var count *redis.IntCmd
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			count = pipe.HLen(ctx, tasksKey)
			pipe.Del(ctx, tasksKey)
			return nil
		})
		if err != nil {
			return 0, err
		}
		return int(count.Val()), nil
	}

	tasks, err := s.TasksByStatus(ctx, status)
	if err != nil || len(tasks) == 0 {
		return 0, err
	}

	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	n, err := s.client.HDel(ctx, tasksKey, ids...).Result()

	return int(n), err
}

// ReplaceTasks atomically swaps the stored task list for tasks.
func (s *Store) ReplaceTasks(ctx context.Context, tasks []*task.Task) error {
	values := make([]any, 0, len(tasks)*2)
	for _, t := range tasks {
		data, err := t.ToJSON()
		if err != nil {
			return err
		}
		values = append(values, t.ID, data)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, tasksKey)
		if len(values) > 0 {
			pipe.HSet(ctx, tasksKey, values...)
		}
		return nil
	})

	return err
}

// ApplyPriorities stores scores on the matching tasks. Results for unknown
// tasks are skipped. It returns the number of tasks updated.
func (s *Store) ApplyPriorities(ctx context.Context, results []task.PriorityResult, at time.Time) (int, error) {
	updated := 0
	for _, r := range results {
		_, err := s.UpdateTask(ctx, r.ID, func(t *task.Task) error {
			t.SetPriority(r.Priority, at)
			return nil
		})
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return updated, err
		}
		updated++
	}

	return updated, nil
}

func (s *Store) CountByStatus(ctx context.Context) (map[task.TaskStatus]int, error) {
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[task.TaskStatus]int)
	for _, t := range tasks {
		counts[t.Status]++
	}

	return counts, nil
}

func (s *Store) SaveRecipe(ctx context.Context, r *recipe.Recipe) error {
	data, err := r.ToJSON()
	if err != nil {
		return err
	}

	return s.client.HSet(ctx, recipesKey, r.ID, data).Err()
}

func (s *Store) GetRecipe(ctx context.Context, id string) (*recipe.Recipe, error) {
	data, err := s.client.HGet(ctx, recipesKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return recipe.FromJSON(data)
}

// ListRecipes returns stored recipes, newest first.
func (s *Store) ListRecipes(ctx context.Context) ([]*recipe.Recipe, error) {
	recipeMap, err := s.client.HGetAll(ctx, recipesKey).Result()
	if err != nil {
		return nil, err
	}

	recipes := make([]*recipe.Recipe, 0, len(recipeMap))
	for _, data := range recipeMap {
		r, err := recipe.FromJSON(data)
		if err != nil {
			continue
		}
		recipes = append(recipes, r)
	}

	slices.SortFunc(recipes, func(a, b *recipe.Recipe) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return recipes, nil
}

func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	n, err := s.client.HDel(ctx, recipesKey, id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("recipe %s: %w", id, ErrNotFound)
	}

	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
